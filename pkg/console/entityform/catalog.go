package entityform

import (
	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/pkg/console/modal"
)

func source(entity string) *Source {
	return &Source{Entity: entity}
}

var roleChoices = []Choice{
	{Value: string(models.RoleAdmin), Key: "roles.admin", Fallback: "Administrator"},
	{Value: string(models.RoleManager), Key: "roles.manager", Fallback: "Manager"},
	{Value: string(models.RoleAgent), Key: "roles.agent", Fallback: "Agent"},
}

// leadPayload sends the primary number as the lead's main phone.
func leadPayload(p map[string]any, values models.FormState, _ models.User) {
	if e, ok := values.Phones("phone_numbers").Primary(); ok {
		p["phone"] = e.Number
	} else {
		p["phone"] = ""
	}
}

// userPayload scopes new users to the creator's company.
func userPayload(p map[string]any, _ models.FormState, user models.User) {
	if user.CompanyID != "" {
		p["company"] = user.CompanyID
	}
}

var (
	Leads = Entity{
		Name: "leads", Singular: "lead", Label: "Lead", Size: modal.SizeLarge,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Rules: "required"},
			{Name: "email", Label: "Email", Kind: KindEmail, Rules: "omitempty,email"},
			{Name: "phone_numbers", Label: "Phone numbers", Kind: KindPhones, Rules: "min=1", Aliases: []string{"phone"}},
			{Name: "status", Label: "Status", Kind: KindSelect, Rules: "required", Source: source("statuses")},
			{Name: "channel", Label: "Channel", Kind: KindSelect, Source: source("channels")},
			{Name: "assigned_to", Label: "Assigned to", Kind: KindSelect, Source: source("users")},
			{Name: "notes", Label: "Notes", Kind: KindTextArea},
		},
		Columns: []Column{
			{Field: "name", Label: "Name", Width: 22},
			{Field: "phone_numbers", Label: "Phone", Width: 16, Kind: ColPhone},
			{Field: "status", Label: "Status", Width: 12, Kind: ColRef},
			{Field: "channel", Label: "Channel", Width: 14, Kind: ColRef},
			{Field: "email", Label: "Email", Width: 24},
		},
		Payload: leadPayload,
	}

	Deals = Entity{
		Name: "deals", Singular: "deal", Label: "Deal", Size: modal.SizeMedium,
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Rules: "required"},
			{Name: "lead", Label: "Lead", Kind: KindSelect, Rules: "required", Source: source("leads")},
			{Name: "amount", Label: "Amount", Kind: KindNumber, Rules: "required,numeric,dec_gt=0", Min: "0", Step: "0.01"},
			{Name: "status", Label: "Status", Kind: KindSelect, Source: source("statuses")},
			{Name: "owner", Label: "Owner", Kind: KindSelect, Source: source("users")},
			{Name: "project", Label: "Project", Kind: KindSelect, Source: source("projects")},
			{Name: "close_date", Label: "Close date", Kind: KindText, Rules: "omitempty,datetime=2006-01-02"},
		},
		Columns: []Column{
			{Field: "title", Label: "Title", Width: 22},
			{Field: "lead", Label: "Lead", Width: 18, Kind: ColRef},
			{Field: "amount", Label: "Amount", Width: 14, Kind: ColMoney},
			{Field: "status", Label: "Status", Width: 12, Kind: ColRef},
			{Field: "owner", Label: "Owner", Width: 16, Kind: ColRef},
		},
	}

	Products = Entity{
		Name: "products", Singular: "product", Label: "Product", Size: modal.SizeMedium,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Rules: "required"},
			{Name: "sku", Label: "SKU", Kind: KindText, Rules: "required"},
			{Name: "price", Label: "Price", Kind: KindNumber, Rules: "required,numeric,dec_gt=0", Min: "0", Step: "0.01"},
			{Name: "quantity", Label: "Quantity", Kind: KindNumber, Rules: "omitempty,numeric,dec_gte=0", Min: "0", Step: "1"},
			{Name: "category", Label: "Category", Kind: KindSelect, Source: source("categories")},
			{Name: "unit", Label: "Unit", Kind: KindSelect, Rules: "required", Source: source("units")},
			{Name: "supplier", Label: "Supplier", Kind: KindSelect, Source: source("suppliers")},
			{Name: "is_active", Label: "Active", Kind: KindCheckbox},
			{Name: "description", Label: "Description", Kind: KindTextArea},
		},
		Columns: []Column{
			{Field: "name", Label: "Name", Width: 22},
			{Field: "sku", Label: "SKU", Width: 12},
			{Field: "price", Label: "Price", Width: 14, Kind: ColMoney},
			{Field: "quantity", Label: "Qty", Width: 6, Kind: ColNumber},
			{Field: "unit", Label: "Unit", Width: 10, Kind: ColRef},
			{Field: "is_active", Label: "Active", Width: 6, Kind: ColBool},
		},
	}

	Services = Entity{
		Name: "services", Singular: "service", Label: "Service", Size: modal.SizeMedium,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Rules: "required"},
			{Name: "price", Label: "Price", Kind: KindNumber, Rules: "required,numeric,dec_gt=0", Min: "0", Step: "0.01"},
			{Name: "duration_hours", Label: "Duration (hours)", Kind: KindNumber, Rules: "omitempty,numeric,dec_gt=0", Min: "0", Step: "0.5"},
			{Name: "rating", Label: "Rating", Kind: KindNumber, Rules: "omitempty,numeric,dec_gte=0,dec_lte=5", Min: "0", Max: "5", Step: "0.5"},
			{Name: "category", Label: "Category", Kind: KindSelect, Source: source("categories")},
			{Name: "provider", Label: "Provider", Kind: KindSelect, Source: source("providers")},
			{Name: "is_active", Label: "Active", Kind: KindCheckbox},
		},
		Columns: []Column{
			{Field: "name", Label: "Name", Width: 22},
			{Field: "price", Label: "Price", Width: 14, Kind: ColMoney},
			{Field: "rating", Label: "Rating", Width: 6, Kind: ColNumber},
			{Field: "provider", Label: "Provider", Width: 18, Kind: ColRef},
			{Field: "is_active", Label: "Active", Width: 6, Kind: ColBool},
		},
	}

	Campaigns = Entity{
		Name: "campaigns", Singular: "campaign", Label: "Campaign", Size: modal.SizeMedium,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Rules: "required"},
			{Name: "channel", Label: "Channel", Kind: KindSelect, Rules: "required", Source: source("channels")},
			{Name: "project", Label: "Project", Kind: KindSelect, Source: source("projects")},
			{Name: "budget", Label: "Budget", Kind: KindNumber, Rules: "required,numeric,dec_gt=0", Min: "0", Step: "100"},
			{Name: "start_date", Label: "Start date", Kind: KindText, Rules: "omitempty,datetime=2006-01-02"},
			{Name: "end_date", Label: "End date", Kind: KindText, Rules: "omitempty,datetime=2006-01-02"},
			{Name: "is_active", Label: "Active", Kind: KindCheckbox},
		},
		Columns: []Column{
			{Field: "name", Label: "Name", Width: 22},
			{Field: "channel", Label: "Channel", Width: 14, Kind: ColRef},
			{Field: "budget", Label: "Budget", Width: 14, Kind: ColMoney},
			{Field: "start_date", Label: "Start", Width: 10},
			{Field: "end_date", Label: "End", Width: 10},
			{Field: "is_active", Label: "Active", Width: 6, Kind: ColBool},
		},
	}

	Users = Entity{
		Name: "users", Singular: "user", Label: "User", Size: modal.SizeMedium,
		Fields: []Field{
			{Name: "first_name", Label: "First name", Kind: KindText, Rules: "required"},
			{Name: "last_name", Label: "Last name", Kind: KindText, Rules: "required"},
			{Name: "email", Label: "Email", Kind: KindEmail, Rules: "required,email"},
			{Name: "phone", Label: "Phone", Kind: KindPhone, Rules: "omitempty,dialphone"},
			{Name: "role", Label: "Role", Kind: KindSelect, Rules: "required", Choices: roleChoices},
			{Name: "password", Label: "Password", Kind: KindPassword, Rules: "required,min=8", CreateOnly: true},
			{Name: "is_active", Label: "Active", Kind: KindCheckbox},
		},
		Columns: []Column{
			{Field: "first_name", Label: "First name", Width: 14},
			{Field: "last_name", Label: "Last name", Width: 14},
			{Field: "email", Label: "Email", Width: 26},
			{Field: "role", Label: "Role", Width: 10},
			{Field: "is_active", Label: "Active", Width: 6, Kind: ColBool},
		},
		Payload: userPayload,
	}

	Owners = Entity{
		Name: "owners", Singular: "owner", Label: "Owner", Size: modal.SizeMedium,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Rules: "required"},
			{Name: "email", Label: "Email", Kind: KindEmail, Rules: "omitempty,email"},
			{Name: "phone", Label: "Phone", Kind: KindPhone, Rules: "required,dialphone"},
			{Name: "project", Label: "Project", Kind: KindSelect, Source: source("projects")},
			{Name: "notes", Label: "Notes", Kind: KindTextArea},
		},
		Columns: []Column{
			{Field: "name", Label: "Name", Width: 22},
			{Field: "phone", Label: "Phone", Width: 16},
			{Field: "email", Label: "Email", Width: 24},
			{Field: "project", Label: "Project", Width: 18, Kind: ColRef},
		},
	}

	Suppliers = Entity{
		Name: "suppliers", Singular: "supplier", Label: "Supplier", Size: modal.SizeMedium,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Rules: "required"},
			{Name: "contact_person", Label: "Contact person", Kind: KindText},
			{Name: "email", Label: "Email", Kind: KindEmail, Rules: "omitempty,email"},
			{Name: "phone", Label: "Phone", Kind: KindPhone, Rules: "omitempty,dialphone"},
			{Name: "address", Label: "Address", Kind: KindTextArea},
		},
		Columns: []Column{
			{Field: "name", Label: "Name", Width: 22},
			{Field: "contact_person", Label: "Contact", Width: 18},
			{Field: "phone", Label: "Phone", Width: 16},
			{Field: "email", Label: "Email", Width: 24},
		},
	}

	Providers = Entity{
		Name: "providers", Singular: "provider", Label: "Provider", Size: modal.SizeMedium,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Rules: "required"},
			{Name: "specialty", Label: "Specialty", Kind: KindText},
			{Name: "email", Label: "Email", Kind: KindEmail, Rules: "omitempty,email"},
			{Name: "phone", Label: "Phone", Kind: KindPhone, Rules: "omitempty,dialphone"},
		},
		Columns: []Column{
			{Field: "name", Label: "Name", Width: 22},
			{Field: "specialty", Label: "Specialty", Width: 18},
			{Field: "phone", Label: "Phone", Width: 16},
			{Field: "email", Label: "Email", Width: 24},
		},
	}

	Categories = Entity{
		Name: "categories", Singular: "category", Label: "Category", Size: modal.SizeSmall,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Rules: "required"},
			{Name: "description", Label: "Description", Kind: KindTextArea},
		},
		Columns: []Column{
			{Field: "name", Label: "Name", Width: 22},
			{Field: "description", Label: "Description", Width: 40},
		},
	}

	Units = Entity{
		Name: "units", Singular: "unit", Label: "Unit", Size: modal.SizeSmall,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Rules: "required"},
			{Name: "symbol", Label: "Symbol", Kind: KindText, Rules: "required,max=8"},
		},
		Columns: []Column{
			{Field: "name", Label: "Name", Width: 22},
			{Field: "symbol", Label: "Symbol", Width: 8},
		},
	}
)

// Catalog returns every entity in tab order.
func Catalog() []Entity {
	return []Entity{Leads, Deals, Products, Services, Campaigns, Users, Owners, Suppliers, Providers, Categories, Units}
}

// Lookup finds an entity by collection name or singular.
func Lookup(name string) (Entity, bool) {
	for _, e := range Catalog() {
		if e.Name == name || e.Singular == name {
			return e, true
		}
	}
	return Entity{}, false
}
