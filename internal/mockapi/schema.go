package mockapi

// collection describes how the mock server treats one entity type.
type collection struct {
	// refs maps a field to the collection its id points into; responses
	// expand it to {id, name}.
	refs map[string]string
	// unique fields reject duplicates; structured ones answer with a
	// fields map, the rest with a flat message.
	unique     []string
	structured bool
	// positive fields must parse as numbers greater than zero.
	positive []string
	// bare collections are listed as a plain JSON array.
	bare bool
}

var collections = map[string]collection{
	"leads": {
		refs:   map[string]string{"status": "statuses", "channel": "channels", "assigned_to": "users"},
		unique: []string{"phone"},
	},
	"deals": {
		refs:     map[string]string{"lead": "leads", "status": "statuses", "owner": "users", "project": "projects"},
		positive: []string{"amount"},
	},
	"products": {
		refs:     map[string]string{"category": "categories", "unit": "units", "supplier": "suppliers"},
		unique:   []string{"sku"},
		positive: []string{"price"},
	},
	"services": {
		refs:     map[string]string{"category": "categories", "provider": "providers"},
		positive: []string{"price"},
	},
	"campaigns": {
		refs:     map[string]string{"channel": "channels", "project": "projects"},
		positive: []string{"budget"},
	},
	"users": {
		unique:     []string{"email"},
		structured: true,
	},
	"owners": {
		refs:   map[string]string{"project": "projects"},
		unique: []string{"email"},
	},
	"suppliers":  {unique: []string{"name"}, structured: true},
	"providers":  {unique: []string{"name"}, structured: true},
	"categories": {unique: []string{"name"}},
	"units":      {unique: []string{"name"}, bare: true},
	"statuses":   {bare: true},
	"channels":   {bare: true},
	"projects":   {},
}

// seed rows for lookup collections
var seedData = map[string][]map[string]any{
	"statuses": {
		{"id": "st-new", "name": "New"},
		{"id": "st-contacted", "name": "Contacted"},
		{"id": "st-qualified", "name": "Qualified"},
		{"id": "st-won", "name": "Won"},
		{"id": "st-lost", "name": "Lost"},
	},
	"channels": {
		{"id": "ch-web", "name": "Website"},
		{"id": "ch-referral", "name": "Referral"},
		{"id": "ch-social", "name": "Social media"},
		{"id": "ch-phone", "name": "Phone call"},
	},
	"projects": {
		{"id": "pr-north", "name": "North Tower"},
		{"id": "pr-marina", "name": "Marina Residences"},
	},
	"categories": {
		{"id": "cat-hw", "name": "Hardware", "description": ""},
		{"id": "cat-consult", "name": "Consulting", "description": ""},
	},
	"units": {
		{"id": "un-pcs", "name": "Pieces", "symbol": "pcs"},
		{"id": "un-kg", "name": "Kilograms", "symbol": "kg"},
		{"id": "un-hr", "name": "Hours", "symbol": "h"},
	},
	"suppliers": {
		{"id": "sup-acme", "name": "Acme Trading", "email": "sales@acme.example", "phone": "+966112345678"},
	},
	"providers": {
		{"id": "prv-fix", "name": "FixIt Services", "email": "ops@fixit.example", "phone": "+971501234567"},
	},
}
