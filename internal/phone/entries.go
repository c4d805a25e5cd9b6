package phone

// Type classifies a phone entry.
type Type string

const (
	TypeMobile Type = "mobile"
	TypeHome   Type = "home"
	TypeWork   Type = "work"
	TypeOther  Type = "other"
)

// AllTypes returns the entry types in display order.
func AllTypes() []Type {
	return []Type{TypeMobile, TypeHome, TypeWork, TypeOther}
}

// IsValid reports whether t is a known entry type.
func (t Type) IsValid() bool {
	switch t {
	case TypeMobile, TypeHome, TypeWork, TypeOther:
		return true
	}
	return false
}

// Next cycles to the following type.
func (t Type) Next() Type {
	types := AllTypes()
	for i, tt := range types {
		if tt == t {
			return types[(i+1)%len(types)]
		}
	}
	return TypeMobile
}

// Entry is one phone number attached to a record.
type Entry struct {
	Number    string `json:"number"`
	Type      Type   `json:"type"`
	IsPrimary bool   `json:"is_primary"`
	Notes     string `json:"notes"`
}

// List is an ordered set of entries. A non-empty list always has exactly
// one primary entry; every operation returns a new slice.
type List []Entry

// Add appends e. The first entry, or one flagged primary, becomes primary.
func (l List) Add(e Entry) List {
	if !e.Type.IsValid() {
		e.Type = TypeMobile
	}
	out := append(l.clone(), e)
	if len(l) == 0 || e.IsPrimary {
		return out.SetPrimary(len(out) - 1)
	}
	out[len(out)-1].IsPrimary = false
	return out
}

// Remove deletes entry i. Removing the primary promotes the first remaining.
func (l List) Remove(i int) List {
	if i < 0 || i >= len(l) {
		return l.clone()
	}
	wasPrimary := l[i].IsPrimary
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	out = append(out, l[i+1:]...)
	if wasPrimary && len(out) > 0 {
		return out.SetPrimary(0)
	}
	return out
}

// SetPrimary marks entry i primary and demotes every other entry.
func (l List) SetPrimary(i int) List {
	out := l.clone()
	if i < 0 || i >= len(out) {
		return out
	}
	for j := range out {
		out[j].IsPrimary = j == i
	}
	return out
}

// Update replaces entry i, keeping the primary flag where it was.
func (l List) Update(i int, e Entry) List {
	out := l.clone()
	if i < 0 || i >= len(out) {
		return out
	}
	e.IsPrimary = out[i].IsPrimary
	out[i] = e
	return out
}

// Primary returns the primary entry.
func (l List) Primary() (Entry, bool) {
	for _, e := range l {
		if e.IsPrimary {
			return e, true
		}
	}
	return Entry{}, false
}

// Normalize repairs lists coming from outside (server records): zero
// primaries promotes the first entry, several keep only the first of them.
func (l List) Normalize() List {
	if len(l) == 0 {
		return List{}
	}
	idx := 0
	for i, e := range l {
		if e.IsPrimary {
			idx = i
			break
		}
	}
	out := l.SetPrimary(idx)
	for i := range out {
		if !out[i].Type.IsValid() {
			out[i].Type = TypeMobile
		}
	}
	return out
}

func (l List) clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}
