package domain

import "strings"

// Offering is a catalog entry selectable at project creation.
type Offering struct {
	Name    string `json:"name"`
	Credits int    `json:"credits"`
}

var catalog = []Offering{
	{Name: "Diseño de marca", Credits: 10},
	{Name: "Diseño de ilustración", Credits: 15},
	{Name: "Edición de video", Credits: 20},
}

// Catalog returns a copy of the fixed offering catalog.
func Catalog() []Offering {
	out := make([]Offering, len(catalog))
	copy(out, catalog)
	return out
}

// LookupOffering finds an offering by name, ignoring case and surrounding space.
func LookupOffering(name string) (Offering, bool) {
	name = strings.TrimSpace(name)
	for _, o := range catalog {
		if strings.EqualFold(o.Name, name) {
			return o, true
		}
	}
	return Offering{}, false
}
