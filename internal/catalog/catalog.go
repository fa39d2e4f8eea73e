// Package catalog holds the canonical ingredient list, the store of
// user-defined placeholder ingredients and the resolver that maps free-text
// ingredient rows onto them.
package catalog

import (
	"strings"
)

// PlaceholderImage is the image reference given to ingredients that are not
// in the canonical catalog.
const PlaceholderImage = "ghost"

// Ingredient is a known ingredient and its reference image.
type Ingredient struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Catalog is the read-only list of canonical ingredients. Lookups are
// case-insensitive.
type Catalog struct {
	entries []Ingredient
	byName  map[string]int
}

// New builds a catalog from entries. Later entries with a name already
// present are ignored.
func New(entries []Ingredient) *Catalog {
	c := &Catalog{
		entries: make([]Ingredient, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		key := strings.ToLower(e.Name)
		if key == "" {
			continue
		}
		if _, ok := c.byName[key]; ok {
			continue
		}
		c.byName[key] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// Lookup finds an ingredient by name, ignoring case and surrounding space.
func (c *Catalog) Lookup(name string) (Ingredient, bool) {
	if c == nil {
		return Ingredient{}, false
	}
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Ingredient{}, false
	}
	return c.entries[i], true
}

// ImageFor returns the catalog image for name, or PlaceholderImage.
func (c *Catalog) ImageFor(name string) string {
	if ing, ok := c.Lookup(name); ok && ing.Image != "" {
		return ing.Image
	}
	return PlaceholderImage
}

// All returns the entries in catalog order.
func (c *Catalog) All() []Ingredient {
	if c == nil {
		return nil
	}
	out := make([]Ingredient, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Default returns the built-in German ingredient catalog.
func Default() *Catalog {
	entries := make([]Ingredient, len(defaultIngredients))
	for i, name := range defaultIngredients {
		entries[i] = Ingredient{
			ID:    strings.ToLower(strings.ReplaceAll(name, " ", "-")),
			Name:  name,
			Image: imageKey(name),
		}
	}
	return New(entries)
}

var umlauts = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss", " ", "-")

func imageKey(name string) string {
	return umlauts.Replace(strings.ToLower(name)) + ".png"
}

var defaultIngredients = []string{
	"Mehl",
	"Zucker",
	"Brauner Zucker",
	"Puderzucker",
	"Salz",
	"Meersalz",
	"Pfeffer",
	"Butter",
	"Erdnussbutter",
	"Eier",
	"Milch",
	"Hafermilch",
	"Sahne",
	"Schmand",
	"Joghurt",
	"Quark",
	"Parmesan",
	"Mozzarella",
	"Feta",
	"Olivenöl",
	"Rapsöl",
	"Essig",
	"Balsamico",
	"Knoblauch",
	"Zwiebel",
	"Frühlingszwiebeln",
	"Tomaten",
	"Getrocknete Tomaten",
	"Passierte Tomaten",
	"Tomatenmark",
	"Spinat",
	"Paprika",
	"Zucchini",
	"Karotten",
	"Kartoffeln",
	"Brokkoli",
	"Champignons",
	"Gnocchi",
	"Nudeln",
	"Reis",
	"Tofu",
	"Kichererbsen",
	"Linsen",
	"Gemüsebrühe",
	"Hefe",
	"Backpulver",
	"Vanillezucker",
	"Zimt",
	"Kakao",
	"Schokolade",
	"Honig",
	"Zitrone",
	"Limette",
	"Äpfel",
	"Bananen",
	"Basilikum",
	"Petersilie",
	"Oregano",
	"Thymian",
	"Chiliflocken",
	"Sojasoße",
	"Senf",
	"Wasser",
}
