// Package category maps free-text category input onto a fixed registry of
// canonical keys. Callers must treat an empty normalization result as a
// rejected category rather than inventing a new one.
package category

import "strings"

// Category is one registry entry. Aliases are hand-maintained synonyms that
// normalize to the key.
type Category struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Desc    string   `json:"desc"`
	Aliases []string `json:"-"`
}

// Registry is an ordered list of categories with lookup indexes.
type Registry struct {
	entries []Category
	byKey   map[string]Category
	byTitle map[string]string // lowercased title -> key
	byAlias map[string]string // lowercased alias -> key
}

func NewRegistry(entries []Category) *Registry {
	r := &Registry{
		entries: entries,
		byKey:   make(map[string]Category, len(entries)),
		byTitle: make(map[string]string, len(entries)),
		byAlias: make(map[string]string),
	}
	for _, c := range entries {
		r.byKey[c.Key] = c
		r.byTitle[strings.ToLower(c.Title)] = c.Key
		for _, a := range c.Aliases {
			r.byAlias[strings.ToLower(a)] = c.Key
		}
	}
	return r
}

// Default returns the marketplace registry.
func Default() *Registry {
	return NewRegistry([]Category{
		{Key: "hairdresser", Title: "Hairdressers", Desc: "Bridal hair + makeup, henna night.",
			Aliases: []string{"salon", "hair", "coiffeur", "makeup"}},
		{Key: "traditional_clothes_women", Title: "Women's Traditional Clothes", Desc: "Try-on appointments + rental/purchase.",
			Aliases: []string{"keswa", "dresses"}},
		{Key: "traditional_clothes_men", Title: "Men's Traditional Clothes", Desc: "Jebba & classic sets.",
			Aliases: []string{"jebba"}},
		{Key: "photographer", Title: "Photographers", Desc: "Traditional & cinematic styles.",
			Aliases: []string{"photo", "photography", "videographer"}},
		{Key: "wedding_venue", Title: "Wedding Venues", Desc: "Capacity, type, amenities.",
			Aliases: []string{"venue", "hall", "salle"}},
		{Key: "band", Title: "Bands", Desc: "Mezoued, stambeli, folk, DJ sets.",
			Aliases: []string{"music", "dj", "orchestra"}},
		{Key: "caterer", Title: "Caterers", Desc: "Traditional menus + modern options.",
			Aliases: []string{"catering", "food", "traiteur"}},
		{Key: "decor", Title: "Decor", Desc: "Flowers, stage, lighting, theme.",
			Aliases: []string{"decoration", "flowers", "florist"}},
	})
}

// Entries returns the registry in declaration order.
func (r *Registry) Entries() []Category { return r.entries }

// Normalize resolves raw input to a canonical key, or "" when nothing
// matches. Resolution order: exact key, case-insensitive title, alias,
// then slug-of-input when the slug is itself a registered key.
func (r *Registry) Normalize(raw string) string {
	in := strings.TrimSpace(raw)
	if in == "" {
		return ""
	}
	if _, ok := r.byKey[in]; ok {
		return in
	}
	lower := strings.ToLower(in)
	if key, ok := r.byTitle[lower]; ok {
		return key
	}
	if key, ok := r.byAlias[lower]; ok {
		return key
	}
	if slug := Slugify(in); slug != "" {
		if _, ok := r.byKey[slug]; ok {
			return slug
		}
	}
	return ""
}

// Describe returns display info for a key. Unregistered keys still in
// stored data get a humanized fallback so old listings keep rendering.
func (r *Registry) Describe(key string) Category {
	if c, ok := r.byKey[key]; ok {
		return c
	}
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return Category{
		Key:   key,
		Title: strings.Join(words, " "),
		Desc:  "Browse vendors in this category.",
	}
}

// Slugify lowercases, strips apostrophes, collapses runs of
// non-alphanumerics to a single underscore and trims the ends.
func Slugify(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			// dropped entirely
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
