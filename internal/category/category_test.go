package category

import "testing"

func TestNormalize(t *testing.T) {
	r := Default()
	cases := []struct {
		in   string
		want string
	}{
		{"hairdresser", "hairdresser"},           // exact key
		{"Hairdressers", "hairdresser"},          // registered title
		{"hairdressers", "hairdresser"},          // title, case-insensitive
		{"salon", "hairdresser"},                 // alias
		{"SALON", "hairdresser"},                 // alias, case-insensitive
		{"Wedding Venue", "wedding_venue"},       // slugified input is a key
		{"  band  ", "band"},                     // trimmed exact key
		{"Women's Traditional Clothes", "traditional_clothes_women"}, // title with apostrophe
		{"florist", "decor"},                     // alias
		{"spaceship rental", ""},                 // unknown
		{"", ""},
	}
	for _, c := range cases {
		if got := r.Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	r := Default()
	for _, c := range r.Entries() {
		once := r.Normalize(c.Key)
		if once == "" {
			t.Fatalf("canonical key %q did not normalize", c.Key)
		}
		if twice := r.Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", c.Key, twice, once)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Wedding Venue", "wedding_venue"},
		{"Men's Traditional Clothes", "mens_traditional_clothes"},
		{"  décor & flowers  ", "d_cor_flowers"},
		{"__already__slugged__", "already_slugged"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDescribeFallsBackForUnknownKeys(t *testing.T) {
	r := Default()
	got := r.Describe("snake_charmer")
	if got.Title != "Snake Charmer" {
		t.Fatalf("unexpected fallback title %q", got.Title)
	}
	if got.Key != "snake_charmer" {
		t.Fatalf("unexpected key %q", got.Key)
	}
}
