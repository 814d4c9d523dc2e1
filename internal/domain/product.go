package domain

import (
	"encoding/json"
	"strings"
)

// UnknownProductName is used when the provider record carries no name
const UnknownProductName = "Unknown Product"

// PlaceholderImageURL is used when the provider record carries no usable image
const PlaceholderImageURL = "https://via.placeholder.com/400?text=No+Image"

// Product is the canonical, normalized representation of a food product.
// Values are never mutated after normalization.
type Product struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	ImageURL    string          `json:"image_url"`
	Nutriments  Nutriments      `json:"nutriments"`
	NutriScore  Grade           `json:"nutriScore,omitempty"`
	EcoScore    Grade           `json:"ecoScore,omitempty"`
	Categories  string          `json:"categories"`
	Ingredients string          `json:"ingredients"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// Nutriments holds per-100g values. A nil field means the provider did not
// report it, which is not the same as zero.
type Nutriments struct {
	Energy       *float64 `json:"energy"`       // kcal
	Carbs        *float64 `json:"carbs"`        // grams
	Sugars       *float64 `json:"sugars"`       // grams
	Fat          *float64 `json:"fat"`          // grams
	SaturatedFat *float64 `json:"saturatedFat"` // grams
	Protein      *float64 `json:"protein"`      // grams
	Fiber        *float64 `json:"fiber"`        // grams
	Salt         *float64 `json:"salt"`         // grams
}

// Grade is a Nutri-Score or Eco-Score letter. The empty Grade means absent.
type Grade string

// worstGradeRank is used for absent or unrecognized grades
const worstGradeRank = 5

// ParseGrade trims and lower-cases a provider grade
func ParseGrade(s string) Grade {
	return Grade(strings.ToLower(strings.TrimSpace(s)))
}

// Rank orders grades from a=1 (best) to e=5 (worst).
// Anything outside a..e ranks as e.
func (g Grade) Rank() int {
	switch strings.ToLower(string(g)) {
	case "a":
		return 1
	case "b":
		return 2
	case "c":
		return 3
	case "d":
		return 4
	default:
		return worstGradeRank
	}
}

// IsZero reports whether the grade is absent
func (g Grade) IsZero() bool {
	return g == ""
}

// SearchResult is the shape returned to callers of a product search
type SearchResult struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}

// EmptySearchResult returns a result with a non-nil, empty product list
func EmptySearchResult() SearchResult {
	return SearchResult{Products: []Product{}, Count: 0}
}

// CacheEntry is the persisted form of a barcode lookup
type CacheEntry struct {
	Data      Product `json:"data"`
	Timestamp int64   `json:"timestamp"` // epoch millis
}

// Macro is one slice of the macronutrient breakdown chart
type Macro struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Color string  `json:"color"`
}

// Macros returns the fixed-order macronutrient dataset used for charts.
// Absent values are reported as zero.
func (p Product) Macros() []Macro {
	n := p.Nutriments
	return []Macro{
		{Label: "Protein", Value: valueOrZero(n.Protein), Unit: "g", Color: "#4F46E5"},
		{Label: "Carbs", Value: valueOrZero(n.Carbs), Unit: "g", Color: "#10B981"},
		{Label: "Fats", Value: valueOrZero(n.Fat), Unit: "g", Color: "#F59E0B"},
		{Label: "Sugars", Value: valueOrZero(n.Sugars), Unit: "g", Color: "#EF4444"},
		{Label: "Fiber", Value: valueOrZero(n.Fiber), Unit: "g", Color: "#8B5CF6"},
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
