package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ProviderRecord is a product as returned by the Open Food Facts API.
//
// Provider payloads are inconsistently shaped: fields go missing, change
// JSON type, or hold numbers as strings. Decoding is lenient per field, so a
// value of the wrong type leaves its field empty instead of failing the
// whole record.
type ProviderRecord struct {
	Code            string
	ID              string
	ProductName     string
	ProductNameEn   string
	Brands          string
	Brand           string
	ImageFrontURL   string
	ImageURL        string
	FrontImageID    string             // first entry of images.front, in document order
	Nutriments      map[string]float64 // finite values only
	NutriScoreGrade string
	EcoScoreGrade   string
	Categories      string
	IngredientsText string
	Raw             json.RawMessage
}

// UnmarshalJSON decodes a provider record without ever rejecting the input.
// Non-object payloads yield a record with only Raw set.
func (r *ProviderRecord) UnmarshalJSON(data []byte) error {
	*r = ProviderRecord{Raw: append(json.RawMessage(nil), data...)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	r.Code = scalarString(fields["code"])
	r.ID = scalarString(fields["_id"])
	r.ProductName = scalarString(fields["product_name"])
	r.ProductNameEn = scalarString(fields["product_name_en"])
	r.Brands = scalarString(fields["brands"])
	r.Brand = scalarString(fields["brand"])
	r.ImageFrontURL = scalarString(fields["image_front_url"])
	r.ImageURL = scalarString(fields["image_url"])
	r.FrontImageID = frontImageID(fields["images"])
	r.Nutriments = numericMap(fields["nutriments"])
	r.NutriScoreGrade = scalarString(fields["nutriscore_grade"])
	r.EcoScoreGrade = scalarString(fields["ecoscore_grade"])
	r.Categories = scalarString(fields["categories"])
	r.IngredientsText = scalarString(fields["ingredients_text"])

	return nil
}

// Nutriment returns a finite nutriment value by provider key
func (r *ProviderRecord) Nutriment(key string) (float64, bool) {
	v, ok := r.Nutriments[key]
	return v, ok
}

// SearchResponse represents the response from the Open Food Facts search API
type SearchResponse struct {
	Products []ProviderRecord `json:"products"`
	Count    int              `json:"-"`
}

// UnmarshalJSON tolerates count being a number or a numeric string
func (s *SearchResponse) UnmarshalJSON(data []byte) error {
	var payload struct {
		Products []ProviderRecord `json:"products"`
		Count    json.RawMessage  `json:"count"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	s.Products = payload.Products
	s.Count = 0
	if f, ok := scalarNumber(payload.Count); ok && f > 0 {
		s.Count = int(f)
	}
	return nil
}

// ProductResponse represents the response from the barcode lookup API
type ProductResponse struct {
	Status  int             `json:"-"`
	Product *ProviderRecord `json:"product"`
}

// UnmarshalJSON tolerates status being a number or a numeric string
func (p *ProductResponse) UnmarshalJSON(data []byte) error {
	var payload struct {
		Status  json.RawMessage `json:"status"`
		Product json.RawMessage `json:"product"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	p.Status = 0
	if f, ok := scalarNumber(payload.Status); ok {
		p.Status = int(f)
	}

	p.Product = nil
	if !isNull(payload.Product) {
		var record ProviderRecord
		if err := json.Unmarshal(payload.Product, &record); err != nil {
			return err
		}
		p.Product = &record
	}
	return nil
}

// scalarString returns JSON strings as-is and JSON numbers as their literal
// text. Anything else yields "".
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}

// scalarNumber accepts JSON numbers and numeric strings, rejecting NaN and Inf
func scalarNumber(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numericMap keeps only the entries of a JSON object that are numeric
func numericMap(raw json.RawMessage) map[string]float64 {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	values := make(map[string]float64, len(fields))
	for key, value := range fields {
		if f, ok := scalarNumber(value); ok {
			values[key] = f
		}
	}
	return values
}

// frontImageID returns the value of the first key of images.front.
// Document order is preserved, so this walks the tokens instead of decoding
// into a map.
func frontImageID(raw json.RawMessage) string {
	var images map[string]json.RawMessage
	if err := json.Unmarshal(raw, &images); err != nil {
		return ""
	}

	front, ok := images["front"]
	if !ok {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(front))
	tok, err := dec.Token()
	if err != nil {
		return ""
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ""
	}
	if !dec.More() {
		return ""
	}
	if _, err := dec.Token(); err != nil {
		return ""
	}

	var value json.RawMessage
	if err := dec.Decode(&value); err != nil {
		return ""
	}
	return scalarString(value)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
