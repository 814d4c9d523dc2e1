package openfoodfacts

import (
	"strings"

	"github.com/foodtracker/backend/internal/domain"
)

// ImageBaseURL is prefixed to image ids found under images.front
const ImageBaseURL = "https://images.openfoodfacts.org/images/products"

// Open Food Facts nutriment keys. Each is looked up with the _100g suffix
// first, then bare.
const (
	NutrimentEnergy       = "energy-kcal"
	NutrimentCarbohydrate = "carbohydrates"
	NutrimentSugars       = "sugars"
	NutrimentFat          = "fat"
	NutrimentSaturatedFat = "saturated-fat"
	NutrimentProteins     = "proteins"
	NutrimentFiber        = "fiber"
	NutrimentSalt         = "salt"
)

// Normalize converts a provider record to the canonical Product.
// It never fails: every field with a default gets one.
func Normalize(record domain.ProviderRecord) domain.Product {
	return domain.Product{
		Code:        firstNonEmpty(record.Code, record.ID),
		Name:        firstNonEmpty(record.ProductName, record.ProductNameEn, domain.UnknownProductName),
		Brand:       firstNonEmpty(record.Brands, record.Brand),
		ImageURL:    resolveImageURL(record),
		Nutriments:  extractNutriments(record),
		NutriScore:  domain.ParseGrade(record.NutriScoreGrade),
		EcoScore:    domain.ParseGrade(record.EcoScoreGrade),
		Categories:  record.Categories,
		Ingredients: record.IngredientsText,
		Raw:         record.Raw,
	}
}

// NormalizeAll normalizes every record, preserving order
func NormalizeAll(records []domain.ProviderRecord) []domain.Product {
	products := make([]domain.Product, 0, len(records))
	for _, record := range records {
		products = append(products, Normalize(record))
	}
	return products
}

// resolveImageURL prefers explicit URLs over ones built from image ids
func resolveImageURL(record domain.ProviderRecord) string {
	if record.ImageFrontURL != "" {
		return record.ImageFrontURL
	}
	if record.ImageURL != "" {
		return record.ImageURL
	}
	if record.FrontImageID != "" {
		return ImageBaseURL + record.FrontImageID
	}
	return domain.PlaceholderImageURL
}

// extractNutriments reads the per-100g value of each nutriment, falling back
// to the bare key
func extractNutriments(record domain.ProviderRecord) domain.Nutriments {
	return domain.Nutriments{
		Energy:       findNutriment(record, NutrimentEnergy),
		Carbs:        findNutriment(record, NutrimentCarbohydrate),
		Sugars:       findNutriment(record, NutrimentSugars),
		Fat:          findNutriment(record, NutrimentFat),
		SaturatedFat: findNutriment(record, NutrimentSaturatedFat),
		Protein:      findNutriment(record, NutrimentProteins),
		Fiber:        findNutriment(record, NutrimentFiber),
		Salt:         findNutriment(record, NutrimentSalt),
	}
}

// findNutriment returns nil when neither key is present
func findNutriment(record domain.ProviderRecord, key string) *float64 {
	if v, ok := record.Nutriment(key + "_100g"); ok {
		return &v
	}
	if v, ok := record.Nutriment(key); ok {
		return &v
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
