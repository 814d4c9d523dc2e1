package usecase

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/foodtracker/backend/internal/domain"
	"github.com/foodtracker/backend/internal/infrastructure/metrics"
)

// MaxAlternatives caps the number of alternatives returned for a product
const MaxAlternatives = 6

// ProductSearcher runs a product search that never fails
type ProductSearcher interface {
	Search(ctx context.Context, term string, page int) domain.SearchResult
}

// AlternativesService finds products in the same category with better or
// equal Nutri-Score or Eco-Score grades
type AlternativesService struct {
	searcher ProductSearcher
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewAlternativesService creates a new alternatives service
func NewAlternativesService(searcher ProductSearcher, logger *zap.Logger, m *metrics.Metrics) *AlternativesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlternativesService{
		searcher: searcher,
		logger:   logger.Named("alternatives"),
		metrics:  m,
	}
}

// FindAlternatives searches the product's main category and returns at most
// MaxAlternatives candidates ranked by Nutri-Score. Search failures yield an
// empty result.
func (s *AlternativesService) FindAlternatives(ctx context.Context, product domain.Product) []domain.Product {
	term := mainCategory(product.Categories)
	if term == "" {
		return []domain.Product{}
	}

	result := s.searcher.Search(ctx, term, 1)
	alternatives := RankAlternatives(product, result.Products)

	s.logger.Debug("ranked alternatives",
		zap.String("code", product.Code),
		zap.String("category", term),
		zap.Int("candidates", len(result.Products)),
		zap.Int("alternatives", len(alternatives)))
	s.metrics.RecordAlternatives(len(alternatives))

	return alternatives
}

// RankAlternatives filters candidates against the original product and
// orders the survivors.
//
// A candidate qualifies when it is a different product, carries both grades,
// and its Nutri-Score or its Eco-Score ranks better than or equal to the
// original's. Survivors are sorted by Nutri-Score alone; Eco-Score only gates
// inclusion.
func RankAlternatives(original domain.Product, candidates []domain.Product) []domain.Product {
	originalNutri := original.NutriScore.Rank()
	originalEco := original.EcoScore.Rank()

	alternatives := make([]domain.Product, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Code == original.Code {
			continue
		}
		if candidate.NutriScore.IsZero() || candidate.EcoScore.IsZero() {
			continue
		}

		nutriBetter := candidate.NutriScore.Rank() <= originalNutri
		ecoBetter := candidate.EcoScore.Rank() <= originalEco
		if nutriBetter || ecoBetter {
			alternatives = append(alternatives, candidate)
		}
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].NutriScore.Rank() < alternatives[j].NutriScore.Rank()
	})

	if len(alternatives) > MaxAlternatives {
		alternatives = alternatives[:MaxAlternatives]
	}
	return alternatives
}

// mainCategory returns the first comma-separated category, trimmed
func mainCategory(categories string) string {
	first, _, _ := strings.Cut(categories, ",")
	return strings.TrimSpace(first)
}
