package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sweetshop/internal/cache"
	apperrors "sweetshop/internal/errors"
	"sweetshop/internal/model"
	"sweetshop/internal/repository"
)

const (
	sweetsListKey       = "sweets:all"
	sweetsGenerationKey = "sweets:generation"
)

// listCache is the part of the cache the catalogue listing uses.
type listCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration)
	GetInt64(ctx context.Context, key string) int64
	Incr(ctx context.Context, key string) error
}

// CreateSweetInput holds a new sweet.
type CreateSweetInput struct {
	Name        string
	Category    string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// UpdateSweetInput is a partial change. Nil fields are left untouched.
type UpdateSweetInput struct {
	Name        *string
	Category    *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
}

// SweetService handles catalogue and stock operations.
type SweetService interface {
	Create(ctx context.Context, in CreateSweetInput) (*model.Sweet, error)
	List(ctx context.Context) ([]model.Sweet, error)
	Search(ctx context.Context, filter repository.SweetFilter) ([]model.Sweet, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateSweetInput) (*model.Sweet, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Purchase(ctx context.Context, id uuid.UUID, quantity int) (*model.Sweet, error)
	Restock(ctx context.Context, id uuid.UUID, quantity int) (*model.Sweet, error)
}

type sweetService struct {
	repo     repository.SweetRepository
	cache    listCache
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewSweetService creates a new sweet service. A nil cache disables list caching.
func NewSweetService(repo repository.SweetRepository, cache *cache.Client, cacheTTL time.Duration, log zerolog.Logger) SweetService {
	return newSweetService(repo, cache, cacheTTL, log)
}

func newSweetService(repo repository.SweetRepository, cache listCache, cacheTTL time.Duration, log zerolog.Logger) *sweetService {
	return &sweetService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log.With().Str("component", "sweets").Logger(),
	}
}

func (s *sweetService) Create(ctx context.Context, in CreateSweetInput) (*model.Sweet, error) {
	sweet := &model.Sweet{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
	}
	if err := s.repo.Create(ctx, sweet); err != nil {
		return nil, mapSweetError(err)
	}
	s.invalidate(ctx)
	s.log.Info().Str("sweet_id", sweet.ID.String()).Str("name", sweet.Name).Msg("sweet created")
	return sweet, nil
}

// List serves from the cache when possible. Cached lists are keyed by the
// catalogue generation, so a list read before a write is stored under a
// generation that later reads never consult.
func (s *sweetService) List(ctx context.Context) ([]model.Sweet, error) {
	key := listKey(s.cache.GetInt64(ctx, sweetsGenerationKey))

	var cached []model.Sweet
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	sweets, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	s.cache.SetJSON(ctx, key, sweets, s.cacheTTL)
	return sweets, nil
}

func (s *sweetService) Search(ctx context.Context, filter repository.SweetFilter) ([]model.Sweet, error) {
	sweets, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search sweets: %w", err)
	}
	return sweets, nil
}

func (s *sweetService) Update(ctx context.Context, id uuid.UUID, in UpdateSweetInput) (*model.Sweet, error) {
	sweet, err := s.repo.Update(ctx, id, func(sw *model.Sweet) error {
		if in.Name != nil {
			sw.Name = *in.Name
		}
		if in.Category != nil {
			sw.Category = *in.Category
		}
		if in.Description != nil {
			sw.Description = *in.Description
		}
		if in.Price != nil {
			sw.Price = *in.Price
		}
		if in.Quantity != nil {
			sw.Quantity = *in.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, mapSweetError(err)
	}
	s.invalidate(ctx)
	return sweet, nil
}

func (s *sweetService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapSweetError(err)
	}
	s.invalidate(ctx)
	s.log.Info().Str("sweet_id", id.String()).Msg("sweet deleted")
	return nil
}

// Purchase removes quantity units atomically; it never partially fills.
func (s *sweetService) Purchase(ctx context.Context, id uuid.UUID, quantity int) (*model.Sweet, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	sweet, err := s.repo.DecrementStock(ctx, id, quantity)
	if err != nil {
		return nil, mapSweetError(err)
	}
	s.invalidate(ctx)
	s.log.Info().Str("sweet_id", id.String()).Int("quantity", quantity).Int("remaining", sweet.Quantity).Msg("sweet purchased")
	return sweet, nil
}

func (s *sweetService) Restock(ctx context.Context, id uuid.UUID, quantity int) (*model.Sweet, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	sweet, err := s.repo.IncrementStock(ctx, id, quantity)
	if err != nil {
		return nil, mapSweetError(err)
	}
	s.invalidate(ctx)
	s.log.Info().Str("sweet_id", id.String()).Int("quantity", quantity).Int("stock", sweet.Quantity).Msg("sweet restocked")
	return sweet, nil
}

// invalidate moves the catalogue to a new generation; older list entries expire unread.
func (s *sweetService) invalidate(ctx context.Context) {
	_ = s.cache.Incr(ctx, sweetsGenerationKey)
}

func listKey(generation int64) string {
	return fmt.Sprintf("%s:%d", sweetsListKey, generation)
}

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "quantity",
			Message: "Quantity must be at least 1",
		})
	}
	return nil
}

// mapSweetError turns repository errors into domain errors.
func mapSweetError(err error) error {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrSweetNotFound
	case errors.Is(err, repository.ErrStockTooLow):
		return apperrors.ErrInsufficientStock
	case errors.Is(err, repository.ErrStockOverflow):
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "quantity",
			Message: "Restock would exceed the maximum stock level",
		})
	case errors.Is(err, repository.ErrConstraint):
		return apperrors.NewValidationError(apperrors.FieldError{Message: "Sweet violates a storage constraint"})
	}
	return err
}
