package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sweetshop/internal/model"
)

// SweetFilter narrows a search. Zero values are ignored; price bounds are inclusive.
type SweetFilter struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// SweetRepository defines sweet persistence operations.
type SweetRepository interface {
	Create(ctx context.Context, sweet *model.Sweet) error
	List(ctx context.Context) ([]model.Sweet, error)
	Search(ctx context.Context, filter SweetFilter) ([]model.Sweet, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sweet, error)
	// Update loads the sweet under a row lock, lets apply mutate it and saves the result.
	Update(ctx context.Context, id uuid.UUID, apply func(*model.Sweet) error) (*model.Sweet, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DecrementStock removes qty units only when at least qty are in stock.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (*model.Sweet, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) (*model.Sweet, error)
}

type sweetRepository struct {
	db *gorm.DB
}

// NewSweetRepository creates a new sweet repository.
func NewSweetRepository(db *gorm.DB) SweetRepository {
	return &sweetRepository{db: db}
}

// Create creates a new sweet.
func (r *sweetRepository) Create(ctx context.Context, sweet *model.Sweet) error {
	return translate(r.db.WithContext(ctx).Create(sweet).Error)
}

// List returns every sweet ordered by name.
func (r *sweetRepository) List(ctx context.Context) ([]model.Sweet, error) {
	sweets := []model.Sweet{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&sweets).Error; err != nil {
		return nil, translate(err)
	}
	return sweets, nil
}

// Search matches name and category as case-insensitive substrings and applies price bounds.
func (r *sweetRepository) Search(ctx context.Context, filter SweetFilter) ([]model.Sweet, error) {
	q := r.db.WithContext(ctx).Model(&model.Sweet{})
	if filter.Name != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", containsPattern(filter.Name))
	}
	if filter.Category != "" {
		q = q.Where("LOWER(category) LIKE ? ESCAPE '!'", containsPattern(filter.Category))
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	sweets := []model.Sweet{}
	if err := q.Order("name ASC").Find(&sweets).Error; err != nil {
		return nil, translate(err)
	}
	return sweets, nil
}

// FindByID finds a sweet by ID.
func (r *sweetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Sweet, error) {
	var sweet model.Sweet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sweet).Error; err != nil {
		return nil, translate(err)
	}
	return &sweet, nil
}

// Update applies a partial change inside a transaction. Validation runs in the model's BeforeSave hook.
func (r *sweetRepository) Update(ctx context.Context, id uuid.UUID, apply func(*model.Sweet) error) (*model.Sweet, error) {
	var sweet model.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&sweet).Error; err != nil {
			return err
		}
		if err := apply(&sweet); err != nil {
			return err
		}
		return tx.Save(&sweet).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &sweet, nil
}

// Delete removes a sweet.
func (r *sweetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Sweet{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock is a single conditional update; concurrent purchases can never oversell.
func (r *sweetRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (*model.Sweet, error) {
	return r.adjustStock(ctx, id, ErrStockTooLow, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&model.Sweet{}).
			Where("id = ? AND quantity >= ?", id, qty).
			UpdateColumns(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", qty),
				"updated_at": time.Now(),
			})
	})
}

// IncrementStock adds qty units unless the total would pass MaxStock.
func (r *sweetRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) (*model.Sweet, error) {
	return r.adjustStock(ctx, id, ErrStockOverflow, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&model.Sweet{}).
			Where("id = ? AND quantity <= ?", id, MaxStock-qty).
			UpdateColumns(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", qty),
				"updated_at": time.Now(),
			})
	})
}

// adjustStock runs a conditional update and reports conflict when the row exists
// but the condition rejected it.
func (r *sweetRepository) adjustStock(ctx context.Context, id uuid.UUID, conflict error, update func(tx *gorm.DB) *gorm.DB) (*model.Sweet, error) {
	var sweet model.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := update(tx)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Sweet{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return conflict
		}
		return tx.Where("id = ?", id).First(&sweet).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &sweet, nil
}

// containsPattern builds a lowercase LIKE pattern with wildcards in the input escaped.
func containsPattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
	return "%" + s + "%"
}
