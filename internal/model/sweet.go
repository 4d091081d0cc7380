package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "sweetshop/internal/errors"
)

func init() {
	// prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Sweet is an inventory item.
type Sweet struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string          `json:"name" gorm:"size:255;not null;index"`
	Category    string          `json:"category" gorm:"size:100;not null;index"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null;check:chk_sweets_price,price >= 0"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0;check:chk_sweets_quantity,quantity >= 0"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Normalize trims the text fields.
func (s *Sweet) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(s.Category)
	s.Description = strings.TrimSpace(s.Description)
}

// Validate checks the schema rules of a sweet: required text, non-negative price and stock.
func (s *Sweet) Validate() error {
	verr := apperrors.NewValidationError()
	if s.Name == "" {
		verr.Add("name", "Name is required")
	}
	if s.Category == "" {
		verr.Add("category", "Category is required")
	}
	if s.Price.IsNegative() {
		verr.Add("price", "Price must be a positive number")
	}
	if s.Quantity < 0 {
		verr.Add("quantity", "Quantity must be a non-negative integer")
	}
	return verr.OrNil()
}

// BeforeCreate sets UUID before creating the record.
func (s *Sweet) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// BeforeSave normalizes and validates the record.
func (s *Sweet) BeforeSave(tx *gorm.DB) error {
	s.Normalize()
	return s.Validate()
}
