package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"sweetshop/internal/model"
)

// SearchParams narrows a catalogue search. Empty strings and nil bounds are left out of the query.
type SearchParams struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

func (p SearchParams) values() url.Values {
	q := url.Values{}
	if p.Name != "" {
		q.Set("name", p.Name)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}
	return q
}

// SweetInput is the payload for creating a sweet.
type SweetInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description,omitempty"`
}

// SweetUpdate carries only the fields to change.
type SweetUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	Description *string  `json:"description,omitempty"`
}

type stockRequest struct {
	Quantity int `json:"quantity"`
}

// SweetService wraps the catalogue and inventory endpoints.
type SweetService struct {
	c *Client
}

// NewSweetService creates a SweetService on top of c.
func NewSweetService(c *Client) *SweetService {
	return &SweetService{c: c}
}

// GetAll lists the catalogue ordered by name.
func (s *SweetService) GetAll(ctx context.Context) ([]model.Sweet, error) {
	sweets := []model.Sweet{}
	if _, err := s.c.do(ctx, http.MethodGet, "/sweets", nil, nil, &sweets); err != nil {
		return nil, err
	}
	return sweets, nil
}

// Search lists sweets matching p.
func (s *SweetService) Search(ctx context.Context, p SearchParams) ([]model.Sweet, error) {
	sweets := []model.Sweet{}
	if _, err := s.c.do(ctx, http.MethodGet, "/sweets/search", p.values(), nil, &sweets); err != nil {
		return nil, err
	}
	return sweets, nil
}

// Create adds a sweet. Admin only.
func (s *SweetService) Create(ctx context.Context, in SweetInput) (*model.Sweet, error) {
	var sweet model.Sweet
	if _, err := s.c.do(ctx, http.MethodPost, "/sweets", nil, in, &sweet); err != nil {
		return nil, err
	}
	return &sweet, nil
}

// Update changes the given fields of a sweet. Admin only.
func (s *SweetService) Update(ctx context.Context, id string, in SweetUpdate) (*model.Sweet, error) {
	var sweet model.Sweet
	if _, err := s.c.do(ctx, http.MethodPut, "/sweets/"+url.PathEscape(id), nil, in, &sweet); err != nil {
		return nil, err
	}
	return &sweet, nil
}

// Delete removes a sweet. Admin only.
func (s *SweetService) Delete(ctx context.Context, id string) error {
	_, err := s.c.do(ctx, http.MethodDelete, "/sweets/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// Purchase takes quantity units out of stock and returns the updated sweet.
func (s *SweetService) Purchase(ctx context.Context, id string, quantity int) (*model.Sweet, string, error) {
	return s.adjust(ctx, id, "purchase", quantity)
}

// Restock adds quantity units to stock. Admin only.
func (s *SweetService) Restock(ctx context.Context, id string, quantity int) (*model.Sweet, string, error) {
	return s.adjust(ctx, id, "restock", quantity)
}

func (s *SweetService) adjust(ctx context.Context, id, action string, quantity int) (*model.Sweet, string, error) {
	var sweet model.Sweet
	msg, err := s.c.do(ctx, http.MethodPost, "/sweets/"+url.PathEscape(id)+"/"+action, nil, stockRequest{Quantity: quantity}, &sweet)
	if err != nil {
		return nil, "", err
	}
	return &sweet, msg, nil
}
