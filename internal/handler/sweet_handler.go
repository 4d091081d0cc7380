package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "sweetshop/internal/errors"
	"sweetshop/internal/model"
	"sweetshop/internal/repository"
	"sweetshop/internal/service"
)

// SweetHandler handles sweet catalogue and stock endpoints.
type SweetHandler struct {
	sweetService service.SweetService
}

// NewSweetHandler creates a new sweet handler.
func NewSweetHandler(sweetService service.SweetService) *SweetHandler {
	return &SweetHandler{sweetService: sweetService}
}

// CreateSweetRequest represents a new catalogue entry.
type CreateSweetRequest struct {
	Name        string   `json:"name" validate:"required" msg:"Name is required"`
	Category    string   `json:"category" validate:"required" msg:"Category is required"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price" validate:"required,min=0" msg:"Price must be a positive number"`
	Quantity    *int     `json:"quantity" validate:"required,min=0" msg:"Quantity must be a non-negative integer"`
}

// UpdateSweetRequest is a partial update; omitted fields keep their value.
type UpdateSweetRequest struct {
	Name        *string  `json:"name,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,min=0" msg:"Price must be a positive number"`
	Quantity    *int     `json:"quantity,omitempty" validate:"omitempty,min=0" msg:"Quantity must be a non-negative integer"`
}

// StockRequest is the body of purchase and restock.
type StockRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=1" msg:"Quantity must be at least 1"`
}

// SweetResponse documents a single sweet payload.
type SweetResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    model.Sweet `json:"data"`
	Message string      `json:"message,omitempty"`
}

// SweetListResponse documents a list payload.
type SweetListResponse struct {
	Success bool          `json:"success" example:"true"`
	Data    []model.Sweet `json:"data"`
}

// Create godoc
// @Summary Add a sweet to the catalogue
// @Tags sweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSweetRequest true "Sweet data"
// @Success 201 {object} SweetResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /sweets [post]
func (h *SweetHandler) Create(c echo.Context) error {
	var req CreateSweetRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)

	if err := c.Validate(&req); err != nil {
		return err
	}

	sweet, err := h.sweetService.Create(c.Request().Context(), service.CreateSweetInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       toPrice(*req.Price),
		Quantity:    *req.Quantity,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, sweet, "")
}

// List godoc
// @Summary List all sweets
// @Tags sweets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SweetListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sweets [get]
func (h *SweetHandler) List(c echo.Context) error {
	sweets, err := h.sweetService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, sweets, "")
}

// Search godoc
// @Summary Search sweets
// @Description Name and category match case-insensitive substrings; price bounds are inclusive.
// @Tags sweets
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains"
// @Param category query string false "Category contains"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Success 200 {object} SweetListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sweets/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	filter := repository.SweetFilter{
		Name:     strings.TrimSpace(c.QueryParam("name")),
		Category: strings.TrimSpace(c.QueryParam("category")),
	}

	verr := apperrors.NewValidationError()
	filter.MinPrice = parsePriceParam(c, "minPrice", verr)
	filter.MaxPrice = parsePriceParam(c, "maxPrice", verr)
	if err := verr.OrNil(); err != nil {
		return err
	}

	sweets, err := h.sweetService.Search(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, sweets, "")
}

// Update godoc
// @Summary Update a sweet
// @Tags sweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sweet ID"
// @Param request body UpdateSweetRequest true "Fields to change"
// @Success 200 {object} SweetResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sweets/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}

	var req UpdateSweetRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := service.UpdateSweetInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Quantity:    req.Quantity,
	}
	if req.Price != nil {
		price := toPrice(*req.Price)
		in.Price = &price
	}

	sweet, err := h.sweetService.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, sweet, "")
}

// Delete godoc
// @Summary Delete a sweet
// @Tags sweets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sweet ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sweets/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}
	if err := h.sweetService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Sweet deleted successfully")
}

// Purchase godoc
// @Summary Purchase a quantity of a sweet
// @Description Fails without changing stock when the quantity exceeds what is available.
// @Tags sweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sweet ID"
// @Param request body StockRequest true "Quantity to buy"
// @Success 200 {object} SweetResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	id, qty, err := h.stockRequest(c)
	if err != nil {
		return err
	}
	sweet, err := h.sweetService.Purchase(c.Request().Context(), id, qty)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, sweet, "Purchase successful")
}

// Restock godoc
// @Summary Restock a sweet
// @Tags sweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sweet ID"
// @Param request body StockRequest true "Quantity to add"
// @Success 200 {object} SweetResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	id, qty, err := h.stockRequest(c)
	if err != nil {
		return err
	}
	sweet, err := h.sweetService.Restock(c.Request().Context(), id, qty)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, sweet, "Restock successful")
}

func (h *SweetHandler) stockRequest(c echo.Context) (uuid.UUID, int, error) {
	id, err := sweetID(c)
	if err != nil {
		return uuid.Nil, 0, err
	}
	var req StockRequest
	if err := c.Bind(&req); err != nil {
		return uuid.Nil, 0, invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return uuid.Nil, 0, err
	}
	return id, *req.Quantity, nil
}

func sweetID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidSweetID
	}
	return id, nil
}

func toPrice(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

func parsePriceParam(c echo.Context, name string, verr *apperrors.ValidationError) *decimal.Decimal {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(name, name+" must be a number")
		return nil
	}
	return &d
}
