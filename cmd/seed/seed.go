package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sweetshop/internal/auth"
	"sweetshop/internal/model"
	"sweetshop/internal/repository"
)

//go:embed sweets.json
var defaultCatalogue []byte

// SeedSweetData is one catalogue entry of the seed file.
type SeedSweetData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
}

// loadCatalogue reads the catalogue from url, then file, falling back to the embedded list.
func loadCatalogue(url, file string) ([]SeedSweetData, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case url != "":
		raw, err = fetchCatalogue(url)
	case file != "":
		raw, err = os.ReadFile(file)
	default:
		raw = defaultCatalogue
	}
	if err != nil {
		return nil, err
	}

	var items []SeedSweetData
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return items, nil
}

// fetchCatalogue fetches catalogue data from an external URL.
func fetchCatalogue(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalogue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalogue URL returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// toSweets converts seed rows, skipping the ones with a bad id or price.
func toSweets(items []SeedSweetData, log zerolog.Logger) []model.Sweet {
	sweets := make([]model.Sweet, 0, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			log.Warn().Str("id", item.ID).Msg("skipping sweet with invalid UUID")
			continue
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			log.Warn().Str("id", item.ID).Str("price", item.Price).Msg("skipping sweet with invalid price")
			continue
		}
		sweets = append(sweets, model.Sweet{
			ID:          id,
			Name:        item.Name,
			Category:    item.Category,
			Description: item.Description,
			Price:       price,
			Quantity:    item.Quantity,
		})
	}
	return sweets
}

// seedSweets creates new sweets or overwrites existing ones with the same id.
func seedSweets(ctx context.Context, repo repository.SweetRepository, sweets []model.Sweet) (seeded int, updated int, err error) {
	for _, sweet := range sweets {
		sweet := sweet
		_, err := repo.Update(ctx, sweet.ID, func(existing *model.Sweet) error {
			existing.Name = sweet.Name
			existing.Category = sweet.Category
			existing.Description = sweet.Description
			existing.Price = sweet.Price
			existing.Quantity = sweet.Quantity
			return nil
		})
		switch {
		case err == nil:
			updated++
		case errors.Is(err, repository.ErrNotFound):
			if err := repo.Create(ctx, &sweet); err != nil {
				return seeded, updated, fmt.Errorf("error creating sweet %s: %w", sweet.ID, err)
			}
			seeded++
		default:
			return seeded, updated, fmt.Errorf("error updating sweet %s: %w", sweet.ID, err)
		}
	}
	return seeded, updated, nil
}

// ensureAdmin creates the bootstrap admin unless a user with that email exists.
func ensureAdmin(ctx context.Context, users repository.UserRepository, hasher *auth.PasswordHasher, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("error checking admin %s: %w", email, err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return false, err
	}
	admin := &model.User{Name: name, Email: email, PasswordHash: hash, Role: model.RoleAdmin}
	if err := users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("error creating admin %s: %w", email, err)
	}
	return true, nil
}
