package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sweetshop/internal/errors"
)

func TestSweet_Validate(t *testing.T) {
	tests := []struct {
		name       string
		sweet      Sweet
		wantFields []string
	}{
		{
			name:  "valid",
			sweet: Sweet{Name: "Chocolate Bar", Category: "Chocolate", Price: decimal.RequireFromString("2.50"), Quantity: 100},
		},
		{
			name:  "zero price and stock are allowed",
			sweet: Sweet{Name: "Sample", Category: "Free", Price: decimal.Zero, Quantity: 0},
		},
		{
			name:       "missing required fields",
			sweet:      Sweet{},
			wantFields: []string{"name", "category"},
		},
		{
			name:       "negative price",
			sweet:      Sweet{Name: "Candy", Category: "Hard Candy", Price: decimal.NewFromInt(-5), Quantity: 50},
			wantFields: []string{"price"},
		},
		{
			name:       "negative quantity",
			sweet:      Sweet{Name: "Gummy Bears", Category: "Gummies", Price: decimal.RequireFromString("3.50"), Quantity: -10},
			wantFields: []string{"quantity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sweet.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			var fields []string
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestSweet_PriceMarshalsAsNumber(t *testing.T) {
	payload, err := json.Marshal(Sweet{Name: "Toffee", Price: decimal.RequireFromString("2.5")})
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"price":2.5`)
}

func TestUser_NormalizeAndValidate(t *testing.T) {
	u := &User{Name: "  John Doe ", Email: " John@Example.COM ", PasswordHash: "hash"}
	u.Normalize()

	assert.Equal(t, "John Doe", u.Name)
	assert.Equal(t, "john@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.NoError(t, u.Validate())

	bad := &User{Email: "not-an-email", Role: "root"}
	var verr *apperrors.ValidationError
	require.True(t, errors.As(bad.Validate(), &verr))
	assert.Len(t, verr.Fields, 4)
}

func TestUser_PasswordHiddenFromJSON(t *testing.T) {
	payload, err := json.Marshal(User{Name: "a", Email: "a@b.c", PasswordHash: "secret-hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "secret-hash")
}
