package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "sweetshop/internal/errors"
	"sweetshop/internal/model"
	"sweetshop/internal/repository"
)

func newTestSweetService(repo *MockSweetRepository) SweetService {
	return NewSweetService(repo, nil, 0, zerolog.Nop())
}

func chocolateBar(qty int) *model.Sweet {
	return &model.Sweet{
		ID:       uuid.New(),
		Name:     "Chocolate Bar",
		Category: "Chocolate",
		Price:    decimal.RequireFromString("2.50"),
		Quantity: qty,
	}
}

func TestSweetService_Create(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Sweet")).Return(nil).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Sweet")).
		Return(apperrors.NewValidationError(apperrors.FieldError{Field: "price", Message: "Price must be a positive number"})).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Sweet")).Return(repository.ErrConstraint).Once()

	service := newTestSweetService(mockRepo)
	in := CreateSweetInput{Name: "Chocolate Bar", Category: "Chocolate", Price: decimal.RequireFromString("2.50"), Quantity: 100}

	sweet, err := service.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Chocolate Bar", sweet.Name)
	assert.Equal(t, 100, sweet.Quantity)

	var verr *apperrors.ValidationError
	_, err = service.Create(context.Background(), in)
	assert.True(t, errors.As(err, &verr))

	_, err = service.Create(context.Background(), in)
	assert.True(t, errors.As(err, &verr))

	mockRepo.AssertExpectations(t)
}

func TestSweetService_ListAndSearch(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	all := []model.Sweet{*chocolateBar(100)}
	min := decimal.RequireFromString("1")
	filter := repository.SweetFilter{Name: "choc", MinPrice: &min}

	mockRepo.On("List", mock.Anything).Return(all, nil)
	mockRepo.On("Search", mock.Anything, filter).Return(all, nil)

	service := newTestSweetService(mockRepo)

	got, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, all, got)

	got, err = service.Search(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	mockRepo.AssertExpectations(t)
}

func TestSweetService_ListCache(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSweetRepository)
	svc := newSweetService(mockRepo, newMemoryCache(), time.Minute, zerolog.Nop())

	bar := chocolateBar(100)
	mockRepo.On("List", mock.Anything).Return([]model.Sweet{*bar}, nil).Once()
	mockRepo.On("IncrementStock", mock.Anything, bar.ID, 50).Return(chocolateBar(150), nil)

	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, got[0].Quantity)

	// served from cache
	got, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, got[0].Quantity)

	_, err = svc.Restock(ctx, bar.ID, 50)
	require.NoError(t, err)

	mockRepo.On("List", mock.Anything).Return([]model.Sweet{*chocolateBar(150)}, nil).Once()
	got, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 150, got[0].Quantity)

	mockRepo.AssertNumberOfCalls(t, "List", 2)
}

func TestSweetService_StaleListIsNotServedAfterWrite(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSweetRepository)
	svc := newSweetService(mockRepo, newMemoryCache(), time.Minute, zerolog.Nop())

	// the write commits and invalidates after the read has already seen old stock
	mockRepo.On("List", mock.Anything).Return([]model.Sweet{*chocolateBar(100)}, nil).
		Run(func(mock.Arguments) { svc.invalidate(ctx) }).Once()
	mockRepo.On("List", mock.Anything).Return([]model.Sweet{*chocolateBar(97)}, nil).Once()

	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, got[0].Quantity)

	got, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 97, got[0].Quantity)

	got, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 97, got[0].Quantity)
	mockRepo.AssertNumberOfCalls(t, "List", 2)
}

func TestSweetService_ListFailure(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	mockRepo.On("List", mock.Anything).Return(nil, errors.New("db down"))

	_, err := newTestSweetService(mockRepo).List(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 500, apperrors.MapErrorToHTTP(err).StatusCode)
}

func TestSweetService_Update(t *testing.T) {
	stored := chocolateBar(100)
	missing := uuid.New()
	newPrice := decimal.RequireFromString("3.25")
	empty := ""
	negative := -1

	tests := []struct {
		name          string
		id            uuid.UUID
		input         UpdateSweetInput
		expectedError error
		check         func(t *testing.T, s *model.Sweet)
	}{
		{
			name:  "partial update keeps other fields",
			id:    stored.ID,
			input: UpdateSweetInput{Price: &newPrice},
			check: func(t *testing.T, s *model.Sweet) {
				assert.True(t, newPrice.Equal(s.Price))
				assert.Equal(t, "Chocolate Bar", s.Name)
				assert.Equal(t, 100, s.Quantity)
			},
		},
		{
			name:  "empty name is rejected",
			id:    stored.ID,
			input: UpdateSweetInput{Name: &empty},
		},
		{
			name:  "negative quantity is rejected",
			id:    stored.ID,
			input: UpdateSweetInput{Quantity: &negative},
		},
		{
			name:          "missing sweet",
			id:            missing,
			input:         UpdateSweetInput{Price: &newPrice},
			expectedError: apperrors.ErrSweetNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockSweetRepository)
			mockRepo.On("Update", mock.Anything, stored.ID).Return(stored, nil).Maybe()
			mockRepo.On("Update", mock.Anything, missing).Return(nil, repository.ErrNotFound).Maybe()

			got, err := newTestSweetService(mockRepo).Update(context.Background(), tt.id, tt.input)
			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			case tt.check != nil:
				require.NoError(t, err)
				tt.check(t, got)
			default:
				var verr *apperrors.ValidationError
				assert.True(t, errors.As(err, &verr))
			}
		})
	}
}

func TestSweetService_Delete(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	known, missing := uuid.New(), uuid.New()
	mockRepo.On("Delete", mock.Anything, known).Return(nil)
	mockRepo.On("Delete", mock.Anything, missing).Return(repository.ErrNotFound)

	service := newTestSweetService(mockRepo)
	assert.NoError(t, service.Delete(context.Background(), known))
	assert.ErrorIs(t, service.Delete(context.Background(), missing), apperrors.ErrSweetNotFound)
}

func TestSweetService_Purchase(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name          string
		quantity      int
		setupMock     func(*MockSweetRepository)
		expectedError error
		expectedStock int
	}{
		{
			name:     "enough stock",
			quantity: 3,
			setupMock: func(m *MockSweetRepository) {
				m.On("DecrementStock", mock.Anything, id, 3).Return(chocolateBar(97), nil)
			},
			expectedStock: 97,
		},
		{
			name:     "insufficient stock",
			quantity: 200,
			setupMock: func(m *MockSweetRepository) {
				m.On("DecrementStock", mock.Anything, id, 200).Return(nil, repository.ErrStockTooLow)
			},
			expectedError: apperrors.ErrInsufficientStock,
		},
		{
			name:     "missing sweet",
			quantity: 1,
			setupMock: func(m *MockSweetRepository) {
				m.On("DecrementStock", mock.Anything, id, 1).Return(nil, repository.ErrNotFound)
			},
			expectedError: apperrors.ErrSweetNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockSweetRepository)
			tt.setupMock(mockRepo)

			got, err := newTestSweetService(mockRepo).Purchase(context.Background(), id, tt.quantity)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedStock, got.Quantity)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestSweetService_RejectsNonPositiveQuantities(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := newTestSweetService(mockRepo)

	for _, q := range []int{0, -5} {
		var verr *apperrors.ValidationError
		_, err := service.Purchase(context.Background(), uuid.New(), q)
		assert.True(t, errors.As(err, &verr))
		_, err = service.Restock(context.Background(), uuid.New(), q)
		assert.True(t, errors.As(err, &verr))
	}
	mockRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweetService_Restock(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	id := uuid.New()
	mockRepo.On("IncrementStock", mock.Anything, id, 50).Return(chocolateBar(150), nil)
	mockRepo.On("IncrementStock", mock.Anything, mock.Anything, 5).Return(nil, repository.ErrNotFound)

	service := newTestSweetService(mockRepo)
	got, err := service.Restock(context.Background(), id, 50)
	require.NoError(t, err)
	assert.Equal(t, 150, got.Quantity)

	_, err = service.Restock(context.Background(), uuid.New(), 5)
	assert.ErrorIs(t, err, apperrors.ErrSweetNotFound)
}

func TestSweetService_RestockPastMaximum(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	id := uuid.New()
	mockRepo.On("IncrementStock", mock.Anything, id, repository.MaxStock).Return(nil, repository.ErrStockOverflow)

	_, err := newTestSweetService(mockRepo).Restock(context.Background(), id, repository.MaxStock)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "quantity", verr.Fields[0].Field)
	assert.Equal(t, "Restock would exceed the maximum stock level", verr.Fields[0].Message)
}
