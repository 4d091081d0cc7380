package tui

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sweetshop/internal/client"
	"sweetshop/internal/model"
)

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Register(ctx context.Context, name, email, password string) (*client.AuthResult, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuthResult), args.Error(1)
}

func (m *MockAuth) Login(ctx context.Context, email, password string) (*client.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuthResult), args.Error(1)
}

func (m *MockAuth) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAuth) CurrentUser() *model.UserSummary {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.UserSummary)
}

func (m *MockAuth) IsAuthenticated() bool {
	return m.Called().Bool(0)
}

func (m *MockAuth) IsAdmin() bool {
	return m.Called().Bool(0)
}

type MockSweets struct {
	mock.Mock
}

func (m *MockSweets) GetAll(ctx context.Context) ([]model.Sweet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sweet), args.Error(1)
}

func (m *MockSweets) Search(ctx context.Context, p client.SearchParams) ([]model.Sweet, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sweet), args.Error(1)
}

func (m *MockSweets) Create(ctx context.Context, in client.SweetInput) (*model.Sweet, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sweet), args.Error(1)
}

func (m *MockSweets) Update(ctx context.Context, id string, in client.SweetUpdate) (*model.Sweet, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sweet), args.Error(1)
}

func (m *MockSweets) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSweets) Purchase(ctx context.Context, id string, quantity int) (*model.Sweet, string, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*model.Sweet), args.String(1), args.Error(2)
}

func (m *MockSweets) Restock(ctx context.Context, id string, quantity int) (*model.Sweet, string, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*model.Sweet), args.String(1), args.Error(2)
}
