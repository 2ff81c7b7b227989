package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gourl/msid/internal/models"
	"github.com/gourl/msid/internal/services"
)

// MockIDService is a mock implementation of services.IDService.
type MockIDService struct {
	mock.Mock
}

func (m *MockIDService) Mint(ctx context.Context, req services.MintRequest) (*services.MintResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MintResponse), args.Error(1)
}

func (m *MockIDService) Inspect(ctx context.Context, req services.InspectRequest) (*services.InspectResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.InspectResponse), args.Error(1)
}

// MockProfileService is a mock implementation of services.ProfileService.
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Create(ctx context.Context, create models.ProfileCreate) (*models.Profile, error) {
	args := m.Called(ctx, create)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) Get(ctx context.Context, name string) (*models.Profile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockProfileService) List(ctx context.Context) ([]*models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}
