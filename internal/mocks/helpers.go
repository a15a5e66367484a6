package mocks

import (
	"testing"

	"go.uber.org/mock/gomock"
)

//go:generate mockgen -source=../db/querier.go -destination=mock_querier.go -package=mocks
//go:generate mockgen -source=../client/payment_sync/interface.go -destination=mock_provider.go -package=mocks

// NewMockQuerierForTest creates a new mock Querier for testing
func NewMockQuerierForTest(t *testing.T) *MockQuerier {
	ctrl := gomock.NewController(t)
	return NewMockQuerier(ctrl)
}

// NewMockProviderForTest creates a new mock Provider for testing
func NewMockProviderForTest(t *testing.T) *MockProvider {
	ctrl := gomock.NewController(t)
	return NewMockProvider(ctrl)
}
