package handlers_test

import (
	"context"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, originalURL string) (*shortener.ShortURL, error) {
	args := m.Called(ctx, originalURL)
	shortURL, _ := args.Get(0).(*shortener.ShortURL)

	return shortURL, args.Error(1)
}

func (m *mockService) Resolve(ctx context.Context, code shortener.Code) (string, error) {
	args := m.Called(ctx, code)

	return args.String(0), args.Error(1)
}

func (m *mockService) Get(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	args := m.Called(ctx, code)
	shortURL, _ := args.Get(0).(*shortener.ShortURL)

	return shortURL, args.Error(1)
}

func (m *mockService) ListAll(ctx context.Context) ([]*shortener.ShortURL, error) {
	args := m.Called(ctx)
	urls, _ := args.Get(0).([]*shortener.ShortURL)

	return urls, args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, code shortener.Code) error {
	return m.Called(ctx, code).Error(0)
}
