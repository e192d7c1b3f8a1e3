package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// Shortener is the service surface the HTTP layer depends on.
type Shortener interface {
	Create(ctx context.Context, originalURL string) (*shortener.ShortURL, error)
	Resolve(ctx context.Context, code shortener.Code) (string, error)
	Get(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error)
	ListAll(ctx context.Context) ([]*shortener.ShortURL, error)
	Delete(ctx context.Context, code shortener.Code) error
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service Shortener
	baseURL string
	logger  *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(service Shortener, baseURL string, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger.With(zap.String("component", "url_handler")),
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	shortURL, err := h.service.Create(ctx, req.Body.LongURL)
	if err != nil {
		return nil, h.toHTTPError("create", "", err)
	}

	h.logger.Info("short url created",
		zap.String("code", string(shortURL.Code)),
		zap.String("long_url", shortURL.OriginalURL),
	)

	body := h.toBody(shortURL)

	return &CreateShortURLResponse{Location: body.ShortURL, Body: body}, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	code, err := parseCode(req.Code)
	if err != nil {
		return nil, err
	}

	originalURL, err := h.service.Resolve(ctx, code)
	if err != nil {
		return nil, h.toHTTPError("resolve", code, err)
	}

	return &RedirectResponse{Status: redirectStatus, Location: originalURL}, nil
}

func (h *URLHandler) GetShortURL(ctx context.Context, req *CodeRequest) (*ShortURLResponse, error) {
	code, err := parseCode(req.Code)
	if err != nil {
		return nil, err
	}

	shortURL, err := h.service.Get(ctx, code)
	if err != nil {
		return nil, h.toHTTPError("get", code, err)
	}

	return &ShortURLResponse{Body: h.toBody(shortURL)}, nil
}

func (h *URLHandler) ListShortURLs(ctx context.Context, _ *struct{}) (*ListShortURLsResponse, error) {
	urls, err := h.service.ListAll(ctx)
	if err != nil {
		return nil, h.toHTTPError("list", "", err)
	}

	resp := &ListShortURLsResponse{Body: make([]ShortURLBody, 0, len(urls))}
	for _, shortURL := range urls {
		resp.Body = append(resp.Body, h.toBody(shortURL))
	}

	return resp, nil
}

func (h *URLHandler) DeleteShortURL(ctx context.Context, req *CodeRequest) (*DeleteShortURLResponse, error) {
	code, err := parseCode(req.Code)
	if err != nil {
		return nil, err
	}

	if err := h.service.Delete(ctx, code); err != nil {
		return nil, h.toHTTPError("delete", code, err)
	}

	h.logger.Info("short url deleted", zap.String("code", string(code)))

	resp := &DeleteShortURLResponse{}
	resp.Body.Message = "short url deleted successfully"

	return resp, nil
}

func (h *URLHandler) toBody(shortURL *shortener.ShortURL) ShortURLBody {
	return ShortURLBody{
		ShortCode: string(shortURL.Code),
		ShortURL:  fmt.Sprintf("%s/%s", h.baseURL, shortURL.Code),
		LongURL:   shortURL.OriginalURL,
		CreatedAt: shortURL.CreatedAt,
	}
}

func parseCode(raw string) (shortener.Code, error) {
	if !shortener.ValidCode(raw) {
		return "", huma.Error400BadRequest("invalid short code")
	}

	return shortener.Code(raw), nil
}

// toHTTPError maps service errors onto HTTP statuses. Unexpected errors are logged here,
// expected ones are left to the access log.
func (h *URLHandler) toHTTPError(op string, code shortener.Code, err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short url not found")
	case errors.Is(err, shortener.ErrUnavailable):
		h.logger.Error("store unavailable", zap.String("op", op), zap.String("code", string(code)), zap.Error(err))

		return huma.Error503ServiceUnavailable("storage temporarily unavailable")
	case errors.Is(err, shortener.ErrExhaustedRetries):
		return huma.Error500InternalServerError("failed to allocate a short code")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.String("code", string(code)), zap.Error(err))

		return huma.Error500InternalServerError("internal error")
	}
}
