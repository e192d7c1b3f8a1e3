package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/api/v1/shorten",
		Summary:       "Create short URL",
		Description:   "Creates a new short code for the given URL. Every call yields a fresh code.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "list-short-urls",
		Method:      http.MethodGet,
		Path:        "/api/v1/shorten",
		Summary:     "List short URLs",
		Description: "Lists every live mapping, oldest first.",
		Tags:        []string{"URLs"},
	}, urlHandler.ListShortURLs)

	huma.Register(api, huma.Operation{
		OperationID: "get-short-url",
		Method:      http.MethodGet,
		Path:        "/api/v1/{code}",
		Summary:     "Get short URL details",
		Tags:        []string{"URLs"},
	}, urlHandler.GetShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "delete-short-url",
		Method:      http.MethodDelete,
		Path:        "/api/v1/{code}",
		Summary:     "Delete short URL",
		Description: "Permanently deletes the mapping. The code is never reissued.",
		Tags:        []string{"URLs"},
	}, urlHandler.DeleteShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"URLs"},
	}, urlHandler.RedirectToURL)
}
