package handlers

import (
	"net/http"
	"time"
)

// ShortURLBody is the wire form of a mapping.
type ShortURLBody struct {
	ShortCode string    `doc:"The short code"            example:"aZ3kP9xQ"                           json:"short_code"`
	ShortURL  string    `doc:"The full short URL"        example:"http://localhost:8080/aZ3kP9xQ"     json:"short_url"`
	LongURL   string    `doc:"The original URL"          example:"https://example.com/very/long/path" json:"long_url"`
	CreatedAt time.Time `doc:"When the mapping was made"                                              json:"created_at"`
}

// CreateShortURLRequest is the request body for creating a short URL.
// long_url is validated by the service so that a missing value is a 400, not a 422.
type CreateShortURLRequest struct {
	Body struct {
		LongURL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"long_url" required:"false"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     ShortURLBody
}

// CodeRequest addresses a single mapping by its short code.
type CodeRequest struct {
	Code string `doc:"The short code" example:"aZ3kP9xQ" path:"code"`
}

// RedirectResponse sends the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// ShortURLResponse carries the details of one mapping.
type ShortURLResponse struct {
	Body ShortURLBody
}

// ListShortURLsResponse carries every mapping, oldest first.
type ListShortURLsResponse struct {
	Body []ShortURLBody
}

// DeleteShortURLResponse confirms a deletion.
type DeleteShortURLResponse struct {
	Body struct {
		Message string `example:"short url deleted successfully" json:"message"`
	}
}

// redirectStatus is temporary so that clients re-resolve deleted codes.
const redirectStatus = http.StatusFound
