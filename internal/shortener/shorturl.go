package shortener

import "time"

// Code represents a short URL code.
type Code string

// ShortURL represents a stored code -> URL mapping.
type ShortURL struct {
	ID          int64
	Code        Code
	OriginalURL string
	CreatedAt   time.Time
}
