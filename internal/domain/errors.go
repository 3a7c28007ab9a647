package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidURL     = errors.New("invalid url")
	ErrMissingAPIKey  = errors.New("api key is required")
	ErrProviderFailed = errors.New("provider failure")
)
