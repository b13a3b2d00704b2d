package domain

import "errors"

var (
	// ErrArticleNotFound signals a missing article.
	ErrArticleNotFound = errors.New("article not found")
	// ErrTagNotFound signals a missing tag.
	ErrTagNotFound = errors.New("tag not found")
	// ErrInvalidArgument signals a missing or malformed request field.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized signals a write attempt without editor privilege.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEmbeddingProviderError signals an embedding provider failure or timeout.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrPersistenceFailure signals a store read/write error.
	ErrPersistenceFailure = errors.New("persistence failure")
)
