package cache

import (
	"go-response-cache/internal/interfaces"
)

// Ensure KeyBuilderImpl implements interfaces.KeyBuilder
var _ interfaces.KeyBuilder = (*KeyBuilderImpl)(nil)

// KeyBuilderImpl implements the KeyBuilder interface
type KeyBuilderImpl struct{}

// NewKeyBuilder creates a new KeyBuilder instance
func NewKeyBuilder() interfaces.KeyBuilder {
	return &KeyBuilderImpl{}
}

// Build creates a cache key of the form METHOD:requestURI.
// The URI is used verbatim, so query parameter order is significant.
func (kb *KeyBuilderImpl) Build(method, requestURI string) string {
	return method + ":" + requestURI
}
