package interfaces

//go:generate mockgen -package=mock -source=keybuilder.go -destination=mock/keybuilder.go

// KeyBuilder derives deterministic cache keys from requests
type KeyBuilder interface {
	// Build returns the key for a method and request URI (path plus raw query)
	Build(method, requestURI string) string
}
