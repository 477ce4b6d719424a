package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// QuoteKey generates a cache key for a market price endpoint
func QuoteKey(endpoint string) string {
	hash := sha256.Sum256([]byte(endpoint))
	return "fairline:quote:v1:" + hex.EncodeToString(hash[:])
}
