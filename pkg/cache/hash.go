package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RasterKeyOpts are the processing options that change a raster's output.
type RasterKeyOpts struct {
	Width     int  `json:"w"`
	Height    int  `json:"h"`
	Grayscale bool `json:"g"`
}

// RasterKey returns the cache key for a processed raster. sourceHash is the
// [Hash] of the source file's bytes.
func RasterKey(sourceHash string, opts RasterKeyOpts) string {
	return hashKey("raster", sourceHash, opts)
}
