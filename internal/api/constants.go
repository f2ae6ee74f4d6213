package api

// API limits and constants.
const (
	// DefaultMaxUploadSize caps a multipart restaurant form, images included.
	DefaultMaxUploadSize = 32 << 20

	// maxMemory is how much of a multipart form is held in memory before spilling to disk.
	maxMemory = 8 << 20

	// mutationsPerMinute throttles create/update per client.
	mutationsPerMinute = 30
)

// Cache-Control header values.
const (
	// CacheImmutable is used for stored images; object names never repeat.
	CacheImmutable = "public, max-age=31536000, immutable"
	CacheNoStore   = "no-cache"
)
