// Package storage defines the object-storage contract the upload pipeline
// writes through, with S3 and local-filesystem implementations.
package storage

import (
	"context"
	"io"
)

// PutOptions carries per-object settings for a write.
type PutOptions struct {
	ContentType  string
	CacheControl string
	// Metadata is attached as user metadata on backends that support it.
	Metadata map[string]string
}

// StoredObject is the reference a successful Put returns. URL is the public
// location callers hand out; Bucket/Key identify the object inside the
// backend (Bucket is empty for filesystem backends).
type StoredObject struct {
	Bucket string
	Key    string
	URL    string
}

// Backend persists variant bytes under a key and returns a reference.
// Implementations must be safe for concurrent use.
type Backend interface {
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (StoredObject, error)
}
