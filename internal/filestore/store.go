// Package filestore defines the object storage interface the analysis
// archive writes to.
//
// Callers depend only on this package, never on a specific provider package.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin", "dbanalyser")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	err = store.PutObject(ctx, "shop/latest.json", bytes.NewReader(doc), int64(len(doc)), "application/json")
package filestore

import (
	"context"
	"io"
)

// Store is the interface all file storage providers implement. Every
// operation works on the bucket chosen in Config.
type Store interface {
	// Ping verifies the storage backend and its bucket are reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// PutObject writes size bytes from r to key, replacing any previous object.
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// GetObject opens a streaming handle to the object at key.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, key string) (Object, error)

	// ListObjects returns the objects that match opts, in key order.
	ListObjects(ctx context.Context, opts ListOptions) ([]ObjectInfo, error)
}
