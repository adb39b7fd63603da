// Package filestoretest provides an in-memory filestore.Store for tests.
package filestoretest

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/dbanalyser/internal/errs"
	"github.com/koustreak/dbanalyser/internal/filestore"
)

// Store keeps objects in memory. The zero value is not usable; call New.
type Store struct {
	mu      sync.Mutex
	objects map[string]stored
	now     func() time.Time

	// PutErr, when set, is returned by every PutObject call.
	PutErr error
}

type stored struct {
	data []byte
	info filestore.ObjectInfo
}

// New returns an empty Store.
func New() *Store {
	return &Store{objects: make(map[string]stored), now: time.Now}
}

// Keys returns the stored keys in order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

func (s *Store) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return errs.Wrap(errs.ErrKindQueryFailed, "failed to read object body", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return errs.Newf(errs.ErrKindInvalidInput, "object %q: size %d does not match body length %d", key, size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = stored{
		data: data,
		info: filestore.ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			ContentType:  contentType,
			LastModified: s.now(),
		},
	}
	return nil
}

func (s *Store) GetObject(ctx context.Context, key string) (filestore.Object, error) {
	obj, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	info := obj.info
	return &object{ReadCloser: io.NopCloser(bytes.NewReader(obj.data)), info: &info}, nil
}

func (s *Store) ListObjects(ctx context.Context, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]filestore.ObjectInfo, 0)
	for key, obj := range s.objects {
		if !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		if !opts.Recursive && strings.Contains(key[len(opts.Prefix):], "/") {
			continue
		}
		out = append(out, obj.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) lookup(key string) (stored, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return stored{}, errs.Newf(errs.ErrKindNotFound, "object %q does not exist", key)
	}
	return obj, nil
}

type object struct {
	io.ReadCloser
	info *filestore.ObjectInfo
}

func (o *object) Info() *filestore.ObjectInfo { return o.info }

var _ filestore.Store = (*Store)(nil)
