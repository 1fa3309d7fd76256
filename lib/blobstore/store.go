// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// URLPrefix starts every handle URL.
const URLPrefix = "blob:huddle/"

// ErrNotFound is returned by [Store.Open] for a URL that was never
// issued or has been revoked.
var ErrNotFound = errors.New("blobstore: handle not found")

// Handle identifies one stored blob.
type Handle struct {
	URL         string
	ContentType string
	Size        int
	Digest      Digest
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.URL == ""
}

type blob struct {
	data        []byte
	contentType string
}

// Store is an in-memory handle table. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	blobs map[string]blob
	bytes int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{blobs: make(map[string]blob)}
}

// Create copies data into the store and returns a new handle for it.
func (s *Store) Create(data []byte, contentType string) Handle {
	owned := make([]byte, len(data))
	copy(owned, data)
	handle := Handle{
		URL:         URLPrefix + uuid.NewString(),
		ContentType: contentType,
		Size:        len(owned),
		Digest:      Sum(owned),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[handle.URL] = blob{data: owned, contentType: contentType}
	s.bytes += int64(len(owned))
	return handle
}

// Revoke releases the blob behind url. It reports whether a live
// handle was released.
func (s *Store) Revoke(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.blobs[url]
	if !ok {
		return false
	}
	delete(s.blobs, url)
	s.bytes -= int64(len(existing.data))
	return true
}

// Open returns the bytes and content type behind url. The returned
// slice is shared with the store and must not be modified.
func (s *Store) Open(url string) ([]byte, string, error) {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil, "", ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.blobs[url]
	if !ok {
		return nil, "", ErrNotFound
	}
	return existing.data, existing.contentType, nil
}

// Len returns the number of live handles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// Bytes returns the total size of all live blobs.
func (s *Store) Bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}
