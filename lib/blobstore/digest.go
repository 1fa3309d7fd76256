// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed hash of blob content.
type Digest [32]byte

// previewDomainKey separates preview digests from any other use of
// BLAKE3 over the same bytes. Changing it changes every digest.
var previewDomainKey = [32]byte{
	'h', 'u', 'd', 'd', 'l', 'e', '.', 'b', 'l', 'o', 'b', 's', 't', 'o', 'r', 'e',
	'.', 'p', 'r', 'e', 'v', 'i', 'e', 'w', 0, 0, 0, 0, 0, 0, 0, 0,
}

// Sum returns the preview-domain digest of data.
func Sum(data []byte) Digest {
	hasher, err := blake3.NewKeyed(previewDomainKey[:])
	if err != nil {
		// Only returned for a key that is not 32 bytes.
		panic("blobstore: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the lowercase hex encoding.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest parses a 64-character hex string.
func ParseDigest(s string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return digest, fmt.Errorf("blobstore: parsing digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("blobstore: digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}
