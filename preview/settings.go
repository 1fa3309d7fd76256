// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preview

import "github.com/bureau-foundation/huddle/lib/config"

// FromConfig returns a Config carrying the tuning values of the
// preview configuration section. The caller fills in the
// collaborators (Requester, Credentials, Store, Clock, Logger).
func FromConfig(section config.PreviewConfig) Config {
	maxRetries := section.MaxRetries
	if maxRetries == 0 {
		// Zero in Config means the default; in the file it means none.
		maxRetries = -1
	}
	return Config{
		InitialDelay: section.InitialDelay,
		Backoff: Backoff{
			Initial:    section.BackoffInitial,
			Multiplier: section.BackoffMultiplier,
			Max:        section.BackoffMax,
			Jitter:     section.Jitter,
		},
		MaxRetries:   maxRetries,
		FetchTimeout: section.FetchTimeout,
		MaxBytes:     section.MaxBytes,
	}
}
