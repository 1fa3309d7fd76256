// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Coordinator owns the current session and serializes refreshes.
// It is safe for concurrent use.
type Coordinator struct {
	refresher Refresher
	logger    *slog.Logger
	group     singleflight.Group

	mu      sync.Mutex
	current Session

	refreshes atomic.Int64
}

// NewCoordinator returns a coordinator holding initial. If logger is
// nil, slog.Default() is used.
func NewCoordinator(initial Session, refresher Refresher, logger *slog.Logger) *Coordinator {
	if refresher == nil {
		panic("auth: NewCoordinator requires a Refresher")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		refresher: refresher,
		logger:    logger,
		current:   initial,
	}
}

// Current returns the current session.
func (c *Coordinator) Current() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Credential returns the current access token.
func (c *Coordinator) Credential() string {
	return c.Current().AccessToken
}

// Refreshes returns how many refreshes have completed successfully.
func (c *Coordinator) Refreshes() int64 {
	return c.refreshes.Load()
}

// Refresh returns a session whose access token differs from rejected.
//
// When the current token is no longer rejected (another caller already
// refreshed) the current session is returned immediately. Otherwise
// one refresh runs and every concurrent caller shares its result. The
// refresh runs under the context of the caller that started it.
func (c *Coordinator) Refresh(ctx context.Context, rejected string) (Session, error) {
	if current := c.Current(); current.AccessToken != rejected {
		return current, nil
	}

	result, err, shared := c.group.Do("refresh", func() (any, error) {
		// A refresh may have finished between the check above and
		// joining the group.
		current := c.Current()
		if current.AccessToken != rejected {
			return current, nil
		}

		refreshed, err := c.refresher.RefreshSession(ctx, current)
		if err != nil {
			return nil, err
		}
		if refreshed.AccessToken == "" || refreshed.AccessToken == rejected {
			return nil, fmt.Errorf("auth: refresh did not issue a new access token")
		}

		c.mu.Lock()
		c.current = refreshed
		c.mu.Unlock()
		c.refreshes.Add(1)
		c.logger.Info("session refreshed", "expiry", refreshed.Expiry)
		return refreshed, nil
	})
	if err != nil {
		c.logger.Warn("session refresh failed", "error", err, "shared", shared)
		return Session{}, err
	}
	return result.(Session), nil
}
