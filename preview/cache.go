// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preview

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bureau-foundation/huddle/api"
	"github.com/bureau-foundation/huddle/auth"
	"github.com/bureau-foundation/huddle/lib/blobstore"
	"github.com/bureau-foundation/huddle/lib/clock"
	"github.com/bureau-foundation/huddle/lib/ref"
)

// Defaults applied by NewCache to zero Config fields.
const (
	DefaultInitialDelay = 150 * time.Millisecond
	DefaultMaxRetries   = 3
	DefaultFetchTimeout = 15 * time.Second
	DefaultMaxBytes     = 10 << 20
)

// DefaultBackoff is used when Config.Backoff is zero.
var DefaultBackoff = Backoff{Initial: time.Second, Multiplier: 2, Max: 30 * time.Second}

// Phase is the lifecycle position of one attachment.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseCached  Phase = "cached"
	PhaseFailed  Phase = "failed"
)

// State is what a renderer needs to show an attachment preview. URL,
// Kind, MimeType, and Digest are set only in PhaseCached.
type State struct {
	Phase    Phase
	URL      string
	Kind     Kind
	MimeType string
	Digest   blobstore.Digest
}

// HandleStore issues and revokes blob handles. *blobstore.Store
// implements it.
type HandleStore interface {
	Create(data []byte, contentType string) blobstore.Handle
	Revoke(url string) bool
}

// CredentialSource supplies the current access token and refreshes it
// when rejected. *auth.Coordinator implements it.
type CredentialSource interface {
	Credential() string
	Refresh(ctx context.Context, rejected string) (auth.Session, error)
}

// Config configures a Cache.
type Config struct {
	// Requester fetches attachment bytes. Required.
	Requester api.Requester
	// Credentials supplies the bearer token. If nil, requests carry no
	// credential and a rejected credential is an ordinary failure.
	Credentials CredentialSource
	// Store holds fetched bytes. If nil, a new blobstore.Store is used.
	Store HandleStore
	// Clock schedules debounce and retry timers. If nil, the real
	// clock is used.
	Clock clock.Clock
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// PathFor maps an attachment to its request path. If nil,
	// "/attachments/<id>/content" is used.
	PathFor func(ref.AttachmentID) string

	// InitialDelay debounces the first fetch of a newly visible
	// attachment.
	InitialDelay time.Duration
	// Backoff spaces retries after failures.
	Backoff Backoff
	// MaxRetries is how many retries follow the first attempt before
	// an attachment fails. Zero means DefaultMaxRetries; negative
	// disables retries.
	MaxRetries int
	// FetchTimeout bounds each request.
	FetchTimeout time.Duration
	// MaxBytes is the largest attachment that is targeted and the
	// response body limit.
	MaxBytes int64
	// Rand drives backoff jitter. If nil, the global source is used.
	Rand *rand.Rand

	// OnChange is called after an attachment's State changes, outside
	// the cache lock. It may call back into the Cache.
	OnChange func(id ref.AttachmentID, state State)
}

// entry is a stored preview. The handle is owned by the cache and
// revoked whenever the entry is replaced or dropped.
type entry struct {
	handle   blobstore.Handle
	kind     Kind
	mimeType string
}

// task is scheduled or in-flight work for one attachment. Results are
// applied only while tasks[id] is still this task.
type task struct {
	token  uint64
	timer  *clock.Timer
	cancel context.CancelFunc
}

type change struct {
	id    ref.AttachmentID
	state State
}

// Cache is the attachment preview cache. It is safe for concurrent
// use; every state transition happens under one mutex, and fetches,
// refreshes, and timers run outside it.
type Cache struct {
	requester    api.Requester
	credentials  CredentialSource
	store        HandleStore
	clock        clock.Clock
	logger       *slog.Logger
	pathFor      func(ref.AttachmentID) string
	initialDelay time.Duration
	backoff      Backoff
	maxRetries   int
	fetchTimeout time.Duration
	maxBytes     int64
	rng          *rand.Rand
	onChange     func(ref.AttachmentID, State)

	baseContext context.Context
	cancelAll   context.CancelFunc
	running     sync.WaitGroup

	mu         sync.Mutex
	closed     bool
	generation uint64
	contextKey string
	targets    map[ref.AttachmentID]Target
	entries    map[ref.AttachmentID]entry
	tasks      map[ref.AttachmentID]*task
	// retries holds the attempt count of attachments that have failed
	// at least once and are still retrying.
	retries map[ref.AttachmentID]int
	failed  map[ref.AttachmentID]bool
	// unpreviewable holds targets whose fetched bytes turned out to be
	// a generic file. They are not refetched while they stay targeted.
	unpreviewable map[ref.AttachmentID]bool
}

// NewCache validates config and returns an empty Cache.
func NewCache(config Config) (*Cache, error) {
	if config.Requester == nil {
		return nil, fmt.Errorf("preview: Requester is required")
	}
	if config.Store == nil {
		config.Store = blobstore.New()
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.PathFor == nil {
		config.PathFor = func(id ref.AttachmentID) string {
			return "/attachments/" + id.String() + "/content"
		}
	}
	if config.InitialDelay == 0 {
		config.InitialDelay = DefaultInitialDelay
	}
	if config.Backoff == (Backoff{}) {
		config.Backoff = DefaultBackoff
	}
	switch {
	case config.MaxRetries == 0:
		config.MaxRetries = DefaultMaxRetries
	case config.MaxRetries < 0:
		config.MaxRetries = 0
	}
	if config.FetchTimeout == 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}
	if config.MaxBytes == 0 {
		config.MaxBytes = DefaultMaxBytes
	}
	if config.InitialDelay < 0 || config.FetchTimeout < 0 || config.MaxBytes < 0 {
		return nil, fmt.Errorf("preview: InitialDelay, FetchTimeout, and MaxBytes must not be negative")
	}

	baseContext, cancelAll := context.WithCancel(context.Background())
	return &Cache{
		requester:     config.Requester,
		credentials:   config.Credentials,
		store:         config.Store,
		clock:         config.Clock,
		logger:        config.Logger,
		pathFor:       config.PathFor,
		initialDelay:  config.InitialDelay,
		backoff:       config.Backoff,
		maxRetries:    config.MaxRetries,
		fetchTimeout:  config.FetchTimeout,
		maxBytes:      config.MaxBytes,
		rng:           config.Rand,
		onChange:      config.OnChange,
		baseContext:   baseContext,
		cancelAll:     cancelAll,
		targets:       make(map[ref.AttachmentID]Target),
		entries:       make(map[ref.AttachmentID]entry),
		tasks:         make(map[ref.AttachmentID]*task),
		retries:       make(map[ref.AttachmentID]int),
		failed:        make(map[ref.AttachmentID]bool),
		unpreviewable: make(map[ref.AttachmentID]bool),
	}, nil
}

// State returns the current state of id. Unknown attachments are
// idle.
func (c *Cache) State(id ref.AttachmentID) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(id)
}

func (c *Cache) stateLocked(id ref.AttachmentID) State {
	if stored, ok := c.entries[id]; ok {
		return State{
			Phase:    PhaseCached,
			URL:      stored.handle.URL,
			Kind:     stored.kind,
			MimeType: stored.mimeType,
			Digest:   stored.handle.Digest,
		}
	}
	if c.failed[id] {
		return State{Phase: PhaseFailed}
	}
	if _, ok := c.tasks[id]; ok {
		return State{Phase: PhaseLoading}
	}
	return State{Phase: PhaseIdle}
}

// SetVisible recomputes the preview targets from the visible
// messages. Attachments that left the set are evicted and their work
// cancelled. Attachments that entered it are scheduled after the
// initial delay unless they already have an entry, pending work, or a
// terminal outcome. Attachments that stay in the set are untouched.
func (c *Cache) SetVisible(messages []Message) {
	targets := SelectTargets(messages, c.maxBytes)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next := make(map[ref.AttachmentID]Target, len(targets))
	for _, target := range targets {
		next[target.ID] = target
	}

	var changes []change
	for id := range c.targets {
		if _, kept := next[id]; !kept {
			changes = c.forgetLocked(id, changes)
		}
	}
	c.targets = next

	for _, target := range targets {
		id := target.ID
		if _, ok := c.entries[id]; ok {
			continue
		}
		if _, ok := c.tasks[id]; ok {
			continue
		}
		if c.failed[id] || c.unpreviewable[id] {
			continue
		}
		c.scheduleLocked(id, c.initialDelay)
		changes = append(changes, change{id: id, state: c.stateLocked(id)})
	}
	c.mu.Unlock()

	c.notify(changes)
}

// RetryPreview schedules a fresh fetch of a failed attachment after
// the initial delay. It reports whether a fetch was scheduled; for any
// attachment not in PhaseFailed it does nothing.
func (c *Cache) RetryPreview(id ref.AttachmentID) bool {
	c.mu.Lock()
	if c.closed || !c.failed[id] {
		c.mu.Unlock()
		return false
	}
	delete(c.failed, id)
	delete(c.retries, id)
	c.scheduleLocked(id, c.initialDelay)
	state := c.stateLocked(id)
	c.mu.Unlock()

	c.logger.Debug("preview retry requested", "attachment_id", id)
	c.notify([]change{{id: id, state: state}})
	return true
}

// Evict drops everything the cache holds for id: its entry (revoking
// the handle), pending work, and retry or failure state. It is a
// no-op for an attachment the cache holds nothing for. A still
// visible attachment is scheduled again on the next SetVisible.
func (c *Cache) Evict(id ref.AttachmentID) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	changes := c.forgetLocked(id, nil)
	c.mu.Unlock()

	c.notify(changes)
}

// SetContext tears down every entry and target when key differs from
// the current context key (a new connection or workspace). It reports
// whether a teardown happened.
func (c *Cache) SetContext(key string) bool {
	c.mu.Lock()
	if c.closed || key == c.contextKey {
		c.mu.Unlock()
		return false
	}
	previous := c.contextKey
	c.contextKey = key
	changes := c.resetLocked()
	c.mu.Unlock()

	c.logger.Debug("preview context changed", "previous", previous, "context", key)
	c.notify(changes)
	return true
}

// Close revokes every handle, cancels all pending work, and waits for
// in-flight fetches to return. Later calls do nothing, as do all
// other mutating methods.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	changes := c.resetLocked()
	c.mu.Unlock()

	c.cancelAll()
	c.running.Wait()
	c.notify(changes)
}

// resetLocked forgets every attachment the cache knows about.
func (c *Cache) resetLocked() []change {
	known := make(map[ref.AttachmentID]bool)
	for id := range c.targets {
		known[id] = true
	}
	for id := range c.entries {
		known[id] = true
	}
	for id := range c.tasks {
		known[id] = true
	}
	for id := range c.failed {
		known[id] = true
	}

	var changes []change
	for id := range known {
		changes = c.forgetLocked(id, changes)
	}
	c.targets = make(map[ref.AttachmentID]Target)
	return changes
}

// forgetLocked clears all state for id and appends a change if its
// phase was not already idle.
func (c *Cache) forgetLocked(id ref.AttachmentID, changes []change) []change {
	before := c.stateLocked(id).Phase

	if pending, ok := c.tasks[id]; ok {
		pending.timer.Stop()
		if pending.cancel != nil {
			pending.cancel()
		}
		delete(c.tasks, id)
	}
	delete(c.retries, id)
	delete(c.failed, id)
	delete(c.unpreviewable, id)
	c.dropEntryLocked(id)

	if before != PhaseIdle {
		changes = append(changes, change{id: id, state: State{Phase: PhaseIdle}})
	}
	return changes
}

// setEntryLocked and dropEntryLocked are the only writers of entries.
func (c *Cache) setEntryLocked(id ref.AttachmentID, next entry) {
	c.dropEntryLocked(id)
	c.entries[id] = next
}

func (c *Cache) dropEntryLocked(id ref.AttachmentID) {
	if previous, ok := c.entries[id]; ok {
		c.store.Revoke(previous.handle.URL)
		delete(c.entries, id)
	}
}

// scheduleLocked replaces any task for id with a new one that fetches
// after delay.
func (c *Cache) scheduleLocked(id ref.AttachmentID, delay time.Duration) {
	c.generation++
	scheduled := &task{token: c.generation}
	c.tasks[id] = scheduled

	if delay <= 0 {
		c.startLocked(id, scheduled.token)
		return
	}
	token := scheduled.token
	scheduled.timer = c.clock.AfterFunc(delay, func() { c.fire(id, token) })
}

func (c *Cache) fire(id ref.AttachmentID, token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startLocked(id, token)
}

// startLocked launches the fetch goroutine. Registering it with
// running under the lock orders every Add before Close's Wait.
func (c *Cache) startLocked(id ref.AttachmentID, token uint64) {
	c.running.Add(1)
	go func() {
		defer c.running.Done()
		c.run(id, token)
	}()
}

// run performs one attempt for the task identified by token.
func (c *Cache) run(id ref.AttachmentID, token uint64) {
	c.mu.Lock()
	current, ok := c.tasks[id]
	if c.closed || !ok || current.token != token || current.cancel != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(c.baseContext)
	defer cancel()
	current.cancel = cancel
	attempt := c.retries[id]
	c.mu.Unlock()

	credential := ""
	if c.credentials != nil {
		credential = c.credentials.Credential()
	}
	response, err := c.fetch(ctx, id, credential)

	if err != nil && attempt == 0 && c.credentials != nil && api.IsKind(err, api.KindAuthExpired) && c.isCurrent(id, token) {
		// The refresh is shared with other attachments, so it is not
		// tied to this attachment's cancellation.
		session, refreshErr := c.credentials.Refresh(c.baseContext, credential)
		if refreshErr != nil {
			c.logger.Warn("credential refresh for preview failed",
				"attachment_id", id,
				"error", refreshErr,
			)
		} else {
			response, err = c.fetch(ctx, id, session.AccessToken)
		}
	}

	c.complete(id, token, attempt, response, err)
}

func (c *Cache) fetch(ctx context.Context, id ref.AttachmentID, credential string) (api.Response, error) {
	return c.requester.RequestBytes(ctx, api.Request{
		Path:       c.pathFor(id),
		Credential: credential,
		Timeout:    c.fetchTimeout,
		MaxBytes:   c.maxBytes,
	})
}

func (c *Cache) isCurrent(id ref.AttachmentID, token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.tasks[id]
	return !c.closed && ok && current.token == token
}

// complete applies the outcome of an attempt if its task is still
// current. A stale outcome is dropped; it holds no handle.
func (c *Cache) complete(id ref.AttachmentID, token uint64, attempt int, response api.Response, err error) {
	c.mu.Lock()
	current, ok := c.tasks[id]
	if c.closed || !ok || current.token != token {
		c.mu.Unlock()
		c.logger.Debug("discarding stale preview fetch", "attachment_id", id)
		return
	}
	delete(c.tasks, id)

	if err != nil {
		attempts := attempt + 1
		if attempts > c.maxRetries {
			delete(c.retries, id)
			c.failed[id] = true
			state := c.stateLocked(id)
			c.mu.Unlock()

			c.logger.Warn("preview fetch failed",
				"attachment_id", id,
				"attempts", attempts,
				"error", err,
			)
			c.notify([]change{{id: id, state: state}})
			return
		}
		c.retries[id] = attempts
		delay := c.backoff.NextDelay(attempts, c.rng)
		c.scheduleLocked(id, delay)
		c.mu.Unlock()

		c.logger.Debug("preview fetch will retry",
			"attachment_id", id,
			"attempt", attempts,
			"delay", delay,
			"error", err,
		)
		return
	}

	delete(c.retries, id)
	kind, mimeType := ResolveFetched(response.ContentType, response.Body)
	if !kind.Previewable() {
		c.unpreviewable[id] = true
		state := c.stateLocked(id)
		c.mu.Unlock()

		c.logger.Debug("fetched attachment has no preview",
			"attachment_id", id,
			"declared", response.ContentType,
			"resolved", mimeType,
		)
		c.notify([]change{{id: id, state: state}})
		return
	}

	handle := c.store.Create(response.Body, mimeType)
	c.setEntryLocked(id, entry{handle: handle, kind: kind, mimeType: mimeType})
	state := c.stateLocked(id)
	c.mu.Unlock()

	c.notify([]change{{id: id, state: state}})
}

func (c *Cache) notify(changes []change) {
	if c.onChange == nil {
		return
	}
	for _, changed := range changes {
		c.onChange(changed.id, changed.state)
	}
}
