// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/huddle/api"
	"github.com/bureau-foundation/huddle/auth"
	"github.com/bureau-foundation/huddle/lib/blobstore"
	"github.com/bureau-foundation/huddle/lib/clock"
	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/testutil"
)

const waitTimeout = 5 * time.Second

type fetchResult struct {
	response api.Response
	err      error
}

type fetchCall struct {
	request api.Request
	reply   chan fetchResult
}

func (c fetchCall) succeed(contentType string, body []byte) {
	c.reply <- fetchResult{response: api.Response{Body: body, ContentType: contentType}}
}

func (c fetchCall) fail(kind api.Kind) {
	c.reply <- fetchResult{err: &api.Error{Kind: kind, Path: c.request.Path}}
}

// fakeRequester hands every request to the test and blocks until the
// test replies or the request context ends.
type fakeRequester struct {
	calls chan fetchCall
}

func (f *fakeRequester) RequestBytes(ctx context.Context, request api.Request) (api.Response, error) {
	call := fetchCall{request: request, reply: make(chan fetchResult, 1)}
	select {
	case f.calls <- call:
	case <-ctx.Done():
		return api.Response{}, &api.Error{Kind: api.KindNetwork, Path: request.Path, Err: ctx.Err()}
	}
	select {
	case result := <-call.reply:
		return result.response, result.err
	case <-ctx.Done():
		return api.Response{}, &api.Error{Kind: api.KindNetwork, Path: request.Path, Err: ctx.Err()}
	}
}

type countingRefresher struct {
	calls atomic.Int32
	next  auth.Session
}

func (r *countingRefresher) RefreshSession(ctx context.Context, current auth.Session) (auth.Session, error) {
	r.calls.Add(1)
	return r.next, nil
}

type harness struct {
	t         *testing.T
	cache     *Cache
	clock     *clock.FakeClock
	requester *fakeRequester
	store     *blobstore.Store
	changes   chan change
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T, configure func(*Config)) *harness {
	t.Helper()
	h := &harness{
		t:         t,
		clock:     clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		requester: &fakeRequester{calls: make(chan fetchCall, 16)},
		store:     blobstore.New(),
		changes:   make(chan change, 256),
	}
	config := Config{
		Requester: h.requester,
		Store:     h.store,
		Clock:     h.clock,
		Logger:    quietLogger(),
		OnChange: func(id ref.AttachmentID, state State) {
			h.changes <- change{id: id, state: state}
		},
	}
	if configure != nil {
		configure(&config)
	}
	cache, err := NewCache(config)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	t.Cleanup(cache.Close)
	h.cache = cache
	return h
}

// withSession wires a coordinator holding token-1 that refreshes to
// token-2.
func withSession(refresher *countingRefresher) func(*Config) {
	refresher.next = auth.Session{AccessToken: "token-2", RefreshToken: "refresh-2"}
	coordinator := auth.NewCoordinator(auth.Session{AccessToken: "token-1", RefreshToken: "refresh-1"}, refresher, quietLogger())
	return func(config *Config) {
		config.Credentials = coordinator
	}
}

func (h *harness) nextCall() fetchCall {
	h.t.Helper()
	return testutil.RequireReceive(h.t, h.requester.calls, waitTimeout, "waiting for a preview fetch")
}

func (h *harness) requireNoCall() {
	h.t.Helper()
	select {
	case call := <-h.requester.calls:
		h.t.Fatalf("unexpected fetch of %s", call.request.Path)
	default:
	}
}

// waitPhase consumes change notifications until id reaches phase.
func (h *harness) waitPhase(id ref.AttachmentID, phase Phase) State {
	h.t.Helper()
	for {
		changed := testutil.RequireReceive(h.t, h.changes, waitTimeout, "waiting for %s to become %s", id, phase)
		if changed.id == id && changed.state.Phase == phase {
			return changed.state
		}
	}
}

// waitPhases consumes change notifications until every id has reached
// phase, in any order.
func (h *harness) waitPhases(phase Phase, ids ...ref.AttachmentID) {
	h.t.Helper()
	remaining := make(map[ref.AttachmentID]bool, len(ids))
	for _, id := range ids {
		remaining[id] = true
	}
	for len(remaining) > 0 {
		changed := testutil.RequireReceive(h.t, h.changes, waitTimeout, "waiting for %d attachments to become %s", len(remaining), phase)
		if changed.state.Phase == phase {
			delete(remaining, changed.id)
		}
	}
}

func (h *harness) requirePending(want int) {
	h.t.Helper()
	if got := h.clock.PendingCount(); got != want {
		h.t.Fatalf("pending timers = %d, want %d", got, want)
	}
}

func (h *harness) requirePhase(id ref.AttachmentID, want Phase) {
	h.t.Helper()
	if got := h.cache.State(id).Phase; got != want {
		h.t.Fatalf("State(%s).Phase = %s, want %s", id, got, want)
	}
}

// cacheOne drives a fresh attachment to cached.
func (h *harness) cacheOne(attachment Attachment, others ...Attachment) State {
	h.t.Helper()
	h.cache.SetVisible(visible(append([]Attachment{attachment}, others...)...))
	h.clock.Advance(DefaultInitialDelay)
	h.nextCall().succeed("image/png", pngBytes)
	return h.waitPhase(attachment.ID, PhaseCached)
}

func imageAttachment(n int) Attachment {
	return Attachment{
		ID:       attachmentID(n),
		MimeType: "image/png",
		Filename: fmt.Sprintf("shot-%d.png", n),
		Size:     1024,
	}
}

func visible(attachments ...Attachment) []Message {
	return []Message{{Attachments: attachments}}
}

func pathOf(id ref.AttachmentID) string {
	return "/attachments/" + id.String() + "/content"
}

func TestFetchAfterInitialDelay(t *testing.T) {
	t.Parallel()

	refresher := &countingRefresher{}
	h := newHarness(t, withSession(refresher))
	attachment := imageAttachment(1)

	h.cache.SetVisible(visible(attachment))
	h.requirePhase(attachment.ID, PhaseLoading)
	h.requirePending(1)

	h.clock.Advance(DefaultInitialDelay - time.Millisecond)
	h.requirePending(1)
	h.clock.Advance(time.Millisecond)

	call := h.nextCall()
	if call.request.Path != pathOf(attachment.ID) {
		t.Errorf("Path = %q, want %q", call.request.Path, pathOf(attachment.ID))
	}
	if call.request.Credential != "token-1" {
		t.Errorf("Credential = %q, want token-1", call.request.Credential)
	}
	if call.request.MaxBytes != DefaultMaxBytes || call.request.Timeout != DefaultFetchTimeout {
		t.Errorf("MaxBytes, Timeout = %d, %v, want %d, %v",
			call.request.MaxBytes, call.request.Timeout, DefaultMaxBytes, DefaultFetchTimeout)
	}
	call.succeed("image/png", pngBytes)

	state := h.waitPhase(attachment.ID, PhaseCached)
	if !strings.HasPrefix(state.URL, blobstore.URLPrefix) {
		t.Errorf("URL = %q, want a blob handle", state.URL)
	}
	if state.Kind != KindImage || state.MimeType != "image/png" {
		t.Errorf("Kind, MimeType = %s, %s, want image, image/png", state.Kind, state.MimeType)
	}
	if state.Digest != blobstore.Sum(pngBytes) {
		t.Errorf("Digest = %s, want digest of the fetched bytes", state.Digest)
	}
	if got := h.cache.State(attachment.ID); got != state {
		t.Errorf("State() = %+v, want %+v", got, state)
	}
	if h.store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", h.store.Len())
	}
	if refresher.calls.Load() != 0 {
		t.Errorf("refresh calls = %d, want 0", refresher.calls.Load())
	}
}

func TestUnqualifiedAttachmentsNotScheduled(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(config *Config) { config.MaxBytes = 2048 })
	oversized := imageAttachment(1)
	oversized.Size = 4096
	archive := Attachment{ID: attachmentID(2), MimeType: "application/zip", Filename: "a.zip", Size: 10}
	drawing := Attachment{ID: attachmentID(3), MimeType: "image/svg+xml", Filename: "a.svg", Size: 10}

	h.cache.SetVisible(visible(oversized, archive, drawing))
	h.requirePending(0)
	for _, attachment := range []Attachment{oversized, archive, drawing} {
		h.requirePhase(attachment.ID, PhaseIdle)
	}
}

func TestRequestCoalescing(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	attachment := imageAttachment(1)

	// The same attachment in two messages is one target.
	h.cache.SetVisible([]Message{
		{Attachments: []Attachment{attachment}},
		{Attachments: []Attachment{attachment}},
	})
	h.requirePending(1)
	h.cache.SetVisible(visible(attachment))
	h.requirePending(1)

	h.clock.Advance(DefaultInitialDelay)
	call := h.nextCall()

	// In flight: recomputing targets does not start a second fetch.
	h.cache.SetVisible(visible(attachment))
	h.requirePending(0)
	h.requireNoCall()

	call.succeed("image/png", pngBytes)
	h.waitPhase(attachment.ID, PhaseCached)

	// Cached: nothing to do.
	h.cache.SetVisible(visible(attachment))
	h.requirePending(0)
	h.requireNoCall()
}

func TestSharedRefreshOnExpiredCredential(t *testing.T) {
	t.Parallel()

	refresher := &countingRefresher{}
	h := newHarness(t, withSession(refresher))
	first, second := imageAttachment(1), imageAttachment(2)

	h.cache.SetVisible(visible(first, second))
	h.clock.Advance(DefaultInitialDelay)

	initial := []fetchCall{h.nextCall(), h.nextCall()}
	for _, call := range initial {
		if call.request.Credential != "token-1" {
			t.Errorf("first attempt Credential = %q, want token-1", call.request.Credential)
		}
		call.fail(api.KindAuthExpired)
	}

	retried := map[string]bool{}
	for range 2 {
		call := h.nextCall()
		if call.request.Credential != "token-2" {
			t.Errorf("retry Credential = %q, want token-2", call.request.Credential)
		}
		retried[call.request.Path] = true
		call.succeed("image/png", pngBytes)
	}
	if !retried[pathOf(first.ID)] || !retried[pathOf(second.ID)] {
		t.Errorf("retried paths = %v, want both attachments", retried)
	}

	h.waitPhases(PhaseCached, first.ID, second.ID)
	h.requirePhase(first.ID, PhaseCached)
	h.requirePhase(second.ID, PhaseCached)
	if calls := refresher.calls.Load(); calls != 1 {
		t.Errorf("refresh calls = %d, want 1", calls)
	}
	h.requirePending(0)
}

func TestExpiredCredentialAfterRefreshBacksOff(t *testing.T) {
	t.Parallel()

	refresher := &countingRefresher{}
	h := newHarness(t, withSession(refresher))
	attachment := imageAttachment(1)

	h.cache.SetVisible(visible(attachment))
	h.clock.Advance(DefaultInitialDelay)
	h.nextCall().fail(api.KindAuthExpired)

	// The refreshed retry is rejected too: ordinary backoff follows.
	retry := h.nextCall()
	if retry.request.Credential != "token-2" {
		t.Errorf("retry Credential = %q, want token-2", retry.request.Credential)
	}
	retry.fail(api.KindAuthExpired)
	h.clock.WaitForTimers(1)
	h.requirePhase(attachment.ID, PhaseLoading)

	h.clock.Advance(DefaultBackoff.Initial)
	h.nextCall().fail(api.KindAuthExpired)
	h.clock.WaitForTimers(1)

	if calls := refresher.calls.Load(); calls != 1 {
		t.Errorf("refresh calls = %d, want 1 (only the first attempt refreshes)", calls)
	}
}

func TestRejectedCredentialWithoutSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	attachment := imageAttachment(1)

	h.cache.SetVisible(visible(attachment))
	h.clock.Advance(DefaultInitialDelay)
	call := h.nextCall()
	if call.request.Credential != "" {
		t.Errorf("Credential = %q, want none", call.request.Credential)
	}
	call.fail(api.KindAuthExpired)
	h.clock.WaitForTimers(1)
	h.requireNoCall()
	h.requirePhase(attachment.ID, PhaseLoading)
}

func TestBackoffUntilFailedThenExplicitRetry(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	attachment := imageAttachment(1)

	h.cache.SetVisible(visible(attachment))
	h.clock.Advance(DefaultInitialDelay)
	h.nextCall().fail(api.KindNetwork)

	failures := []api.Kind{api.KindTimeout, api.KindServer, api.KindOversized}
	for i, kind := range failures {
		attempt := i + 1
		delay := DefaultBackoff.NextDelay(attempt, nil)

		h.clock.WaitForTimers(1)
		h.requirePhase(attachment.ID, PhaseLoading)
		h.clock.Advance(delay - time.Millisecond)
		h.requirePending(1)
		h.clock.Advance(time.Millisecond)
		h.nextCall().fail(kind)
	}

	h.waitPhase(attachment.ID, PhaseFailed)
	h.requirePending(0)
	h.clock.Advance(time.Hour)
	h.requireNoCall()

	// Still visible, still failed: recomputing targets does not retry.
	h.cache.SetVisible(visible(attachment))
	h.requirePending(0)
	h.requirePhase(attachment.ID, PhaseFailed)

	if !h.cache.RetryPreview(attachment.ID) {
		t.Fatal("RetryPreview on a failed attachment = false")
	}
	h.requirePhase(attachment.ID, PhaseLoading)
	h.requirePending(1)
	h.clock.Advance(DefaultInitialDelay)
	h.nextCall().succeed("image/png", pngBytes)
	h.waitPhase(attachment.ID, PhaseCached)
	h.requireNoCall()
	h.requirePending(0)
}

func TestRetryPreviewOnlyWhenFailed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	attachment := imageAttachment(1)

	if h.cache.RetryPreview(attachment.ID) {
		t.Error("RetryPreview on an unknown attachment = true")
	}
	h.cacheOne(attachment)
	if h.cache.RetryPreview(attachment.ID) {
		t.Error("RetryPreview on a cached attachment = true")
	}
	h.requirePending(0)
	h.requirePhase(attachment.ID, PhaseCached)
	if h.store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", h.store.Len())
	}
}

func TestRetriesDisabled(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(config *Config) { config.MaxRetries = -1 })
	attachment := imageAttachment(1)

	h.cache.SetVisible(visible(attachment))
	h.clock.Advance(DefaultInitialDelay)
	h.nextCall().fail(api.KindNetwork)
	h.waitPhase(attachment.ID, PhaseFailed)
	h.requirePending(0)
}

func TestLeavingScopeRevokesHandle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	first, second := imageAttachment(1), imageAttachment(2)

	h.cache.SetVisible(visible(first, second))
	h.clock.Advance(DefaultInitialDelay)
	for range 2 {
		h.nextCall().succeed("image/png", pngBytes)
	}
	h.waitPhases(PhaseCached, first.ID, second.ID)
	h.requirePhase(first.ID, PhaseCached)
	h.requirePhase(second.ID, PhaseCached)
	kept := h.cache.State(second.ID)
	if h.store.Len() != 2 {
		t.Fatalf("store.Len() = %d, want 2", h.store.Len())
	}

	h.cache.SetVisible(visible(second))
	h.waitPhase(first.ID, PhaseIdle)
	if h.store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", h.store.Len())
	}
	if got := h.cache.State(second.ID); got != kept {
		t.Errorf("retained attachment State = %+v, want %+v", got, kept)
	}
	if _, _, err := h.store.Open(kept.URL); err != nil {
		t.Errorf("retained handle revoked: %v", err)
	}
}

func TestStaleFetchDiscarded(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	attachment := imageAttachment(1)

	h.cache.SetVisible(visible(attachment))
	h.clock.Advance(DefaultInitialDelay)
	call := h.nextCall()

	h.cache.SetVisible(nil)
	h.waitPhase(attachment.ID, PhaseIdle)
	// Whether the fetch sees the reply or its cancellation first, the
	// outcome belongs to a task that no longer exists.
	call.succeed("image/png", pngBytes)
	h.cache.running.Wait()

	h.requirePhase(attachment.ID, PhaseIdle)
	h.requirePending(0)
	if h.store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", h.store.Len())
	}
}

func TestFetchedGenericFileNotCached(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	attachment := imageAttachment(1)

	h.cache.SetVisible(visible(attachment))
	h.clock.Advance(DefaultInitialDelay)
	h.nextCall().succeed("image/png", htmlBytes)
	h.waitPhase(attachment.ID, PhaseIdle)

	if h.store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", h.store.Len())
	}
	h.cache.SetVisible(visible(attachment))
	h.requirePending(0)

	// Once it leaves and returns it is a new target again.
	h.cache.SetVisible(nil)
	h.cache.SetVisible(visible(attachment))
	h.requirePending(1)
}

func TestEvictIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	attachment := imageAttachment(1)

	h.cache.Evict(attachment.ID)
	h.requirePhase(attachment.ID, PhaseIdle)

	state := h.cacheOne(attachment)
	h.cache.Evict(attachment.ID)
	h.waitPhase(attachment.ID, PhaseIdle)
	h.cache.Evict(attachment.ID)

	if h.store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", h.store.Len())
	}
	if _, _, err := h.store.Open(state.URL); err == nil {
		t.Error("evicted handle still opens")
	}
	// Still visible: the next recomputation schedules it again.
	h.cache.SetVisible(visible(attachment))
	h.requirePending(1)
}

func TestSetContextTearsDown(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	attachment := imageAttachment(1)

	if !h.cache.SetContext("workspace-1") {
		t.Error("first SetContext = false")
	}
	h.cacheOne(attachment)
	if h.cache.SetContext("workspace-1") {
		t.Error("SetContext with the same key = true")
	}
	h.requirePhase(attachment.ID, PhaseCached)

	if !h.cache.SetContext("workspace-2") {
		t.Error("SetContext with a new key = false")
	}
	h.waitPhase(attachment.ID, PhaseIdle)
	if h.store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", h.store.Len())
	}
	h.cache.SetVisible(visible(attachment))
	h.requirePending(1)
}

func TestCloseRevokesEverything(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	cached, inFlight, scheduled := imageAttachment(1), imageAttachment(2), imageAttachment(3)

	h.cache.SetVisible(visible(cached, inFlight))
	h.clock.Advance(DefaultInitialDelay)
	for range 2 {
		call := h.nextCall()
		if call.request.Path == pathOf(cached.ID) {
			call.succeed("image/png", pngBytes)
		}
	}
	h.waitPhase(cached.ID, PhaseCached)
	h.cache.SetVisible(visible(cached, inFlight, scheduled))
	h.requirePending(1)

	h.cache.Close()
	if h.store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", h.store.Len())
	}
	h.requirePending(0)
	for _, attachment := range []Attachment{cached, inFlight, scheduled} {
		h.requirePhase(attachment.ID, PhaseIdle)
	}

	h.cache.SetVisible(visible(cached))
	h.requirePending(0)
	if h.cache.RetryPreview(cached.ID) {
		t.Error("RetryPreview after Close = true")
	}
	h.cache.Close()
}

// Rapid scrolling: an attachment that leaves and re-enters the
// visible set inside the debounce window is fetched once, a full
// initial delay after it last entered.
func TestTargetChurnDuringDebounce(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	attachment := imageAttachment(1)
	step := DefaultInitialDelay / 3

	for range 5 {
		h.cache.SetVisible(visible(attachment))
		h.clock.Advance(step)
		h.cache.SetVisible(nil)
		h.clock.Advance(step)
	}
	h.requirePending(0)
	h.requireNoCall()

	h.cache.SetVisible(visible(attachment))
	h.clock.Advance(DefaultInitialDelay - time.Millisecond)
	h.requirePending(1)
	h.clock.Advance(time.Millisecond)
	h.nextCall().succeed("image/png", pngBytes)
	h.waitPhase(attachment.ID, PhaseCached)
	h.requireNoCall()
	if h.store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", h.store.Len())
	}
}

// An attachment that stays visible while others come and go keeps its
// original debounce deadline.
func TestRetainedTargetKeepsDebounceDeadline(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	first, second := imageAttachment(1), imageAttachment(2)
	step := DefaultInitialDelay / 2

	h.cache.SetVisible(visible(first))
	h.clock.Advance(step)
	h.cache.SetVisible(visible(first, second))
	h.requirePending(2)
	h.clock.Advance(step)

	call := h.nextCall()
	if call.request.Path != pathOf(first.ID) {
		t.Errorf("first fetch Path = %q, want %q", call.request.Path, pathOf(first.ID))
	}
	h.requirePending(1)
	h.requireNoCall()
	call.succeed("image/png", pngBytes)

	h.clock.Advance(step)
	h.nextCall().succeed("image/png", pngBytes)
	h.waitPhase(second.ID, PhaseCached)
}

func TestCustomPathAndLimits(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(config *Config) {
		config.PathFor = func(id ref.AttachmentID) string { return "/media/" + id.String() }
		config.MaxBytes = 4096
		config.FetchTimeout = time.Second
		config.InitialDelay = 10 * time.Millisecond
	})
	attachment := imageAttachment(1)

	h.cache.SetVisible(visible(attachment))
	h.clock.Advance(10 * time.Millisecond)
	call := h.nextCall()
	if call.request.Path != "/media/"+attachment.ID.String() {
		t.Errorf("Path = %q, want custom path", call.request.Path)
	}
	if call.request.MaxBytes != 4096 || call.request.Timeout != time.Second {
		t.Errorf("MaxBytes, Timeout = %d, %v, want 4096, 1s", call.request.MaxBytes, call.request.Timeout)
	}
	call.succeed("image/png", pngBytes)
	h.waitPhase(attachment.ID, PhaseCached)
}

func TestNewCacheRequiresRequester(t *testing.T) {
	t.Parallel()

	if _, err := NewCache(Config{}); err == nil {
		t.Error("NewCache without a Requester succeeded")
	}
	if _, err := NewCache(Config{Requester: &fakeRequester{}, InitialDelay: -time.Second}); err == nil {
		t.Error("NewCache with a negative InitialDelay succeeded")
	}
}
