// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"errors"
	"log/slog"
	"sync/atomic"
)

// RouterConfig holds configuration for creating a Router.
type RouterConfig struct {
	// Registry decodes envelopes. Required.
	Registry *Registry
	// Handlers receives decoded events. If nil, events are decoded
	// and counted but not delivered.
	Handlers *Handlers
	// Observer, if set, sees every dispatched event after its
	// handler has run.
	Observer func(Event)
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Router decodes envelopes and dispatches the resulting events. Every
// failure is local to its envelope: it is counted, logged at debug
// level, and dropped.
type Router struct {
	registry *Registry
	handlers *Handlers
	observer func(Event)
	logger   *slog.Logger

	dispatched      atomic.Uint64
	invalidEnvelope atomic.Uint64
	unknownType     atomic.Uint64
	invalidPayload  atomic.Uint64
	lastSequence    atomic.Int64
	sequenceGaps    atomic.Uint64
}

// Stats counts what a Router has done with the envelopes it was given.
type Stats struct {
	Dispatched      uint64 `json:"dispatched"`
	InvalidEnvelope uint64 `json:"invalid_envelope"`
	UnknownType     uint64 `json:"unknown_type"`
	InvalidPayload  uint64 `json:"invalid_payload"`
	LastSequence    int64  `json:"last_sequence"`
	SequenceGaps    uint64 `json:"sequence_gaps"`
}

// Dropped returns the number of envelopes that produced no event.
func (s Stats) Dropped() uint64 {
	return s.InvalidEnvelope + s.UnknownType + s.InvalidPayload
}

// NewRouter creates a Router. It panics if config.Registry is nil.
func NewRouter(config RouterConfig) *Router {
	if config.Registry == nil {
		panic("gateway: RouterConfig.Registry is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry: config.Registry,
		handlers: config.Handlers,
		observer: config.Observer,
		logger:   logger,
	}
}

// RouteJSON parses a JSON envelope and routes it. It reports whether
// an event was dispatched.
func (r *Router) RouteJSON(data []byte) bool {
	envelope, err := ParseEnvelope(data)
	if err != nil {
		r.invalidEnvelope.Add(1)
		r.logger.Debug("dropping malformed envelope", "error", err, "size", len(data))
		return false
	}
	return r.Route(envelope)
}

// RouteBinary parses a CBOR envelope and routes it. It reports whether
// an event was dispatched.
func (r *Router) RouteBinary(item []byte) bool {
	envelope, err := DecodeBinaryEnvelope(item)
	if err != nil {
		r.invalidEnvelope.Add(1)
		r.logger.Debug("dropping malformed binary envelope", "error", err, "size", len(item))
		return false
	}
	return r.Route(envelope)
}

// Route decodes envelope and dispatches its event synchronously. It
// reports whether an event was dispatched.
func (r *Router) Route(envelope Envelope) bool {
	r.observeSequence(envelope.Sequence)

	event, err := r.registry.DecodeEnvelope(envelope)
	switch {
	case errors.Is(err, ErrUnknownType):
		r.unknownType.Add(1)
		r.logger.Debug("dropping envelope with unknown type", "event_type", envelope.Type)
		return false
	case err != nil:
		r.invalidPayload.Add(1)
		r.logger.Debug("dropping invalid payload", "event_type", envelope.Type, "error", err)
		return false
	}

	Dispatch(event, r.handlers)
	if r.observer != nil {
		r.observer(event)
	}
	r.dispatched.Add(1)
	return true
}

// observeSequence tracks the highest sequence number seen and counts
// forward jumps. Zero means the envelope carried no sequence.
func (r *Router) observeSequence(sequence int64) {
	if sequence == 0 {
		return
	}
	for {
		last := r.lastSequence.Load()
		if sequence <= last {
			return
		}
		if r.lastSequence.CompareAndSwap(last, sequence) {
			if last != 0 && sequence > last+1 {
				r.sequenceGaps.Add(1)
				r.logger.Debug("gateway sequence gap", "last_sequence", last, "sequence", sequence)
			}
			return
		}
	}
}

// Stats returns a snapshot of the router's counters.
func (r *Router) Stats() Stats {
	return Stats{
		Dispatched:      r.dispatched.Load(),
		InvalidEnvelope: r.invalidEnvelope.Load(),
		UnknownType:     r.unknownType.Load(),
		InvalidPayload:  r.invalidPayload.Load(),
		LastSequence:    r.lastSequence.Load(),
		SequenceGaps:    r.sequenceGaps.Load(),
	}
}
