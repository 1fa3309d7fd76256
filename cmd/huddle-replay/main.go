// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/huddle/gateway"
	"github.com/bureau-foundation/huddle/gateway/manifest"
	"github.com/bureau-foundation/huddle/lib/codec"
	"github.com/bureau-foundation/huddle/lib/compat"
	"github.com/bureau-foundation/huddle/lib/config"
	"github.com/bureau-foundation/huddle/lib/logging"
	"github.com/bureau-foundation/huddle/lib/version"
)

const binaryName = "huddle-replay"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var configPath string
	var encoding string
	var logLevel string
	var logFormat string
	var jsonOutput bool

	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "huddle config file (default: $HUDDLE_CONFIG, else built-in defaults)")
	flagSet.StringVar(&encoding, "encoding", "", "envelope encoding: json or cbor (overrides gateway.encoding)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")
	flagSet.StringVar(&logFormat, "log-format", "", "log format: text, json, auto (overrides log.format)")
	flagSet.BoolVar(&jsonOutput, "json", false, "print the summary as JSON")
	flagSet.BoolP("help", "h", false, "show help")

	if len(args) > 0 && args[0] == "--version" {
		version.Fprint(stdout, binaryName)
		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("encoding") {
		cfg.Gateway.Encoding = encoding
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flagSet.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(stderr, cfg.Log.Level, cfg.LogFormat())
	if err != nil {
		return err
	}

	m, err := loadManifest(cfg.Gateway.ManifestPath)
	if err != nil {
		return err
	}
	counters := compat.New()
	registry := gateway.NewRegistry(counters)
	if err := manifest.Check(m, registry); err != nil {
		return err
	}

	replayer := newReplayer(m, registry, counters, logger)
	inputs := flagSet.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	for _, input := range inputs {
		if err := replayInput(replayer, input, cfg.Gateway.Encoding, stdin); err != nil {
			return err
		}
	}

	summary := replayer.summary()
	logger.Info("replay finished",
		"inputs", len(inputs),
		"dispatched", summary.Stats.Dispatched,
		"dropped", summary.Stats.Dropped(),
	)
	if jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}
	return summary.write(stdout)
}

// loadConfig reads the named config file, the file named by
// HUDDLE_CONFIG, or the defaults, in that order of preference.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvPrefix+"CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		return manifest.Default()
	}
	return manifest.LoadFile(path)
}

func replayInput(replayer *replayer, input, encoding string, stdin io.Reader) error {
	reader := stdin
	if input != "-" {
		file, err := os.Open(input)
		if err != nil {
			return err
		}
		defer file.Close()
		reader = file
	}

	var err error
	switch encoding {
	case "cbor":
		err = replayer.replayCBOR(reader)
	default:
		err = replayer.replayJSON(reader)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	return nil
}

// replayer routes envelopes and tallies dispatched events by type.
// Deprecated types are logged the first time they appear.
type replayer struct {
	manifest *manifest.Manifest
	router   *gateway.Router
	counters *compat.Counters
	logger   *slog.Logger

	events      map[string]uint64
	deprecated  map[string]bool
	undecodable []undecodableItem
}

// maxUndecodable bounds how many undecodable CBOR items a summary
// describes. Every one is still counted in the stats.
const maxUndecodable = 20

func newReplayer(m *manifest.Manifest, registry *gateway.Registry, counters *compat.Counters, logger *slog.Logger) *replayer {
	r := &replayer{
		manifest:   m,
		counters:   counters,
		logger:     logger,
		events:     make(map[string]uint64),
		deprecated: make(map[string]bool),
	}
	r.router = gateway.NewRouter(gateway.RouterConfig{
		Registry: registry,
		Observer: r.observe,
		Logger:   logger,
	})
	return r
}

func (r *replayer) observe(event gateway.Event) {
	eventType := event.Type()
	r.events[eventType]++
	if r.deprecated[eventType] {
		return
	}
	if entry, ok := r.manifest.Lookup(eventType); ok && entry.Lifecycle == manifest.LifecycleDeprecated {
		r.deprecated[eventType] = true
		r.logger.Warn("stream carries a deprecated event type",
			"event_type", eventType,
			"migration", entry.Migration,
		)
	}
}

// replayJSON routes one envelope per line. Blank lines are skipped.
func (r *replayer) replayJSON(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), gateway.MaxEnvelopeSize+1)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		r.router.RouteJSON(data)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("after line %d: %w", line, err)
	}
	return nil
}

// replayCBOR routes each item of a CBOR sequence. A truncated or
// malformed item ends the replay since the following item boundaries
// cannot be found. A well-formed item that is not an envelope is
// dropped by the router and described in CBOR diagnostic notation.
func (r *replayer) replayCBOR(reader io.Reader) error {
	decoder := codec.NewDecoder(reader)
	for item := 1; ; item++ {
		var raw codec.RawMessage
		err := decoder.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading CBOR item %d: %w", item, err)
		}
		invalidBefore := r.router.Stats().InvalidEnvelope
		if !r.router.RouteBinary(raw) && r.router.Stats().InvalidEnvelope > invalidBefore {
			r.noteUndecodable(item, raw)
		}
	}
}

func (r *replayer) noteUndecodable(item int, raw codec.RawMessage) {
	diagnostic, err := codec.Diagnose(raw)
	if err != nil {
		diagnostic = fmt.Sprintf("(no diagnostic: %v)", err)
	}
	r.logger.Warn("CBOR item is not a gateway envelope",
		"item", item,
		"size", len(raw),
		"diagnostic", diagnostic,
	)
	if len(r.undecodable) < maxUndecodable {
		r.undecodable = append(r.undecodable, undecodableItem{Item: item, Diagnostic: diagnostic})
	}
}

// eventCount is the number of dispatches of one event type.
type eventCount struct {
	Type  string `json:"type"`
	Count uint64 `json:"count"`
}

// compatCount is one compatibility counter.
type compatCount struct {
	Path  string      `json:"path"`
	Mode  compat.Mode `json:"mode"`
	Count uint64      `json:"count"`
}

// legacyShare is the fraction of one compatibility path's decodes that
// took the legacy shape.
type legacyShare struct {
	Path  string  `json:"path"`
	Share float64 `json:"share"`
}

// undecodableItem describes a CBOR item that was not an envelope.
type undecodableItem struct {
	Item       int    `json:"item"`
	Diagnostic string `json:"diagnostic"`
}

type summary struct {
	Stats        gateway.Stats     `json:"stats"`
	Events       []eventCount      `json:"events"`
	Compat       []compatCount     `json:"compat"`
	LegacyShares []legacyShare     `json:"legacy_shares"`
	Undecodable  []undecodableItem `json:"undecodable,omitempty"`
}

func (r *replayer) summary() summary {
	result := summary{
		Stats:        r.router.Stats(),
		Events:       make([]eventCount, 0, len(r.events)),
		Compat:       []compatCount{},
		LegacyShares: []legacyShare{},
		Undecodable:  r.undecodable,
	}
	for eventType, count := range r.events {
		result.Events = append(result.Events, eventCount{Type: eventType, Count: count})
	}
	sort.Slice(result.Events, func(i, j int) bool { return result.Events[i].Type < result.Events[j].Type })
	for _, sample := range r.counters.Snapshot() {
		result.Compat = append(result.Compat, compatCount{Path: sample.Path, Mode: sample.Mode, Count: sample.Count})
		if len(result.LegacyShares) > 0 && result.LegacyShares[len(result.LegacyShares)-1].Path == sample.Path {
			continue
		}
		if share, ok := r.counters.LegacyShare(sample.Path); ok {
			result.LegacyShares = append(result.LegacyShares, legacyShare{Path: sample.Path, Share: share})
		}
	}
	return result
}

func (s summary) write(w io.Writer) error {
	stats := s.Stats
	fmt.Fprintf(w, "dispatched %d, dropped %d (invalid envelope %d, unknown type %d, invalid payload %d)\n",
		stats.Dispatched, stats.Dropped(), stats.InvalidEnvelope, stats.UnknownType, stats.InvalidPayload)
	if stats.LastSequence != 0 {
		fmt.Fprintf(w, "last sequence %d, %d gaps\n", stats.LastSequence, stats.SequenceGaps)
	}

	writer := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	if len(s.Events) > 0 {
		fmt.Fprintln(writer, "\nEVENT\tCOUNT")
		for _, event := range s.Events {
			fmt.Fprintf(writer, "%s\t%d\n", event.Type, event.Count)
		}
	}
	if len(s.Compat) > 0 {
		fmt.Fprintln(writer, "\nCOMPAT PATH\tMODE\tCOUNT")
		for _, sample := range s.Compat {
			fmt.Fprintf(writer, "%s\t%s\t%d\n", sample.Path, sample.Mode, sample.Count)
		}
	}
	if len(s.LegacyShares) > 0 {
		fmt.Fprintln(writer, "\nCOMPAT PATH\tLEGACY SHARE")
		for _, share := range s.LegacyShares {
			fmt.Fprintf(writer, "%s\t%.1f%%\n", share.Path, 100*share.Share)
		}
	}
	if len(s.Undecodable) > 0 {
		fmt.Fprintln(writer, "\nUNDECODABLE ITEM\tDIAGNOSTIC")
		for _, item := range s.Undecodable {
			fmt.Fprintf(writer, "%d\t%s\n", item.Item, item.Diagnostic)
		}
	}
	return writer.Flush()
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Replay a recorded gateway stream through the event decoders.

Reads envelopes from each FILE in turn, or from stdin when no FILE
is given or FILE is "-". With --encoding json (the default) each
line is one envelope; with --encoding cbor the input is a sequence
of CBOR envelopes. Malformed and unknown envelopes are counted and
skipped, never fatal.

Usage:
  %s [flags] [FILE...]

Examples:
  # Summarize a captured session
  %[1]s capture.jsonl

  # Show why envelopes were dropped
  %[1]s --log-level debug --log-format text capture.jsonl

  # Machine-readable summary of a binary capture
  %[1]s --encoding cbor --json capture.cbor

Flags:
`, binaryName)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
