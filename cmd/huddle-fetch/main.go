// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"github.com/bureau-foundation/huddle/api"
	"github.com/bureau-foundation/huddle/auth"
	"github.com/bureau-foundation/huddle/lib/blobstore"
	"github.com/bureau-foundation/huddle/lib/config"
	"github.com/bureau-foundation/huddle/lib/logging"
	"github.com/bureau-foundation/huddle/lib/ref"
	"github.com/bureau-foundation/huddle/lib/version"
	"github.com/bureau-foundation/huddle/preview"
)

const binaryName = "huddle-fetch"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], env.ToMap(os.Environ()), os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// sessionEnvironment holds the credentials read from HUDDLE_*
// variables.
type sessionEnvironment struct {
	AccessToken  string `env:"ACCESS_TOKEN"`
	RefreshToken string `env:"REFRESH_TOKEN"`
}

// messageInput is the JSON form of one message.
type messageInput struct {
	Attachments []attachmentInput `json:"attachments"`
}

type attachmentInput struct {
	ID       ref.AttachmentID `json:"id"`
	MimeType string           `json:"mime_type"`
	Filename string           `json:"filename"`
	Size     int64            `json:"size"`
}

// result is the settled outcome of one targeted attachment.
type result struct {
	ID       ref.AttachmentID `json:"id"`
	Phase    preview.Phase    `json:"phase"`
	Kind     preview.Kind     `json:"kind,omitempty"`
	MimeType string           `json:"mime_type,omitempty"`
	Digest   string           `json:"digest,omitempty"`
	Path     string           `json:"path,omitempty"`
}

var errNoTokenEndpoint = errors.New("no token endpoint configured (api.token_url)")

// staticRefresher refuses every refresh. It stands in when the config
// has no token endpoint.
type staticRefresher struct{}

func (staticRefresher) RefreshSession(context.Context, auth.Session) (auth.Session, error) {
	return auth.Session{}, errNoTokenEndpoint
}

func run(ctx context.Context, args []string, environ map[string]string, stdin io.Reader, stdout, stderr io.Writer) error {
	var configPath string
	var outputDir string
	var timeout time.Duration
	var logLevel string
	var jsonOutput bool

	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "huddle config file (default: $HUDDLE_CONFIG)")
	flagSet.StringVar(&outputDir, "out", "", "write cached previews to this directory, one file per attachment ID")
	flagSet.DurationVar(&timeout, "timeout", 2*time.Minute, "give up on attachments still loading after this long")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")
	flagSet.BoolVar(&jsonOutput, "json", false, "print results as JSON")
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
	if flagSet.NArg() > 1 {
		return fmt.Errorf("expected at most one messages file, got %d arguments", flagSet.NArg())
	}

	if configPath == "" {
		configPath = environ[config.EnvPrefix+"CONFIG"]
	}
	if configPath == "" {
		return fmt.Errorf("--config or HUDDLE_CONFIG is required")
	}
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("config %s: api.base_url is required", configPath)
	}

	logger, err := logging.New(stderr, cfg.Log.Level, cfg.LogFormat())
	if err != nil {
		return err
	}

	messages, err := readMessages(flagSet.Arg(0), stdin)
	if err != nil {
		return err
	}

	session, err := env.ParseAsWithOptions[sessionEnvironment](env.Options{
		Prefix:      config.EnvPrefix,
		Environment: environ,
	})
	if err != nil {
		return fmt.Errorf("reading session from environment: %w", err)
	}

	client, err := api.NewClient(api.ClientConfig{BaseURL: cfg.API.BaseURL, Logger: logger})
	if err != nil {
		return err
	}

	store := blobstore.New()
	changed := make(chan struct{}, 1)
	cacheConfig := preview.FromConfig(cfg.Preview)
	cacheConfig.Requester = client
	cacheConfig.Store = store
	cacheConfig.Logger = logger
	cacheConfig.OnChange = func(ref.AttachmentID, preview.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	if session.AccessToken != "" {
		cacheConfig.Credentials = auth.NewCoordinator(auth.Session{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
		}, newRefresher(cfg.API), logger)
	} else {
		logger.Warn("HUDDLE_ACCESS_TOKEN is not set; requests carry no credential")
	}

	cache, err := preview.NewCache(cacheConfig)
	if err != nil {
		return err
	}
	defer cache.Close()

	targets := preview.SelectTargets(messages, cfg.Preview.MaxBytes)
	logger.Info("previewing attachments", "messages", len(messages), "targets", len(targets))
	cache.SetVisible(messages)

	waitContext, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := waitSettled(waitContext, cache, targets, changed); err != nil {
		return err
	}

	results, err := collect(cache, store, targets, outputDir)
	if err != nil {
		return err
	}
	if err := writeResults(stdout, results, jsonOutput); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Phase == preview.PhaseFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d previews failed", failed, len(results))
	}
	return nil
}

func newRefresher(section config.APIConfig) auth.Refresher {
	if section.TokenURL == "" {
		return staticRefresher{}
	}
	return &auth.OAuth2Refresher{Config: &oauth2.Config{
		ClientID: section.ClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  section.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}}
}

// readMessages decodes a JSON array of messages from path, or from
// stdin when path is empty or "-".
func readMessages(path string, stdin io.Reader) ([]preview.Message, error) {
	reader := stdin
	if path != "" && path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	}

	var inputs []messageInput
	if err := json.NewDecoder(reader).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	messages := make([]preview.Message, len(inputs))
	for i, input := range inputs {
		for _, attachment := range input.Attachments {
			messages[i].Attachments = append(messages[i].Attachments, preview.Attachment{
				ID:       attachment.ID,
				MimeType: attachment.MimeType,
				Filename: attachment.Filename,
				Size:     attachment.Size,
			})
		}
	}
	return messages, nil
}

// waitSettled blocks until no target is loading. An attachment that
// fetched as a generic file settles back to idle.
func waitSettled(ctx context.Context, cache *preview.Cache, targets []preview.Target, changed <-chan struct{}) error {
	for {
		loading := 0
		for _, target := range targets {
			if cache.State(target.ID).Phase == preview.PhaseLoading {
				loading++
			}
		}
		if loading == 0 {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("%d attachments still loading: %w", loading, ctx.Err())
		}
	}
}

func collect(cache *preview.Cache, store *blobstore.Store, targets []preview.Target, outputDir string) ([]result, error) {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, err
		}
	}
	results := make([]result, 0, len(targets))
	for _, target := range targets {
		state := cache.State(target.ID)
		r := result{ID: target.ID, Phase: state.Phase}
		if state.Phase == preview.PhaseCached {
			r.Kind = state.Kind
			r.MimeType = state.MimeType
			r.Digest = state.Digest.String()
			if outputDir != "" {
				path, err := save(store, state.URL, outputDir, target.ID)
				if err != nil {
					return nil, err
				}
				r.Path = path
			}
		}
		results = append(results, r)
	}
	return results, nil
}

func save(store *blobstore.Store, url, outputDir string, id ref.AttachmentID) (string, error) {
	data, _, err := store.Open(url)
	if err != nil {
		return "", fmt.Errorf("opening preview of %s: %w", id, err)
	}
	path := filepath.Join(outputDir, id.String())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func writeResults(w io.Writer, results []result, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}
	writer := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "ATTACHMENT\tPHASE\tKIND\tTYPE\tDIGEST")
	for _, r := range results {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Phase, valueOr(string(r.Kind)), valueOr(r.MimeType), valueOr(r.Digest))
	}
	return writer.Flush()
}

func valueOr(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Fetch attachment previews through the preview cache.

Reads a JSON array of messages from FILE, or stdin when FILE is
omitted or "-". Each message has an "attachments" list whose items
carry "id", "mime_type", "filename", and "size". Attachments that
qualify for preview are fetched from api.base_url with the session
in HUDDLE_ACCESS_TOKEN, refreshed through api.token_url when the API
rejects it. The command exits 1 if any preview failed.

Usage:
  %s [flags] [FILE]

Examples:
  # Preview the attachments of a saved channel page
  HUDDLE_ACCESS_TOKEN=... %[1]s --config huddle.yaml page.json

  # Keep the fetched bytes
  %[1]s --config huddle.yaml --out previews/ page.json

Flags:
`, binaryName)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
