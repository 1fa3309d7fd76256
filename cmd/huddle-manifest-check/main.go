// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/huddle/gateway"
	"github.com/bureau-foundation/huddle/gateway/manifest"
	"github.com/bureau-foundation/huddle/lib/config"
	"github.com/bureau-foundation/huddle/lib/version"
)

const binaryName = "huddle-manifest-check"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// exitError ends the process with a code after the problem has
// already been reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func (e *exitError) ExitCode() int { return e.code }

func run(args []string, stdout, stderr io.Writer) error {
	var manifestPath string
	var configPath string
	var verbose bool

	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&manifestPath, "manifest", "", "protocol manifest file (default: the embedded manifest)")
	flagSet.StringVar(&configPath, "config", "", "huddle config file; its gateway.manifest_path applies when --manifest is unset")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "list every declared event type")
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
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}

	if manifestPath == "" && configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		manifestPath = cfg.Gateway.ManifestPath
	}

	m, source, err := loadManifest(manifestPath)
	if err != nil {
		return err
	}

	checkErr := manifest.Check(m, gateway.NewRegistry(nil))
	var mismatch *manifest.MismatchError
	switch {
	case errors.As(checkErr, &mismatch):
		fmt.Fprintf(stderr, "%s: version %d\n", source, m.Version)
		printMismatch(stderr, mismatch)
		return &exitError{code: 1}
	case checkErr != nil:
		return checkErr
	}

	fmt.Fprintf(stdout, "%s: version %d declares %d event types, all decoded\n", source, m.Version, len(m.Events))
	for _, entry := range m.Deprecated() {
		fmt.Fprintf(stdout, "  deprecated %s: %s\n", entry.EventType, entry.Migration)
	}
	if verbose {
		writer := tabwriter.NewWriter(stdout, 2, 0, 2, ' ', 0)
		fmt.Fprintln(writer, "TYPE\tSCHEMA\tSCOPE\tLIFECYCLE")
		for _, entry := range m.Events {
			fmt.Fprintf(writer, "%s\t%d\t%s\t%s\n", entry.EventType, entry.SchemaVersion, entry.Scope, entry.Lifecycle)
		}
		return writer.Flush()
	}
	return nil
}

// loadManifest returns the manifest at path, or the embedded one when
// path is empty, along with a name for it in messages.
func loadManifest(path string) (*manifest.Manifest, string, error) {
	if path == "" {
		m, err := manifest.Default()
		return m, "embedded manifest", err
	}
	m, err := manifest.LoadFile(path)
	return m, path, err
}

func printMismatch(w io.Writer, mismatch *manifest.MismatchError) {
	for _, eventType := range mismatch.Missing {
		fmt.Fprintf(w, "  declared but not decoded: %s\n", eventType)
	}
	for _, eventType := range mismatch.Extra {
		fmt.Fprintf(w, "  decoded but not declared: %s\n", eventType)
	}
	for _, problem := range mismatch.Scopes {
		fmt.Fprintf(w, "  scope mismatch: %s\n", problem)
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Check the gateway protocol manifest against the event decoders.

Every event type the manifest declares must have a decoder, every
decoder must be declared, and each declared scope must match the
scope its decoder routes in. Any disagreement is printed and the
command exits 1.

Usage:
  %s [flags]

Examples:
  # Check the manifest compiled into this binary
  %[1]s

  # Check a manifest under review
  %[1]s --manifest gateway/manifest/protocol.jsonc --verbose

Flags:
`, binaryName)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
