// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-wrap runs an interactive coding agent inside a
// pseudo-terminal and relays its terminal in real time, watching the
// output stream for permission prompts. Detected prompts are written
// as newline-delimited JSON to an inherited descriptor (3 by default)
// so a supervising process can answer them remotely; raw output can be
// mirrored to a second descriptor (4 by default) for remote terminal
// forwarding. Both descriptors are optional: absent ones are probed
// for and silently skipped.
//
// Usage:
//
//	bureau-wrap [flags] <command> [args...]
//
// The wrapper's exit status is the child's exit status when the
// child's exit was observed, otherwise 0.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/ptywrap/lib/process"
	"github.com/bureau-foundation/ptywrap/lib/promptdetect"
	"github.com/bureau-foundation/ptywrap/lib/sidechannel"
	"github.com/bureau-foundation/ptywrap/lib/version"
	"github.com/bureau-foundation/ptywrap/relay"
)

const usage = "usage: bureau-wrap [flags] <command> [args...]"

func main() {
	code, err := run()
	if err != nil {
		process.Fatal(err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var eventFD, mirrorFD int
	var patternsPath, transcriptPath string

	flagSet := pflag.NewFlagSet("bureau-wrap", pflag.ContinueOnError)
	flagSet.IntVar(&eventFD, "event-fd", sidechannel.DefaultEventFD, "descriptor for JSON prompt events")
	flagSet.IntVar(&mirrorFD, "mirror-fd", sidechannel.DefaultMirrorFD, "descriptor for mirrored raw output")
	flagSet.StringVar(&patternsPath, "patterns", "", "YAML file overriding the prompt detection patterns")
	flagSet.StringVar(&transcriptPath, "transcript", "", "write detected prompts as JSONL to this file")
	flagSet.BoolP("help", "h", false, "show help")
	// Flags after the command belong to the child, not the wrapper.
	flagSet.SetInterspersed(false)

	// Handle --version before flag parsing to match other Bureau binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("bureau-wrap")
		return 0, nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return 0, nil
		}
		return 0, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return 0, nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return 1, nil
	}

	logger := newLogger()

	patterns := promptdetect.DefaultPatterns
	if patternsPath != "" {
		loaded, err := promptdetect.LoadPatterns(patternsPath)
		if err != nil {
			return 0, err
		}
		patterns = loaded
	}

	var transcript *relay.TranscriptWriter
	if transcriptPath != "" {
		writer, err := relay.NewTranscriptWriter(transcriptPath)
		if err != nil {
			return 0, err
		}
		defer writer.Close()
		transcript = writer
	}

	return relay.Run(relay.Config{
		Command:    args[0],
		Args:       args[1:],
		Detector:   promptdetect.NewDetector(promptdetect.NewHeuristicMatcher(patterns)),
		Emitter:    sidechannel.NewEmitter(eventFD, mirrorFD, logger),
		Transcript: transcript,
		Logger:     logger,
	})
}

// newLogger builds the wrapper's structured logger: human-readable
// text when stderr is a terminal, JSON when it is piped or redirected.
// Info level carries the prompt-detection diagnostics; debug noise
// stays off because the wrapper shares stderr with the relayed
// terminal.
func newLogger() *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Printf(`bureau-wrap - Pseudo-terminal relay with permission prompt detection

%s

Runs <command> attached to a freshly allocated pseudo-terminal and
relays bytes between it and the controlling terminal. While relaying,
the child's output is scanned for interactive permission prompts;
detected prompts are emitted as one JSON object per line on the event
descriptor and a copy of the raw output can be mirrored on the mirror
descriptor. Both descriptors are inherited from the caller and
optional.

FLAGS
%s`, usage, flagSet.FlagUsages())
}
