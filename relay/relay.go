// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"io"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/ptywrap/lib/process"
	"github.com/bureau-foundation/ptywrap/lib/promptdetect"
	"github.com/bureau-foundation/ptywrap/lib/ptysession"
	"github.com/bureau-foundation/ptywrap/lib/sidechannel"
)

// chunkSize is the read size for both relay directions. The relay is
// a byte stream, not framed messages: partial reads are correct.
const chunkSize = 1024

// Config describes one relay run.
type Config struct {
	// Command and Args name the child program.
	Command string
	Args    []string

	// Input is the controlling-input side. Defaults to os.Stdin,
	// which also enables raw mode when it is a terminal. When a
	// test injects another reader, raw mode stays off.
	Input io.Reader

	// Output is the primary output stream. Defaults to os.Stdout.
	// Writes are unbuffered — bytes reach the terminal as they
	// arrive.
	Output io.Writer

	// Detector watches child output for permission prompts. Nil
	// disables detection.
	Detector *promptdetect.Detector

	// Emitter carries prompt events and mirrored output. Nil
	// disables both side channels.
	Emitter *sidechannel.Emitter

	// Transcript records detected prompts as JSONL. Optional.
	Transcript *TranscriptWriter

	// Logger receives wrapper-level diagnostics. Nil gets a default
	// stderr logger.
	Logger *slog.Logger

	// Test hooks: when non-nil these replace the signal.Notify
	// channels so tests can drive the resize and interrupt paths
	// deterministically.
	resizeSignals    chan os.Signal
	interruptSignals chan os.Signal
}

// Run executes the relay: allocates the pseudo-terminal, spawns the
// child, and relays until end-of-stream on either side, child exit, or
// interrupt. Returns the exit status the wrapper should propagate —
// the child's code when its exit was observed, otherwise 0 — and an
// error only for wrapper-level failures (PTY allocation, spawn).
//
// Terminal-mode restore and master close run exactly once regardless
// of which path terminates the relay.
func Run(config Config) (int, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	session, err := ptysession.Open(logger)
	if err != nil {
		return 0, err
	}
	defer session.Close()

	if err := session.SpawnChild(config.Command, config.Args); err != nil {
		return 0, err
	}
	logger.Debug("child spawned", "command", config.Command, "pid", session.Pid())

	// Raw mode only when relaying the real stdin: an injected reader
	// means the controlling terminal is not part of this relay.
	if config.Input == nil {
		if err := session.EnterRawMode(); err != nil {
			return 0, err
		}
	}

	return run(config, session, logger), nil
}

func run(config Config, session *ptysession.Session, logger *slog.Logger) int {
	input := config.Input
	if input == nil {
		input = os.Stdin
	}
	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	resize := config.resizeSignals
	if resize == nil {
		resize = make(chan os.Signal, 1)
		signal.Notify(resize, unix.SIGWINCH)
		defer signal.Stop(resize)
	}
	interrupt := config.interruptSignals
	if interrupt == nil {
		interrupt = make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)
	}

	inputChunks := readPump(input)
	masterChunks := readPump(session.Master())

	// The child waiter runs Wait exactly once; every termination path
	// that knows the child is done receives its result from here.
	childDone := make(chan error, 1)
	go func() { childDone <- session.Wait() }()

	for {
		select {
		case chunk, open := <-inputChunks:
			// Zero-length read or input error: the controlling side
			// is gone. The child's status was never observed on
			// this path, so the wrapper reports 0.
			if !open {
				return 0
			}
			if _, err := session.Master().Write(chunk); err != nil {
				logger.Debug("write to pseudo-terminal failed", "error", err)
				return 0
			}

		case chunk, open := <-masterChunks:
			if !open {
				// The child side closed the pseudo-terminal, which
				// means the child (the only holder of the slave) is
				// exiting. Collect its status rather than racing it.
				return process.ExitCode(<-childDone)
			}
			relayOutput(config, output, chunk, logger)

		case <-resize:
			// The handler context recorded nothing but this channel
			// send; the actual query and resize happen here, on the
			// loop goroutine.
			if err := session.Resize(session.CurrentGeometry()); err != nil {
				logger.Debug("resize failed", "error", err)
			}

		case <-interrupt:
			// Forward and then wait for the child to act on it.
			// No timeout: a child that ignores SIGINT leaves the
			// wrapper waiting, an accepted availability risk.
			if err := session.Signal(os.Interrupt); err != nil {
				logger.Debug("forwarding interrupt failed", "error", err)
			}
			return process.ExitCode(<-childDone)

		case waitErr := <-childDone:
			// Drain output the pump already read before the exit
			// was observed, then report the child's status.
			drainOutput(config, output, masterChunks, logger)
			return process.ExitCode(waitErr)
		}
	}
}

// relayOutput forwards one chunk of child output: primary stream
// first, then the best-effort mirror, then prompt detection.
func relayOutput(config Config, output io.Writer, chunk []byte, logger *slog.Logger) {
	if _, err := output.Write(chunk); err != nil {
		logger.Debug("write to output failed", "error", err)
	}
	if config.Emitter != nil {
		config.Emitter.Mirror(chunk)
	}
	if config.Detector == nil {
		return
	}
	event := config.Detector.Feed(chunk)
	if event == nil {
		return
	}
	if config.Emitter != nil {
		config.Emitter.Emit(event)
	}
	if config.Transcript != nil {
		if err := config.Transcript.Write(event); err != nil {
			logger.Debug("transcript write failed", "error", err)
		}
	}
}

// drainOutput forwards whatever chunks are already buffered in the
// master pump without blocking for more.
func drainOutput(config Config, output io.Writer, masterChunks <-chan []byte, logger *slog.Logger) {
	for {
		select {
		case chunk, open := <-masterChunks:
			if !open {
				return
			}
			relayOutput(config, output, chunk, logger)
		default:
			return
		}
	}
}

// readPump reads fixed-size chunks and delivers them over an
// unbuffered channel, closing it on end-of-stream or error. The
// unbuffered send preserves the original loop's backpressure: the
// pump reads no further until the relay has consumed the chunk.
//
// A pump blocked in Read when the relay returns is abandoned; the
// process is about to exit and the descriptors it reads from live
// exactly as long as the process.
func readPump(reader io.Reader) <-chan []byte {
	chunks := make(chan []byte)
	go func() {
		defer close(chunks)
		for {
			buffer := make([]byte, chunkSize)
			n, err := reader.Read(buffer)
			if n > 0 {
				chunks <- buffer[:n]
			}
			if err != nil {
				return
			}
		}
	}()
	return chunks
}
