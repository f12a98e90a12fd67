// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sidechannel writes optional, best-effort output to
// descriptors inherited from the wrapper's caller: structured prompt
// events on one, a mirror of raw terminal output on the other.
//
// Both descriptors follow a fixed numeric convention (3 for events,
// 4 for the mirror) and are probed for existence before every use —
// the caller may provide neither, either, or both. Nothing here may
// ever interrupt the primary terminal relay: a missing descriptor is
// silently tolerated and write failures are swallowed.
package sidechannel

import (
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/ptywrap/lib/promptdetect"
)

// Descriptor numbers inherited from the caller by convention.
const (
	// DefaultEventFD carries newline-delimited JSON prompt events.
	DefaultEventFD = 3

	// DefaultMirrorFD receives a duplicate of raw terminal output
	// for remote forwarding.
	DefaultMirrorFD = 4
)

// Emitter writes prompt events and mirrored output to the inherited
// descriptors. The descriptors are written raw (no *os.File wrapper):
// the Emitter does not own them and must never close them, not even
// through a finalizer.
type Emitter struct {
	eventFD  int
	mirrorFD int
	logger   *slog.Logger
}

// NewEmitter builds an Emitter over the given descriptor numbers.
// A nil logger gets a default stderr text logger.
func NewEmitter(eventFD, mirrorFD int, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Emitter{eventFD: eventFD, mirrorFD: mirrorFD, logger: logger}
}

// Emit writes the event as one JSON line to the event channel, if the
// channel exists, and logs a short diagnostic. Failures are swallowed.
func (emitter *Emitter) Emit(event *promptdetect.PromptEvent) {
	if !descriptorPresent(emitter.eventFD) {
		return
	}
	line, err := event.EncodeLine()
	if err != nil {
		return
	}
	writeAll(emitter.eventFD, line)
	emitter.logger.Info("permission prompt detected",
		"question", event.Question,
		"options", len(event.Options))
}

// Mirror duplicates raw terminal output onto the mirror channel, if
// the channel exists. Failures are swallowed.
func (emitter *Emitter) Mirror(data []byte) {
	if !descriptorPresent(emitter.mirrorFD) {
		return
	}
	writeAll(emitter.mirrorFD, data)
}

// descriptorPresent reports whether the descriptor is open. A cheap
// fstat probe per use, not a handle held open: the caller owns the
// descriptor's lifetime.
func descriptorPresent(fd int) bool {
	var stat unix.Stat_t
	return unix.Fstat(fd, &stat) == nil
}

// writeAll writes the whole buffer, retrying on partial writes and
// EINTR. Errors are dropped: these channels are best-effort.
func writeAll(fd int, data []byte) {
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err == unix.EINTR {
			continue
		}
		if err != nil || n <= 0 {
			return
		}
		data = data[n:]
	}
}
