// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptdetect

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Detector accumulates a child process's terminal output and watches
// it for permission prompts. It owns its buffer exclusively; feed it
// from a single goroutine.
type Detector struct {
	buffer  accumulator
	matcher Matcher
}

// NewDetector builds a Detector using the given matcher. A nil matcher
// gets a [HeuristicMatcher] over [DefaultPatterns].
func NewDetector(matcher Matcher) *Detector {
	if matcher == nil {
		matcher = NewHeuristicMatcher(DefaultPatterns)
	}
	return &Detector{
		buffer:  newAccumulator(DefaultAccumulatorCapacity),
		matcher: matcher,
	}
}

// Feed appends a chunk of raw child output and reports a detected
// prompt, or nil. Chunks are whatever the PTY read returned — a prompt
// routinely arrives split across several feeds, which is why the whole
// buffer is re-scanned each time rather than just the new chunk.
//
// Invalid UTF-8 is replaced, never rejected: the child writes a
// terminal byte stream, and a read boundary can fall mid-character.
//
// On detection the buffer is cleared so the same prompt is not
// reported again on the next feed. A second, distinct prompt arriving
// inside the same chunk as the first is lost with it — a known gap,
// accepted because the agent never renders two prompts in one screen.
func (detector *Detector) Feed(chunk []byte) *PromptEvent {
	detector.buffer.append(strings.ToValidUTF8(string(chunk), "�"))

	lines := strings.Split(stripControl(detector.buffer.String()), "\n")
	event := detector.matcher.Match(lines)
	if event != nil {
		detector.buffer.reset()
	}
	return event
}

// BufferedLength returns the number of characters currently held for
// matching.
func (detector *Detector) BufferedLength() int {
	return detector.buffer.length()
}

// stripControl removes escape sequences (CSI, OSC, DCS, and the other
// ESC-introduced classes) and then any remaining C0 control bytes
// other than newline and tab. The matcher must only ever see visible
// text.
func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, ansi.Strip(text))
}
