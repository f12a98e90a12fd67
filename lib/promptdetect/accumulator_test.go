// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptdetect

import (
	"strings"
	"testing"
)

func TestAccumulatorAppendWithinCapacity(t *testing.T) {
	t.Parallel()
	buffer := newAccumulator(16)

	buffer.append("hello")
	buffer.append(" world")

	if got := buffer.String(); got != "hello world" {
		t.Errorf("String: got %q, want %q", got, "hello world")
	}
	if got := buffer.length(); got != 11 {
		t.Errorf("length: got %d, want 11", got)
	}
}

func TestAccumulatorTruncatesFromFront(t *testing.T) {
	t.Parallel()
	buffer := newAccumulator(10)

	buffer.append("abcdefghij")
	buffer.append("klmno")

	// The oldest five characters are dropped; the suffix survives.
	if got := buffer.String(); got != "fghijklmno" {
		t.Errorf("String after overflow: got %q, want %q", got, "fghijklmno")
	}
	if got := buffer.length(); got != 10 {
		t.Errorf("length after overflow: got %d, want 10", got)
	}
}

func TestAccumulatorSingleOversizedAppend(t *testing.T) {
	t.Parallel()
	buffer := newAccumulator(8)

	buffer.append(strings.Repeat("x", 100) + "tail")

	if got := buffer.length(); got != 8 {
		t.Errorf("length: got %d, want 8", got)
	}
	if got := buffer.String(); !strings.HasSuffix(got, "tail") {
		t.Errorf("String: got %q, want suffix %q preserved", got, "tail")
	}
}

func TestAccumulatorCountsRunesNotBytes(t *testing.T) {
	t.Parallel()
	buffer := newAccumulator(4)

	// Four multibyte characters fill the buffer exactly; a fifth
	// pushes the first out without splitting any character.
	buffer.append("日本語です")

	if got := buffer.String(); got != "本語です" {
		t.Errorf("String: got %q, want %q", got, "本語です")
	}
	if got := buffer.length(); got != 4 {
		t.Errorf("length: got %d, want 4", got)
	}
}

func TestAccumulatorReset(t *testing.T) {
	t.Parallel()
	buffer := newAccumulator(16)

	buffer.append("content")
	buffer.reset()

	if got := buffer.length(); got != 0 {
		t.Errorf("length after reset: got %d, want 0", got)
	}
	if got := buffer.String(); got != "" {
		t.Errorf("String after reset: got %q, want empty", got)
	}
}
