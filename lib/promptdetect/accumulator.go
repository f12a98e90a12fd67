// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptdetect

// DefaultAccumulatorCapacity is the default output buffer size in
// characters. 2 KB of visible text spans several screen lines — more
// than enough to hold a complete permission prompt while staying cheap
// to re-scan on every read chunk.
const DefaultAccumulatorCapacity = 2048

// accumulator is a bounded text buffer that keeps the most recent
// output. When the capacity is exceeded it truncates from the front,
// preserving the suffix — a prompt always arrives at the tail of the
// stream, so the oldest content is the safest to drop.
//
// The accumulator is owned by a single Detector and is not safe for
// concurrent use. Capacity is measured in runes, not bytes, so
// truncation never splits a character.
type accumulator struct {
	content  []rune
	capacity int
}

func newAccumulator(capacity int) accumulator {
	return accumulator{capacity: capacity}
}

// append adds decoded text to the buffer, dropping the oldest runes
// when the capacity is exceeded.
func (buffer *accumulator) append(text string) {
	buffer.content = append(buffer.content, []rune(text)...)
	if overflow := len(buffer.content) - buffer.capacity; overflow > 0 {
		buffer.content = append(buffer.content[:0], buffer.content[overflow:]...)
	}
}

// String returns the buffered text.
func (buffer *accumulator) String() string {
	return string(buffer.content)
}

// length returns the buffered character count.
func (buffer *accumulator) length() int {
	return len(buffer.content)
}

// reset discards all buffered text, retaining the allocation.
func (buffer *accumulator) reset() {
	buffer.content = buffer.content[:0]
}
