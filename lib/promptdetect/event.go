// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptdetect

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PromptOption is a single numbered choice in a permission prompt.
type PromptOption struct {
	// ID is the number the user types to select this option.
	ID int `json:"id"`

	// Label is the option text after the enumerator.
	Label string `json:"label"`

	// RequiresInput is true when selecting this option expects the
	// user to type free-form text rather than just pick the number
	// (e.g., "3. Type a custom response").
	RequiresInput bool `json:"requiresInput"`
}

// PromptEvent is a detected permission prompt. Immutable once
// constructed; it is emitted on the side channel and never retained.
type PromptEvent struct {
	// Question is the prompt's question line. When no question line
	// was recognized, this holds the matcher's default placeholder.
	Question string `json:"question"`

	// Options are the numbered choices, in the order they appeared.
	// A PromptEvent always carries at least two.
	Options []PromptOption `json:"options"`
}

// wireEvent is the newline-delimited record written to the event
// channel. The type discriminator lets the consumer multiplex other
// record kinds onto the same descriptor later.
type wireEvent struct {
	Type     string         `json:"type"`
	Question string         `json:"question"`
	Options  []PromptOption `json:"options"`
}

// EncodeLine serializes the event as one newline-terminated JSON
// record in the side-channel wire format.
func (event *PromptEvent) EncodeLine() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	// No HTML escaping — the consumer parses JSON, not a browser.
	encoder.SetEscapeHTML(false)
	record := wireEvent{
		Type:     "permission_prompt",
		Question: event.Question,
		Options:  event.Options,
	}
	if err := encoder.Encode(record); err != nil {
		return nil, fmt.Errorf("encoding prompt event: %w", err)
	}
	return buffer.Bytes(), nil
}
