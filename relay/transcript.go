// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/ptywrap/lib/promptdetect"
)

// TranscriptWriter appends detected prompt events as JSONL (one JSON
// object per line) to a transcript file. It is safe for concurrent
// use.
type TranscriptWriter struct {
	file    *os.File
	encoder *json.Encoder
	mutex   sync.Mutex
	closed  bool
}

// transcriptRecord is one transcript line.
type transcriptRecord struct {
	Timestamp time.Time                   `json:"timestamp"`
	Type      string                      `json:"type"`
	Question  string                      `json:"question"`
	Options   []promptdetect.PromptOption `json:"options"`
}

// NewTranscriptWriter creates (or truncates) the transcript file at
// the given path.
func NewTranscriptWriter(path string) (*TranscriptWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating transcript %q: %w", path, err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	return &TranscriptWriter{file: file, encoder: encoder}, nil
}

// Write appends one event to the transcript. Syncs after each write so
// records survive a wrapper crash; prompt events are rare enough that
// the cost is irrelevant.
func (writer *TranscriptWriter) Write(event *promptdetect.PromptEvent) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	if writer.closed {
		return fmt.Errorf("transcript is closed")
	}

	record := transcriptRecord{
		Timestamp: time.Now().UTC(),
		Type:      "permission_prompt",
		Question:  event.Question,
		Options:   event.Options,
	}
	if err := writer.encoder.Encode(record); err != nil {
		return fmt.Errorf("encoding transcript record: %w", err)
	}
	if err := writer.file.Sync(); err != nil {
		return fmt.Errorf("syncing transcript: %w", err)
	}
	return nil
}

// Close closes the transcript file. Further writes fail.
func (writer *TranscriptWriter) Close() error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	if writer.closed {
		return nil
	}
	writer.closed = true
	if err := writer.file.Close(); err != nil {
		return fmt.Errorf("closing transcript: %w", err)
	}
	return nil
}
