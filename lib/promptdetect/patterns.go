// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptdetect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Patterns holds the phrase tables the heuristic matcher works from.
// The zero value is not usable; start from [DefaultPatterns] or load a
// file with [LoadPatterns].
type Patterns struct {
	// QuestionPhrases are substrings (matched case-insensitively)
	// that mark a line as the prompt's question, together with a
	// question mark on the same line.
	QuestionPhrases []string `yaml:"question_phrases"`

	// FreeformKeywords are substrings (matched case-insensitively)
	// in an option label that mark the option as expecting typed
	// free-form input.
	FreeformKeywords []string `yaml:"freeform_keywords"`

	// DefaultQuestion is the placeholder used when option lines were
	// found but no question line matched.
	DefaultQuestion string `yaml:"default_question"`
}

// DefaultPatterns matches the permission prompt Claude Code renders
// today: "Do you want to proceed?" / "Allow this tool?" style
// questions with numbered options where free-text entries read "Type
// here" or "Tell Claude what to do".
var DefaultPatterns = Patterns{
	QuestionPhrases:  []string{"want to", "allow", "proceed"},
	FreeformKeywords: []string{"type", "tell"},
	DefaultQuestion:  "Permission required",
}

// LoadPatterns reads a Patterns file in YAML format. Fields absent
// from the file fall back to [DefaultPatterns], so a file can override
// just one table. There is no search path or automatic discovery: the
// caller names exactly one file.
func LoadPatterns(path string) (Patterns, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Patterns{}, fmt.Errorf("reading patterns file: %w", err)
	}

	var patterns Patterns
	if err := yaml.Unmarshal(data, &patterns); err != nil {
		return Patterns{}, fmt.Errorf("parsing patterns file %q: %w", path, err)
	}

	if len(patterns.QuestionPhrases) == 0 {
		patterns.QuestionPhrases = DefaultPatterns.QuestionPhrases
	}
	if len(patterns.FreeformKeywords) == 0 {
		patterns.FreeformKeywords = DefaultPatterns.FreeformKeywords
	}
	if patterns.DefaultQuestion == "" {
		patterns.DefaultQuestion = DefaultPatterns.DefaultQuestion
	}
	return patterns, nil
}
