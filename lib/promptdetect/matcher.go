// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package promptdetect

import (
	"regexp"
	"strconv"
	"strings"
)

// Matcher recognizes a permission prompt in stripped terminal output.
// The lines are visible text: escape sequences and control bytes have
// already been removed by the Detector.
//
// Returns nil when no prompt is present. Implementations must be
// stateless across calls — the Detector re-scans its whole buffer on
// every feed, so a Matcher sees overlapping line sets.
type Matcher interface {
	Match(lines []string) *PromptEvent
}

// optionLinePattern matches a numbered option line: optional selection
// marker glyphs and whitespace, an integer, a period, whitespace, then
// the label.
var optionLinePattern = regexp.MustCompile(`^[›❯>\s]*(\d+)\.\s+(.+)$`)

// HeuristicMatcher is the default text-pattern matcher. It scans every
// line twice, independently: once for a question line (a question mark
// plus a confirmation phrase) and once for numbered option lines. A
// prompt is reported only when at least two option lines were found —
// a lone "1. ..." line is far more likely to be a list item than a
// prompt.
type HeuristicMatcher struct {
	patterns Patterns
}

// NewHeuristicMatcher builds a matcher over the given phrase tables.
func NewHeuristicMatcher(patterns Patterns) *HeuristicMatcher {
	return &HeuristicMatcher{patterns: patterns}
}

// Match implements [Matcher].
func (matcher *HeuristicMatcher) Match(lines []string) *PromptEvent {
	var question string
	var options []PromptOption

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if matcher.isQuestionLine(line) {
			question = line
		}

		if groups := optionLinePattern.FindStringSubmatch(line); groups != nil {
			id, err := strconv.Atoi(groups[1])
			if err != nil {
				// \d+ longer than an int — not a real option.
				continue
			}
			label := strings.TrimSpace(groups[2])
			options = append(options, PromptOption{
				ID:            id,
				Label:         label,
				RequiresInput: matcher.requiresInput(label),
			})
		}
	}

	if len(options) < 2 {
		return nil
	}
	if question == "" {
		question = matcher.patterns.DefaultQuestion
	}
	return &PromptEvent{Question: question, Options: options}
}

func (matcher *HeuristicMatcher) isQuestionLine(line string) bool {
	if !strings.Contains(line, "?") {
		return false
	}
	lowered := strings.ToLower(line)
	for _, phrase := range matcher.patterns.QuestionPhrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

func (matcher *HeuristicMatcher) requiresInput(label string) bool {
	lowered := strings.ToLower(label)
	for _, keyword := range matcher.patterns.FreeformKeywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
