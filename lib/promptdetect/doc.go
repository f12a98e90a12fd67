// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package promptdetect recognizes interactive permission prompts in a
// coding agent's terminal output.
//
// The agent renders its permission prompt as ordinary terminal text: a
// question line ("Do you want to proceed?") followed by numbered
// options ("1. Yes", "2. No"). Nothing structured crosses the wire, so
// the wrapper watches the output stream itself. A [Detector] accumulates
// decoded output in a bounded buffer, strips terminal escape sequences,
// and hands the visible lines to a [Matcher] that parses question and
// option lines into a [PromptEvent].
//
// Detection is heuristic, not authoritative. The agent's phrasing,
// locale, or rendering can change under the wrapper, and chunked PTY
// reads can split a prompt across feeds. The Matcher interface exists
// so a structured handshake with the agent can replace the heuristic
// without touching the relay loop, and [Patterns] makes the phrase
// tables tunable without a rebuild.
package promptdetect
