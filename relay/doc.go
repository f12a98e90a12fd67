// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay drives a child interactive program through a
// pseudo-terminal: it forwards bytes between the controlling terminal
// and the child in both directions in real time, propagates terminal
// geometry changes, and watches the child's output for permission
// prompts, emitting them on an optional side channel.
//
// The loop is cooperative and single-owner: one goroutine runs the
// select loop and owns all mutable state (detector buffer, session
// handles, exit status). Reader pumps and the child waiter only
// deliver data and results over channels. Signal handlers do no work
// in signal context — signal.Notify turns SIGWINCH and SIGINT into
// channel receives handled by the same loop.
//
// Correctness of the byte relay is prioritized over everything
// optional: side-channel and mirror failures are swallowed, detection
// failures produce no event, and a mid-loop I/O failure terminates the
// relay without retries. Terminal-mode restore and descriptor close
// run exactly once on every exit path.
package relay
