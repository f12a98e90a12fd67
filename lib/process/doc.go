// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers: fatal error
// reporting to stderr before the structured logger exists, and mapping
// child process wait errors to exit codes so the wrapper can propagate
// the child's status as its own.
package process
