// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ptysession owns the pseudo-terminal pair, the child process
// attached to it, and the controlling terminal's saved mode.
//
// A Session is created once at wrapper startup and destroyed exactly
// once at shutdown, on every exit path: Close restores the controlling
// terminal's mode (when it was ever put into raw mode) and closes the
// master, no matter how the relay ended.
package ptysession

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// Geometry is a terminal size in character cells.
type Geometry struct {
	Rows uint16
	Cols uint16
}

// DefaultGeometry is used when the controlling terminal's size cannot
// be queried or the wrapper's input is not a terminal at all (piped
// input, CI).
var DefaultGeometry = Geometry{Rows: 24, Cols: 80}

// Session is the pseudo-terminal pair plus the child attached to its
// slave side. All methods are called from the relay goroutine only.
type Session struct {
	master  *os.File
	slave   *os.File
	command *exec.Cmd

	// interactive is true when the wrapper's stdin is a terminal.
	// Raw mode and geometry queries only make sense then.
	interactive bool
	geometry    Geometry

	// restoreTerminal undoes raw mode. Nil until EnterRawMode.
	restoreTerminal func() error

	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// Open allocates the master/slave pair and sizes the slave to the
// controlling terminal's current geometry (or DefaultGeometry when
// stdin is not a terminal or the query fails). Allocation failure is
// fatal; geometry failure degrades to the default.
func Open(logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("allocating pseudo-terminal: %w", err)
	}

	session := &Session{
		master:      master,
		slave:       slave,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
		geometry:    DefaultGeometry,
		logger:      logger,
	}

	if session.interactive {
		if size, err := pty.GetsizeFull(os.Stdin); err == nil {
			session.geometry = Geometry{Rows: size.Rows, Cols: size.Cols}
		} else {
			logger.Debug("terminal size query failed, using default", "error", err)
		}
	}

	if err := setSize(slave, session.geometry); err != nil {
		logger.Debug("setting initial pseudo-terminal size failed", "error", err)
	}

	return session, nil
}

// SpawnChild starts command attached to the slave side: the child gets
// its own session with the slave as controlling terminal (so terminal
// signals such as Ctrl-C inside the PTY route to it) and its stdin,
// stdout, and stderr bound to the slave. The parent's slave handle is
// closed once the child holds its own copies.
//
// A session runs exactly one child. If the command's image cannot be
// executed the child exits nonzero with no structured diagnostic
// routed back — the error surfaces only through the exit status.
func (session *Session) SpawnChild(command string, args []string) error {
	if session.command != nil {
		return errors.New("child already spawned for this session")
	}
	if session.slave == nil {
		return errors.New("session is closed")
	}

	child := exec.Command(command, args...)
	child.Stdin = session.slave
	child.Stdout = session.slave
	child.Stderr = session.slave
	// Ctty 0 refers to the child's fd 0, which is the slave.
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := child.Start(); err != nil {
		return fmt.Errorf("starting %q: %w", command, err)
	}

	session.command = child
	session.slave.Close()
	session.slave = nil
	return nil
}

// Master returns the master side of the pair. The relay reads child
// output from it and writes user input to it.
func (session *Session) Master() *os.File {
	return session.master
}

// Pid returns the child's process id, or 0 before SpawnChild.
func (session *Session) Pid() int {
	if session.command == nil || session.command.Process == nil {
		return 0
	}
	return session.command.Process.Pid
}

// Signal forwards a signal to the child.
func (session *Session) Signal(signal os.Signal) error {
	if session.command == nil || session.command.Process == nil {
		return errors.New("no child to signal")
	}
	return session.command.Process.Signal(signal)
}

// Wait blocks until the child exits and returns its wait error (nil
// for status 0).
func (session *Session) Wait() error {
	if session.command == nil {
		return errors.New("no child to wait for")
	}
	return session.command.Wait()
}

// Interactive reports whether the wrapper's stdin is a terminal.
func (session *Session) Interactive() bool {
	return session.interactive
}

// CurrentGeometry re-queries the controlling terminal's size. When the
// query fails, or stdin was never a terminal, the last known geometry
// is returned unchanged.
func (session *Session) CurrentGeometry() Geometry {
	if session.interactive {
		if size, err := pty.GetsizeFull(os.Stdin); err == nil {
			session.geometry = Geometry{Rows: size.Rows, Cols: size.Cols}
		}
	}
	return session.geometry
}

// Resize applies the geometry to the pseudo-terminal. The kernel
// delivers SIGWINCH to the child's process group as a side effect.
func (session *Session) Resize(geometry Geometry) error {
	if err := setSize(session.master, geometry); err != nil {
		return fmt.Errorf("resizing pseudo-terminal: %w", err)
	}
	session.geometry = geometry
	return nil
}

// EnterRawMode switches the controlling terminal to raw mode so
// keystrokes reach the child byte by byte, unbuffered and unechoed.
// A no-op when stdin is not a terminal. The saved mode is restored by
// Close.
func (session *Session) EnterRawMode() error {
	if !session.interactive || session.restoreTerminal != nil {
		return nil
	}
	fd := int(os.Stdin.Fd())
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	session.restoreTerminal = func() error {
		return term.Restore(fd, saved)
	}
	return nil
}

// Close restores the controlling terminal's saved mode and closes the
// pseudo-terminal descriptors. Safe to call on every exit path: the
// work runs exactly once, later calls return the first result.
func (session *Session) Close() error {
	session.closeOnce.Do(func() {
		var errs []error
		if session.restoreTerminal != nil {
			if err := session.restoreTerminal(); err != nil {
				errs = append(errs, fmt.Errorf("restoring terminal mode: %w", err))
			}
		}
		if err := session.master.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing master: %w", err))
		}
		if session.slave != nil {
			if err := session.slave.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing slave: %w", err))
			}
			session.slave = nil
		}
		session.closeErr = errors.Join(errs...)
	})
	return session.closeErr
}

func setSize(terminal *os.File, geometry Geometry) error {
	return pty.Setsize(terminal, &pty.Winsize{Rows: geometry.Rows, Cols: geometry.Cols})
}
