package terminal

import (
	"fmt"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// RawMode holds a terminal in raw mode until Restore is called.
type RawMode struct {
	fd    int
	state *term.State
	once  sync.Once
	err   error
}

// EnterRaw switches fd to raw mode. Callers must defer Restore.
func EnterRaw(fd int) (*RawMode, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	return &RawMode{fd: fd, state: state}, nil
}

// Restore returns the terminal to its previous mode. Safe to call more than once.
func (r *RawMode) Restore() error {
	r.once.Do(func() {
		if err := term.Restore(r.fd, r.state); err != nil {
			r.err = fmt.Errorf("failed to restore terminal: %w", err)
		}
	})
	return r.err
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
