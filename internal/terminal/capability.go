// Package terminal detects which inline image protocol the controlling
// terminal speaks and draws thumbnails with it.
//
// Detection runs once per process. Environment variables set by known
// terminals are trusted first; otherwise the terminal is asked for its
// Primary Device Attributes and Sixel support is read from the reply.
package terminal

import "fmt"

// Capability is the inline graphics protocol a terminal supports.
type Capability int

const (
	None Capability = iota
	Sixel
	Kitty
)

func (c Capability) String() string {
	switch c {
	case None:
		return "none"
	case Sixel:
		return "sixel"
	case Kitty:
		return "kitty"
	default:
		return fmt.Sprintf("Capability(%d)", int(c))
	}
}
