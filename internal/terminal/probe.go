package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/muesli/cancelreader"
	"github.com/rs/zerolog/log"
)

// DefaultIdleTimeout bounds the wait between bytes of a device attributes reply.
const DefaultIdleTimeout = 100 * time.Millisecond

// csi introduces control sequences.
const csi = "\x1b["

// deviceAttributesQuery is Primary Device Attributes (DA1).
const deviceAttributesQuery = csi + "c"

// sixelAttribute is the DA1 parameter advertising Sixel graphics.
const sixelAttribute = "4"

var errProbeTimeout = errors.New("no device attributes reply")

var (
	kittyTermPrograms = []string{"kitty", "WezTerm", "ghostty"}
	kittyTerms        = []string{"xterm-kitty", "xterm-ghostty"}
	sixelTermPrograms = []string{"mlterm", "foot", "contour", "iTerm.app"}
	sixelTerms        = []string{"mlterm", "foot", "foot-extra", "yaft-256color", "xterm-sixel"}
)

// Probe determines the terminal's Capability once and remembers it.
type Probe struct {
	getenv      func(string) string
	interactive func() bool
	enterRaw    func() (restore func(), err error)
	openReader  func() (cancelreader.CancelReader, error)
	flushInput  func()
	out         io.Writer
	idleTimeout time.Duration

	once       sync.Once
	capability Capability
}

// NewProbe returns a Probe that queries the terminal on in and out.
func NewProbe(in, out *os.File) *Probe {
	return &Probe{
		getenv: os.Getenv,
		interactive: func() bool {
			return IsTerminal(in) && IsTerminal(out)
		},
		enterRaw: func() (func(), error) {
			raw, err := EnterRaw(int(in.Fd()))
			if err != nil {
				return nil, err
			}
			return func() {
				if err := raw.Restore(); err != nil {
					log.Warn().Err(err).Msg("Terminal left in raw mode")
				}
			}, nil
		},
		openReader: func() (cancelreader.CancelReader, error) {
			return cancelreader.NewReader(in)
		},
		flushInput: func() {
			if err := discardInput(int(in.Fd())); err != nil {
				log.Debug().Err(err).Msg("Could not discard pending terminal input")
			}
		},
		out:         out,
		idleTimeout: DefaultIdleTimeout,
	}
}

// Detect returns the terminal's capability. Only the first call probes.
func (p *Probe) Detect() Capability {
	p.once.Do(func() {
		start := time.Now()
		c, source := p.detect()
		p.capability = c
		log.Debug().
			Str("capability", c.String()).
			Str("source", source).
			Dur("duration", time.Since(start)).
			Msg("Terminal graphics capability detected")
	})
	return p.capability
}

func (p *Probe) detect() (Capability, string) {
	if c := capabilityFromEnv(p.getenv); c != None {
		return c, "env"
	}
	if !p.interactive() {
		return None, "not a terminal"
	}

	resp, err := p.query()
	if err != nil {
		log.Debug().Err(err).Msg("Device attributes query failed")
		return None, "da1"
	}
	if slices.Contains(parseDeviceAttributes(resp), sixelAttribute) {
		return Sixel, "da1"
	}
	return None, "da1"
}

// capabilityFromEnv recognises terminals that identify themselves. Kitty wins
// over Sixel since every Kitty-protocol terminal listed can also draw Sixel.
func capabilityFromEnv(getenv func(string) string) Capability {
	termProgram := getenv("TERM_PROGRAM")
	termName := getenv("TERM")

	switch {
	case getenv("KITTY_WINDOW_ID") != "",
		slices.Contains(kittyTermPrograms, termProgram),
		slices.Contains(kittyTerms, termName):
		return Kitty
	case slices.Contains(sixelTermPrograms, termProgram),
		slices.Contains(sixelTerms, termName):
		return Sixel
	default:
		return None
	}
}

// query sends DA1 in raw mode and returns the raw reply. Whatever is still
// queued on the terminal afterwards, such as a reply that missed the
// timeout, is discarded.
func (p *Probe) query() ([]byte, error) {
	restore, err := p.enterRaw()
	if err != nil {
		return nil, err
	}
	defer func() {
		restore()
		p.flushInput()
	}()

	r, err := p.openReader()
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal reader: %w", err)
	}
	defer r.Close()

	if _, err := io.WriteString(p.out, deviceAttributesQuery); err != nil {
		return nil, fmt.Errorf("failed to write device attributes query: %w", err)
	}
	return readResponse(r, p.idleTimeout)
}

type readChunk struct {
	b   []byte
	err error
}

// readResponse collects bytes until a DA1 reply terminated by 'c' arrives or no
// byte arrives within idle. The background read is cancelled and awaited
// before returning so it cannot consume later input.
func readResponse(r cancelreader.CancelReader, idle time.Duration) ([]byte, error) {
	chunks := make(chan readChunk)
	done := make(chan struct{})

	go func() {
		defer close(chunks)
		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case chunks <- readChunk{b: bytes.Clone(buf[:n])}:
				case <-done:
					return
				}
			}
			if err != nil {
				select {
				case chunks <- readChunk{err: err}:
				case <-done:
				}
				return
			}
		}
	}()

	defer func() {
		close(done)
		if r.Cancel() {
			for range chunks {
			}
		} else {
			log.Warn().Msg("Could not cancel terminal read")
		}
	}()

	var resp []byte
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		select {
		case c, ok := <-chunks:
			if !ok {
				return nil, io.ErrUnexpectedEOF
			}
			if c.err != nil {
				return nil, c.err
			}
			resp = append(resp, c.b...)
			if reply, ok := deviceAttributesReply(resp); ok {
				return reply, nil
			}
			timer.Reset(idle)
		case <-timer.C:
			return nil, errProbeTimeout
		}
	}
}

// deviceAttributesReply finds a complete "ESC [ ... c" sequence in buf,
// ignoring any typeahead before the introducer.
func deviceAttributesReply(buf []byte) ([]byte, bool) {
	start := bytes.Index(buf, []byte(csi))
	if start < 0 {
		return nil, false
	}
	end := bytes.IndexByte(buf[start+len(csi):], 'c')
	if end < 0 {
		return nil, false
	}
	return buf[start : start+len(csi)+end+1], true
}

// parseDeviceAttributes returns the parameters of a DA1 reply such as
// "\x1b[?62;4;22c".
func parseDeviceAttributes(resp []byte) []string {
	s := string(resp)
	i := strings.Index(s, csi)
	if i < 0 {
		return nil
	}
	s = strings.TrimPrefix(s[i+len(csi):], "?")
	s, _, found := strings.Cut(s, "c")
	if !found || s == "" {
		return nil
	}
	return strings.Split(s, ";")
}
