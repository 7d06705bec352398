package terminal

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muesli/cancelreader"
)

// fakeTTY serves a canned DA1 reply and records cancellation.
type fakeTTY struct {
	pr       *io.PipeReader
	pw       *io.PipeWriter
	canceled atomic.Bool
	closed   atomic.Bool
}

func newFakeTTY(reply string) *fakeTTY {
	pr, pw := io.Pipe()
	f := &fakeTTY{pr: pr, pw: pw}
	if reply != "" {
		go pw.Write([]byte(reply))
	}
	return f
}

func (f *fakeTTY) Read(p []byte) (int, error) { return f.pr.Read(p) }

func (f *fakeTTY) Cancel() bool {
	f.canceled.Store(true)
	f.pr.CloseWithError(cancelreader.ErrCanceled)
	return true
}

func (f *fakeTTY) Close() error {
	f.closed.Store(true)
	return nil
}

type probeHarness struct {
	probe    *Probe
	tty      *fakeTTY
	out      *bytes.Buffer
	raws     int
	restores int
	opens    int
	events   []string
}

func newProbeHarness(env map[string]string, interactive bool, reply string) *probeHarness {
	h := &probeHarness{tty: newFakeTTY(reply), out: &bytes.Buffer{}}
	h.probe = &Probe{
		getenv:      func(k string) string { return env[k] },
		interactive: func() bool { return interactive },
		enterRaw: func() (func(), error) {
			h.raws++
			return func() {
				h.restores++
				h.events = append(h.events, "restore")
			}, nil
		},
		openReader: func() (cancelreader.CancelReader, error) {
			h.opens++
			return h.tty, nil
		},
		flushInput: func() { h.events = append(h.events, "flush") },
		out:         h.out,
		idleTimeout: 50 * time.Millisecond,
	}
	return h
}

func TestCapabilityFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Capability
	}{
		{"kitty window id", map[string]string{"KITTY_WINDOW_ID": "1"}, Kitty},
		{"wezterm", map[string]string{"TERM_PROGRAM": "WezTerm"}, Kitty},
		{"ghostty", map[string]string{"TERM_PROGRAM": "ghostty"}, Kitty},
		{"xterm-kitty", map[string]string{"TERM": "xterm-kitty"}, Kitty},
		{"kitty beats sixel term", map[string]string{"KITTY_WINDOW_ID": "3", "TERM": "foot"}, Kitty},
		{"iterm", map[string]string{"TERM_PROGRAM": "iTerm.app"}, Sixel},
		{"mlterm", map[string]string{"TERM_PROGRAM": "mlterm"}, Sixel},
		{"foot-extra", map[string]string{"TERM": "foot-extra"}, Sixel},
		{"xterm-sixel", map[string]string{"TERM": "xterm-sixel"}, Sixel},
		{"plain xterm", map[string]string{"TERM": "xterm-256color"}, None},
		{"empty", map[string]string{}, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := capabilityFromEnv(func(k string) string { return tt.env[k] })
			if got != tt.want {
				t.Errorf("capabilityFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectDeviceAttributes(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Capability
	}{
		{"leading", "\x1b[?4;6c", Sixel},
		{"middle", "\x1b[?62;4;9;22c", Sixel},
		{"trailing", "\x1b[?63;1;4c", Sixel},
		{"sole", "\x1b[?4c", Sixel},
		{"no question mark", "\x1b[62;4c", Sixel},
		{"no sixel", "\x1b[?62;22c", None},
		{"similar parameter", "\x1b[?64;42c", None},
		{"vt100", "\x1b[?1;2c", None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newProbeHarness(nil, true, tt.reply)
			if got := h.probe.Detect(); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
			if h.out.String() != "\x1b[c" {
				t.Errorf("query written = %q, want %q", h.out.String(), "\x1b[c")
			}
			if h.raws != 1 || h.restores != 1 {
				t.Errorf("raw mode entered %d times, restored %d times", h.raws, h.restores)
			}
			if !h.tty.canceled.Load() || !h.tty.closed.Load() {
				t.Error("reader not cancelled and closed")
			}
		})
	}
}

func TestDetectEnvironmentWinsOverReply(t *testing.T) {
	h := newProbeHarness(map[string]string{"KITTY_WINDOW_ID": "7"}, true, "\x1b[?62;4c")

	if got := h.probe.Detect(); got != Kitty {
		t.Errorf("Detect() = %v, want %v", got, Kitty)
	}
	if h.out.Len() != 0 || h.raws != 0 || h.opens != 0 {
		t.Error("terminal queried although environment identified it")
	}
}

func TestDetectTimeout(t *testing.T) {
	h := newProbeHarness(nil, true, "")

	start := time.Now()
	got := h.probe.Detect()
	elapsed := time.Since(start)

	if got != None {
		t.Errorf("Detect() = %v, want %v", got, None)
	}
	if elapsed > time.Second {
		t.Errorf("Detect() took %v", elapsed)
	}
	if !h.tty.canceled.Load() {
		t.Error("pending read not cancelled")
	}
	if h.restores != 1 {
		t.Errorf("restores = %d, want 1", h.restores)
	}
	if !slices.Equal(h.events, []string{"restore", "flush"}) {
		t.Errorf("events = %q, want pending input discarded after restore", h.events)
	}
}

func TestDetectIgnoresTypeaheadBeforeReply(t *testing.T) {
	h := newProbeHarness(nil, true, "abc\x1b[?62;4;22c")
	if got := h.probe.Detect(); got != Sixel {
		t.Errorf("Detect() = %v, want %v", got, Sixel)
	}
}

func TestDeviceAttributesReply(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		found bool
	}{
		{"\x1b[?62;4c", "\x1b[?62;4c", true},
		{"cc\x1b[?4c", "\x1b[?4c", true},
		{"\x1b[?4cextra", "\x1b[?4c", true},
		{"abc", "", false},
		{"c\x1b[?62;4", "", false},
	}
	for _, tt := range tests {
		got, ok := deviceAttributesReply([]byte(tt.in))
		if ok != tt.found || string(got) != tt.want {
			t.Errorf("deviceAttributesReply(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.found)
		}
	}
}

func TestDetectPartialReplyTimesOut(t *testing.T) {
	h := newProbeHarness(nil, true, "\x1b[?62;4")
	if got := h.probe.Detect(); got != None {
		t.Errorf("Detect() = %v, want %v", got, None)
	}
}

func TestDetectNotInteractive(t *testing.T) {
	h := newProbeHarness(nil, false, "\x1b[?4c")
	if got := h.probe.Detect(); got != None {
		t.Errorf("Detect() = %v, want %v", got, None)
	}
	if h.out.Len() != 0 || h.raws != 0 {
		t.Error("non-interactive session was queried")
	}
}

func TestDetectRawModeFailure(t *testing.T) {
	h := newProbeHarness(nil, true, "\x1b[?4c")
	h.probe.enterRaw = func() (func(), error) { return nil, errors.New("not a tty") }

	if got := h.probe.Detect(); got != None {
		t.Errorf("Detect() = %v, want %v", got, None)
	}
	if h.out.Len() != 0 {
		t.Error("query written without raw mode")
	}
}

func TestDetectMemoized(t *testing.T) {
	h := newProbeHarness(nil, true, "\x1b[?4c")

	first := h.probe.Detect()
	second := h.probe.Detect()

	if first != Sixel || second != Sixel {
		t.Errorf("Detect() = %v then %v, want %v twice", first, second, Sixel)
	}
	if h.opens != 1 {
		t.Errorf("terminal probed %d times, want 1", h.opens)
	}
}

func TestParseDeviceAttributes(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"\x1b[?62;4;22c", []string{"62", "4", "22"}},
		{"noise\x1b[?4c", []string{"4"}},
		{"\x1b[c", nil},
		{"\x1b[?62;4", nil},
		{"garbage", nil},
	}
	for _, tt := range tests {
		got := parseDeviceAttributes([]byte(tt.in))
		if len(got) != len(tt.want) {
			t.Errorf("parseDeviceAttributes(%q) = %q, want %q", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseDeviceAttributes(%q) = %q, want %q", tt.in, got, tt.want)
				break
			}
		}
	}
}
