package terminal

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
)

// openPTY returns the controlling side and the terminal side of a pseudo terminal.
func openPTY(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pseudo terminal unavailable: %v", err)
	}
	t.Cleanup(func() {
		tty.Close()
		ptmx.Close()
	})
	return ptmx, tty
}

// awaitQuery reads from the controlling side until the DA1 query shows up.
func awaitQuery(ptmx *os.File) bool {
	buf := make([]byte, 64)
	var seen []byte
	for !bytes.Contains(seen, []byte(deviceAttributesQuery)) {
		n, err := ptmx.Read(buf)
		if err != nil {
			return false
		}
		seen = append(seen, buf[:n]...)
	}
	return true
}

func TestLateDeviceAttributesReplyNotReadAsKeys(t *testing.T) {
	ptmx, tty := openPTY(t)

	probe := NewProbe(tty, tty)
	probe.getenv = func(string) string { return "" }

	go func() {
		if !awaitQuery(ptmx) {
			return
		}
		time.Sleep(250 * time.Millisecond)
		ptmx.Write([]byte("\x1b[?62;4;22c"))
		time.Sleep(50 * time.Millisecond)
		ptmx.Write([]byte("y"))
		io.Copy(io.Discard, ptmx)
	}()

	if got := probe.Detect(); got != None {
		t.Fatalf("Detect() = %v, want %v for a reply after the timeout", got, None)
	}

	key, err := NewKeyReader(tty).ReadKey()
	if err != nil {
		t.Fatalf("ReadKey: %v", err)
	}
	if key != 'y' {
		t.Errorf("first key = %q, want the typed 'y'", key)
	}
}

func TestDetectOverPTY(t *testing.T) {
	ptmx, tty := openPTY(t)

	probe := NewProbe(tty, tty)
	probe.getenv = func(string) string { return "" }

	go func() {
		if !awaitQuery(ptmx) {
			return
		}
		ptmx.Write([]byte("\x1b[?62;4;22c"))
		io.Copy(io.Discard, ptmx)
	}()

	if got := probe.Detect(); got != Sixel {
		t.Errorf("Detect() = %v, want %v", got, Sixel)
	}
}
