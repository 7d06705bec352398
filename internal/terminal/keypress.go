package terminal

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// ErrKeyInterrupt is returned when Ctrl-C is read as a keypress.
var ErrKeyInterrupt = errors.New("interrupt key pressed")

const (
	keyInterrupt = 0x03
	keyEscape    = 0x1b
)

// KeyReader reads single keypresses.
type KeyReader interface {
	ReadKey() (byte, error)
}

// TTYKeyReader reads one key at a time in raw mode when attached to a
// terminal, and one non-newline byte at a time otherwise. Control sequences
// (ESC [ ... final byte) are never returned as keys, so a terminal report
// that arrives late cannot answer a prompt.
type TTYKeyReader struct {
	in          io.Reader
	fd          int
	interactive bool
	buffered    *bufio.Reader

	discard   func(fd int) error
	discarded bool
	pending   []byte
}

// NewKeyReader returns a KeyReader for f.
func NewKeyReader(f *os.File) *TTYKeyReader {
	return &TTYKeyReader{
		in:          f,
		fd:          int(f.Fd()),
		interactive: IsTerminal(f),
		discard:     discardInput,
	}
}

// ReadKey blocks for the next key. Ctrl-C yields ErrKeyInterrupt. Input
// already queued on the terminal before the first call is discarded.
func (k *TTYKeyReader) ReadKey() (byte, error) {
	if !k.interactive {
		return k.nextKey(k.readLineByte)
	}

	raw, err := EnterRaw(k.fd)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := raw.Restore(); err != nil {
			log.Warn().Err(err).Msg("Terminal left in raw mode")
		}
	}()

	if !k.discarded && k.discard != nil {
		k.discarded = true
		if err := k.discard(k.fd); err != nil {
			log.Debug().Err(err).Msg("Could not discard pending terminal input")
		}
	}
	return k.nextKey(k.readRawByte)
}

func (k *TTYKeyReader) readRawByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(k.in, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// readLineByte serves piped or line-buffered input, where each answer is
// followed by a newline.
func (k *TTYKeyReader) readLineByte() (byte, error) {
	if k.buffered == nil {
		k.buffered = bufio.NewReader(k.in)
	}
	for {
		b, err := k.buffered.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != '\r' && b != '\n' {
			return b, nil
		}
	}
}

func (k *TTYKeyReader) next(read func() (byte, error)) (byte, error) {
	if len(k.pending) > 0 {
		b := k.pending[0]
		k.pending = k.pending[1:]
		return b, nil
	}
	return read()
}

// nextKey returns the next key from read, skipping control sequences.
// A lone ESC is returned as a key; the byte read after it is kept for the
// next call.
func (k *TTYKeyReader) nextKey(read func() (byte, error)) (byte, error) {
	for {
		b, err := k.next(read)
		if err != nil {
			return 0, err
		}
		switch b {
		case keyInterrupt:
			return 0, ErrKeyInterrupt
		case keyEscape:
		default:
			return b, nil
		}

		b, err = k.next(read)
		if err != nil {
			return 0, err
		}
		if b != '[' {
			k.pending = append(k.pending, b)
			return keyEscape, nil
		}
		if err := k.skipControlSequence(read); err != nil {
			return 0, err
		}
	}
}

// skipControlSequence consumes parameter and intermediate bytes up to and
// including the final byte (0x40-0x7E).
func (k *TTYKeyReader) skipControlSequence(read func() (byte, error)) error {
	for {
		b, err := k.next(read)
		if err != nil {
			return err
		}
		if b == keyInterrupt {
			return ErrKeyInterrupt
		}
		if b >= 0x40 && b <= 0x7e {
			return nil
		}
	}
}
