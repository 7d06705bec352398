package terminal

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// DefaultMaxDimension bounds the longer edge of a displayed thumbnail.
const DefaultMaxDimension = 800

// Transmitter draws thumbnails using the terminal's capability. Display
// never fails; anything that cannot be drawn becomes a one-line placeholder.
type Transmitter struct {
	capability   Capability
	out          io.Writer
	maxDimension int
	sixel        SixelEncoder
}

// TransmitterOption configures a Transmitter.
type TransmitterOption func(*Transmitter)

// WithMaxDimension overrides DefaultMaxDimension.
func WithMaxDimension(n int) TransmitterOption {
	return func(t *Transmitter) { t.maxDimension = n }
}

// WithSixelEncoder overrides DefaultSixelEncoder.
func WithSixelEncoder(enc SixelEncoder) TransmitterOption {
	return func(t *Transmitter) { t.sixel = enc }
}

// NewTransmitter returns a Transmitter writing to out.
func NewTransmitter(c Capability, out io.Writer, opts ...TransmitterOption) *Transmitter {
	t := &Transmitter{capability: c, out: out, maxDimension: DefaultMaxDimension}
	for _, opt := range opts {
		opt(t)
	}
	if c == Sixel && t.sixel == nil {
		t.sixel = DefaultSixelEncoder()
	}
	return t
}

// Capability returns the protocol this Transmitter draws with.
func (t *Transmitter) Capability() Capability {
	return t.capability
}

// Display draws img.
func (t *Transmitter) Display(img image.Image) {
	if img == nil {
		t.placeholder("no thumbnail available")
		return
	}
	if t.capability == None {
		t.placeholder("terminal graphics not supported")
		return
	}

	img = fit(img, t.maxDimension)

	var err error
	switch t.capability {
	case Kitty:
		var png bytes.Buffer
		if err = imaging.Encode(&png, img, imaging.PNG); err == nil {
			err = writeKitty(t.out, png.Bytes())
		}
	case Sixel:
		err = writeSixel(t.out, img, t.sixel)
	default:
		err = fmt.Errorf("unknown capability %v", t.capability)
	}

	if err != nil {
		log.Warn().Err(err).Str("capability", t.capability.String()).Msg("Thumbnail display failed")
		t.placeholder(err.Error())
	}
}

func (t *Transmitter) placeholder(reason string) {
	fmt.Fprintf(t.out, "[thumbnail not shown: %s]\n", reason)
}

// fit scales img down so its longer edge is at most maxDim.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
