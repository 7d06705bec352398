package terminal

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/mattn/go-sixel"
)

// SixelEncoder converts a PNG file into a Sixel stream.
type SixelEncoder interface {
	EncodeFile(w io.Writer, pngPath string) error
}

// DefaultSixelEncoder prefers the img2sixel binary and falls back to the
// in-process encoder.
func DefaultSixelEncoder() SixelEncoder {
	if bin, err := exec.LookPath("img2sixel"); err == nil {
		return img2sixel{bin: bin}
	}
	return goSixel{}
}

type img2sixel struct {
	bin string
}

func (e img2sixel) EncodeFile(w io.Writer, pngPath string) error {
	var stderr bytes.Buffer
	cmd := exec.Command(e.bin, pngPath)
	cmd.Stdout = w
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("img2sixel failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

type goSixel struct{}

func (goSixel) EncodeFile(w io.Writer, pngPath string) error {
	img, err := imaging.Open(pngPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", pngPath, err)
	}
	if err := sixel.NewEncoder(w).Encode(img); err != nil {
		return fmt.Errorf("sixel encode failed: %w", err)
	}
	return nil
}

// writeSixel stages img as a temporary PNG, encodes it and writes the stream
// followed by a newline. Nothing is written to w if encoding fails.
func writeSixel(w io.Writer, img image.Image, enc SixelEncoder) error {
	tmp, err := os.CreateTemp("", "lapse-thumb-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	var stream bytes.Buffer
	if err := enc.EncodeFile(&stream, tmpPath); err != nil {
		return err
	}
	stream.WriteByte('\n')
	_, err = stream.WriteTo(w)
	return err
}
