package filehandler

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// DefaultScale is the fraction of the original dimensions sent to the classifier.
const DefaultScale = 0.2

// ImageProcessingError reports a failure to turn a file into a classifier payload.
type ImageProcessingError struct {
	Path string
	Op   string // read, decode, encode
	Err  error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("failed to %s image %s: %v", e.Op, e.Path, e.Err)
}

func (e *ImageProcessingError) Unwrap() error {
	return e.Err
}

// Prepared is the classifier payload for one candidate.
type Prepared struct {
	Data      []byte
	MIMEType  string
	Thumbnail image.Image
}

// Prepare decodes data honouring the EXIF orientation, scales it by scale
// with a Lanczos filter and re-encodes it as JPEG. The scaled image is kept
// as the display thumbnail.
func Prepare(path string, data []byte, scale float64) (*Prepared, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &ImageProcessingError{Path: path, Op: "decode", Err: err}
	}

	b := img.Bounds()
	width := max(1, int(float64(b.Dx())*scale))
	height := max(1, int(float64(b.Dy())*scale))
	resized := imaging.Resize(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG); err != nil {
		return nil, &ImageProcessingError{Path: path, Op: "encode", Err: err}
	}

	log.Debug().
		Str("path", path).
		Int("original_width", b.Dx()).
		Int("original_height", b.Dy()).
		Int("width", width).
		Int("height", height).
		Int("output_size", buf.Len()).
		Msg("Image prepared")

	return &Prepared{Data: buf.Bytes(), MIMEType: MIMEType, Thumbnail: resized}, nil
}

// PrepareCandidate reads c once, records its capture date and prepares the
// classifier payload. Only the thumbnail and the date stay on c; the
// full-size bytes are garbage once this returns.
func PrepareCandidate(c *Candidate) (*Prepared, error) {
	data, err := c.ReadFile()
	if err != nil {
		return nil, &ImageProcessingError{Path: c.Path, Op: "read", Err: err}
	}

	// An image without a date still gets classified; the interactive
	// phase reports the missing date.
	_, _ = resolveDate(c, data)

	p, err := Prepare(c.Path, data, DefaultScale)
	if err != nil {
		return nil, err
	}
	c.SetThumbnail(p.Thumbnail)
	return p, nil
}
