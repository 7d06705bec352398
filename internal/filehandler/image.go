package filehandler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// ErrNoDateTaken is returned when an image carries no usable capture date.
var ErrNoDateTaken = errors.New("no capture date in EXIF metadata")

// DateStampLayout formats the capture date used in target file names.
const DateStampLayout = "20060102"

// DateTaken reads the capture date from EXIF metadata.
// Priority: DateTimeOriginal > CreateDate. ModifyDate is ignored since edits
// would change the frame's place in the time-lapse.
func DateTaken(r io.ReadSeeker) (time.Time, error) {
	exifData, err := imagemeta.Decode(r)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	if t := exifData.DateTimeOriginal(); !t.IsZero() {
		return t, nil
	}
	if t := exifData.CreateDate(); !t.IsZero() {
		return t, nil
	}
	return time.Time{}, ErrNoDateTaken
}

// DateStamp returns a candidate's capture date as YYYYMMDD. The date found
// during preparation is used when present; otherwise the file is read again.
func DateStamp(c *Candidate) (string, error) {
	if stamp, ok, err := c.storedDate(); ok {
		return stamp, err
	}

	data, err := c.ReadFile()
	if err != nil {
		return "", err
	}
	return resolveDate(c, data)
}

// resolveDate reads the capture date from data and stores it on c.
func resolveDate(c *Candidate, data []byte) (string, error) {
	t, err := DateTaken(bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Str("path", c.Path).Msg("Capture date unavailable")
		c.setDate("", err)
		return "", err
	}
	stamp := t.Format(DateStampLayout)
	c.setDate(stamp, nil)
	return stamp, nil
}
