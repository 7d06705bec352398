// Package filehandler loads time-lapse frames from disk and prepares them for
// classification.
//
// A Candidate is one image file awaiting classification. Preparation reads the
// file once and keeps only what the interactive phase needs: the capture date
// and the downscaled thumbnail. Full-size bytes are never retained.
package filehandler

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultPattern matches the camera's file names in the working directory.
const DefaultPattern = "I*.jpeg"

// MIMEType of every candidate.
const MIMEType = "image/jpeg"

// Candidate is an image file awaiting classification. Path is its identity.
type Candidate struct {
	Path string

	mu      sync.Mutex
	thumb   image.Image
	date    string
	dateErr error
	dated   bool
}

// NewCandidate returns a Candidate for path without touching the file.
func NewCandidate(path string) *Candidate {
	return &Candidate{Path: path}
}

// Name returns the file name without directory.
func (c *Candidate) Name() string {
	return filepath.Base(c.Path)
}

// ReadFile returns the current file contents. Nothing is cached.
func (c *Candidate) ReadFile() ([]byte, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.Path, err)
	}
	return data, nil
}

// Thumbnail returns the downscaled image stored by preparation, or nil.
func (c *Candidate) Thumbnail() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thumb
}

// SetThumbnail stores the downscaled image for later display.
func (c *Candidate) SetThumbnail(img image.Image) {
	c.mu.Lock()
	c.thumb = img
	c.mu.Unlock()
}

func (c *Candidate) setDate(stamp string, err error) {
	c.mu.Lock()
	c.date, c.dateErr, c.dated = stamp, err, true
	c.mu.Unlock()
}

func (c *Candidate) storedDate() (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date, c.dated, c.dateErr
}

// Release drops the thumbnail and the stored capture date.
func (c *Candidate) Release() {
	c.mu.Lock()
	c.thumb = nil
	c.date, c.dateErr, c.dated = "", nil, false
	c.mu.Unlock()
}

// Enumerate returns a Candidate for every file in dir matching pattern, sorted by path.
func Enumerate(dir, pattern string) ([]*Candidate, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	candidates := make([]*Candidate, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable file")
			continue
		}
		if info.IsDir() {
			continue
		}
		candidates = append(candidates, NewCandidate(path))
	}

	log.Debug().
		Str("dir", dir).
		Str("pattern", pattern).
		Int("count", len(candidates)).
		Msg("Candidates enumerated")

	return candidates, nil
}
