package interact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fpang/lapse-classify/internal/classify"
)

// OriginalsDir holds one subdirectory per category.
const OriginalsDir = "originals"

// ErrTargetExists is returned instead of overwriting an existing file.
var ErrTargetExists = errors.New("target already exists")

// RenameError reports a failed move of a candidate to its target.
type RenameError struct {
	From string
	To   string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s to %s: %v", e.From, e.To, e.Err)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// TargetPath returns originals/{category}/{category}-{date}.jpg under root.
func TargetPath(root string, c classify.Category, dateStamp string) string {
	name := fmt.Sprintf("%s-%s.jpg", c, dateStamp)
	return filepath.Join(root, OriginalsDir, string(c), name)
}

// Renamer moves a file.
type Renamer interface {
	Rename(from, to string) error
}

// FileRenamer renames on the local filesystem without overwriting.
// Destination directories must already exist.
type FileRenamer struct{}

func (FileRenamer) Rename(from, to string) error {
	if _, err := os.Lstat(to); err == nil {
		return &RenameError{From: from, To: to, Err: ErrTargetExists}
	} else if !errors.Is(err, os.ErrNotExist) {
		return &RenameError{From: from, To: to, Err: err}
	}
	if err := os.Rename(from, to); err != nil {
		return &RenameError{From: from, To: to, Err: err}
	}
	return nil
}
