package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/fpang/lapse-classify/internal/auth"
	"github.com/fpang/lapse-classify/internal/classify"
	"github.com/fpang/lapse-classify/internal/interact"
	"github.com/rs/zerolog/log"
)

// CheckOriginals warns when the destination directories are missing. Renames
// into a missing directory fail per file, so this is advisory only.
// Returns the number of missing category directories.
func CheckOriginals(root string) int {
	base := filepath.Join(root, interact.OriginalsDir)
	info, err := os.Stat(base)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", base).Msg("Destination directory not found; renames will fail")
			return len(classify.Categories)
		}
		log.Warn().Err(err).Str("path", base).Msg("Failed to access destination directory")
		return len(classify.Categories)
	}
	if !info.IsDir() {
		log.Warn().Str("path", base).Msg("Destination is not a directory; renames will fail")
		return len(classify.Categories)
	}

	missing := 0
	for _, c := range classify.Categories {
		dir := filepath.Join(base, string(c))
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			log.Warn().Str("path", dir).Msg("Category directory not found; renames to it will fail")
			missing++
		}
	}
	return missing
}

// ReportClassifierError logs why a classifier is unusable with a hint on how to fix it.
func ReportClassifierError(err error) {
	var ce *classify.ClassificationError
	if !errors.As(err, &ce) {
		log.Error().Err(err).Msg("Classifier unavailable")
		return
	}

	switch ce.Type {
	case classify.ErrTypeNoCredential:
		log.Error().Str("provider", ce.Provider).
			Msgf("No API key configured. Set %s; every image will be reported as failed", auth.EnvVar(ce.Provider))
	case classify.ErrTypeInvalidCredential:
		log.Error().Err(err).Msg("Invalid API key. Please check your API key and try again")
	case classify.ErrTypeNetwork:
		log.Error().Err(err).Msg("Network error. Please check your internet connection")
	case classify.ErrTypeQuotaExceeded:
		log.Error().Err(err).Msg("API quota exceeded. Please try again later or check your usage limits")
	default:
		log.Error().Err(err).Msg("Classifier unavailable")
	}
}
