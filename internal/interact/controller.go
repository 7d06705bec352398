// Package interact walks the user through classified candidates one at a
// time: show the thumbnail, ask for confirmation or a manual category, and
// move the file into place.
package interact

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/fpang/lapse-classify/internal/classify"
	"github.com/fpang/lapse-classify/internal/filehandler"
	"github.com/fpang/lapse-classify/internal/pipeline"
	"github.com/fpang/lapse-classify/internal/terminal"
	"github.com/rs/zerolog/log"
)

// Displayer draws a thumbnail.
type Displayer interface {
	Display(img image.Image)
}

// DateResolver returns a candidate's capture date as YYYYMMDD.
type DateResolver func(*filehandler.Candidate) (string, error)

// Config wires a Controller. Zero fields get the production defaults.
type Config struct {
	Display Displayer
	Keys    terminal.KeyReader
	Renamer Renamer
	Dates   DateResolver
	Out     io.Writer
	Root    string // directory containing originals/

	// AutoConfirm accepts recognized labels without showing or asking.
	// Unrecognized candidates are still shown and asked.
	AutoConfirm bool
}

// Controller runs the interactive phase sequentially.
type Controller struct {
	display     Displayer
	keys        terminal.KeyReader
	renamer     Renamer
	dates       DateResolver
	out         io.Writer
	root        string
	autoConfirm bool
}

// New returns a Controller for cfg.
func New(cfg Config) *Controller {
	c := &Controller{
		display:     cfg.Display,
		keys:        cfg.Keys,
		renamer:     cfg.Renamer,
		dates:       cfg.Dates,
		out:         cfg.Out,
		root:        cfg.Root,
		autoConfirm: cfg.AutoConfirm,
	}
	if c.display == nil {
		c.display = terminal.NewTransmitter(terminal.None, os.Stdout)
	}
	if c.keys == nil {
		c.keys = terminal.NewKeyReader(os.Stdin)
	}
	if c.renamer == nil {
		c.renamer = FileRenamer{}
	}
	if c.dates == nil {
		c.dates = filehandler.DateStamp
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.root == "" {
		c.root = "."
	}
	return c
}

// Run handles every result in order. It stops early only when the user
// interrupts, returning pipeline.ErrInterrupted with the summary so far.
func (c *Controller) Run(ctx context.Context, results []pipeline.Result) (Summary, error) {
	var summary Summary

	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("%w: %w", pipeline.ErrInterrupted, err)
		}

		final, err := c.handle(r)
		if err != nil {
			return summary, err
		}

		switch {
		case final.Kind == Resolved:
			summary.Renamed++
		case r.Outcome.Kind == classify.OutcomeFailed, final.Reason == reasonRenameFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}

	log.Info().
		Int("renamed", summary.Renamed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Interactive review complete")

	return summary, nil
}

const (
	reasonNoDate       = "no capture date"
	reasonDeclined     = "declined"
	reasonInvalid      = "invalid choice"
	reasonRenameFailed = "rename failed"
)

// handle drives one candidate to Resolved or Skipped.
func (c *Controller) handle(r pipeline.Result) (State, error) {
	cand := r.Candidate
	defer cand.Release()

	date, err := c.dates(cand)
	if err != nil {
		fmt.Fprintf(c.out, "Couldn't determine date for %s. Skipping...\n", cand.Path)
		return State{Kind: Skipped, Reason: reasonNoDate}, nil
	}

	if r.Outcome.Kind == classify.OutcomeFailed {
		fmt.Fprintf(c.out, "Error classifying image %s: %s. Skipping...\n", cand.Path, r.Outcome.Reason())
		return State{Kind: Skipped, Reason: r.Outcome.Reason()}, nil
	}

	shown := false
	show := func() {
		if !shown {
			c.display.Display(cand.Thumbnail())
			shown = true
		}
	}

	state := entryState(r.Outcome)
	for {
		log.Debug().Str("file", cand.Name()).Str("state", state.Kind.String()).Msg("Interaction state")

		switch state.Kind {
		case AwaitingConfirmation:
			if c.autoConfirm {
				state = State{Kind: Resolved, Category: state.Category}
				continue
			}
			show()
			fmt.Fprintf(c.out, "%s? (y/n) ", state.Category)
			key, err := c.readKey()
			if err != nil {
				return state, err
			}
			if key == 'y' {
				state = State{Kind: Resolved, Category: state.Category}
			} else {
				fmt.Fprintln(c.out, "Skipped.")
				state = State{Kind: Skipped, Reason: reasonDeclined}
			}

		case AwaitingManualChoice:
			show()
			fmt.Fprintf(c.out, "Unable to classify %s (%q). %s? ", cand.Name(), r.Outcome.Text, classify.ShortcutMenu())
			key, err := c.readKey()
			if err != nil {
				return state, err
			}
			if cat, ok := classify.CategoryForShortcut(key); ok {
				state = State{Kind: Resolved, Category: cat}
			} else {
				fmt.Fprintln(c.out, "Skipped: invalid choice.")
				state = State{Kind: Skipped, Reason: reasonInvalid}
			}

		case Resolved:
			target := TargetPath(c.root, state.Category, date)
			if err := c.renamer.Rename(cand.Path, target); err != nil {
				log.Error().Err(err).Str("from", cand.Path).Str("to", target).Msg("Failed to rename file")
				fmt.Fprintf(c.out, "Failed to rename %s: %v\n", cand.Path, err)
				return State{Kind: Skipped, Reason: reasonRenameFailed}, nil
			}
			fmt.Fprintf(c.out, "Renamed to %s\n", target)
			return state, nil

		default:
			return state, nil
		}
	}
}

// readKey reads one answer and echoes it. Ctrl-C becomes ErrInterrupted.
func (c *Controller) readKey() (byte, error) {
	key, err := c.keys.ReadKey()
	if err != nil {
		fmt.Fprintln(c.out)
		if errors.Is(err, terminal.ErrKeyInterrupt) {
			return 0, fmt.Errorf("%w: %w", pipeline.ErrInterrupted, err)
		}
		return 0, fmt.Errorf("failed to read answer: %w", err)
	}
	if key >= 0x20 && key < 0x7f {
		fmt.Fprintf(c.out, "%c\n", key)
	} else {
		fmt.Fprintln(c.out)
	}
	return key, nil
}
