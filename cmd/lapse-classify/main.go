package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fpang/lapse-classify/internal/classify"
	"github.com/fpang/lapse-classify/internal/cli"
	"github.com/fpang/lapse-classify/internal/filehandler"
	"github.com/fpang/lapse-classify/internal/interact"
	"github.com/fpang/lapse-classify/internal/logging"
	"github.com/fpang/lapse-classify/internal/pipeline"
	"github.com/fpang/lapse-classify/internal/terminal"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const exitInterrupted = 130

// CLI flags
var (
	providerFlag string
	modelFlag    string
	yesFlag      bool
)

// rootCmd is the main Cobra command for the lapse-classify CLI.
var rootCmd = &cobra.Command{
	Use:   "lapse-classify",
	Short: "Sort time-lapse photos by who is in them",
	Long: `Lapse Classify sends every I*.jpeg in the current directory to a vision
model, which labels the person in it as an adult male (dada), adult female
(mama), child with glasses (capy) or child without glasses (platy).

Each photo is then shown in the terminal (Kitty or Sixel graphics when
available) and you confirm the label with a single key, or pick one when the
model could not decide. Confirmed photos are moved to
originals/<category>/<category>-<YYYYMMDD>.jpg using the EXIF capture date.

Examples:
  lapse-classify
  lapse-classify --provider ollama --model llava:13b
  lapse-classify --provider openai --yes`,
	Args: cobra.NoArgs,
	Run:  runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&providerFlag, "provider", "p", string(classify.Providers[0]), "Classifier provider (gemini, openai, ollama)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model name (default from <PROVIDER>_MODEL or the provider default)")
	rootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Accept recognized labels without asking")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	os.Exit(run())
}

func run() int {
	start := time.Now()
	runLog := logging.NewRunLogger("lapse-classify")
	runLog.Attach()

	dir, err := filepath.Abs(".")
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve working directory")
		return 1
	}

	// Probe before anything else reads stdin.
	capability := terminal.NewProbe(os.Stdin, os.Stdout).Detect()

	classifier, model, err := cli.InitClassifier(context.Background(), providerFlag, modelFlag)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize classifier")
		return 1
	}

	candidates, err := filehandler.Enumerate(".", filehandler.DefaultPattern)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list images")
		return 1
	}
	if len(candidates) == 0 {
		fmt.Printf("No images matching %s found.\n", filehandler.DefaultPattern)
		return 0
	}

	cli.CheckOriginals(".")

	pl := pipeline.New(classifier)
	runLog.
		Provider(classifier.Name(), model).
		Capability(capability.String()).
		Workers(pl.Workers()).
		Candidates(len(candidates)).
		Feature("autoConfirm", yesFlag).
		Config("directory", dir).
		Config("pattern", filehandler.DefaultPattern).
		Log()

	cli.PrintHeader(os.Stdout, cli.RunInfo{
		Directory:  dir,
		Candidates: len(candidates),
		Provider:   classifier.Name(),
		Model:      model,
		Graphics:   capability.String(),
		AutoAccept: yesFlag,
	})

	// Signals cancel classification only. Once the interactive phase starts
	// the terminal is in raw mode per keypress and Ctrl-C arrives as a key.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	results, err := pl.ClassifyAll(ctx, candidates)
	stop()
	if err != nil {
		if errors.Is(err, pipeline.ErrInterrupted) {
			fmt.Println("Interrupted, cancelling remaining classifications.")
			return exitInterrupted
		}
		log.Error().Err(err).Msg("Classification failed")
		return 1
	}

	ctrl := interact.New(interact.Config{
		Display:     terminal.NewTransmitter(capability, os.Stdout),
		Keys:        terminal.NewKeyReader(os.Stdin),
		Out:         os.Stdout,
		Root:        ".",
		AutoConfirm: yesFlag,
	})
	summary, err := ctrl.Run(context.Background(), results)
	cli.PrintSummary(os.Stdout, summary, time.Since(start))
	if err != nil {
		if errors.Is(err, pipeline.ErrInterrupted) {
			fmt.Println("Interrupted.")
			return exitInterrupted
		}
		log.Error().Err(err).Msg("Interactive review stopped")
		return 1
	}
	return 0
}
