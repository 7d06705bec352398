package classify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/fpang/lapse-classify/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Retry policy for transient provider failures. Variables so tests can shorten them.
var (
	retryAttempts uint = 3
	retryDelay         = 500 * time.Millisecond
)

// call runs one provider request with retries on transient failures and
// records latency metrics for it. Every returned error is a *ClassificationError.
func call(ctx context.Context, provider, model string, fn func(context.Context) (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classifyError(provider, err)
	}

	var text string
	attempts := 0
	start := time.Now()

	err := retry.Do(
		func() error {
			attempts++
			out, err := fn(ctx)
			if err != nil {
				return classifyError(provider, err)
			}
			if strings.TrimSpace(out) == "" {
				return &ClassificationError{Provider: provider, Type: ErrTypeEmptyResponse, Message: "received empty response"}
			}
			text = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var ce *ClassificationError
			return errors.As(err, &ce) && ce.Transient()
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Str("provider", provider).Uint("attempt", n+1).Msg("Retrying classifier call")
		}),
	)
	elapsed := time.Since(start)

	m := metrics.New("LapseClassify").
		Dimension("Provider", provider).
		Dimension("Model", model).
		Metric("ClassifierLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("ClassifierAttempts", float64(attempts), metrics.UnitCount).
		Count("ClassifierCalls")
	if err != nil {
		m.Count("ClassifierErrors")
	}
	m.Flush()

	if err != nil {
		return "", classifyError(provider, err)
	}

	log.Debug().
		Str("provider", provider).
		Str("response", text).
		Dur("duration", elapsed).
		Msg("Classifier response received")

	return text, nil
}
