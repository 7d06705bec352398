package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func fastRetry(t *testing.T) {
	t.Helper()
	prev := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = prev })
}

func TestCallRetriesTransient(t *testing.T) {
	fastRetry(t)

	calls := 0
	got, err := call(context.Background(), "test", "m", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &openai.APIError{HTTPStatusCode: 503}
		}
		return "adult male", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "adult male" {
		t.Errorf("got %q, want %q", got, "adult male")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestCallGivesUpAfterAttempts(t *testing.T) {
	fastRetry(t)

	calls := 0
	_, err := call(context.Background(), "test", "m", func(ctx context.Context) (string, error) {
		calls++
		return "", &openai.APIError{HTTPStatusCode: 429}
	})
	var ce *ClassificationError
	if !errors.As(err, &ce) || ce.Type != ErrTypeQuotaExceeded {
		t.Fatalf("expected quota ClassificationError, got %v", err)
	}
	if calls != int(retryAttempts) {
		t.Errorf("calls = %d, want %d", calls, retryAttempts)
	}
}

func TestCallDoesNotRetryCredentialErrors(t *testing.T) {
	fastRetry(t)

	calls := 0
	_, err := call(context.Background(), "test", "m", func(ctx context.Context) (string, error) {
		calls++
		return "", &openai.APIError{HTTPStatusCode: 401}
	})
	var ce *ClassificationError
	if !errors.As(err, &ce) || ce.Type != ErrTypeInvalidCredential {
		t.Fatalf("expected credential ClassificationError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCallEmptyResponse(t *testing.T) {
	fastRetry(t)

	_, err := call(context.Background(), "test", "m", func(ctx context.Context) (string, error) {
		return "  \n", nil
	})
	var ce *ClassificationError
	if !errors.As(err, &ce) || ce.Type != ErrTypeEmptyResponse {
		t.Fatalf("expected empty-response ClassificationError, got %v", err)
	}
}

func TestCallCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := call(ctx, "test", "m", func(ctx context.Context) (string, error) {
		calls++
		return "adult male", nil
	})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}
