package classify

import (
	"context"
	"errors"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrorType categorizes classifier failures.
type ErrorType int

const (
	// ErrTypeNoCredential indicates no API key was configured for the provider.
	ErrTypeNoCredential ErrorType = iota
	// ErrTypeInvalidCredential indicates the API key is invalid or revoked.
	ErrTypeInvalidCredential
	// ErrTypeNetwork indicates a connectivity issue or a provider-side 5xx.
	ErrTypeNetwork
	// ErrTypeQuotaExceeded indicates rate limiting or quota exhaustion.
	ErrTypeQuotaExceeded
	// ErrTypeEmptyResponse indicates the provider answered with no text.
	ErrTypeEmptyResponse
	// ErrTypeCanceled indicates the call was abandoned because its context ended.
	ErrTypeCanceled
	// ErrTypeProvider indicates any other provider error.
	ErrTypeProvider
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeNoCredential:
		return "no_credential"
	case ErrTypeInvalidCredential:
		return "invalid_credential"
	case ErrTypeNetwork:
		return "network_error"
	case ErrTypeQuotaExceeded:
		return "quota"
	case ErrTypeEmptyResponse:
		return "empty_response"
	case ErrTypeCanceled:
		return "canceled"
	default:
		return "provider_error"
	}
}

// ClassificationError is a failed classifier call for one image.
type ClassificationError struct {
	Provider string
	Type     ErrorType
	Message  string
	Err      error
}

func (e *ClassificationError) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the call may succeed.
func (e *ClassificationError) Transient() bool {
	return e.Type == ErrTypeNetwork || e.Type == ErrTypeQuotaExceeded
}

// classifyError analyzes a provider error and returns a ClassificationError with the appropriate type.
func classifyError(provider string, err error) *ClassificationError {
	if err == nil {
		return nil
	}

	var ce *ClassificationError
	if errors.As(err, &ce) {
		return ce
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ClassificationError{Provider: provider, Type: ErrTypeCanceled, Message: "call abandoned", Err: err}
	}

	if code, ok := statusCode(err); ok {
		return classifyStatus(provider, code, err)
	}

	errLower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errLower, "api key not valid") ||
		strings.Contains(errLower, "invalid api key") ||
		strings.Contains(errLower, "incorrect api key") ||
		strings.Contains(errLower, "api_key_invalid") ||
		strings.Contains(errLower, "permission denied"):
		return &ClassificationError{Provider: provider, Type: ErrTypeInvalidCredential, Message: "API key is invalid or has been revoked", Err: err}

	case strings.Contains(errLower, "quota") ||
		strings.Contains(errLower, "resource exhausted") ||
		strings.Contains(errLower, "rate limit"):
		return &ClassificationError{Provider: provider, Type: ErrTypeQuotaExceeded, Message: "quota exceeded or rate limited", Err: err}

	case strings.Contains(errLower, "connection") ||
		strings.Contains(errLower, "network") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "dial") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "unreachable") ||
		strings.Contains(errLower, "eof"):
		return &ClassificationError{Provider: provider, Type: ErrTypeNetwork, Message: "network error", Err: err}

	default:
		return &ClassificationError{Provider: provider, Type: ErrTypeProvider, Message: "classifier call failed", Err: err}
	}
}

// statusCode extracts an HTTP status from the error types of the supported SDKs.
func statusCode(err error) (int, bool) {
	var gv genai.APIError
	if errors.As(err, &gv) {
		return gv.Code, true
	}
	var gp *genai.APIError
	if errors.As(err, &gp) && gp != nil {
		return gp.Code, true
	}
	var oa *openai.APIError
	if errors.As(err, &oa) && oa.HTTPStatusCode != 0 {
		return oa.HTTPStatusCode, true
	}
	var or *openai.RequestError
	if errors.As(err, &or) && or.HTTPStatusCode != 0 {
		return or.HTTPStatusCode, true
	}
	var ol api.StatusError
	if errors.As(err, &ol) {
		return ol.StatusCode, true
	}
	return 0, false
}

// classifyStatus categorizes an HTTP status returned by a provider.
func classifyStatus(provider string, code int, err error) *ClassificationError {
	switch {
	case code == 400:
		return &ClassificationError{Provider: provider, Type: ErrTypeProvider, Message: "bad request", Err: err}
	case code == 401 || code == 403:
		log.Debug().Int("code", code).Str("provider", provider).Msg("Authentication failed")
		return &ClassificationError{Provider: provider, Type: ErrTypeInvalidCredential, Message: "API key is invalid, expired, or lacks permissions", Err: err}
	case code == 408:
		return &ClassificationError{Provider: provider, Type: ErrTypeNetwork, Message: "request timed out", Err: err}
	case code == 429:
		return &ClassificationError{Provider: provider, Type: ErrTypeQuotaExceeded, Message: "rate limit exceeded", Err: err}
	case code >= 500 && code <= 599:
		return &ClassificationError{Provider: provider, Type: ErrTypeNetwork, Message: "provider server error", Err: err}
	default:
		return &ClassificationError{Provider: provider, Type: ErrTypeProvider, Message: "classifier call failed", Err: err}
	}
}
