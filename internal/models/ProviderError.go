package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindServer    ErrorKind = "server"
	KindParse     ErrorKind = "parse"
	KindUnknown   ErrorKind = "unknown"
)

// ProviderError is the structured failure every provider returns instead of
// raising. Retryable errors are transient, the rest permanent.
type ProviderError struct {
	Source        string        `json:"source"`
	Kind          ErrorKind     `json:"kind"`
	Message       string        `json:"message"`
	Retryable     bool          `json:"retryable"`
	HTTPStatus    *int          `json:"http_status,omitempty"`
	RetryAfter    time.Duration `json:"retry_after,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	Context       string        `json:"context,omitempty"`
	CorrelationID string        `json:"correlation_id"`
}

func NewProviderError(source string, kind ErrorKind, message string) *ProviderError {
	return &ProviderError{
		Source:        source,
		Kind:          kind,
		Message:       message,
		Retryable:     kind == KindNetwork || kind == KindServer || kind == KindRateLimit,
		Timestamp:     time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

func (e *ProviderError) Error() string {
	if e.HTTPStatus != nil {
		return fmt.Sprintf("%s: %s (%s, http %d)", e.Source, e.Message, e.Kind, *e.HTTPStatus)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Source, e.Message, e.Kind)
}

func (e *ProviderError) IsTransient() bool {
	return e.Retryable
}

func (e *ProviderError) IsPermanent() bool {
	return !e.Retryable
}

const (
	SourceStatusOK       = "ok"
	SourceStatusDegraded = "degraded"
	SourceStatusFailed   = "failed"
)

type FetchSummary struct {
	Total        int               `json:"total"`
	Succeeded    int               `json:"succeeded"`
	Failed       int               `json:"failed"`
	SourceStatus map[string]string `json:"source_status"`
}

// FetchResult is the outcome of a library refresh.
type FetchResult struct {
	Games   []GameRecord     `json:"games"`
	Errors  []*ProviderError `json:"errors"`
	Summary FetchSummary     `json:"summary"`
}

type WatchlistEntry struct {
	GameID string `json:"game_id"`
	Title  string `json:"title"`
}
