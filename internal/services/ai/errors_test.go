package ai

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"api 429", &APIError{StatusCode: 429}, true},
		{"wrapped api 429", fmt.Errorf("call failed: %w", &APIError{StatusCode: 429}), true},
		{"quota is not a rate limit", &APIError{StatusCode: 429, IsPermanent: true}, false},
		{"message mentions rate limit", errors.New("Rate limit exceeded"), true},
		{"other error", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsQuotaError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"permanent api error", &APIError{StatusCode: 429, IsPermanent: true}, true},
		{"insufficient quota code", &APIError{Code: "insufficient_quota"}, true},
		{"billing message", errors.New("check your billing details"), true},
		{"plain rate limit", &APIError{StatusCode: 429}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsQuotaError(tt.err); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractAPIError_FromMessage(t *testing.T) {
	t.Parallel()

	err := errors.New(`POST "/chat/completions": 429 Too Many Requests {"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}`)

	apiErr := ExtractAPIError(err)
	if apiErr == nil {
		t.Fatal("Expected APIError, got nil")
	}
	if apiErr.StatusCode != 429 {
		t.Errorf("Expected status 429, got %d", apiErr.StatusCode)
	}
	if !apiErr.IsPermanent {
		t.Error("Expected quota error to be permanent")
	}
	if apiErr.RetryAfter == nil || *apiErr.RetryAfter != time.Hour {
		t.Errorf("Expected retry after 1h, got %v", apiErr.RetryAfter)
	}
	if apiErr.Message != "You exceeded your current quota" {
		t.Errorf("Unexpected message %q", apiErr.Message)
	}
}

func TestExtractAPIError_NotAnAPIError(t *testing.T) {
	t.Parallel()

	if got := ExtractAPIError(errors.New("dial tcp: timeout")); got != nil {
		t.Errorf("Expected nil, got %+v", got)
	}
	if got := ExtractAPIError(nil); got != nil {
		t.Errorf("Expected nil, got %+v", got)
	}
}
