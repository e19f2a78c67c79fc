package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrRateLimited indicates the API rate limit was exceeded
	ErrRateLimited = errors.New("rate limited")
	// ErrQuotaExceeded indicates the API quota was exceeded
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrEmptyResponse indicates the model returned no text
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrNoJSONObject indicates the model reply did not contain a JSON object
	ErrNoJSONObject = errors.New("no JSON object in model response")
	// ErrNotConfigured indicates no provider is configured
	ErrNotConfigured = errors.New("AI provider not configured")
)

// APIError represents an error from the AI provider API
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool // true for quota errors, false for rate limits
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests && !apiErr.IsPermanent
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "billing")
}

// ExtractAPIError extracts API error details from an error. SDK errors are
// read directly; anything else falls back to scanning the message for a 429.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var sdkErr *openai.Error
	if errors.As(err, &sdkErr) {
		apiErr := &APIError{
			StatusCode:  sdkErr.StatusCode,
			Message:     sdkErr.Message,
			Type:        sdkErr.Type,
			Code:        sdkErr.Code,
			IsPermanent: sdkErr.Code == "insufficient_quota",
		}
		if apiErr.Message == "" {
			apiErr.Message = sdkErr.Error()
		}
		if sdkErr.StatusCode == http.StatusTooManyRequests {
			apiErr.RetryAfter = retryAfterFromResponse(sdkErr.Response, apiErr.IsPermanent)
		}
		return apiErr
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "429") {
		return nil
	}

	apiErr := &APIError{
		StatusCode: http.StatusTooManyRequests,
		Message:    errStr,
		Type:       "rate_limit_error",
	}

	if jsonStart := strings.Index(errStr, "{"); jsonStart != -1 {
		jsonStr := errStr[jsonStart:]
		if jsonEnd := strings.LastIndex(jsonStr, "}"); jsonEnd != -1 {
			jsonStr = jsonStr[:jsonEnd+1]
			var errorData struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			}
			if json.Unmarshal([]byte(jsonStr), &errorData) == nil {
				apiErr.Message = errorData.Message
				apiErr.Type = errorData.Type
				apiErr.Code = errorData.Code
				apiErr.IsPermanent = errorData.Code == "insufficient_quota"
			}
		}
	}

	apiErr.RetryAfter = retryAfterFromResponse(nil, apiErr.IsPermanent)
	return apiErr
}

// retryAfterFromResponse reads the Retry-After header in seconds. Without
// one, rate limits are assumed to reset after a minute and quota after an hour.
func retryAfterFromResponse(resp *http.Response, permanent bool) *time.Duration {
	retryAfter := 60 * time.Second
	if permanent {
		retryAfter = time.Hour
	}
	if resp != nil {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
	}
	return &retryAfter
}
