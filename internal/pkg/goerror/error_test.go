package goerror

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestNewThrottled(t *testing.T) {
	t.Run("RoundsUpToWholeSeconds", func(t *testing.T) {
		err := NewThrottled(1500 * time.Millisecond)

		var gerr *Error
		if !errors.As(err, &gerr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if gerr.Code() != CodeTooManyRequest {
			t.Fatalf("expected too many request code, got %v", gerr.Code())
		}
		if gerr.StatusCode() != http.StatusTooManyRequests {
			t.Fatalf("expected status 429, got %d", gerr.StatusCode())
		}
		if gerr.Fields()["retry_after_seconds"] != "2" {
			t.Fatalf("expected retry_after_seconds=2, got %v", gerr.Fields())
		}
	})

	t.Run("NeverReportsBelowOneSecond", func(t *testing.T) {
		err := NewThrottled(0)

		var gerr *Error
		if !errors.As(err, &gerr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if gerr.Fields()["retry_after_seconds"] != "1" {
			t.Fatalf("expected retry_after_seconds=1, got %v", gerr.Fields())
		}
	})
}
