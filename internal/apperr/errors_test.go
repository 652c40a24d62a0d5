package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/pref-assess/internal/apperr"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("qid and assessor are required")

	if err.Error() != "qid and assessor are required" {
		t.Errorf("expected 'qid and assessor are required', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("invalid UUID length: 3")
	err := apperr.NewValidationWrap("invalid left document id", inner)

	if err.Error() != "invalid left document id: invalid UUID length: 3" {
		t.Errorf("expected 'invalid left document id: invalid UUID length: 3', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("unknown choice")

	wrapped := fmt.Errorf("record judgment: %w", original)
	doubleWrapped := fmt.Errorf("handle request: %w", wrapped)

	var ve *apperr.ValidationError
	if !errors.As(doubleWrapped, &ve) {
		t.Fatal("errors.As should find ValidationError through double wrapping")
	}
	if ve.Message != "unknown choice" {
		t.Errorf("expected 'unknown choice', got %q", ve.Message)
	}
}

func TestValidationError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("connection refused")
	wrapped := fmt.Errorf("handle request: %w", plain)

	var ve *apperr.ValidationError
	if errors.As(wrapped, &ve) {
		t.Fatal("errors.As should NOT find ValidationError in plain error chain")
	}
}

func TestNotFoundError_WrapsCause(t *testing.T) {
	cause := errors.New("not found")
	err := fmt.Errorf("load assignment: %w", apperr.NewNotFound("assignment", "42", cause))

	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("errors.As should find NotFoundError")
	}
	if nf.Error() != "assignment 42 not found" {
		t.Errorf("expected 'assignment 42 not found', got %q", nf.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}
