package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row not found")
	err := Wrap(CodeNotFound, cause, "product missing")

	if err.Code() != CodeNotFound {
		t.Fatalf("unexpected code %q", err.Code())
	}
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause to survive wrapping")
	}
	if err.Error() != "NOT_FOUND: product missing" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAsFindsCodedErrorInChain(t *testing.T) {
	inner := New(CodeStateConflict, "insufficient stock")
	wrapped := fmt.Errorf("create movement: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected coded error in chain")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %q", typed.Code())
	}
	if !HasCode(wrapped, CodeStateConflict) {
		t.Fatal("HasCode should match through wrapping")
	}
	if HasCode(wrapped, CodeNotFound) {
		t.Fatal("HasCode matched the wrong code")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad input").WithDetails(map[string]string{"qty": "must be positive"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["qty"] != "must be positive" {
		t.Fatalf("unexpected details %v", err.Details())
	}
}
