package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"not found", NotFound("missing %d", 7), KindNotFound},
		{"business rule", BusinessRule("conflict"), KindBusinessRule},
		{"wrapped once", fmt.Errorf("outer: %w", NotFound("missing")), KindNotFound},
		{"plain error", errors.New("boom"), 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("row locked")
	err := Wrap(KindBusinessRule, cause, "reserve failed")

	if !errors.Is(err, cause) {
		t.Errorf("cause not reachable through errors.Is")
	}
	if !IsBusinessRule(err) {
		t.Errorf("IsBusinessRule = false")
	}
}

func TestErrorMessageIncludesKind(t *testing.T) {
	err := Validation("quantity must be positive")
	want := "validation: quantity must be positive"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindPredicates(t *testing.T) {
	if !IsValidation(Validation("x")) || IsValidation(NotFound("x")) {
		t.Errorf("IsValidation misclassifies")
	}
	if !IsNotFound(NotFound("x")) || IsNotFound(BusinessRule("x")) {
		t.Errorf("IsNotFound misclassifies")
	}
}
