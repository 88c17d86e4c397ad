// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"operation only", &ActionableError{Operation: "load applications"}, "failed to load applications"},
		{"with resource", &ActionableError{Operation: "prepare image", Resource: "tools"}, "failed to prepare image: tools"},
		{
			name: "with resource and cause",
			err:  &ActionableError{Operation: "select application", Resource: "fire", Cause: errors.New("ambiguous")},
			want: "failed to select application: fire: ambiguous",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("exit status 125")
	err := &ActionableError{
		Operation:   "build container image",
		Resource:    "localhost/podenv/tools:0123456789ab",
		Suggestions: []string{"Check the Containerfile", "Run again with --update"},
		Cause:       fmt.Errorf("podman build: %w", root),
	}

	short := err.Format(false)
	for _, want := range []string{"failed to build container image", "  • Check the Containerfile", "  • Run again with --update"} {
		if !strings.Contains(short, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, short)
		}
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) must not print the chain:\n%s", short)
	}

	long := err.Format(true)
	if !strings.Contains(long, "1. podman build: exit status 125") || !strings.Contains(long, "2. exit status 125") {
		t.Errorf("Format(true) chain incomplete:\n%s", long)
	}
}

func TestErrorContext_BuildError(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Fatalf("BuildError without operation = %v, want nil", err)
	}

	cause := errors.New("not found")
	err := NewErrorContext().
		WithOperation("select application").
		WithResource("fire").
		WithSuggestion("Run 'podenv --list'", "", "Use a longer prefix").
		WithIssue(SelectorNotFoundId).
		Wrap(cause).
		BuildError()

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("BuildError() = %T, want *ActionableError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause is not reachable through errors.Is")
	}
	if ae.Issue != SelectorNotFoundId {
		t.Errorf("Issue = %d", ae.Issue)
	}
	if want := []string{"Run 'podenv --list'", "Use a longer prefix"}; !slices.Equal(ae.Suggestions, want) {
		t.Errorf("Suggestions = %q, want %q", ae.Suggestions, want)
	}
}

func TestErrorContext_Reuse(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithOperation("pull image").WithSuggestion("Check the reference")
	first := ctx.Wrap(errors.New("one")).BuildError()
	ctx.WithSuggestion("Log in to the registry")
	second := ctx.Wrap(errors.New("two")).BuildError()

	var a, b *ActionableError
	if !errors.As(first, &a) || !errors.As(second, &b) {
		t.Fatal("expected actionable errors")
	}
	if a.Cause.Error() != "one" || b.Cause.Error() != "two" {
		t.Errorf("causes = %v, %v", a.Cause, b.Cause)
	}
	if len(a.Suggestions) != 1 || len(b.Suggestions) != 2 {
		t.Errorf("earlier error shares later suggestions: %q / %q", a.Suggestions, b.Suggestions)
	}
}
