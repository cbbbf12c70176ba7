package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: base, want: CodeUnknown},
		{name: "not found", err: NotFoundf("socket %d", 7), want: CodeNotFound},
		{name: "wrapped invalid", err: fmt.Errorf("analyze: %w", InvalidArgumentf("bad")), want: CodeInvalidArgument},
		{name: "fatal wrap", err: Wrap(CodeFatal, base, "load tree"), want: CodeFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Fatalf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: NotFoundf("x"), want: http.StatusNotFound},
		{err: InvalidArgumentf("x"), want: http.StatusBadRequest},
		{err: Fatalf("x"), want: http.StatusInternalServerError},
		{err: errors.New("x"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	base := errors.New("unexpected EOF")
	err := Wrap(CodeFatal, base, "parse tree")
	if err.Error() != "parse tree: unexpected EOF" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("errors.Is did not find wrapped error")
	}
}

func TestDetailsOf(t *testing.T) {
	err := fmt.Errorf("resolve: %w", InvalidArgumentf("unknown faction").WithDetails("A", "B"))
	got := DetailsOf(err)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("DetailsOf() = %v, want [A B]", got)
	}
	if !Is(err, CodeInvalidArgument) {
		t.Fatal("Is(err, CodeInvalidArgument) = false")
	}
}
