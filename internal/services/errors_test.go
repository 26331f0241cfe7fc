package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"disclabel/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "printer", "spool", "lp failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"printer", "spool", "lp failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient default, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestIsPermanent(t *testing.T) {
	notFound := fmt.Errorf("lookup: %w", services.Wrap(services.ErrNotFound, "musicbrainz", "discid", "404", nil))
	if !services.IsPermanent(notFound) {
		t.Fatal("expected not-found to be permanent")
	}
	malformed := services.Wrap(services.ErrMalformed, "tmdb", "decode", "", errors.New("eof"))
	if services.IsPermanent(malformed) {
		t.Fatal("malformed responses must be retried")
	}
	if services.IsPermanent(errors.New("dial tcp: refused")) {
		t.Fatal("plain errors must be transient")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]error{
		"":                    nil,
		"not_found":           services.ErrNotFound,
		"declined":            services.Wrap(services.ErrDeclined, "console", "prompt", "", nil),
		"malformed":           services.ErrMalformed,
		"printer_unavailable": services.ErrPrinterUnavailable,
		"transient":           errors.New("timeout"),
	}
	for want, err := range cases {
		if got := services.Classify(err); got != want {
			t.Fatalf("Classify(%v) = %q, want %q", err, got, want)
		}
	}
}
