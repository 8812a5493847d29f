package services_test

import (
	"errors"
	"testing"

	"mailsift/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrFetch, "fetch", "threads.list", "transport failure", errors.New("boom"))
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch marker, got %v", err)
	}
	if !services.IsTaskFatal(err) {
		t.Fatal("fetch errors must be task fatal")
	}
}

func TestWrapDefaultsToStage(t *testing.T) {
	err := services.Wrap(nil, "analyze", "", "", errors.New("timeout"))
	if !errors.Is(err, services.ErrStage) {
		t.Fatalf("expected stage marker, got %v", err)
	}
	if services.IsTaskFatal(err) {
		t.Fatal("stage errors are batch-local, not task fatal")
	}
}

func TestDetailsStripsSentinel(t *testing.T) {
	err := services.Wrap(services.ErrConfiguration, "", "prompt lookup", "unknown key \"haro\"", nil)
	got := services.Details(err)
	want := "prompt lookup: unknown key \"haro\""
	if got != want {
		t.Fatalf("Details = %q, want %q", got, want)
	}
	if services.Details(nil) != "" {
		t.Fatal("nil error should produce empty details")
	}
}
