package httpapi

import (
	"testing"
	"time"
)

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	SetMaxBodyBytes(1234)
	defer SetMaxBodyBytes(0)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetTranslateTimeoutSeconds_NormalizesNegativeToZero(t *testing.T) {
	SetTranslateTimeoutSeconds(-5)
	if translateTimeout != 0 {
		t.Fatalf("expected 0, got %s", translateTimeout)
	}
	SetTranslateTimeoutSeconds(3)
	defer SetTranslateTimeoutSeconds(0)
	if translateTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", translateTimeout)
	}
}

func TestCORSOptions_Defaults(t *testing.T) {
	SetCORSOptions(true, nil, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	opts := corsOptions()
	if len(opts.AllowedOrigins) != 1 || opts.AllowedOrigins[0] != "*" {
		t.Fatalf("origins=%v", opts.AllowedOrigins)
	}
	if len(opts.AllowedMethods) != 3 {
		t.Fatalf("methods=%v", opts.AllowedMethods)
	}
}

func TestSetCORSOptions_CopiesSlices(t *testing.T) {
	origins := []string{"https://a.example"}
	SetCORSOptions(true, origins, []string{"POST"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)
	origins[0] = "mutated"
	if corsAllowedOrigins[0] != "https://a.example" {
		t.Fatalf("origins aliased caller slice: %v", corsAllowedOrigins)
	}
}
