package observability

import (
	"strings"
	"testing"
)

func TestRedactScrubsAPIKeyShape(t *testing.T) {
	in := `using api_key="abcdefghijklmnop" for this call`
	out := redact(in)
	if out == in {
		t.Fatalf("expected redaction to change the string, got unchanged: %q", out)
	}
	if strings.Contains(out, "abcdefghijklmnop") {
		t.Errorf("expected secret value to be scrubbed, got %q", out)
	}
}

func TestRedactScrubsBearerToken(t *testing.T) {
	in := "Authorization: Bearer abcdef0123456789"
	out := redact(in)
	if strings.Contains(out, "abcdef0123456789") {
		t.Errorf("expected bearer token to be scrubbed, got %q", out)
	}
}

func TestRedactLeavesOrdinaryTextAlone(t *testing.T) {
	in := "driver advanced to depth 2 after tool dispatch"
	if out := redact(in); out != in {
		t.Errorf("expected ordinary text untouched, got %q", out)
	}
}
