// internal/validate/gate_test.go
//
// Unit-tests for the pre-validation gates.

package validate

import (
	"strings"
	"testing"
)

func TestCheckPayloadSize(t *testing.T) {
	if msg := CheckPayloadSize(5, 100); msg != "" {
		t.Fatalf("small payload rejected: %q", msg)
	}
	if msg := CheckPayloadSize(100, 100); msg != "" {
		t.Fatalf("exact-limit payload rejected: %q", msg)
	}

	msg := CheckPayloadSize(101, 100)
	if msg == "" {
		t.Fatal("oversize payload accepted")
	}
	if !strings.Contains(msg, "101 bytes") || !strings.Contains(msg, "100 bytes") {
		t.Fatalf("message = %q", msg)
	}

	// The reported figure is the caller's size, e.g. a declared
	// Content-Length far beyond what was read.
	if msg := CheckPayloadSize(50000, 100); !strings.Contains(msg, "50000 bytes") {
		t.Fatalf("message = %q", msg)
	}
}

func TestCheckHoneypot(t *testing.T) {
	const trap = "website"

	if !CheckHoneypot(map[string]any{trap: "http://spam"}, trap) {
		t.Fatal("truthy trap value not detected")
	}
	if !CheckHoneypot(map[string]any{trap: true}, trap) {
		t.Fatal("boolean true not detected")
	}

	// Falsy values are not bots.
	for _, v := range []any{"", false, float64(0), nil, []any{}} {
		if CheckHoneypot(map[string]any{trap: v}, trap) {
			t.Fatalf("falsy value %v flagged as bot", v)
		}
	}
	if CheckHoneypot(map[string]any{"name": "Ada"}, trap) {
		t.Fatal("absent trap field flagged as bot")
	}
}

func TestCheckClient(t *testing.T) {
	allowed := []string{"noclient", "acme"}

	if msg := CheckClient("acme", allowed); msg != "" {
		t.Fatalf("allowed client rejected: %q", msg)
	}
	if msg := CheckClient("evil", allowed); msg != "Invalid client: evil" {
		t.Fatalf("message = %q", msg)
	}
	if msg := CheckClient("", allowed); msg != "Client parameter is required" {
		t.Fatalf("empty client message = %q", msg)
	}
}

func TestCheckFormType(t *testing.T) {
	perClient := map[string][]string{"acme": {"contacts", "quote"}}

	if msg := CheckFormType("quote", "acme", perClient); msg != "" {
		t.Fatalf("allowed form type rejected: %q", msg)
	}
	if msg := CheckFormType("survey", "acme", perClient); msg == "" {
		t.Fatal("disallowed form type accepted")
	}
	if msg := CheckFormType("contacts", "ghost", perClient); msg != "No form types configured for client: ghost" {
		t.Fatalf("unconfigured client message = %q", msg)
	}
	if msg := CheckFormType("", "acme", perClient); msg != "Form type is required" {
		t.Fatalf("empty form type message = %q", msg)
	}
}
