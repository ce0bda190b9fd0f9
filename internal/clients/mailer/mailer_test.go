package mailer

import (
	"strings"
	"testing"
)

func TestMarkdownToHTML_Headings(t *testing.T) {
	html := markdownToHTML("# Daily Stock Digest - November 19, 2025\n\n## Market Overview\n\nIndices rose.")

	if !strings.Contains(html, "<h1>Daily Stock Digest - November 19, 2025</h1>") {
		t.Error("missing h1 conversion")
	}
	if !strings.Contains(html, "<h2>Market Overview</h2>") {
		t.Error("missing h2 conversion")
	}
	if strings.Contains(html, "# Daily") {
		t.Error("raw heading marker left in output")
	}
}

func TestMarkdownToHTML_Bold(t *testing.T) {
	html := markdownToHTML("**Apple Inc. (AAPL)**: $150.23 (+1.50%)")

	if !strings.Contains(html, "<strong>Apple Inc. (AAPL)</strong>: $150.23 (+1.50%)") {
		t.Errorf("bold not converted: %s", html)
	}
}

func TestMarkdownToHTML_Rules(t *testing.T) {
	equalsRule := strings.Repeat("=", 60)
	dashRule := strings.Repeat("-", 60)

	html := markdownToHTML("top\n" + equalsRule + "\nmiddle\n" + dashRule + "\nbottom")

	if !strings.Contains(html, "<hr>") {
		t.Error("equals rule not converted to hr")
	}
	if !strings.Contains(html, `<hr style="border: 1px dashed #ccc;">`) {
		t.Error("dash rule not converted to dashed hr")
	}
	if strings.Contains(html, equalsRule) || strings.Contains(html, dashRule) {
		t.Error("raw rule left in output")
	}
}

func TestMarkdownToHTML_WrapsTemplate(t *testing.T) {
	html := markdownToHTML("body text")

	if !strings.HasPrefix(html, "<html>") {
		t.Error("output not wrapped in html template")
	}
	if !strings.Contains(html, "font-family: Arial") {
		t.Error("missing inline styles")
	}
	if !strings.Contains(html, "body text") {
		t.Error("content missing from output")
	}
}

func TestNewMailer_Defaults(t *testing.T) {
	m := NewMailer("sender@example.com", "", "secret")

	if m.host != DefaultHost {
		t.Errorf("expected host %s, got %s", DefaultHost, m.host)
	}
	if m.port != DefaultPort {
		t.Errorf("expected port %d, got %d", DefaultPort, m.port)
	}
	// sender doubles as username when none is given
	if m.username != "sender@example.com" {
		t.Errorf("expected username to default to sender, got %s", m.username)
	}
}

func TestNewMailer_Options(t *testing.T) {
	m := NewMailer("sender@example.com", "user", "secret",
		WithHost("smtp.example.com"), WithPort(587))

	if m.host != "smtp.example.com" {
		t.Errorf("expected custom host, got %s", m.host)
	}
	if m.port != 587 {
		t.Errorf("expected port 587, got %d", m.port)
	}
	if m.username != "user" {
		t.Errorf("expected explicit username, got %s", m.username)
	}
}
