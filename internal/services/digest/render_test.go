package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/openbell/internal/models"
)

func TestGreetingFor(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "Good morning"},
		{9, "Good morning"},
		{11, "Good morning"},
		{12, "Good afternoon"},
		{16, "Good afternoon"},
		{17, "Good evening"},
		{23, "Good evening"},
	}
	for _, tt := range tests {
		now := time.Date(2025, 11, 19, tt.hour, 30, 0, 0, time.UTC)
		if got := greetingFor(now); got != tt.want {
			t.Errorf("greetingFor(hour=%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestRenderDigest_HeaderAndPersonalization(t *testing.T) {
	now := time.Date(2025, 11, 19, 7, 0, 0, 0, time.UTC)

	digest := renderDigest(now, "Ming", nil, []string{"block one"})

	if !strings.Contains(digest, "# Daily Stock Digest - November 19, 2025") {
		t.Error("missing or misformatted title line")
	}
	if !strings.Contains(digest, "Good morning, Ming! Here's your daily market update.") {
		t.Error("missing personalized greeting")
	}
	if !strings.Contains(digest, equalsRule) {
		t.Error("missing fixed-width separator")
	}
}

func TestRenderDigest_NoUserName(t *testing.T) {
	now := time.Date(2025, 11, 19, 19, 0, 0, 0, time.UTC)

	digest := renderDigest(now, "", nil, []string{"block"})

	if !strings.Contains(digest, "Good evening! Here's your daily market update.") {
		t.Error("greeting without a name misformatted")
	}
	if strings.Contains(digest, "Good evening, !") {
		t.Error("empty name should not leave a dangling comma")
	}
}

func TestRenderDigest_OverviewSection(t *testing.T) {
	now := time.Date(2025, 11, 19, 13, 0, 0, 0, time.UTC)
	overview := &models.MarketOverview{
		SP500ChangePct:  1.0,
		DowChangePct:    -0.5,
		NasdaqChangePct: 2.5,
		Summary:         "Tech led a broad rally.",
	}

	digest := renderDigest(now, "", overview, []string{"block"})

	if !strings.Contains(digest, "## Market Overview") {
		t.Error("missing overview section")
	}
	if !strings.Contains(digest, "S&P 500: +1.00% | Dow Jones: -0.50% | Nasdaq: +2.50%") {
		t.Error("missing or misformatted indices line")
	}
	if !strings.Contains(digest, "Tech led a broad rally.") {
		t.Error("missing overview summary")
	}

	// overview comes before the stock blocks
	if strings.Index(digest, "## Market Overview") > strings.Index(digest, "block") {
		t.Error("overview section should precede stock blocks")
	}
}

func TestRenderDigest_JoinsBlocksInOrder(t *testing.T) {
	now := time.Date(2025, 11, 19, 13, 0, 0, 0, time.UTC)

	digest := renderDigest(now, "", nil, []string{"first block", "second block", "third block"})

	a := strings.Index(digest, "first block")
	b := strings.Index(digest, "second block")
	c := strings.Index(digest, "third block")
	if a == -1 || b == -1 || c == -1 || !(a < b && b < c) {
		t.Errorf("blocks out of order in digest:\n%s", digest)
	}
	if !strings.Contains(digest, "first block\n\nsecond block") {
		t.Error("blocks should be joined with a blank line")
	}
}

func TestNormalizeSeparators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare separator line", "a\n---\nb", "a\n" + dashRule + "\nb"},
		{"padded separator line", "a\n  ---  \nb", "a\n" + dashRule + "\nb"},
		{"multiple separators", "a\n---\nb\n---\nc", "a\n" + dashRule + "\nb\n" + dashRule + "\nc"},
		{"inline dashes untouched", "pre --- post", "pre --- post"},
		{"longer runs untouched", "----\n-----", "----\n-----"},
		{"no separators", "plain text", "plain text"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		if got := normalizeSeparators(tt.input); got != tt.want {
			t.Errorf("%s: normalizeSeparators(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
		}
	}
}

func TestRenderDigest_NormalizesModelSeparators(t *testing.T) {
	now := time.Date(2025, 11, 19, 13, 0, 0, 0, time.UTC)
	batchOutput := "**Alpha Corp (AAA)**: $10.00 (+1.00%)\nUp on volume.\n---\n**Beta Corp (BBB)**: $20.00 (-2.00%)\nDown on guidance."

	digest := renderDigest(now, "", nil, []string{batchOutput})

	if strings.Contains(digest, "\n---\n") {
		t.Error("model separator convention should not survive rendering")
	}
	if !strings.Contains(digest, dashRule) {
		t.Error("canonical dashed rule missing from rendered digest")
	}
}
