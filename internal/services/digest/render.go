package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/openbell/internal/models"
)

const separatorWidth = 60

var (
	equalsRule = strings.Repeat("=", separatorWidth)
	dashRule   = strings.Repeat("-", separatorWidth)
)

// renderDigest assembles the final document: title with the run date,
// a time-of-day greeting (optionally personalized), the market overview
// when available, then every batch block joined with blank lines, with
// the model's "---" separators normalized to the document's dashed rule.
func renderDigest(now time.Time, userName string, overview *models.MarketOverview, blocks []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Daily Stock Digest - %s\n\n", now.Format("January 2, 2006")))

	greeting := greetingFor(now)
	if userName != "" {
		sb.WriteString(fmt.Sprintf("%s, %s! Here's your daily market update.\n\n", greeting, userName))
	} else {
		sb.WriteString(fmt.Sprintf("%s! Here's your daily market update.\n\n", greeting))
	}

	sb.WriteString(equalsRule)
	sb.WriteString("\n\n")

	if overview != nil {
		sb.WriteString("## Market Overview\n\n")
		sb.WriteString(fmt.Sprintf("S&P 500: %+.2f%% | Dow Jones: %+.2f%% | Nasdaq: %+.2f%%\n\n",
			overview.SP500ChangePct, overview.DowChangePct, overview.NasdaqChangePct))
		sb.WriteString(strings.TrimSpace(overview.Summary))
		sb.WriteString("\n\n")
		sb.WriteString(equalsRule)
		sb.WriteString("\n\n")
	}

	sb.WriteString(strings.Join(blocks, "\n\n"))
	sb.WriteString("\n")

	return normalizeSeparators(sb.String())
}

// greetingFor returns the time-of-day greeting: "Good morning" before
// 12:00, "Good afternoon" before 17:00, "Good evening" otherwise.
func greetingFor(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// normalizeSeparators rewrites every line consisting solely of "---"
// (ignoring surrounding whitespace) into the canonical 60-character
// dashed rule. Batch model calls are instructed to separate stocks with
// a literal "---" line; the renderer owns the document style, so the
// model's convention is rewritten here and nowhere else. All other
// lines pass through byte for byte.
func normalizeSeparators(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			lines[i] = dashRule
		}
	}
	return strings.Join(lines, "\n")
}
