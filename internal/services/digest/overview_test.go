package digest

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/bobmcallan/openbell/internal/models"
)

func TestMarketOverview_ComputesIndexChanges(t *testing.T) {
	gen := &mockGenerative{respond: func(prompt string) (string, error) {
		return "Markets were mixed today.", nil
	}}
	svc, _ := newTestService(gen, &mockMarketData{charts: indexCharts()})

	overview, err := svc.MarketOverview(context.Background())
	if err != nil {
		t.Fatalf("MarketOverview failed: %v", err)
	}

	if math.Abs(overview.SP500ChangePct-1.0) > 1e-9 {
		t.Errorf("SP500ChangePct = %f, want 1.0", overview.SP500ChangePct)
	}
	if math.Abs(overview.DowChangePct-(-0.5)) > 1e-9 {
		t.Errorf("DowChangePct = %f, want -0.5", overview.DowChangePct)
	}
	if math.Abs(overview.NasdaqChangePct-2.5) > 1e-9 {
		t.Errorf("NasdaqChangePct = %f, want 2.5", overview.NasdaqChangePct)
	}
	if overview.Summary != "Markets were mixed today." {
		t.Errorf("Summary = %q", overview.Summary)
	}

	// The macro prompt embeds all three percentages
	if len(gen.prompts) != 1 {
		t.Fatalf("model calls = %d, want 1", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, want := range []string{"+1.00%", "-0.50%", "+2.50%"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("overview prompt missing %q", want)
		}
	}
}

func TestMarketOverview_CachedForProcessLifetime(t *testing.T) {
	gen := &mockGenerative{}
	svc, quota := newTestService(gen, &mockMarketData{charts: indexCharts()})

	first, err := svc.MarketOverview(context.Background())
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := svc.MarketOverview(context.Background())
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if gen.calls != 1 {
		t.Errorf("model calls = %d, want exactly 1 (memoized)", gen.calls)
	}
	if got := quota.Stats().RequestsToday; got != 1 {
		t.Errorf("quota consumption = %d, want exactly 1", got)
	}
	if first != second {
		t.Error("second call should return the cached value")
	}
	if first.Summary != second.Summary {
		t.Error("cached summary text should be identical")
	}
}

func TestMarketOverview_MissingClosesFailsWhole(t *testing.T) {
	charts := indexCharts()
	charts[dowSymbol].Bars = charts[dowSymbol].Bars[:1] // one close only

	gen := &mockGenerative{}
	svc, quota := newTestService(gen, &mockMarketData{charts: charts})

	if _, err := svc.MarketOverview(context.Background()); err == nil {
		t.Fatal("expected error when an index has fewer than two closes")
	}
	if gen.calls != 0 {
		t.Errorf("model calls = %d, want 0 (no partial overview)", gen.calls)
	}
	if got := quota.Stats().RequestsToday; got != 0 {
		t.Errorf("quota consumption = %d, want 0", got)
	}
}

func TestMarketOverview_FetchErrorFailsWhole(t *testing.T) {
	gen := &mockGenerative{}
	svc, _ := newTestService(gen, &mockMarketData{chartErr: fmt.Errorf("provider down")})

	if _, err := svc.MarketOverview(context.Background()); err == nil {
		t.Fatal("expected error when index fetch fails")
	}
	if gen.calls != 0 {
		t.Errorf("model calls = %d, want 0", gen.calls)
	}
}

func TestMarketOverview_FailureIsNotCached(t *testing.T) {
	market := &mockMarketData{chartErr: fmt.Errorf("provider down")}
	gen := &mockGenerative{}
	svc, _ := newTestService(gen, market)

	if _, err := svc.MarketOverview(context.Background()); err == nil {
		t.Fatal("expected first call to fail")
	}

	// Provider recovers; only a successful generation is memoized
	market.chartErr = nil
	market.charts = indexCharts()

	overview, err := svc.MarketOverview(context.Background())
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if overview == nil || overview.Summary == "" {
		t.Error("expected a generated overview after recovery")
	}
}

func TestMarketOverview_DigestOmitsSectionOnFailure(t *testing.T) {
	gen := &mockGenerative{}
	svc, _ := newTestService(gen, &mockMarketData{chartErr: fmt.Errorf("provider down")})

	digest, err := svc.GenerateDigest(context.Background(), []*models.StockRecord{
		testRecord("AAA", "Alpha Corp", 10, 1),
	}, "")
	if err != nil {
		t.Fatalf("GenerateDigest failed: %v", err)
	}

	if strings.Contains(digest, "## Market Overview") {
		t.Error("digest should omit the overview section when it is unavailable")
	}
	if !strings.Contains(digest, "generated summary") {
		t.Error("the rest of the digest should proceed unaffected")
	}
}
