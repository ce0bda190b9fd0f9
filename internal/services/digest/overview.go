package digest

import (
	"context"
	"fmt"

	"github.com/bobmcallan/openbell/internal/models"
)

// The three market indices behind the overview section
const (
	sp500Symbol  = "^GSPC"
	dowSymbol    = "^DJI"
	nasdaqSymbol = "^IXIC"
)

// MarketOverview returns the macro commentary for the run, generating
// it on the first call and returning the memoized value afterwards.
// A cached overview costs no I/O and no quota. The overview is all or
// nothing: if any index has fewer than two closes, the whole thing is
// unavailable and the caller omits the section.
func (s *Service) MarketOverview(ctx context.Context) (*models.MarketOverview, error) {
	s.overviewMu.Lock()
	defer s.overviewMu.Unlock()

	if s.overview != nil {
		return s.overview, nil
	}

	symbols := []string{sp500Symbol, dowSymbol, nasdaqSymbol}
	changes := make([]float64, len(symbols))
	for i, symbol := range symbols {
		chart, err := s.market.GetDailyChart(ctx, symbol, 2)
		if err != nil {
			return nil, fmt.Errorf("market overview unavailable: %s: %w", symbol, err)
		}
		if len(chart.Bars) < 2 {
			return nil, fmt.Errorf("market overview unavailable: %s has %d closes, need 2", symbol, len(chart.Bars))
		}
		last := chart.Bars[len(chart.Bars)-1].Close
		prev := chart.Bars[len(chart.Bars)-2].Close
		changes[i] = (last - prev) / prev * 100
	}

	prompt := buildOverviewPrompt(changes[0], changes[1], changes[2])
	s.quota.Admit()
	summary, err := s.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("market overview unavailable: %w", err)
	}

	s.overview = &models.MarketOverview{
		SP500ChangePct:  changes[0],
		DowChangePct:    changes[1],
		NasdaqChangePct: changes[2],
		Summary:         summary,
		GeneratedAt:     s.now(),
	}

	s.logger.Info().
		Float64("sp500", changes[0]).
		Float64("dow", changes[1]).
		Float64("nasdaq", changes[2]).
		Msg("Market overview generated")

	return s.overview, nil
}

// buildOverviewPrompt builds the fixed macro prompt from the three
// index percent changes.
func buildOverviewPrompt(sp500, dow, nasdaq float64) string {
	return fmt.Sprintf(`You are a financial analyst providing a daily market overview.

Today's major index moves:
- S&P 500: %+.2f%%
- Dow Jones Industrial Average: %+.2f%%
- Nasdaq Composite: %+.2f%%

Provide a 2-3 sentence overview of the broader market based on these moves. DO NOT include any preamble. Start directly with the analysis. Note whether the indices moved together or diverged, and what that suggests about market sentiment today. Be concise and factual.`,
		sp500, dow, nasdaq)
}
