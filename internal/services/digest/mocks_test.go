package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/openbell/internal/models"
)

// mockGenerative implements interfaces.GenerativeClient for testing
type mockGenerative struct {
	calls   int
	prompts []string
	respond func(prompt string) (string, error)
}

func (m *mockGenerative) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.respond != nil {
		return m.respond(prompt)
	}
	return "generated summary", nil
}

// mockMarketData implements interfaces.MarketDataClient for testing
type mockMarketData struct {
	charts   map[string]*models.ChartResult
	chartErr error
}

func (m *mockMarketData) GetDailyChart(ctx context.Context, symbol string, days int) (*models.ChartResult, error) {
	if m.chartErr != nil {
		return nil, m.chartErr
	}
	if chart, ok := m.charts[symbol]; ok {
		return chart, nil
	}
	return nil, fmt.Errorf("no chart data for %s", symbol)
}

func (m *mockMarketData) GetRecentNews(ctx context.Context, symbol string, window time.Duration) ([]models.NewsItem, error) {
	return nil, nil
}

func (m *mockMarketData) GetLatestEarnings(ctx context.Context, symbol string) (*models.EarningsSnapshot, error) {
	return nil, nil
}

// indexCharts returns two-bar charts for all three overview indices
func indexCharts() map[string]*models.ChartResult {
	bars := func(prev, last float64) []models.ClosePrice {
		return []models.ClosePrice{
			{Date: time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC), Close: prev},
			{Date: time.Date(2025, 11, 19, 0, 0, 0, 0, time.UTC), Close: last},
		}
	}
	return map[string]*models.ChartResult{
		sp500Symbol:  {Symbol: sp500Symbol, Bars: bars(100, 101)},  // +1.00%
		dowSymbol:    {Symbol: dowSymbol, Bars: bars(200, 199)},    // -0.50%
		nasdaqSymbol: {Symbol: nasdaqSymbol, Bars: bars(400, 410)}, // +2.50%
	}
}

func newTestService(gen *mockGenerative, market *mockMarketData, opts ...ServiceOption) (*Service, *QuotaTracker) {
	quota, err := NewQuotaTracker(DefaultRequestsPerMinute, DefaultRequestsPerDay)
	if err != nil {
		panic(err)
	}
	return NewService(gen, market, quota, opts...), quota
}

func testRecord(symbol, name string, price, changePct float64) *models.StockRecord {
	return &models.StockRecord{
		Symbol:        symbol,
		Name:          name,
		CurrentPrice:  price,
		PreviousClose: price / (1 + changePct/100),
		ChangePct:     changePct,
	}
}
