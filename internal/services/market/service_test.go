package market

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/bobmcallan/openbell/internal/models"
)

type mockClient struct {
	charts      map[string]*models.ChartResult
	news        map[string][]models.NewsItem
	earnings    map[string]*models.EarningsSnapshot
	newsErr     error
	earningsErr error
}

func (m *mockClient) GetDailyChart(ctx context.Context, symbol string, days int) (*models.ChartResult, error) {
	if chart, ok := m.charts[symbol]; ok {
		return chart, nil
	}
	return nil, errors.New("no chart data")
}

func (m *mockClient) GetRecentNews(ctx context.Context, symbol string, window time.Duration) ([]models.NewsItem, error) {
	if m.newsErr != nil {
		return nil, m.newsErr
	}
	return m.news[symbol], nil
}

func (m *mockClient) GetLatestEarnings(ctx context.Context, symbol string) (*models.EarningsSnapshot, error) {
	if m.earningsErr != nil {
		return nil, m.earningsErr
	}
	if snap, ok := m.earnings[symbol]; ok {
		return snap, nil
	}
	return &models.EarningsSnapshot{}, nil
}

var testNow = time.Date(2025, 11, 19, 12, 0, 0, 0, time.UTC)

func twoBarChart(symbol, name string, prev, last float64) *models.ChartResult {
	return &models.ChartResult{
		Symbol: symbol,
		Name:   name,
		Bars: []models.ClosePrice{
			{Date: testNow.AddDate(0, 0, -1), Close: prev},
			{Date: testNow, Close: last},
		},
	}
}

func newTestService(client *mockClient, opts ...ServiceOption) *Service {
	opts = append(opts, WithNow(func() time.Time { return testNow }))
	return NewService(client, opts...)
}

func TestCollectRecords_ComputesChange(t *testing.T) {
	client := &mockClient{charts: map[string]*models.ChartResult{
		"AAPL": twoBarChart("AAPL", "Apple Inc.", 148.00, 150.23),
	}}

	records := newTestService(client).CollectRecords(context.Background(), []string{"AAPL"})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Name != "Apple Inc." {
		t.Errorf("expected name Apple Inc., got %s", rec.Name)
	}
	if rec.CurrentPrice != 150.23 {
		t.Errorf("expected current price 150.23, got %.2f", rec.CurrentPrice)
	}
	if rec.PreviousClose != 148.00 {
		t.Errorf("expected previous close 148.00, got %.2f", rec.PreviousClose)
	}
	want := (150.23 - 148.00) / 148.00 * 100
	if math.Abs(rec.ChangePct-want) > 1e-9 {
		t.Errorf("expected change %.4f%%, got %.4f%%", want, rec.ChangePct)
	}
}

func TestCollectRecords_SkipsFailedSymbols(t *testing.T) {
	client := &mockClient{charts: map[string]*models.ChartResult{
		"AAA": twoBarChart("AAA", "Alpha", 100, 101),
		"CCC": twoBarChart("CCC", "Gamma", 50, 49),
	}}

	records := newTestService(client).CollectRecords(context.Background(), []string{"AAA", "BBB", "CCC"})
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// input order preserved across the skip
	if records[0].Symbol != "AAA" || records[1].Symbol != "CCC" {
		t.Errorf("unexpected order: %s, %s", records[0].Symbol, records[1].Symbol)
	}
}

func TestCollectRecords_RequiresTwoCloses(t *testing.T) {
	client := &mockClient{charts: map[string]*models.ChartResult{
		"AAA": {Symbol: "AAA", Name: "Alpha", Bars: []models.ClosePrice{{Date: testNow, Close: 100}}},
	}}

	records := newTestService(client).CollectRecords(context.Background(), []string{"AAA"})
	if len(records) != 0 {
		t.Fatalf("expected symbol with one close to be skipped, got %d records", len(records))
	}
}

func TestCollectRecords_NewsFailureDegrades(t *testing.T) {
	client := &mockClient{
		charts:  map[string]*models.ChartResult{"AAA": twoBarChart("AAA", "Alpha", 100, 101)},
		newsErr: errors.New("search unavailable"),
	}

	records := newTestService(client).CollectRecords(context.Background(), []string{"AAA"})
	if len(records) != 1 {
		t.Fatalf("expected record despite news failure, got %d", len(records))
	}
	if records[0].HasNews() {
		t.Error("expected no news after fetch failure")
	}
}

func TestCollectRecords_RecentEarningsAttached(t *testing.T) {
	client := &mockClient{
		charts: map[string]*models.ChartResult{"AAA": twoBarChart("AAA", "Alpha", 100, 101)},
		earnings: map[string]*models.EarningsSnapshot{
			"AAA": {EarningsDate: testNow.Add(-6 * time.Hour)},
		},
	}

	records := newTestService(client).CollectRecords(context.Background(), []string{"AAA"})
	if !records[0].HasEarnings() {
		t.Error("expected earnings from 6 hours ago to be attached")
	}
}

func TestCollectRecords_StaleEarningsDropped(t *testing.T) {
	client := &mockClient{
		charts: map[string]*models.ChartResult{"AAA": twoBarChart("AAA", "Alpha", 100, 101)},
		earnings: map[string]*models.EarningsSnapshot{
			"AAA": {EarningsDate: testNow.Add(-48 * time.Hour)},
		},
	}

	records := newTestService(client).CollectRecords(context.Background(), []string{"AAA"})
	if records[0].HasEarnings() {
		t.Error("expected 48-hour-old earnings to be dropped")
	}
}

func TestCollectRecords_UndatedEarningsDropped(t *testing.T) {
	client := &mockClient{
		charts:   map[string]*models.ChartResult{"AAA": twoBarChart("AAA", "Alpha", 100, 101)},
		earnings: map[string]*models.EarningsSnapshot{"AAA": {}},
	}

	records := newTestService(client).CollectRecords(context.Background(), []string{"AAA"})
	if records[0].HasEarnings() {
		t.Error("expected snapshot without a report date to be dropped")
	}
}

func TestCollectRecords_WiderEarningsWindow(t *testing.T) {
	client := &mockClient{
		charts: map[string]*models.ChartResult{"AAA": twoBarChart("AAA", "Alpha", 100, 101)},
		earnings: map[string]*models.EarningsSnapshot{
			"AAA": {EarningsDate: testNow.Add(-48 * time.Hour)},
		},
	}

	svc := newTestService(client, WithEarningsWindow(72*time.Hour))
	records := svc.CollectRecords(context.Background(), []string{"AAA"})
	if !records[0].HasEarnings() {
		t.Error("expected 48-hour-old earnings inside a 72-hour window")
	}
}
