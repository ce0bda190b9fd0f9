// Package models defines data structures for Opening Bell
package models

import (
	"fmt"
	"time"
)

// ClosePrice is a single daily close for a symbol or index
type ClosePrice struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// ChartResult holds the daily price history for a symbol plus the
// identifying metadata that comes back with it
type ChartResult struct {
	Symbol string       `json:"symbol"`
	Name   string       `json:"name"`
	Bars   []ClosePrice `json:"bars"`
	Volume *int64       `json:"volume,omitempty"` // most recent session volume
}

// NewsItem represents a news article attached to a stock.
// Caller-supplied order is preserved end to end; nothing re-sorts news.
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Summary     string    `json:"summary,omitempty"`
}

// EarningsSnapshot is a flat set of named financial metrics from the most
// recent earnings report. Every metric is optional; an absent field renders
// as "N/A" in generated text, never as zero.
type EarningsSnapshot struct {
	EarningsDate time.Time `json:"earnings_date"`

	// Report vs. expectations
	ReportedEPS  *float64 `json:"reported_eps,omitempty"`
	EstimatedEPS *float64 `json:"estimated_eps,omitempty"`
	SurprisePct  *float64 `json:"surprise_pct,omitempty"`

	// Core financials
	Revenue           *float64 `json:"revenue,omitempty"`
	RevenueYoYGrowth  *float64 `json:"revenue_yoy_growth,omitempty"`
	NetIncome         *float64 `json:"net_income,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	ForwardEPS        *float64 `json:"forward_eps,omitempty"`
	EarningsGrowth    *float64 `json:"earnings_growth,omitempty"`
	GrossMargin       *float64 `json:"gross_margin,omitempty"`
	OperatingMargin   *float64 `json:"operating_margin,omitempty"`
	ProfitMargin      *float64 `json:"profit_margin,omitempty"`
	EBITDAMargin      *float64 `json:"ebitda_margin,omitempty"`
	FreeCashFlow      *float64 `json:"free_cash_flow,omitempty"`
	OperatingCashFlow *float64 `json:"operating_cash_flow,omitempty"`

	// Balance sheet
	TotalCash    *float64 `json:"total_cash,omitempty"`
	TotalDebt    *float64 `json:"total_debt,omitempty"`
	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	QuickRatio   *float64 `json:"quick_ratio,omitempty"`

	// Valuation
	MarketCap       *float64 `json:"market_cap,omitempty"`
	PERatio         *float64 `json:"pe_ratio,omitempty"`
	ForwardPE       *float64 `json:"forward_pe,omitempty"`
	PSRatio         *float64 `json:"ps_ratio,omitempty"`
	PriceToBook     *float64 `json:"price_to_book,omitempty"`
	EVToRevenue     *float64 `json:"ev_to_revenue,omitempty"`
	EVToEBITDA      *float64 `json:"ev_to_ebitda,omitempty"`
	RevenuePerShare *float64 `json:"revenue_per_share,omitempty"`

	// Analyst guidance
	TargetHighPrice *float64 `json:"target_high_price,omitempty"`
	TargetLowPrice  *float64 `json:"target_low_price,omitempty"`
	TargetMeanPrice *float64 `json:"target_mean_price,omitempty"`
	Recommendation  string   `json:"recommendation,omitempty"`
}

// StockRecord is one stock's fully-fetched data for a digest run.
// ChangePct is computed at fetch time as (current - previous) / previous * 100
// and is never recomputed downstream.
type StockRecord struct {
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	CurrentPrice  float64           `json:"current_price"`
	PreviousClose float64           `json:"previous_close"`
	ChangePct     float64           `json:"change_pct"`
	Volume        *int64            `json:"volume,omitempty"`
	News          []NewsItem        `json:"news"`
	Earnings      *EarningsSnapshot `json:"earnings,omitempty"`
}

// HasNews reports whether any news articles were fetched for the stock
func (r *StockRecord) HasNews() bool {
	return len(r.News) > 0
}

// HasEarnings reports whether a recent earnings report was fetched
func (r *StockRecord) HasEarnings() bool {
	return r.Earnings != nil
}

// HeaderLine returns the stock's digest header, e.g.
// **Apple Inc. (AAPL)**: $150.23 (+1.50%)
func (r *StockRecord) HeaderLine() string {
	return fmt.Sprintf("**%s (%s)**: $%.2f (%+.2f%%)", r.Name, r.Symbol, r.CurrentPrice, r.ChangePct)
}

// MarketOverview is the once-per-run macro commentary based on major
// index movement. It is cached for the process lifetime after the first
// successful generation.
type MarketOverview struct {
	SP500ChangePct  float64   `json:"sp500_change_pct"`
	DowChangePct    float64   `json:"dow_change_pct"`
	NasdaqChangePct float64   `json:"nasdaq_change_pct"`
	Summary         string    `json:"summary"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// QuotaStats is a read-only snapshot of quota tracker usage
type QuotaStats struct {
	RequestsLastMinute int `json:"requests_last_minute"`
	RequestsToday      int `json:"requests_today"`
	PerMinuteLimit     int `json:"per_minute_limit"`
	DailyLimit         int `json:"daily_limit"`
}

// User is one digest recipient and their watchlist
type User struct {
	Name    string   `json:"name"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Symbols []string `json:"symbols"`
}
