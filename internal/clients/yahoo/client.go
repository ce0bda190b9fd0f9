// Package yahoo provides a client for the Yahoo Finance API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/openbell/internal/common"
	"github.com/bobmcallan/openbell/internal/interfaces"
	"github.com/bobmcallan/openbell/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// Yahoo rejects requests without a browser-like user agent
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Client implements the MarketDataClient interface against the public
// Yahoo Finance query endpoints (chart, search, quoteSummary).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithNow replaces the wall clock, for tests
func WithNow(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo Finance API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo Finance API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetDailyChart retrieves up to the last `days` daily closes for a symbol.
// Sessions with a null close are dropped; bars come back oldest first.
func (c *Client) GetDailyChart(ctx context.Context, symbol string, days int) (*models.ChartResult, error) {
	if days <= 0 {
		days = 2
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", fmt.Sprintf("%dd", days))

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))

	var resp chartResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	res := resp.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	closes := res.Indicators.Quote[0].Close
	bars := make([]models.ClosePrice, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bars = append(bars, models.ClosePrice{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	name := res.Meta.ShortName
	if name == "" {
		name = res.Meta.LongName
	}
	if name == "" {
		name = symbol
	}

	return &models.ChartResult{
		Symbol: symbol,
		Name:   name,
		Bars:   bars,
		Volume: res.Meta.RegularMarketVolume,
	}, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string `json:"symbol"`
				ShortName           string `json:"shortName"`
				LongName            string `json:"longName"`
				RegularMarketVolume *int64 `json:"regularMarketVolume"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetRecentNews retrieves news articles for a symbol published within the
// window, most recent first as Yahoo returns them.
func (c *Client) GetRecentNews(ctx context.Context, symbol string, window time.Duration) ([]models.NewsItem, error) {
	params := url.Values{}
	params.Set("q", symbol)
	params.Set("newsCount", strconv.Itoa(20))
	params.Set("quotesCount", "0")

	var resp searchResponse
	if err := c.get(ctx, "/v1/finance/search", params, &resp); err != nil {
		return nil, err
	}

	cutoff := c.now().Add(-window)

	var items []models.NewsItem
	for _, article := range resp.News {
		publishedAt := time.Unix(article.ProviderPublishTime, 0).UTC()
		if publishedAt.Before(cutoff) {
			continue
		}
		items = append(items, models.NewsItem{
			Title:       article.Title,
			Publisher:   article.Publisher,
			URL:         article.Link,
			PublishedAt: publishedAt,
			Summary:     article.Summary,
		})
	}

	c.logger.Debug().Str("symbol", symbol).Int("articles", len(items)).Msg("News fetched")

	return items, nil
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
		Summary             string `json:"summary"`
	} `json:"news"`
}

// yahooValue is Yahoo's {"raw": n, "fmt": "..."} numeric wrapper. Absent
// or empty objects decode to a nil Raw.
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

// GetLatestEarnings retrieves the most recent earnings report plus the
// surrounding fundamentals snapshot. The snapshot's EarningsDate stays
// zero when Yahoo has no report history for the symbol.
func (c *Client) GetLatestEarnings(ctx context.Context, symbol string) (*models.EarningsSnapshot, error) {
	params := url.Values{}
	params.Set("modules", "financialData,defaultKeyStatistics,summaryDetail,earningsHistory")

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(symbol))

	var resp quoteSummaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quoteSummary error for %s: %s", symbol, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quoteSummary data for %s", symbol)
	}

	res := resp.QuoteSummary.Result[0]
	fin := res.FinancialData
	stats := res.DefaultKeyStatistics
	detail := res.SummaryDetail

	snapshot := &models.EarningsSnapshot{
		Revenue:           fin.TotalRevenue.Raw,
		RevenueYoYGrowth:  fin.RevenueGrowth.Raw,
		NetIncome:         stats.NetIncomeToCommon.Raw,
		EPS:               stats.TrailingEps.Raw,
		ForwardEPS:        stats.ForwardEps.Raw,
		EarningsGrowth:    fin.EarningsGrowth.Raw,
		GrossMargin:       fin.GrossMargins.Raw,
		OperatingMargin:   fin.OperatingMargins.Raw,
		ProfitMargin:      fin.ProfitMargins.Raw,
		EBITDAMargin:      fin.EbitdaMargins.Raw,
		FreeCashFlow:      fin.FreeCashflow.Raw,
		OperatingCashFlow: fin.OperatingCashflow.Raw,
		TotalCash:         fin.TotalCash.Raw,
		TotalDebt:         fin.TotalDebt.Raw,
		CurrentRatio:      fin.CurrentRatio.Raw,
		QuickRatio:        fin.QuickRatio.Raw,
		MarketCap:         detail.MarketCap.Raw,
		PERatio:           detail.TrailingPE.Raw,
		ForwardPE:         detail.ForwardPE.Raw,
		PSRatio:           detail.PriceToSalesTrailing12Months.Raw,
		PriceToBook:       stats.PriceToBook.Raw,
		EVToRevenue:       stats.EnterpriseToRevenue.Raw,
		EVToEBITDA:        stats.EnterpriseToEbitda.Raw,
		RevenuePerShare:   fin.RevenuePerShare.Raw,
		TargetHighPrice:   fin.TargetHighPrice.Raw,
		TargetLowPrice:    fin.TargetLowPrice.Raw,
		TargetMeanPrice:   fin.TargetMeanPrice.Raw,
		Recommendation:    fin.RecommendationKey,
	}

	// The last history entry is the most recent reported quarter
	if history := res.EarningsHistory.History; len(history) > 0 {
		latest := history[len(history)-1]
		if latest.Quarter.Raw != nil {
			snapshot.EarningsDate = time.Unix(int64(*latest.Quarter.Raw), 0).UTC()
		}
		snapshot.ReportedEPS = latest.EpsActual.Raw
		snapshot.EstimatedEPS = latest.EpsEstimate.Raw
		snapshot.SurprisePct = latest.SurprisePercent.Raw
	}

	return snapshot, nil
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData struct {
				TotalRevenue      yahooValue `json:"totalRevenue"`
				RevenueGrowth     yahooValue `json:"revenueGrowth"`
				RevenuePerShare   yahooValue `json:"revenuePerShare"`
				EarningsGrowth    yahooValue `json:"earningsGrowth"`
				GrossMargins      yahooValue `json:"grossMargins"`
				OperatingMargins  yahooValue `json:"operatingMargins"`
				ProfitMargins     yahooValue `json:"profitMargins"`
				EbitdaMargins     yahooValue `json:"ebitdaMargins"`
				FreeCashflow      yahooValue `json:"freeCashflow"`
				OperatingCashflow yahooValue `json:"operatingCashflow"`
				TotalCash         yahooValue `json:"totalCash"`
				TotalDebt         yahooValue `json:"totalDebt"`
				CurrentRatio      yahooValue `json:"currentRatio"`
				QuickRatio        yahooValue `json:"quickRatio"`
				TargetHighPrice   yahooValue `json:"targetHighPrice"`
				TargetLowPrice    yahooValue `json:"targetLowPrice"`
				TargetMeanPrice   yahooValue `json:"targetMeanPrice"`
				RecommendationKey string     `json:"recommendationKey"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				NetIncomeToCommon   yahooValue `json:"netIncomeToCommon"`
				TrailingEps         yahooValue `json:"trailingEps"`
				ForwardEps          yahooValue `json:"forwardEps"`
				PriceToBook         yahooValue `json:"priceToBook"`
				EnterpriseToRevenue yahooValue `json:"enterpriseToRevenue"`
				EnterpriseToEbitda  yahooValue `json:"enterpriseToEbitda"`
			} `json:"defaultKeyStatistics"`
			SummaryDetail struct {
				MarketCap                    yahooValue `json:"marketCap"`
				TrailingPE                   yahooValue `json:"trailingPE"`
				ForwardPE                    yahooValue `json:"forwardPE"`
				PriceToSalesTrailing12Months yahooValue `json:"priceToSalesTrailing12Months"`
			} `json:"summaryDetail"`
			EarningsHistory struct {
				History []struct {
					Quarter         yahooValue `json:"quarter"`
					EpsActual       yahooValue `json:"epsActual"`
					EpsEstimate     yahooValue `json:"epsEstimate"`
					SurprisePercent yahooValue `json:"surprisePercent"`
				} `json:"history"`
			} `json:"earningsHistory"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
