package digest

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/openbell/internal/common"
	"github.com/bobmcallan/openbell/internal/models"
)

// buildStockContext renders one stock's data block: the price header,
// an optional earnings report, and an optional enumerated news list.
// No instructions; those are appended by the single-stock and batch
// prompt builders.
func buildStockContext(rec *models.StockRecord) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Stock: %s (%s)\n", rec.Name, rec.Symbol))
	sb.WriteString(fmt.Sprintf("Current Price: $%.2f\n", rec.CurrentPrice))
	sb.WriteString(fmt.Sprintf("Change: %+.2f%%", rec.ChangePct))

	if rec.HasEarnings() {
		sb.WriteString("\n\nEARNINGS REPORT (Recent):\n")
		sb.WriteString(fmt.Sprintf("Earnings Date: %s\n\n", rec.Earnings.EarningsDate.Format("2006-01-02")))
		sb.WriteString(formatEarnings(rec.Earnings))
	}

	if rec.HasNews() {
		sb.WriteString("\n\nRecent News:\n")
		for i, article := range rec.News {
			sb.WriteString(fmt.Sprintf("%d. %s (%s, %s)\n", i+1, article.Title, article.Publisher,
				article.PublishedAt.Format("2006-01-02 15:04")))
			if article.Summary != "" {
				sb.WriteString(fmt.Sprintf("   %s\n", article.Summary))
			}
		}
	}

	return sb.String()
}

// buildStockPrompt builds the complete single-stock prompt. Records
// with news or earnings get the analytical variant; records with
// neither get the shorter no-data variant.
func buildStockPrompt(rec *models.StockRecord) string {
	if !rec.HasNews() && !rec.HasEarnings() {
		return buildNoDataPrompt(rec)
	}

	var sb strings.Builder
	sb.WriteString("You are a financial analyst providing daily stock updates.\n\n")
	sb.WriteString(buildStockContext(rec))

	sb.WriteString("\n\nProvide a 3-4 sentence summary. DO NOT include any preamble like ")
	sb.WriteString("\"Here's your update\" or \"Let me summarize\". Start directly with the key information.\n")

	if rec.HasEarnings() {
		sb.WriteString(`
Focus on:
1. Key earnings metrics and whether they beat/missed expectations
2. Most important financial trends (margins, growth, cash position)
3. How the market reacted and why
4. Critical news developments if any

Be analytical and data-driven. Highlight the most important numbers.`)
	} else {
		sb.WriteString(`
Focus on:
1. The most important news developments
2. How they relate to the price movement
3. What investors should watch for

Be concise, factual, and actionable. No fluff.`)
	}

	return sb.String()
}

// buildNoDataPrompt asks for a shorter analytical note when a stock has
// neither recent news nor a recent earnings report.
func buildNoDataPrompt(rec *models.StockRecord) string {
	return fmt.Sprintf(`You are a financial analyst providing daily stock updates.

Stock: %s (%s)
Current Price: $%.2f
Change: %+.2f%%

No news articles or earnings reports were published recently for this stock.

Provide a 3-4 sentence summary analyzing the stock's performance. DO NOT include any preamble. Start directly with analysis. Cover:
1. The price movement and what it suggests
2. Whether this aligns with broader market trends
3. Any technical observations worth noting

Be concise and factual. Mention that no news was available.`,
		rec.Name, rec.Symbol, rec.CurrentPrice, rec.ChangePct)
}

// formatEarnings renders the earnings snapshot in a fixed section order:
// core financials, balance sheet, valuation, earnings performance,
// analyst guidance. A section whose every value is absent is omitted
// entirely rather than printed as all N/A.
func formatEarnings(e *models.EarningsSnapshot) string {
	var sections []string

	if anyPresent(e.Revenue, e.RevenueYoYGrowth, e.NetIncome, e.EPS, e.ForwardEPS, e.EarningsGrowth,
		e.GrossMargin, e.OperatingMargin, e.ProfitMargin, e.EBITDAMargin, e.FreeCashFlow, e.OperatingCashFlow) {
		core := fmt.Sprintf(`CORE FINANCIALS:
- Revenue: %s (YoY Growth: %s)
- Net Income: %s
- EPS: %s (Forward: %s)
- Earnings Growth: %s
- Gross Margin: %s
- Operating Margin: %s
- Net Margin: %s
- EBITDA Margin: %s
- Free Cash Flow: %s
- Operating Cash Flow: %s`,
			common.FormatCurrency(e.Revenue), common.FormatPct(e.RevenueYoYGrowth),
			common.FormatCurrency(e.NetIncome),
			common.FormatValue(e.EPS, "$", "", false), common.FormatValue(e.ForwardEPS, "$", "", false),
			common.FormatPct(e.EarningsGrowth),
			common.FormatPct(e.GrossMargin),
			common.FormatPct(e.OperatingMargin),
			common.FormatPct(e.ProfitMargin),
			common.FormatPct(e.EBITDAMargin),
			common.FormatCurrency(e.FreeCashFlow),
			common.FormatCurrency(e.OperatingCashFlow))
		sections = append(sections, core)
	}

	if anyPresent(e.TotalCash, e.TotalDebt, e.CurrentRatio, e.QuickRatio) {
		balance := fmt.Sprintf(`BALANCE SHEET:
- Total Cash: %s
- Total Debt: %s
- Current Ratio: %s
- Quick Ratio: %s`,
			common.FormatCurrency(e.TotalCash),
			common.FormatCurrency(e.TotalDebt),
			common.FormatRatio(e.CurrentRatio),
			common.FormatRatio(e.QuickRatio))
		sections = append(sections, balance)
	}

	if anyPresent(e.MarketCap, e.PERatio, e.ForwardPE, e.PSRatio, e.PriceToBook, e.EVToRevenue, e.EVToEBITDA, e.RevenuePerShare) {
		valuation := fmt.Sprintf(`VALUATION:
- Market Cap: %s
- P/E Ratio: %s (Forward: %s)
- P/S Ratio: %s
- Price-to-Book: %s
- EV/Revenue: %s
- EV/EBITDA: %s
- Revenue per Share: %s`,
			common.FormatCurrency(e.MarketCap),
			common.FormatRatio(e.PERatio), common.FormatRatio(e.ForwardPE),
			common.FormatRatio(e.PSRatio),
			common.FormatRatio(e.PriceToBook),
			common.FormatRatio(e.EVToRevenue),
			common.FormatRatio(e.EVToEBITDA),
			common.FormatValue(e.RevenuePerShare, "$", "", false))
		sections = append(sections, valuation)
	}

	if anyPresent(e.ReportedEPS, e.EstimatedEPS, e.SurprisePct) {
		performance := fmt.Sprintf(`EARNINGS PERFORMANCE:
- Reported EPS: %s
- Expected EPS: %s
- Surprise: %s`,
			common.FormatValue(e.ReportedEPS, "$", "", false),
			common.FormatValue(e.EstimatedEPS, "$", "", false),
			common.FormatValue(e.SurprisePct, "", "%", false))
		sections = append(sections, performance)
	}

	if anyPresent(e.TargetLowPrice, e.TargetHighPrice, e.TargetMeanPrice) {
		recommendation := "N/A"
		if e.Recommendation != "" {
			recommendation = strings.ToUpper(e.Recommendation)
		}
		guidance := fmt.Sprintf(`ANALYST GUIDANCE:
- Target Price Range: %s - %s
- Mean Target: %s
- Recommendation: %s`,
			common.FormatValue(e.TargetLowPrice, "$", "", false),
			common.FormatValue(e.TargetHighPrice, "$", "", false),
			common.FormatValue(e.TargetMeanPrice, "$", "", false),
			recommendation)
		sections = append(sections, guidance)
	}

	return strings.Join(sections, "\n\n")
}

func anyPresent(vals ...*float64) bool {
	for _, v := range vals {
		if v != nil {
			return true
		}
	}
	return false
}
