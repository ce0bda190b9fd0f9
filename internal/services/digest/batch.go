package digest

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/openbell/internal/models"
)

// DefaultBatchSize is the number of stocks summarized per model call
const DefaultBatchSize = 10

// generateBatches partitions records into consecutive chunks of at most
// batchSize and produces one text block per chunk (or, after a chunk
// failure, one block per stock). Input order is preserved exactly:
// chunks are processed and appended strictly in index order.
func (s *Service) generateBatches(ctx context.Context, records []*models.StockRecord) []string {
	batchSize := s.batchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var blocks []string
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		prompt := buildBatchPrompt(chunk)
		s.quota.Admit()
		response, err := s.gen.GenerateContent(ctx, prompt)
		if err != nil {
			// Whole chunk degrades to per-stock calls
			s.logger.Warn().Err(err).
				Int("batch_start", start).
				Int("batch_len", len(chunk)).
				Msg("Batch summary failed, falling back to per-stock summaries")
			blocks = append(blocks, s.summarizeIndividually(ctx, chunk)...)
			continue
		}

		s.logger.Debug().Int("batch_start", start).Int("batch_len", len(chunk)).Msg("Batch summary generated")
		blocks = append(blocks, response)
	}

	return blocks
}

// summarizeIndividually is the fallback path: one quota-gated model
// call per stock, in original order. A stock whose own call fails gets
// the fixed error placeholder under its header; it never aborts the
// remaining stocks.
func (s *Service) summarizeIndividually(ctx context.Context, chunk []*models.StockRecord) []string {
	blocks := make([]string, 0, len(chunk))
	for _, rec := range chunk {
		s.quota.Admit()
		summary, err := s.gen.GenerateContent(ctx, buildStockPrompt(rec))

		var block string
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", rec.Symbol).Msg("Error generating summary")
			block = rec.HeaderLine() + "\n\nError generating summary.\n"
		} else {
			block = rec.HeaderLine() + "\n\n" + strings.TrimSpace(summary) + "\n"
		}

		blocks = append(blocks, block+"\n"+dashRule)
	}
	return blocks
}

// buildBatchPrompt builds one combined prompt for a chunk: a preamble
// stating the per-stock output format and the "---" separator
// convention, followed by each stock's data context.
func buildBatchPrompt(chunk []*models.StockRecord) string {
	var sb strings.Builder

	sb.WriteString(`You are a financial analyst providing daily stock updates for multiple stocks.

For EACH stock below, provide a summary in this exact format:

**<Company Name> (<SYMBOL>)**: $<price> (<+/-change>%)
<your 3-4 sentence analysis>

Rules:
- For stocks with earnings data, focus on key metrics, whether they beat or missed expectations, and market reaction
- For stocks with news, focus on the most important developments and how they relate to the price movement
- For stocks with neither, give a short analytical note and mention that no news was available
- Be analytical and data-driven; no fluff
- Separate consecutive stocks with a line containing only "---"
- Do NOT put a separator after the last stock
- Do NOT include any preamble or closing remarks; start directly with the first stock's header line

Here is the data for each stock:

`)

	contexts := make([]string, 0, len(chunk))
	for _, rec := range chunk {
		contexts = append(contexts, buildStockContext(rec))
	}
	sb.WriteString(strings.Join(contexts, fmt.Sprintf("\n\n%s\n\n", dashRule)))

	return sb.String()
}
