package digest

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/openbell/internal/common"
	"github.com/bobmcallan/openbell/internal/interfaces"
	"github.com/bobmcallan/openbell/internal/models"
)

// Service generates digests. One instance is shared across every user
// in a run so that the quota tracker and the market overview cache are
// process-wide singletons.
type Service struct {
	gen       interfaces.GenerativeClient
	market    interfaces.MarketDataClient
	quota     *QuotaTracker
	logger    *common.Logger
	batchSize int
	now       func() time.Time

	overviewMu sync.Mutex
	overview   *models.MarketOverview
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithBatchSize sets the number of stocks per combined model call
func WithBatchSize(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithNow replaces the wall clock, for tests
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a digest service. The quota tracker is injected,
// not constructed here: quota is a global resource shared with any
// other component that calls the model.
func NewService(gen interfaces.GenerativeClient, market interfaces.MarketDataClient, quota *QuotaTracker, opts ...ServiceOption) *Service {
	s := &Service{
		gen:       gen,
		market:    market,
		quota:     quota,
		logger:    common.NewSilentLogger(),
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GenerateDigest produces the complete digest document for one user's
// records. Every failure along the way degrades: an unavailable market
// overview omits that section, a failed batch falls back to per-stock
// calls, and a failed per-stock call becomes a placeholder block. The
// returned error is reserved for future configuration surface; data and
// model failures never propagate.
func (s *Service) GenerateDigest(ctx context.Context, records []*models.StockRecord, userName string) (string, error) {
	overview, err := s.MarketOverview(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Skipping market overview section")
		overview = nil
	}

	blocks := s.generateBatches(ctx, records)

	stats := s.quota.Stats()
	s.logger.Info().
		Int("stocks", len(records)).
		Int("blocks", len(blocks)).
		Int("requests_today", stats.RequestsToday).
		Msg("Digest generated")

	return renderDigest(s.now(), userName, overview, blocks), nil
}

// Ensure Service implements DigestService
var _ interfaces.DigestService = (*Service)(nil)
