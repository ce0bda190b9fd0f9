// Package app wires configuration, clients, and services into a digest run
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/openbell/internal/clients/gemini"
	"github.com/bobmcallan/openbell/internal/clients/mailer"
	"github.com/bobmcallan/openbell/internal/clients/yahoo"
	"github.com/bobmcallan/openbell/internal/common"
	"github.com/bobmcallan/openbell/internal/interfaces"
	"github.com/bobmcallan/openbell/internal/models"
	"github.com/bobmcallan/openbell/internal/services/digest"
	"github.com/bobmcallan/openbell/internal/services/market"
	"github.com/bobmcallan/openbell/internal/services/roster"
)

// App holds all initialized services and clients for one digest run.
// The quota tracker and digest service are shared across every user so
// model usage is tracked process-wide.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	MarketData    interfaces.MarketDataClient
	Generative    interfaces.GenerativeClient
	Mailer        interfaces.EmailSender
	DigestService interfaces.DigestService
	MarketService interfaces.MarketService
	RosterService interfaces.RosterService
	Quota         *digest.QuotaTracker
	StartupTime   time.Time

	now func() time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	startupStart := time.Now()

	// Check provided path, OPENBELL_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("OPENBELL_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "openbell.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/openbell.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	if missing := config.ValidateRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	geminiClient, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
		gemini.WithLogger(logger),
		gemini.WithModel(config.Clients.Gemini.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	quota, err := digest.NewQuotaTracker(
		config.Quota.RequestsPerMinute,
		config.Quota.RequestsPerDay,
		digest.WithQuotaLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid quota configuration: %w", err)
	}

	digestService := digest.NewService(geminiClient, yahooClient, quota,
		digest.WithBatchSize(config.Digest.BatchSize),
		digest.WithLogger(logger),
	)

	marketService := market.NewService(yahooClient,
		market.WithNewsWindow(config.Digest.NewsWindow()),
		market.WithEarningsWindow(config.Digest.EarningsWindow()),
		market.WithLogger(logger),
	)

	rosterService := roster.NewService(
		roster.WithUsersPath(config.Data.UsersPath),
		roster.WithWatchlistPath(config.Data.WatchlistPath),
		roster.WithFallbackRecipient(config.Email.Recipient),
		roster.WithLogger(logger),
	)

	digestMailer := mailer.NewMailer(config.Email.From, config.Email.Username, config.Email.Password,
		mailer.WithHost(config.Email.Host),
		mailer.WithPort(config.Email.Port),
		mailer.WithLogger(logger),
	)

	a := &App{
		Config:        config,
		Logger:        logger,
		MarketData:    yahooClient,
		Generative:    geminiClient,
		Mailer:        digestMailer,
		DigestService: digestService,
		MarketService: marketService,
		RosterService: rosterService,
		Quota:         quota,
		StartupTime:   startupStart,
		now:           time.Now,
	}

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Run processes every user sequentially and returns how many digests
// were sent out of how many users were attempted. A per-user failure
// never aborts the remaining users.
func (a *App) Run(ctx context.Context) (sent, total int, err error) {
	users, err := a.RosterService.LoadUsers()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load users: %w", err)
	}

	a.Logger.Info().Int("users", len(users)).Msg("Starting digest run")

	for _, user := range users {
		total++
		if a.processUser(ctx, user) {
			sent++
		}
	}

	stats := a.Quota.Stats()
	a.Logger.Info().
		Int("sent", sent).
		Int("total", total).
		Int("model_requests", stats.RequestsToday).
		Msg("Digest run complete")

	return sent, total, nil
}

// processUser builds and sends one user's digest. Returns true when the
// email went out.
func (a *App) processUser(ctx context.Context, user models.User) bool {
	runID := uuid.New().String()
	logger := a.Logger.With().Str("run_id", runID).Str("user", user.Name).Logger()

	if user.Email == "" {
		logger.Warn().Msg("Skipping user without email address")
		return false
	}
	if len(user.Symbols) == 0 {
		logger.Warn().Msg("Skipping user without watchlist symbols")
		return false
	}

	logger.Info().Int("symbols", len(user.Symbols)).Msg("Processing digest")

	records := a.MarketService.CollectRecords(ctx, user.Symbols)
	if len(records) == 0 {
		logger.Error().Msg("No stock data could be fetched")
		return false
	}

	digestText, err := a.DigestService.GenerateDigest(ctx, records, user.Name)
	if err != nil {
		logger.Error().Err(err).Msg("Digest generation failed")
		return false
	}

	subject := fmt.Sprintf("Daily Stock Digest - %s", a.now().Format("January 2, 2006"))
	if err := a.Mailer.SendDigest(ctx, user.Email, subject, digestText); err != nil {
		logger.Error().Err(err).Str("recipient", user.Email).Msg("Failed to send digest")
		return false
	}

	logger.Info().Str("recipient", user.Email).Msg("Digest sent")

	return true
}
