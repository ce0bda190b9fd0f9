// Package roster loads digest recipients and their watchlists
package roster

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/openbell/internal/common"
	"github.com/bobmcallan/openbell/internal/interfaces"
	"github.com/bobmcallan/openbell/internal/models"
)

const (
	DefaultUsersPath     = "data/users.json"
	DefaultWatchlistPath = "data/watchlist.json"

	// fallbackUserName names the synthetic user created from a bare
	// watchlist file when no users file exists
	fallbackUserName = "Default User"
)

// Service loads users from a users file, falling back to a single
// synthetic user built from a watchlist file and the configured default
// recipient.
type Service struct {
	usersPath         string
	watchlistPath     string
	fallbackRecipient string
	logger            *common.Logger
	validate          *validator.Validate
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithUsersPath sets the users file path
func WithUsersPath(path string) ServiceOption {
	return func(s *Service) {
		if path != "" {
			s.usersPath = path
		}
	}
}

// WithWatchlistPath sets the watchlist file path
func WithWatchlistPath(path string) ServiceOption {
	return func(s *Service) {
		if path != "" {
			s.watchlistPath = path
		}
	}
}

// WithFallbackRecipient sets the email used for the synthetic
// watchlist-mode user
func WithFallbackRecipient(email string) ServiceOption {
	return func(s *Service) {
		s.fallbackRecipient = email
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a roster service
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		usersPath:     DefaultUsersPath,
		watchlistPath: DefaultWatchlistPath,
		logger:        common.NewSilentLogger(),
		validate:      validator.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type usersFile struct {
	Users []models.User `json:"users"`
}

type watchlistFile struct {
	Symbols []string `json:"symbols"`
}

// LoadUsers returns every valid digest recipient. A missing users file
// falls back to watchlist mode; an empty result from both files is an
// error. Users with a malformed email address are dropped with a
// warning rather than failing the run.
func (s *Service) LoadUsers() ([]models.User, error) {
	users, err := s.loadUsersFile()
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		s.logger.Warn().Str("path", s.usersPath).Msg("No users found, falling back to watchlist mode")
		users, err = s.loadWatchlistFallback()
		if err != nil {
			return nil, err
		}
	}

	valid := make([]models.User, 0, len(users))
	for _, user := range users {
		if err := s.validate.Struct(&user); err != nil {
			s.logger.Warn().Err(err).Str("user", user.Name).Msg("Dropping user with invalid email")
			continue
		}
		valid = append(valid, user)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("no valid users in %s or %s", s.usersPath, s.watchlistPath)
	}

	s.logger.Info().Int("users", len(valid)).Msg("Users loaded")

	return valid, nil
}

func (s *Service) loadUsersFile() ([]models.User, error) {
	data, err := os.ReadFile(s.usersPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.usersPath, err)
	}

	var file usersFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.usersPath, err)
	}

	return file.Users, nil
}

func (s *Service) loadWatchlistFallback() ([]models.User, error) {
	data, err := os.ReadFile(s.watchlistPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.watchlistPath, err)
	}

	var file watchlistFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.watchlistPath, err)
	}

	if len(file.Symbols) == 0 {
		return nil, nil
	}

	return []models.User{{
		Name:    fallbackUserName,
		Email:   s.fallbackRecipient,
		Symbols: file.Symbols,
	}}, nil
}

// Ensure Service implements RosterService
var _ interfaces.RosterService = (*Service)(nil)
