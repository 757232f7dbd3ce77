package service

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saadjs/tally/internal/aggregate"
	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/logging"
	"github.com/saadjs/tally/internal/store"
)

// Service validates user input, writes records through the store and builds
// the today/progress/habit views on top of the aggregator.
type Service struct {
	store  store.Store
	agg    *aggregate.Aggregator

	// A newer view request cancels an older one still loading.
	todayRun    aggregate.Latest
	progressRun aggregate.Latest

	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(st store.Store, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		store:  st,
		loc:    loc,
		logger: logging.Discard(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.agg = aggregate.New(st, loc, s.logger)
	return s
}

func (s *Service) Aggregator() *aggregate.Aggregator {
	return s.agg
}

func validateUser(op, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.Invalid(op, "user id is required")
	}
	return nil
}

func validateNonNegativeInt(op, name string, value int) error {
	if value < 0 {
		return apperr.Invalid(op, "%s must be >= 0", name)
	}
	return nil
}

func validatePositiveInt(op, name string, value int) error {
	if value < 1 {
		return apperr.Invalid(op, "%s must be >= 1", name)
	}
	return nil
}

// dayBounds returns [midnight, next midnight) for the day containing t.
func (s *Service) dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc), time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
}

func (s *Service) timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}
