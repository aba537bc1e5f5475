// Package store is the per-session application state: cached backend data
// grouped in domain slices, plus the operations that refresh it after writes.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/metrics"
	"hospital-portal/internal/models"
)

// ErrNoUser is returned by operations scoped to the signed-in user when there is none.
var ErrNoUser = errors.New("no authenticated user found")

// API is the backend surface the slices use. *apiclient.Client implements it.
type API interface {
	Get(ctx context.Context, endpoint string, out any) error
	Post(ctx context.Context, endpoint string, body, out any) error
	Put(ctx context.Context, endpoint string, body, out any) error
	Delete(ctx context.Context, endpoint string, out any) error
	Upload(ctx context.Context, endpoint string, form apiclient.Form, out any) error
	UploadPut(ctx context.Context, endpoint string, form apiclient.Form, out any) error
}

// Status is the loading flag and last error shared by every slice of a Store.
type Status struct {
	mu       sync.RWMutex
	inFlight int
	lastErr  string
}

// IsLoading reports whether any operation is running.
func (s *Status) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// Error returns the message of the last failed operation, or "".
func (s *Status) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Status) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	s.lastErr = ""
}

func (s *Status) end(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if err != nil {
		s.lastErr = err.Error()
	}
}

// Options configure a Store.
type Options struct {
	Logger  zerolog.Logger
	Metrics *metrics.PortalMetrics
	Now     func() time.Time
}

// Store holds one session's cached state.
type Store struct {
	api     API
	logger  zerolog.Logger
	metrics *metrics.PortalMetrics
	now     func() time.Time
	status  Status

	mu   sync.RWMutex
	user models.User

	Departments  *Departments
	Doctors      *Doctors
	Patients     *Patients
	Appointments *Appointments
}

// New builds the state container for user, talking to the backend through api.
func New(api API, user models.User, opts Options) *Store {
	s := &Store{
		api:     api,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
		user:    user,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.Departments = &Departments{s: s}
	s.Doctors = &Doctors{s: s}
	s.Patients = &Patients{s: s}
	s.Appointments = &Appointments{s: s}
	return s
}

// Status returns the shared loading/error state.
func (s *Store) Status() *Status {
	return &s.status
}

// User returns the signed-in user as last fetched.
func (s *Store) User() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Now is the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) setUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Store) userID() (string, error) {
	id := s.User().ID
	if id == "" {
		return "", ErrNoUser
	}
	return id, nil
}

// run wraps one slice operation: loading on, error cleared, and any failure
// recorded in the shared status before it is returned.
func (s *Store) run(ctx context.Context, op string, fn func(context.Context) error) error {
	s.status.begin()
	err := fn(ctx)
	s.status.end(err)
	if err != nil {
		s.logger.Warn().Str("op", op).Str("user_id", s.User().ID).Str("error", err.Error()).Msg("store operation failed")
	}
	return err
}
