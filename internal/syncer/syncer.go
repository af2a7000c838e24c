package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/lumen/internal/ingest"
	"github.com/starford/lumen/internal/models"
	"github.com/starford/lumen/internal/repository"
)

// Syncer runs full-replacement syncs from a Source into a Repository.
//
// Every Sync takes a token from a monotonically increasing counter. A
// result is applied only if its token is newer than the last applied one,
// so a slow superseded fetch never overwrites a newer collection. A Sync
// started while another is in flight supersedes it.
type Syncer struct {
	src    Source
	repo   *repository.Repository
	logger *slog.Logger
	now    func() time.Time
	notify func(State)

	mu      sync.Mutex
	state   State
	issued  uint64
	applied uint64

	readyOnce sync.Once
	ready     chan struct{}
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// WithNotify registers a callback invoked after every state change.
func WithNotify(fn func(State)) Option {
	return func(s *Syncer) { s.notify = fn }
}

// New creates a Syncer in the idle state.
func New(src Source, repo *repository.Repository, logger *slog.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		src:    src,
		repo:   repo,
		logger: logger,
		now:    time.Now,
		state:  State{Status: StatusIdle},
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready is closed once the first sync finished, successfully or not.
func (s *Syncer) Ready() <-chan struct{} {
	return s.ready
}

// Sync fetches the full collection and replaces the repository with it.
// A superseded run returns its own result but leaves the repository and
// state untouched.
func (s *Syncer) Sync(ctx context.Context) (State, error) {
	token, err := s.begin()
	if err != nil {
		return s.State(), err
	}

	files, err := s.src.Fetch(ctx)
	if err != nil {
		err = fmt.Errorf("syncer: fetch: %w", err)
		return s.finish(token, nil, err), err
	}
	return s.finish(token, files, nil), nil
}

// Reset moves the syncer back to idle and discards any in-flight run.
func (s *Syncer) Reset() {
	s.mu.Lock()
	s.applied = s.issued
	s.state = State{Status: StatusIdle, LastSync: s.state.LastSync, Notes: s.state.Notes}
	st := s.state
	s.mu.Unlock()
	s.publish(st)
}

func (s *Syncer) begin() (uint64, error) {
	s.mu.Lock()
	if s.state.Status != StatusSyncing {
		if err := transition(s.state.Status, StatusSyncing); err != nil {
			s.mu.Unlock()
			return 0, err
		}
		s.state.Status = StatusSyncing
		s.state.Message = ""
	}
	s.issued++
	token := s.issued
	st := s.state
	s.mu.Unlock()

	s.logger.Debug("sync: started", slog.Uint64("token", token))
	s.publish(st)
	return token, nil
}

func (s *Syncer) finish(token uint64, files []ingest.DriveFile, fetchErr error) State {
	now := s.now()
	var notes []models.Note
	if fetchErr == nil {
		notes = ingest.ParseAll(files, now)
	}

	// Check and apply under one lock so two finishing runs cannot
	// interleave.
	s.mu.Lock()
	if token <= s.applied {
		st := s.state
		s.mu.Unlock()
		s.logger.Info("sync: stale result discarded", slog.Uint64("token", token))
		return st
	}

	// A finished run, failed or not, retires every older token, so an
	// older success cannot overwrite the outcome of a newer failure.
	s.applied = token
	var snap repository.Snapshot
	if fetchErr == nil {
		snap = s.repo.Replace(notes)
		s.state.Notes = len(snap.Notes)
		s.state.LastSync = &now
	}

	latest := token == s.issued
	if latest {
		to := StatusSuccess
		if fetchErr != nil {
			to = StatusError
		}
		if err := transition(s.state.Status, to); err == nil {
			s.state.Status = to
			s.state.Message = ""
			if fetchErr != nil {
				s.state.Message = fetchErr.Error()
			}
		}
	}
	st := s.state
	s.mu.Unlock()

	if fetchErr != nil {
		s.logger.Error("sync: failed", slog.Uint64("token", token), slog.String("error", fetchErr.Error()))
	} else {
		s.logger.Info("sync: applied",
			slog.Uint64("token", token),
			slog.Int("notes", len(snap.Notes)),
			slog.Uint64("version", snap.Version))
	}
	if latest {
		s.readyOnce.Do(func() { close(s.ready) })
	}
	s.publish(st)
	return st
}

func (s *Syncer) publish(st State) {
	if s.notify != nil {
		s.notify(st)
	}
}

// Run performs an initial sync and then re-syncs every interval until ctx
// is cancelled. interval <= 0 disables the periodic loop.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) error {
	if _, err := s.Sync(ctx); err != nil {
		s.logger.Warn("sync: initial sync failed", slog.String("error", err.Error()))
	}
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := s.Sync(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("sync: auto sync failed", slog.String("error", err.Error()))
			}
		}
	}
}
