package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/motorcat/internal/catalog"
)

// ErrRunNotFound is returned by Get for unknown or expired run ids.
var ErrRunNotFound = errors.New("import not found")

// RunStatus is the lifecycle state of an import run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run records one import call. History is kept in memory only.
type Run struct {
	ID         string               `json:"id"`
	FileName   string               `json:"fileName"`
	Status     RunStatus            `json:"status"`
	StartedAt  time.Time            `json:"startedAt"`
	DurationMs int64                `json:"durationMs"`
	Stats      catalog.ImportStats  `json:"stats"`
	Failed     []catalog.RowOutcome `json:"failed,omitempty"`
	Error      string               `json:"error,omitempty"`
	Message    *catalog.UserMessage `json:"message,omitempty"`
}

// Config tunes a Service.
type Config struct {
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration // per import; zero means none
	HistorySize   int
	Read          ReadOptions
}

// DefaultHistorySize is the number of runs kept when Config.HistorySize is unset.
const DefaultHistorySize = 50

// Service runs spreadsheet imports through the reconciler.
type Service struct {
	store   catalog.Store
	limiter *Limiter
	cfg     Config
	logger  *slog.Logger

	mu   sync.RWMutex
	runs []*Run // oldest first, at most cfg.HistorySize
}

// NewService creates an import Service writing into store.
func NewService(store catalog.Store, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	return &Service{
		store:   store,
		limiter: NewLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		cfg:     cfg,
		logger:  logger,
	}
}

// Limiter exposes the concurrency limiter for status and shutdown draining.
func (s *Service) Limiter() *Limiter { return s.limiter }

// Import parses r as fileName and reconciles its rows.
//
// Row failures are reported in the returned Run and are not errors. An error
// is returned only when no slot is available or the file cannot be read at
// all; the Run is then marked failed.
func (s *Service) Import(ctx context.Context, r io.Reader, fileName string) (Run, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return Run{}, err
	}
	defer s.limiter.Release()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	run := s.begin(fileName)
	log := s.logger.With("run_id", run.ID, "file", fileName)
	log.Info("import started")

	rows, err := ReadRows(r, fileName, s.cfg.Read)
	if err != nil {
		err = fmt.Errorf("read spreadsheet: %w", err)
		log.Error("import failed", "error", err)
		return s.finish(run, func(u *Run) {
			u.Status = StatusFailed
			u.Error = err.Error()
			msg := catalog.MapError(err)
			u.Message = &msg
		}), err
	}

	report := catalog.NewReconciler(s.store, log).ImportRows(ctx, rows)

	return s.finish(run, func(u *Run) {
		u.Status = StatusCompleted
		u.Stats = report.ImportStats
		u.Failed = report.Failed()
		if report.Processed < report.Total {
			u.Error = fmt.Sprintf("stopped after %d of %d rows: %v", report.Processed, report.Total, ctx.Err())
		}
	}), nil
}

// Recent returns up to n runs, newest first. n <= 0 returns all kept runs.
func (s *Service) Recent(n int) []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.runs) {
		n = len(s.runs)
	}
	out := make([]Run, 0, n)
	for i := len(s.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, *s.runs[i])
	}
	return out
}

// Get returns the run with the given id.
func (s *Service) Get(id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			return *r, nil
		}
	}
	return Run{}, ErrRunNotFound
}

func (s *Service) begin(fileName string) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.runs = append(s.runs, run)
	if over := len(s.runs) - s.cfg.HistorySize; over > 0 {
		s.runs = append([]*Run(nil), s.runs[over:]...)
	}
	s.mu.Unlock()

	return run
}

func (s *Service) finish(run *Run, update func(*Run)) Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	update(run)
	run.DurationMs = time.Since(run.StartedAt).Milliseconds()
	return *run
}
