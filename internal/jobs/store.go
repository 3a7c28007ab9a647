package jobs

import (
	"sort"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/infra"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 8
)

// Store is the job registry consumed by the HTTP surface and the pipeline.
// A shared key-value backend can replace MemoryStore behind this interface.
type Store interface {
	Create(productURL string) string
	Update(jobID string, opts ...UpdateFunc)
	AddLog(jobID, source, message string)
	Get(jobID string) (*domain.Job, bool)
	List() []domain.Job
}

// UpdateFunc mutates a job while the store lock is held.
type UpdateFunc func(job *domain.Job)

// MemoryStore keeps jobs in process memory. Every access goes through mu.
type MemoryStore struct {
	mu     sync.RWMutex
	jobs   map[string]*domain.Job
	now    func() time.Time
	newID  func() string
	logger *infra.Logger
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDGenerator overrides job id allocation.
func WithIDGenerator(fn func() string) Option {
	return func(s *MemoryStore) { s.newID = fn }
}

// WithLogger attaches a logger used for rejected stage transitions.
func WithLogger(logger *infra.Logger) Option {
	return func(s *MemoryStore) { s.logger = logger }
}

// NewMemoryStore builds an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		jobs:   make(map[string]*domain.Job),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  NewJobID,
		logger: infra.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewJobID returns an 8 character lowercase token.
func NewJobID() string {
	return gonanoid.MustGenerate(idAlphabet, idLength)
}

// Create inserts a queued job and returns its id.
func (s *MemoryStore) Create(productURL string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, taken := s.jobs[id]; !taken {
			break
		}
		id = s.newID()
	}
	now := s.now()
	s.jobs[id] = &domain.Job{
		ID:              id,
		ProductURL:      strings.TrimSpace(productURL),
		Stage:           domain.StageQueued,
		ProgressPercent: 0,
		Message:         "Job queued",
		Agents:          domain.NewAgentStatuses(),
		Logs:            []domain.LogEntry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return id
}

// Insert stores a fully built job as-is. The demo profile uses it for its
// placeholder records.
func (s *MemoryStore) Insert(job domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
}

// Update applies opts atomically and refreshes UpdatedAt. Unknown ids are ignored.
// A stage change that the state machine rejects is dropped, the rest of the
// update still applies.
func (s *MemoryStore) Update(jobID string, opts ...UpdateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	prevStage := job.Stage
	for _, opt := range opts {
		opt(job)
	}
	if job.Stage != prevStage && !prevStage.CanTransition(job.Stage) {
		s.logger.Warn().
			Str("job_id", jobID).
			Str("from", string(prevStage)).
			Str("to", string(job.Stage)).
			Msg("jobs: rejected stage transition")
		job.Stage = prevStage
	}
	job.UpdatedAt = s.now()
}

// AddLog appends an entry and trims the log to the newest MaxJobLogs entries.
func (s *MemoryStore) AddLog(jobID, source, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.Logs = append(job.Logs, domain.LogEntry{
		Timestamp: s.now(),
		Source:    source,
		Message:   message,
	})
	if overflow := len(job.Logs) - domain.MaxJobLogs; overflow > 0 {
		trimmed := make([]domain.LogEntry, domain.MaxJobLogs)
		copy(trimmed, job.Logs[overflow:])
		job.Logs = trimmed
	}
}

// Get returns a copy of the job.
func (s *MemoryStore) Get(jobID string) (*domain.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// List returns copies of every job ordered by creation time.
func (s *MemoryStore) List() []domain.Job {
	s.mu.RLock()
	out := make([]domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *job.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

var _ Store = (*MemoryStore)(nil)
