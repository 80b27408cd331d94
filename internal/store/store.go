package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"finance-dashboard/internal/entity"
	"finance-dashboard/internal/pkg/logger"
)

const module = "STORE"

const unknownError = "unknown error"

// Fetcher is the part of the analysis backend the store reads from.
type Fetcher interface {
	KPIs(ctx context.Context, sessionID string) (entity.KpiSet, error)
	Charts(ctx context.Context, sessionID string) (*entity.ChartData, error)
	Data(ctx context.Context, sessionID string) (entity.Table, error)
	Report(ctx context.Context, sessionID, topic string) (string, error)
}

// Store is the single source of truth for one visitor: the active session
// handle, the four derived slots and a status record per slot.
//
// Every fetch is tagged with the session generation current when it was
// issued. A response that arrives after the handle changed is dropped, so
// data from an old upload never shows up under a new one.
type Store struct {
	mu      sync.RWMutex
	backend Fetcher
	logger  logger.ILogger
	notify  Notifier
	now     func() time.Time

	sessionID  string
	generation uint64

	kpis   entity.KpiSet
	charts *entity.ChartData
	rows   entity.Table
	report *entity.Report
	status map[Resource]Status
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notify = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(backend Fetcher, log logger.ILogger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status = s.idleStatus()
	return s
}

// SetSessionHandle replaces the handle and clears every derived slot along
// with all status records. No network call is made.
func (s *Store) SetSessionHandle(id string) {
	s.mu.Lock()
	s.sessionID = id
	s.generation++
	gen := s.generation
	s.kpis = nil
	s.charts = nil
	s.rows = nil
	s.report = nil
	s.status = s.idleStatus()
	s.mu.Unlock()

	s.logger.Info(module, "session handle set", map[string]interface{}{"session_id": id, "generation": gen})
	for _, res := range Resources {
		s.emit(Change{Resource: res, State: StateIdle, SessionID: id, Generation: gen})
	}
}

func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

func (s *Store) Status(res Resource) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[res]
}

// FetchKpis loads the KPI set for the current handle. No-op without a handle.
func (s *Store) FetchKpis(ctx context.Context) {
	s.fetch(ctx, ResourceKPIs)
}

func (s *Store) FetchChartData(ctx context.Context) {
	s.fetch(ctx, ResourceCharts)
}

func (s *Store) FetchData(ctx context.Context) {
	s.fetch(ctx, ResourceData)
}

// GenerateReport asks the backend for a report on topic and overwrites the
// report slot. No-op without a handle or with a blank topic.
func (s *Store) GenerateReport(ctx context.Context, topic string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return
	}
	id, gen, ok := s.begin(ResourceReport, false, false)
	if !ok {
		return
	}
	text, err := s.backend.Report(ctx, id, topic)
	s.finish(ResourceReport, id, gen, func() {
		s.report = &entity.Report{Topic: topic, Text: text}
	}, err)
}

// NeedsFetch reports whether a page should trigger the fetch for res: a
// handle is set, the slot is empty and nothing has been attempted yet.
// Failed fetches are only retried on explicit request.
func (s *Store) NeedsFetch(res Resource) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.needsFetchLocked(res)
}

// FetchAsync starts the fetch for res in the background if NeedsFetch holds
// (or, with retry, if the last attempt failed). The check and the switch to
// loading happen atomically, so concurrent page renders start one fetch.
func (s *Store) FetchAsync(ctx context.Context, res Resource, retry bool) bool {
	if res == ResourceReport {
		return false
	}
	id, gen, ok := s.begin(res, true, retry)
	if !ok {
		return false
	}
	go s.load(context.WithoutCancel(ctx), res, id, gen)
	return true
}

func (s *Store) fetch(ctx context.Context, res Resource) {
	id, gen, ok := s.begin(res, false, false)
	if !ok {
		return
	}
	s.load(ctx, res, id, gen)
}

func (s *Store) load(ctx context.Context, res Resource, id string, gen uint64) {
	var (
		apply func()
		err   error
	)
	switch res {
	case ResourceKPIs:
		var v entity.KpiSet
		v, err = s.backend.KPIs(ctx, id)
		apply = func() { s.kpis = v }
	case ResourceCharts:
		var v *entity.ChartData
		v, err = s.backend.Charts(ctx, id)
		apply = func() { s.charts = v }
	case ResourceData:
		var v entity.Table
		v, err = s.backend.Data(ctx, id)
		apply = func() { s.rows = v }
	default:
		return
	}
	s.finish(res, id, gen, apply, err)
}

// begin marks res as loading for the current session. With onlyIfNeeded it
// first checks NeedsFetch under the same lock; retry also lets a failed
// resource through.
func (s *Store) begin(res Resource, onlyIfNeeded, retry bool) (string, uint64, bool) {
	s.mu.Lock()
	if s.sessionID == "" {
		s.mu.Unlock()
		return "", 0, false
	}
	if onlyIfNeeded && !s.needsFetchLocked(res) {
		if !retry || s.status[res].State != StateError {
			s.mu.Unlock()
			return "", 0, false
		}
	}
	id, gen := s.sessionID, s.generation
	s.status[res] = Status{State: StateLoading, UpdatedAt: s.now()}
	s.mu.Unlock()

	s.logger.Debug(module, "fetch started", map[string]interface{}{"resource": string(res), "session_id": id})
	s.emit(Change{Resource: res, State: StateLoading, SessionID: id, Generation: gen})
	return id, gen, true
}

func (s *Store) finish(res Resource, id string, gen uint64, apply func(), err error) {
	s.mu.Lock()
	if s.generation != gen {
		current := s.sessionID
		s.mu.Unlock()
		s.logger.Warn(module, "discarding response for stale session", map[string]interface{}{
			"resource":        string(res),
			"session_id":      id,
			"current_session": current,
		})
		return
	}

	var st Status
	if err != nil {
		st = Status{State: StateError, Error: failureMessage(err), UpdatedAt: s.now()}
	} else {
		apply()
		st = Status{State: StateSuccess, UpdatedAt: s.now()}
	}
	s.status[res] = st
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn(module, "fetch failed", map[string]interface{}{"resource": string(res), "session_id": id, "error": err.Error()})
	} else {
		s.logger.Info(module, "fetch succeeded", map[string]interface{}{"resource": string(res), "session_id": id})
	}
	s.emit(Change{Resource: res, State: st.State, SessionID: id, Generation: gen})
}

func (s *Store) needsFetchLocked(res Resource) bool {
	if s.sessionID == "" || s.status[res].State != StateIdle {
		return false
	}
	switch res {
	case ResourceKPIs:
		return s.kpis == nil
	case ResourceCharts:
		return s.charts == nil
	case ResourceData:
		return s.rows == nil
	default:
		// reports are generated on demand only
		return false
	}
}

func (s *Store) idleStatus() map[Resource]Status {
	m := make(map[Resource]Status, len(Resources))
	for _, res := range Resources {
		m[res] = Status{State: StateIdle}
	}
	return m
}

func (s *Store) emit(c Change) {
	if s.notify != nil {
		s.notify(c)
	}
}

func failureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return unknownError
	}
	return err.Error()
}
