package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"finance-dashboard/internal/entity"
	"finance-dashboard/internal/pkg/logger"
	"finance-dashboard/pkg/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	calls  atomic.Int32
	kpis   func(ctx context.Context, id string) (entity.KpiSet, error)
	charts func(ctx context.Context, id string) (*entity.ChartData, error)
	data   func(ctx context.Context, id string) (entity.Table, error)
	report func(ctx context.Context, id, topic string) (string, error)
}

func (f *fakeBackend) KPIs(ctx context.Context, id string) (entity.KpiSet, error) {
	f.calls.Add(1)
	if f.kpis == nil {
		return entity.KpiSet{{Name: "k", Value: entity.Number(1)}}, nil
	}
	return f.kpis(ctx, id)
}

func (f *fakeBackend) Charts(ctx context.Context, id string) (*entity.ChartData, error) {
	f.calls.Add(1)
	if f.charts == nil {
		return &entity.ChartData{ExpensesByCategory: &entity.CategoryDistribution{Labels: []string{"Rent"}, Values: []float64{10}}}, nil
	}
	return f.charts(ctx, id)
}

func (f *fakeBackend) Data(ctx context.Context, id string) (entity.Table, error) {
	f.calls.Add(1)
	if f.data == nil {
		return entity.Table{{Keys: []string{"a"}, Values: map[string]entity.Value{"a": entity.Number(1)}}}, nil
	}
	return f.data(ctx, id)
}

func (f *fakeBackend) Report(ctx context.Context, id, topic string) (string, error) {
	f.calls.Add(1)
	if f.report == nil {
		return "report on " + topic, nil
	}
	return f.report(ctx, id, topic)
}

func newStore(f Fetcher, opts ...Option) *Store {
	return New(f, logger.NewNopLogger(), opts...)
}

func backendServer(t *testing.T, h http.HandlerFunc) *analysis.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return analysis.NewClient(srv.URL, 5*time.Second)
}

func TestSetSessionHandleClearsDerivedSlotsAndErrors(t *testing.T) {
	f := &fakeBackend{
		data: func(context.Context, string) (entity.Table, error) { return nil, errors.New("boom") },
	}
	s := newStore(f)
	ctx := context.Background()

	s.SetSessionHandle("s1")
	s.FetchKpis(ctx)
	s.FetchChartData(ctx)
	s.FetchData(ctx)
	s.GenerateReport(ctx, "Revenue")

	before := s.Snapshot()
	require.NotNil(t, before.KPIs)
	require.NotNil(t, before.Charts)
	require.NotNil(t, before.Report)
	require.Equal(t, StateError, before.Status[ResourceData].State)

	s.SetSessionHandle("s2")

	after := s.Snapshot()
	assert.Equal(t, "s2", after.SessionID)
	assert.Nil(t, after.KPIs)
	assert.Nil(t, after.Charts)
	assert.Nil(t, after.Rows)
	assert.Nil(t, after.Report)
	for _, res := range Resources {
		assert.Equal(t, StateIdle, after.Status[res].State, res)
		assert.Empty(t, after.Status[res].Error, res)
	}
}

func TestFetchWithoutSessionIsNoop(t *testing.T) {
	f := &fakeBackend{}
	s := newStore(f)
	before := s.Snapshot()

	s.FetchKpis(context.Background())
	s.FetchChartData(context.Background())
	s.FetchData(context.Background())
	s.GenerateReport(context.Background(), "Revenue")

	assert.Equal(t, int32(0), f.calls.Load())
	assert.Equal(t, before, s.Snapshot())
}

func TestFetchKpisStoresBackendMapping(t *testing.T) {
	c := backendServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kpis/abc123", r.URL.Path)
		w.Write([]byte(`{ "Total Revenue": 1000, "Total Expense": -500 }`))
	})
	s := newStore(c)
	s.SetSessionHandle("abc123")

	s.FetchKpis(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, entity.KpiSet{
		{Name: "Total Revenue", Value: entity.Number(1000)},
		{Name: "Total Expense", Value: entity.Number(-500)},
	}, snap.KPIs)
	assert.False(t, snap.Status[ResourceKPIs].Loading())
	assert.Equal(t, StateSuccess, snap.Status[ResourceKPIs].State)
}

func TestFetchChartDataServerErrorLeavesSlotUnset(t *testing.T) {
	c := backendServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charts/abc123", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	})
	s := newStore(c)
	s.SetSessionHandle("abc123")

	s.FetchChartData(context.Background())

	snap := s.Snapshot()
	assert.Nil(t, snap.Charts)
	assert.Equal(t, StateError, snap.Status[ResourceCharts].State)
	assert.NotEmpty(t, snap.Status[ResourceCharts].Error)
	assert.Equal(t, "failed to fetch chart data", snap.Status[ResourceCharts].Error)
}

func TestGenerateReportStoresText(t *testing.T) {
	c := backendServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/report/abc123", r.URL.Path)
		assert.Equal(t, "Revenue Analysis", r.URL.Query().Get("topic"))
		w.Write([]byte(`{ "report": "Revenues grew 10%." }`))
	})
	s := newStore(c)
	s.SetSessionHandle("abc123")

	s.GenerateReport(context.Background(), "Revenue Analysis")

	snap := s.Snapshot()
	require.NotNil(t, snap.Report)
	assert.Equal(t, "Revenues grew 10%.", snap.Report.Text)
	assert.Equal(t, "Revenue Analysis", snap.Report.Topic)
}

func TestGenerateReportOverwritesPreviousTopic(t *testing.T) {
	s := newStore(&fakeBackend{})
	s.SetSessionHandle("abc123")

	s.GenerateReport(context.Background(), "Revenue")
	s.GenerateReport(context.Background(), "Expenses")

	snap := s.Snapshot()
	assert.Equal(t, &entity.Report{Topic: "Expenses", Text: "report on Expenses"}, snap.Report)
}

func TestGenerateReportBlankTopicIsNoop(t *testing.T) {
	f := &fakeBackend{}
	s := newStore(f)
	s.SetSessionHandle("abc123")

	s.GenerateReport(context.Background(), "")
	s.GenerateReport(context.Background(), "   ")

	assert.Equal(t, int32(0), f.calls.Load())
	assert.Equal(t, StateIdle, s.Status(ResourceReport).State)
}

func TestNetworkFailureForwardsUnderlyingMessage(t *testing.T) {
	s := newStore(&fakeBackend{
		kpis: func(context.Context, string) (entity.KpiSet, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	})
	s.SetSessionHandle("abc123")

	s.FetchKpis(context.Background())

	assert.Equal(t, "dial tcp: connection refused", s.Status(ResourceKPIs).Error)
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestErrorWithoutMessageFallsBack(t *testing.T) {
	s := newStore(&fakeBackend{
		kpis: func(context.Context, string) (entity.KpiSet, error) { return nil, emptyErr{} },
	})
	s.SetSessionHandle("abc123")

	s.FetchKpis(context.Background())

	assert.Equal(t, "unknown error", s.Status(ResourceKPIs).Error)
}

func TestConcurrentFetchesLastToResolveWins(t *testing.T) {
	var n atomic.Int32
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	s := newStore(&fakeBackend{
		kpis: func(context.Context, string) (entity.KpiSet, error) {
			if n.Add(1) == 1 {
				close(firstStarted)
				<-releaseFirst
				return entity.KpiSet{{Name: "issued", Value: entity.Text("first")}}, nil
			}
			return entity.KpiSet{{Name: "issued", Value: entity.Text("second")}}, nil
		},
	})
	s.SetSessionHandle("abc123")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.FetchKpis(context.Background())
	}()
	<-firstStarted

	// issued last, resolves first
	s.FetchKpis(context.Background())
	v, _ := s.Snapshot().KPIs.Get("issued")
	assert.Equal(t, "second", v.String())

	close(releaseFirst)
	wg.Wait()

	v, _ = s.Snapshot().KPIs.Get("issued")
	assert.Equal(t, "first", v.String())
	assert.Equal(t, StateSuccess, s.Status(ResourceKPIs).State)
}

func TestLateResponseForStaleSessionIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := newStore(&fakeBackend{
		kpis: func(_ context.Context, id string) (entity.KpiSet, error) {
			if id == "old" {
				close(started)
				<-release
			}
			return entity.KpiSet{{Name: "session", Value: entity.Text(id)}}, nil
		},
	})
	s.SetSessionHandle("old")

	done := make(chan struct{})
	go func() {
		s.FetchKpis(context.Background())
		close(done)
	}()
	<-started

	s.SetSessionHandle("new")
	close(release)
	<-done

	snap := s.Snapshot()
	assert.Nil(t, snap.KPIs)
	assert.Equal(t, StateIdle, snap.Status[ResourceKPIs].State)

	s.FetchKpis(context.Background())
	v, _ := s.Snapshot().KPIs.Get("session")
	assert.Equal(t, "new", v.String())
}

func TestStatusIsTrackedPerResource(t *testing.T) {
	s := newStore(&fakeBackend{
		kpis: func(context.Context, string) (entity.KpiSet, error) { return nil, errors.New("kpis down") },
	})
	s.SetSessionHandle("abc123")

	s.FetchKpis(context.Background())
	s.FetchChartData(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.Status[ResourceKPIs].State)
	assert.Equal(t, StateSuccess, snap.Status[ResourceCharts].State)
	assert.Empty(t, snap.Status[ResourceCharts].Error)
	assert.Equal(t, StateIdle, snap.Status[ResourceData].State)
}

func TestNeedsFetch(t *testing.T) {
	s := newStore(&fakeBackend{
		data: func(context.Context, string) (entity.Table, error) { return nil, errors.New("down") },
	})
	assert.False(t, s.NeedsFetch(ResourceKPIs), "no session")

	s.SetSessionHandle("abc123")
	assert.True(t, s.NeedsFetch(ResourceKPIs))
	assert.False(t, s.NeedsFetch(ResourceReport), "reports are on demand")

	s.FetchKpis(context.Background())
	assert.False(t, s.NeedsFetch(ResourceKPIs), "already loaded")

	s.FetchData(context.Background())
	assert.False(t, s.NeedsFetch(ResourceData), "failed fetches wait for a retry")
}

func TestFetchAsyncStartsOneFetch(t *testing.T) {
	release := make(chan struct{})
	changes := make(chan Change, 16)
	f := &fakeBackend{
		kpis: func(context.Context, string) (entity.KpiSet, error) {
			<-release
			return entity.KpiSet{}, nil
		},
	}
	s := newStore(f, WithNotifier(func(c Change) { changes <- c }))
	s.SetSessionHandle("abc123")
	drain(changes)

	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, s.FetchAsync(ctx, ResourceKPIs, false))
	cancel() // request is gone, the fetch keeps going
	assert.False(t, s.FetchAsync(context.Background(), ResourceKPIs, false))
	assert.True(t, s.Status(ResourceKPIs).Loading())

	close(release)
	waitFor(t, changes, ResourceKPIs, StateSuccess)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.NotNil(t, s.Snapshot().KPIs)
}

func TestFetchAsyncRetryAfterError(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	changes := make(chan Change, 16)
	s := newStore(&fakeBackend{
		charts: func(context.Context, string) (*entity.ChartData, error) {
			if fail.Load() {
				return nil, errors.New("down")
			}
			return &entity.ChartData{}, nil
		},
	}, WithNotifier(func(c Change) { changes <- c }))
	s.SetSessionHandle("abc123")

	require.True(t, s.FetchAsync(context.Background(), ResourceCharts, false))
	waitFor(t, changes, ResourceCharts, StateError)

	assert.False(t, s.FetchAsync(context.Background(), ResourceCharts, false))

	fail.Store(false)
	require.True(t, s.FetchAsync(context.Background(), ResourceCharts, true))
	waitFor(t, changes, ResourceCharts, StateSuccess)
	assert.NotNil(t, s.Snapshot().Charts)
}

func TestFetchAsyncIgnoresReports(t *testing.T) {
	s := newStore(&fakeBackend{})
	s.SetSessionHandle("abc123")
	assert.False(t, s.FetchAsync(context.Background(), ResourceReport, true))
}

func TestNotifierSeesTransitions(t *testing.T) {
	var (
		mu  sync.Mutex
		got []Change
	)
	s := newStore(&fakeBackend{}, WithNotifier(func(c Change) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	}))

	s.SetSessionHandle("abc123")
	s.FetchKpis(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, len(Resources)+2)
	assert.Equal(t, Change{Resource: ResourceKPIs, State: StateLoading, SessionID: "abc123", Generation: 1}, got[len(Resources)])
	assert.Equal(t, Change{Resource: ResourceKPIs, State: StateSuccess, SessionID: "abc123", Generation: 1}, got[len(Resources)+1])
}

func TestStatusCarriesClockTime(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newStore(&fakeBackend{}, WithClock(func() time.Time { return at }))
	s.SetSessionHandle("abc123")

	s.FetchData(context.Background())

	assert.Equal(t, at, s.Status(ResourceData).UpdatedAt)
}

func drain(ch chan Change) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func waitFor(t *testing.T, ch chan Change, res Resource, state State) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case c := <-ch:
			if c.Resource == res && c.State == state {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s to become %s", res, state)
		}
	}
}
