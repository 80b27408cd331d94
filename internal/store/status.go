package store

import "time"

// Resource names one fetchable slot of the store.
type Resource string

const (
	ResourceKPIs   Resource = "kpis"
	ResourceCharts Resource = "charts"
	ResourceData   Resource = "data"
	ResourceReport Resource = "report"
)

// Resources lists every slot in display order.
var Resources = []Resource{ResourceKPIs, ResourceCharts, ResourceData, ResourceReport}

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Status is tracked per resource so a slow report cannot flip the loading
// flag of the KPI page, and an error on one page does not leak onto another.
type Status struct {
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Status) Loading() bool { return s.State == StateLoading }
func (s Status) Failed() bool  { return s.State == StateError }

// Change is emitted after every status transition.
type Change struct {
	Resource   Resource
	State      State
	SessionID  string
	Generation uint64
}

// Notifier receives store changes. It is called outside the store lock.
type Notifier func(Change)
