package store

import "finance-dashboard/internal/entity"

// Snapshot is a read-only view of the store taken under one lock, so a page
// never renders KPIs of one session next to the status of another.
type Snapshot struct {
	SessionID  string
	Generation uint64
	KPIs       entity.KpiSet
	Charts     *entity.ChartData
	Rows       entity.Table
	Report     *entity.Report
	Status     map[Resource]Status
}

// Stored slots are replaced, never mutated, so sharing them is safe.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := make(map[Resource]Status, len(s.status))
	for k, v := range s.status {
		status[k] = v
	}
	return Snapshot{
		SessionID:  s.sessionID,
		Generation: s.generation,
		KPIs:       s.kpis,
		Charts:     s.charts,
		Rows:       s.rows,
		Report:     s.report,
		Status:     status,
	}
}

func (s Snapshot) HasSession() bool {
	return s.SessionID != ""
}
