package view

import (
	"finance-dashboard/internal/entity"
	"finance-dashboard/internal/store"
)

// ResourceView is what every data page needs to pick between the no-session
// prompt, the loading indicator, the error message and the populated view.
type ResourceView struct {
	HasSession bool
	Status     store.Status
}

type UploadView struct {
	Error    string
	MaxBytes int
}

type KpisView struct {
	ResourceView
	KPIs entity.KpiSet
}

type ChartsView struct {
	ResourceView
	Generation  uint64
	HasExpenses bool
	HasCashFlow bool
}

type DataView struct {
	ResourceView
	Columns []string
	Rows    [][]string
}

type ReportsView struct {
	ResourceView
	Topic     string
	FormError string
	Report    *entity.Report
}

func NewKpisView(s store.Snapshot) KpisView {
	return KpisView{ResourceView: resourceView(s, store.ResourceKPIs), KPIs: s.KPIs}
}

func NewChartsView(s store.Snapshot) ChartsView {
	v := ChartsView{ResourceView: resourceView(s, store.ResourceCharts), Generation: s.Generation}
	if s.Charts != nil {
		v.HasExpenses = s.Charts.ExpensesByCategory != nil
		v.HasCashFlow = s.Charts.MonthlyCashFlow != nil
	}
	return v
}

// NewDataView aligns every row to the columns of the first row.
func NewDataView(s store.Snapshot) DataView {
	v := DataView{ResourceView: resourceView(s, store.ResourceData)}
	v.Columns = s.Rows.Columns()
	v.Rows = make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		v.Rows[i] = row.Cells(v.Columns)
	}
	return v
}

func NewReportsView(s store.Snapshot) ReportsView {
	v := ReportsView{ResourceView: resourceView(s, store.ResourceReport), Report: s.Report}
	if s.Report != nil {
		v.Topic = s.Report.Topic
	}
	return v
}

func resourceView(s store.Snapshot, res store.Resource) ResourceView {
	return ResourceView{HasSession: s.HasSession(), Status: s.Status[res]}
}
