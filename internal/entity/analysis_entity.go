// internal\entity\analysis_entity.go
package entity

// Kpi is one named indicator as returned by the backend.
type Kpi struct {
	Name  string
	Value Value
}

// KpiSet keeps the backend's key order so cards render in the order the
// analysis produced them.
type KpiSet []Kpi

func (s KpiSet) Get(name string) (Value, bool) {
	for _, k := range s {
		if k.Name == name {
			return k.Value, true
		}
	}
	return Value{}, false
}

type CategoryDistribution struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type MonthlyCashFlow struct {
	Months   []string  `json:"meses"`
	Revenues []float64 `json:"receitas"`
	Expenses []float64 `json:"despesas"`
}

type ChartData struct {
	ExpensesByCategory *CategoryDistribution `json:"despesas_categoria"`
	MonthlyCashFlow    *MonthlyCashFlow      `json:"fluxo_mensal"`
}

type Slice struct {
	Label string
	Value float64
}

type MonthPoint struct {
	Month   string
	Revenue float64
	Expense float64
}

// Slices pairs labels with values. Index i of every array belongs together;
// trailing entries without a partner are dropped.
func (d *CategoryDistribution) Slices() []Slice {
	if d == nil {
		return nil
	}
	n := min(len(d.Labels), len(d.Values))
	out := make([]Slice, n)
	for i := 0; i < n; i++ {
		out[i] = Slice{Label: d.Labels[i], Value: d.Values[i]}
	}
	return out
}

func (f *MonthlyCashFlow) Points() []MonthPoint {
	if f == nil {
		return nil
	}
	n := min(len(f.Months), len(f.Revenues), len(f.Expenses))
	out := make([]MonthPoint, n)
	for i := 0; i < n; i++ {
		out[i] = MonthPoint{Month: f.Months[i], Revenue: f.Revenues[i], Expense: f.Expenses[i]}
	}
	return out
}

// Row is one normalized spreadsheet record. Keys holds the column names in
// the order the backend sent them.
type Row struct {
	Keys   []string
	Values map[string]Value
}

func (r Row) Get(column string) (Value, bool) {
	v, ok := r.Values[column]
	return v, ok
}

type Table []Row

// Columns are inferred from the first row only.
func (t Table) Columns() []string {
	if len(t) == 0 {
		return nil
	}
	cols := make([]string, len(t[0].Keys))
	copy(cols, t[0].Keys)
	return cols
}

// Cells aligns a row to the given columns; missing keys render as "".
func (r Row) Cells(columns []string) []string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		if v, ok := r.Values[col]; ok {
			cells[i] = v.String()
		}
	}
	return cells
}

type Report struct {
	Topic string
	Text  string
}
