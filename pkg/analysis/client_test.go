package analysis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finance-dashboard/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second)
}

func TestUploadSendsMultipartFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)

		assert.Equal(t, "finances.csv", header.Filename)
		assert.Equal(t, "data,tipo,valor\n", string(content))

		w.Write([]byte(`{"session_id":"abc123","filename":"finances.csv"}`))
	})

	res, err := c.Upload(context.Background(), "finances.csv", strings.NewReader("data,tipo,valor\n"))
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.SessionID)
	assert.Equal(t, "finances.csv", res.Filename)
}

func TestUploadWithoutSessionIDFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"filename":"x.csv"}`))
	})

	_, err := c.Upload(context.Background(), "x.csv", strings.NewReader("a"))
	assert.Error(t, err)
}

func TestNormalizeChecksStatusOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/normalize/abc123", r.URL.Path)
		w.Write([]byte(`not even json`))
	})

	assert.NoError(t, c.Normalize(context.Background(), "abc123"))
}

func TestKPIsPreserveBackendOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kpis/abc123", r.URL.Path)
		w.Write([]byte(`{"Total Revenue": 1000, "Total Expense": -500, "Margem de Lucro": "50.00%"}`))
	})

	set, err := c.KPIs(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, entity.KpiSet{
		{Name: "Total Revenue", Value: entity.Number(1000)},
		{Name: "Total Expense", Value: entity.Number(-500)},
		{Name: "Margem de Lucro", Value: entity.Text("50.00%")},
	}, set)
}

func TestKPIsDuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	set, err := decodeKpiSet([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)
	assert.Equal(t, entity.KpiSet{
		{Name: "a", Value: entity.Number(3)},
		{Name: "b", Value: entity.Number(2)},
	}, set)
}

func TestKPIsNullIsEmptySet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})

	set, err := c.KPIs(context.Background(), "abc123")
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.Empty(t, set)
}

func TestKPIsRejectNonObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1,2,3]`))
	})

	_, err := c.KPIs(context.Background(), "abc123")
	assert.ErrorIs(t, err, errNotObject)
}

func TestChartsDecodeFixedShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charts/abc123", r.URL.Path)
		w.Write([]byte(`{
			"despesas_categoria": {"labels": ["Rent", "Food"], "values": [1200, 300]},
			"fluxo_mensal": {"meses": ["2024-01"], "receitas": [5000], "despesas": [-1500]}
		}`))
	})

	data, err := c.Charts(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, data.ExpensesByCategory)
	require.NotNil(t, data.MonthlyCashFlow)
	assert.Equal(t, []string{"Rent", "Food"}, data.ExpensesByCategory.Labels)
	assert.Equal(t, []float64{-1500}, data.MonthlyCashFlow.Expenses)
}

func TestDataKeepsRowKeyOrderAndScalarKinds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/abc123", r.URL.Path)
		w.Write([]byte(`[{"Date":"2024-01","Amount":100,"Paid":true,"Note":null},{"Date":"2024-02","Amount":-50}]`))
	})

	table, err := c.Data(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, []string{"Date", "Amount", "Paid", "Note"}, table.Columns())
	assert.Equal(t, []string{"2024-01", "100", "true", ""}, table[0].Cells(table.Columns()))
	assert.Equal(t, []string{"2024-02", "-50", "", ""}, table[1].Cells(table.Columns()))
}

func TestDataEmptyArray(t *testing.T) {
	table, err := decodeTable([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, table)
	assert.Empty(t, table)
}

func TestDataRejectsNonObjectRows(t *testing.T) {
	_, err := decodeTable([]byte(`[{"a":1}, 2]`))
	assert.ErrorIs(t, err, errNotObject)
}

func TestReportEncodesTopic(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/report/abc123", r.URL.Path)
		assert.Equal(t, "topic=Revenue+Analysis+%26+more", r.URL.RawQuery)
		assert.Equal(t, "Revenue Analysis & more", r.URL.Query().Get("topic"))
		w.Write([]byte(`{"report":"Revenues grew 10%."}`))
	})

	text, err := c.Report(context.Background(), "abc123", "Revenue Analysis & more")
	require.NoError(t, err)
	assert.Equal(t, "Revenues grew 10%.", text)
}

func TestSessionIDIsPathEscaped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kpis/a%2Fb", r.URL.EscapedPath())
		w.Write([]byte(`{}`))
	})

	_, err := c.KPIs(context.Background(), "a/b")
	assert.NoError(t, err)
}

func TestNon2xxIsGenericStatusError(t *testing.T) {
	tests := []struct {
		name string
		call func(*Client) error
		want string
	}{
		{"kpis", func(c *Client) error { _, err := c.KPIs(context.Background(), "abc123"); return err }, "failed to fetch KPIs"},
		{"charts", func(c *Client) error { _, err := c.Charts(context.Background(), "abc123"); return err }, "failed to fetch chart data"},
		{"data", func(c *Client) error { _, err := c.Data(context.Background(), "abc123"); return err }, "failed to fetch normalized data"},
		{"report", func(c *Client) error { _, err := c.Report(context.Background(), "abc123", "x"); return err }, "failed to generate report"},
		{"normalize", func(c *Client) error { return c.Normalize(context.Background(), "abc123") }, "normalization failed"},
		{"health", func(c *Client) error { return c.Health(context.Background()) }, "health check failed"},
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"Erro ao calcular KPIs: boom"}`))
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(c)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.ErrorIs(t, err, ErrUnexpectedStatus)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
		})
	}
}

func TestNetworkErrorIsForwarded(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(base, time.Second)
	_, err := c.KPIs(context.Background(), "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "kpis request failed")
}
