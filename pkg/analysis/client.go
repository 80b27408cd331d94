package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance-dashboard/internal/entity"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "finance-dashboard/pkg/analysis"

// Backend is everything the dashboard asks of the analysis API.
type Backend interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error)
	Normalize(ctx context.Context, sessionID string) error
	KPIs(ctx context.Context, sessionID string) (entity.KpiSet, error)
	Charts(ctx context.Context, sessionID string) (*entity.ChartData, error)
	Data(ctx context.Context, sessionID string) (entity.Table, error)
	Report(ctx context.Context, sessionID, topic string) (string, error)
	Health(ctx context.Context) error
}

type Client struct {
	BaseURL string
	Client  *http.Client
	tracer  trace.Tracer
}

// Ensure Client implements Backend
var _ Backend = &Client{}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.Tracer(tracerName),
	}
}

// --- Response structs (Internal to this package) ---

type UploadResult struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
}

type reportResponse struct {
	Report string `json:"report"`
}

// --- Interface Implementation ---

func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	ctx, span := c.startSpan(ctx, "upload", attribute.String("analysis.filename", filename))
	defer span.End()

	// 1. Build multipart body
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fail(span, fmt.Errorf("create form file: %w", err))
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fail(span, fmt.Errorf("copy upload: %w", err))
	}
	if err := mw.Close(); err != nil {
		return nil, fail(span, fmt.Errorf("close multipart: %w", err))
	}

	// 2. Send Request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", &body)
	if err != nil {
		return nil, fail(span, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.do(span, req, "upload", msgUpload)
	if err != nil {
		return nil, err
	}

	// 3. Parse Response
	var res UploadResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fail(span, fmt.Errorf("unmarshal upload response: %w", err))
	}
	if res.SessionID == "" {
		return nil, fail(span, fmt.Errorf("upload response without session_id"))
	}
	span.SetAttributes(attribute.String("analysis.session_id", res.SessionID))
	return &res, nil
}

func (c *Client) Normalize(ctx context.Context, sessionID string) error {
	ctx, span := c.startSpan(ctx, "normalize", attribute.String("analysis.session_id", sessionID))
	defer span.End()

	_, err := c.get(ctx, span, "/normalize/"+url.PathEscape(sessionID), "normalize", msgNormalize)
	return err
}

func (c *Client) KPIs(ctx context.Context, sessionID string) (entity.KpiSet, error) {
	ctx, span := c.startSpan(ctx, "kpis", attribute.String("analysis.session_id", sessionID))
	defer span.End()

	raw, err := c.get(ctx, span, "/kpis/"+url.PathEscape(sessionID), "kpis", msgKPIs)
	if err != nil {
		return nil, err
	}
	set, err := decodeKpiSet(raw)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("analysis.kpi_count", len(set)))
	return set, nil
}

func (c *Client) Charts(ctx context.Context, sessionID string) (*entity.ChartData, error) {
	ctx, span := c.startSpan(ctx, "charts", attribute.String("analysis.session_id", sessionID))
	defer span.End()

	raw, err := c.get(ctx, span, "/charts/"+url.PathEscape(sessionID), "charts", msgCharts)
	if err != nil {
		return nil, err
	}
	var data entity.ChartData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fail(span, fmt.Errorf("unmarshal chart data: %w", err))
	}
	return &data, nil
}

func (c *Client) Data(ctx context.Context, sessionID string) (entity.Table, error) {
	ctx, span := c.startSpan(ctx, "data", attribute.String("analysis.session_id", sessionID))
	defer span.End()

	raw, err := c.get(ctx, span, "/data/"+url.PathEscape(sessionID), "data", msgData)
	if err != nil {
		return nil, err
	}
	table, err := decodeTable(raw)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("analysis.row_count", len(table)))
	return table, nil
}

func (c *Client) Report(ctx context.Context, sessionID, topic string) (string, error) {
	ctx, span := c.startSpan(ctx, "report",
		attribute.String("analysis.session_id", sessionID),
		attribute.String("analysis.topic", topic),
	)
	defer span.End()

	path := "/report/" + url.PathEscape(sessionID) + "?topic=" + url.QueryEscape(topic)
	raw, err := c.get(ctx, span, path, "report", msgReport)
	if err != nil {
		return "", err
	}
	var res reportResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fail(span, fmt.Errorf("unmarshal report: %w", err))
	}
	return res.Report, nil
}

func (c *Client) Health(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, "health")
	defer span.End()

	_, err := c.get(ctx, span, "/health", "health", msgHealth)
	return err
}

// --- Transport helpers ---

func (c *Client) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := c.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return tracer.Start(ctx, "analysis."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func (c *Client) get(ctx context.Context, span trace.Span, path, op, failure string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fail(span, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	return c.do(span, req, op, failure)
}

func (c *Client) do(span trace.Span, req *http.Request, op, failure string) ([]byte, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fail(span, fmt.Errorf("%s request failed: %w", op, err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(span, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(span, newStatusError(op, resp.StatusCode, failure))
	}
	return bodyBytes, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
