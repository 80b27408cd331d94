// FILE: internal/controller/dashboard_controller.go
package controller

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"finance-dashboard/internal/dto"
	"finance-dashboard/internal/entity"
	"finance-dashboard/internal/pkg/logger"
	"finance-dashboard/internal/pkg/serverutils"
	"finance-dashboard/internal/service"
	"finance-dashboard/internal/store"
	"finance-dashboard/internal/view"

	"github.com/gofiber/fiber/v2"
)

// VisitorStores hands out the analysis store of a browser visitor.
type VisitorStores interface {
	GetOrCreate(visitorID string) *store.Store
}

type IDashboardController interface {
	RegisterRoutes(r fiber.Router)
	Home(ctx *fiber.Ctx) error
	UploadForm(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Kpis(ctx *fiber.Ctx) error
	Charts(ctx *fiber.Ctx) error
	ExpensesChart(ctx *fiber.Ctx) error
	CashFlowChart(ctx *fiber.Ctx) error
	Data(ctx *fiber.Ctx) error
	Reports(ctx *fiber.Ctx) error
	GenerateReport(ctx *fiber.Ctx) error
}

type dashboardController struct {
	visitors VisitorStores
	uploads  service.IUploadService
	renderer *view.Renderer
	logger   logger.ILogger
	maxBytes int
}

func NewDashboardController(
	visitors VisitorStores,
	uploads service.IUploadService,
	renderer *view.Renderer,
	maxBytes int,
	log logger.ILogger,
) IDashboardController {
	return &dashboardController{
		visitors: visitors,
		uploads:  uploads,
		renderer: renderer,
		maxBytes: maxBytes,
		logger:   log,
	}
}

func (c *dashboardController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Home)
	r.Get("/upload", c.UploadForm)
	r.Post("/upload", c.Upload)
	r.Get("/kpis", c.Kpis)
	r.Get("/charts", c.Charts)
	r.Get("/charts/expenses.svg", c.ExpensesChart)
	r.Get("/charts/cashflow.svg", c.CashFlowChart)
	r.Get("/data", c.Data)
	r.Get("/reports", c.Reports)
	r.Post("/reports", c.GenerateReport)
}

func (c *dashboardController) Home(ctx *fiber.Ctx) error {
	return c.render(ctx, view.PageHome, "", "", "", nil)
}

func (c *dashboardController) UploadForm(ctx *fiber.Ctx) error {
	return c.render(ctx, view.PageUpload, "Upload", "", "", view.UploadView{MaxBytes: c.maxBytes})
}

func (c *dashboardController) Upload(ctx *fiber.Ctx) error {
	st := c.storeFor(ctx)

	var (
		req  dto.UploadRequest
		file io.Reader = strings.NewReader("")
	)
	if fh, err := ctx.FormFile("file"); err == nil {
		req.Filename = fh.Filename
		req.Size = fh.Size
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		file = f
	}

	if _, err := c.uploads.UploadAndNormalize(ctx.UserContext(), st, req, file); err != nil {
		ctx.Status(uploadStatus(err))
		return c.render(ctx, view.PageUpload, "Upload", "", "", view.UploadView{Error: err.Error(), MaxBytes: c.maxBytes})
	}
	return ctx.Redirect("/kpis", fiber.StatusSeeOther)
}

func uploadStatus(err error) int {
	var ve *serverutils.ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	default:
		return fiber.StatusBadGateway
	}
}

func (c *dashboardController) Kpis(ctx *fiber.Ctx) error {
	if ctx.QueryBool("retry") {
		return c.retry(ctx, store.ResourceKPIs)
	}
	snap := c.ensure(ctx, store.ResourceKPIs)
	v := view.NewKpisView(snap)
	return c.render(ctx, view.PageKpis, "KPIs", store.ResourceKPIs, v.Status.State, v)
}

func (c *dashboardController) Charts(ctx *fiber.Ctx) error {
	if ctx.QueryBool("retry") {
		return c.retry(ctx, store.ResourceCharts)
	}
	snap := c.ensure(ctx, store.ResourceCharts)
	v := view.NewChartsView(snap)
	return c.render(ctx, view.PageCharts, "Charts", store.ResourceCharts, v.Status.State, v)
}

func (c *dashboardController) ExpensesChart(ctx *fiber.Ctx) error {
	return c.chart(ctx, func(w io.Writer, d *entity.ChartData) error {
		return view.RenderExpensesChart(w, d.ExpensesByCategory)
	})
}

func (c *dashboardController) CashFlowChart(ctx *fiber.Ctx) error {
	return c.chart(ctx, func(w io.Writer, d *entity.ChartData) error {
		return view.RenderCashFlowChart(w, d.MonthlyCashFlow)
	})
}

func (c *dashboardController) chart(ctx *fiber.Ctx, draw func(io.Writer, *entity.ChartData) error) error {
	snap := c.storeFor(ctx).Snapshot()
	if snap.Charts == nil {
		return fiber.ErrNotFound
	}

	var buf bytes.Buffer
	if err := draw(&buf, snap.Charts); err != nil {
		if errors.Is(err, view.ErrNoChartData) {
			return fiber.ErrNotFound
		}
		return err
	}
	ctx.Set(fiber.HeaderContentType, "image/svg+xml")
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	return ctx.Send(buf.Bytes())
}

func (c *dashboardController) Data(ctx *fiber.Ctx) error {
	if ctx.QueryBool("retry") {
		return c.retry(ctx, store.ResourceData)
	}
	snap := c.ensure(ctx, store.ResourceData)
	v := view.NewDataView(snap)
	return c.render(ctx, view.PageDataTable, "Data", store.ResourceData, v.Status.State, v)
}

func (c *dashboardController) Reports(ctx *fiber.Ctx) error {
	v := view.NewReportsView(c.storeFor(ctx).Snapshot())
	return c.render(ctx, view.PageReports, "Reports", store.ResourceReport, v.Status.State, v)
}

// GenerateReport runs synchronously; the redirect shows the stored result.
func (c *dashboardController) GenerateReport(ctx *fiber.Ctx) error {
	st := c.storeFor(ctx)

	var req dto.ReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	req.Topic = strings.TrimSpace(req.Topic)

	if err := serverutils.ValidateRequest(req); err != nil {
		v := view.NewReportsView(st.Snapshot())
		v.FormError = err.Error()
		ctx.Status(fiber.StatusBadRequest)
		return c.render(ctx, view.PageReports, "Reports", store.ResourceReport, v.Status.State, v)
	}

	st.GenerateReport(ctx.UserContext(), req.Topic)
	return ctx.Redirect("/reports", fiber.StatusSeeOther)
}

// ensure starts the background fetch for res when the page finds it missing
// and returns the state to render.
func (c *dashboardController) ensure(ctx *fiber.Ctx, res store.Resource) store.Snapshot {
	st := c.storeFor(ctx)
	st.FetchAsync(ctx.UserContext(), res, false)
	return st.Snapshot()
}

// retry refetches a failed resource once, then redirects to the plain page so
// reloads while it loads never trigger another fetch.
func (c *dashboardController) retry(ctx *fiber.Ctx, res store.Resource) error {
	c.storeFor(ctx).FetchAsync(ctx.UserContext(), res, true)
	return ctx.Redirect(ctx.Path(), fiber.StatusSeeOther)
}

func (c *dashboardController) storeFor(ctx *fiber.Ctx) *store.Store {
	return c.visitors.GetOrCreate(serverutils.VisitorID(ctx).String())
}

func (c *dashboardController) render(ctx *fiber.Ctx, page, title string, res store.Resource, state store.State, data any) error {
	var buf bytes.Buffer
	err := c.renderer.Render(&buf, page, view.PageData{
		Title:       title,
		CurrentPath: ctx.Path(),
		Resource:    string(res),
		State:       string(state),
		Data:        data,
	})
	if err != nil {
		return err
	}
	ctx.Type("html", "utf-8")
	return ctx.Send(buf.Bytes())
}
