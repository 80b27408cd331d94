package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strconv"
	"time"

	"finance-dashboard/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Pages rendered inside the base layout.
const (
	PageHome      = "home.html"
	PageUpload    = "upload.html"
	PageKpis      = "kpis.html"
	PageCharts    = "charts.html"
	PageDataTable = "data.html"
	PageReports   = "reports.html"
)

var pages = []string{PageHome, PageUpload, PageKpis, PageCharts, PageDataTable, PageReports}

// PageData contains common data for all pages.
type PageData struct {
	Title       string
	CurrentPath string
	Nav         []NavItem

	// Resource and State drive the live reload script: the page reloads when
	// the resource it shows leaves State.
	Resource string
	State    string

	// RefreshSeconds is non-zero while the page shows a loading indicator.
	RefreshSeconds int

	Data any
}

// Renderer executes the embedded page templates. Each page is parsed into its
// own clone of the base layout so "content" blocks never collide.
type Renderer struct {
	pages          map[string]*template.Template
	refreshSeconds int
}

func NewRenderer(refreshSeconds int) (*Renderer, error) {
	return newRenderer(templatesFS, refreshSeconds)
}

func newRenderer(fsys fs.FS, refreshSeconds int) (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(templateFuncs()).ParseFS(fsys, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), refreshSeconds: refreshSeconds}
	for _, name := range pages {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		if _, err := tmpl.ParseFS(fsys, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parse page template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render writes page wrapped in the base layout.
func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	data.Nav = NavItems(data.CurrentPath)
	if data.State == string(store.StateLoading) {
		data.RefreshSeconds = r.refreshSeconds
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": formatTime,
		"markdown":   RenderMarkdown,
		"megabytes":  megabytes,
	}
}

func megabytes(n int) string {
	return strconv.FormatFloat(float64(n)/(1024*1024), 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
