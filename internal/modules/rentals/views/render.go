package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"bikerental-server/internal/modules/rentals/types"
)

const PageTitle = "Bike Rental Data Analysis"

var dashboardTmpl *template.Template

// loadTemplatesFromFS parses the page and partial templates under dir.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

type ChartSection struct {
	Name    string
	Heading string
	Alt     string
}

// ID is the chart name without its extension, used for element ids.
func (c ChartSection) ID() string {
	return strings.TrimSuffix(c.Name, ".svg")
}

var chartSections = []ChartSection{
	{Name: "daily.svg", Alt: "Total Rentals per Day"},
	{Name: "seasons.svg", Heading: "☀️ Rentals by Season (Registered and Casual)", Alt: "Number of Rentals by User Type and Season"},
	{Name: "weather.svg", Heading: "☁️ Best Weather Condition for Rentals", Alt: "Number of Rentals by Weather Condition"},
	{Name: "correlation.svg", Heading: "🌡️ Correlation Between Temperature and Rentals", Alt: "Correlation of Temperature with Count"},
	{Name: "windspeed.svg", Heading: "🍃 Clustering Based on Windspeed", Alt: "Total Rentals by Windspeed Category"},
}

// DashboardContent is the part of the page swapped in by HTMX on range changes.
type DashboardContent struct {
	Range        types.DateRange
	TotalRentals int64
	AverageDaily string
	Empty        bool
	Charts       []ChartSection
}

type DashboardPage struct {
	Title           string
	SidebarImageURL string
	Bounds          types.Bounds
	Range           types.DateRange
	Content         DashboardContent
}

func NewDashboardContent(d *types.Dashboard) DashboardContent {
	return DashboardContent{
		Range:        d.Range,
		TotalRentals: d.Summary.TotalRentals,
		AverageDaily: d.Summary.AverageLabel(),
		Empty:        d.Summary.Empty,
		Charts:       chartSections,
	}
}

func NewDashboardPage(d *types.Dashboard, sidebarImageURL string) *DashboardPage {
	return &DashboardPage{
		Title:           PageTitle,
		SidebarImageURL: sidebarImageURL,
		Bounds:          d.Bounds,
		Range:           d.Range,
		Content:         NewDashboardContent(d),
	}
}

func RenderDashboard(w io.Writer, data *DashboardPage) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderDashboardPartial executes only the metrics and charts fragment.
// Use for HTMX fragment refresh.
func RenderDashboardPartial(w io.Writer, data *DashboardContent) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/charts.html", data)
}
