// Package views renders the server-side pages of the employee front end.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/mmynk/billed/internal/calculator"
	"github.com/mmynk/billed/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Route paths of the employee front end.
const (
	PathLogin        = "/"
	PathLoginSubmit  = "/login"
	PathLogout       = "/logout"
	PathBills        = "/employee/bills"
	PathClickNewBill = "/employee/bills/new"
	PathNewBill      = "/employee/bill/new"
	PathChangeFile   = "/employee/bill/new/file"
)

// Paths exposes the route paths to templates.
type Paths struct {
	Login        string
	LoginSubmit  string
	Logout       string
	Bills        string
	ClickNewBill string
	NewBill      string
	ChangeFile   string
}

var paths = Paths{
	Login:        PathLogin,
	LoginSubmit:  PathLoginSubmit,
	Logout:       PathLogout,
	Bills:        PathBills,
	ClickNewBill: PathClickNewBill,
	NewBill:      PathNewBill,
	ChangeFile:   PathChangeFile,
}

// LoginData backs the login page.
type LoginData struct {
	Email string
}

// BillsData backs the bills page. Modal is set while the receipt viewer is open.
type BillsData struct {
	Bills   []models.Bill
	Summary calculator.Summary
	Modal   *models.FileRef
}

// NewBillForm holds the raw values of the new bill form.
type NewBillForm struct {
	Type       string
	Name       string
	Date       string
	Amount     string
	VAT        string
	Pct        string
	Commentary string
	File       models.FileRef
}

// NewBillData backs the new bill page.
type NewBillData struct {
	Types     []string
	Form      NewBillForm
	FileAlert string
	FormError string
}

// RouteData selects and feeds a page.
type RouteData struct {
	Pathname string
	Data     any
	Error    string
}

type page struct {
	Paths  Paths
	Active string
	Data   any
	Error  string
}

// Views holds the parsed page templates.
type Views struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Views, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Views{tmpl: tmpl}, nil
}

// Route renders the page for pathname. An error replaces the page body with
// the error page, and unknown paths fall back to the login page.
func (v *Views) Route(w io.Writer, rd RouteData) error {
	p := page{Paths: paths, Data: rd.Data, Error: rd.Error}

	var name string
	switch rd.Pathname {
	case PathBills:
		p.Active = "bills"
		name = "bills"
		if p.Data == nil {
			p.Data = BillsData{}
		}
	case PathNewBill:
		p.Active = "new-bill"
		name = "new-bill"
		if p.Data == nil {
			p.Data = NewBillData{Types: models.ExpenseTypes}
		}
	default:
		name = "login"
		if p.Data == nil {
			p.Data = LoginData{}
		}
		if rd.Error != "" {
			return v.tmpl.ExecuteTemplate(w, name, p)
		}
	}

	if rd.Error != "" {
		name = "error"
	}
	return v.tmpl.ExecuteTemplate(w, name, p)
}
