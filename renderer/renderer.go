// Package renderer turns analysis results into markdown reports. Money
// amounts are formatted as INR through go-money so every report shows the
// same currency presentation.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"math"
	"text/template"

	"github.com/Rhymond/go-money"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"inr": formatINR,
	"pct": formatPercent,
}

// formatINR renders a float rupee amount with go-money, rounding to paise.
func formatINR(v float64) string {
	return money.New(int64(math.Round(v*100)), money.INR).Display()
}

// formatPercent renders a fractional rate as a percentage.
func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// renderTemplate executes one embedded template against data. A template
// error is rendered into the report itself rather than failing the run.
func renderTemplate(name string, data any) string {
	tmpl, err := template.New(name).Funcs(funcs).ParseFS(templates, "templates/"+name)
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Sprintf("error rendering template %q: %v", name, err)
	}
	return buf.String()
}
