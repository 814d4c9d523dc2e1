package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/foodtracker/backend/internal/domain"
)

const (
	nameColumnWidth     = 40
	brandColumnWidth    = 24
	categoryColumnWidth = 60
)

// newTable sets up a rounded table writer mirrored to out
func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.DrawBorder = true
	return t
}

// renderProducts prints a product list with grades
func renderProducts(out io.Writer, title string, products []domain.Product, total string) {
	t := newTable(out)
	t.SetTitle(title)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 4},
		{Number: 3, WidthMax: nameColumnWidth},
		{Number: 4, WidthMax: brandColumnWidth},
		{Number: 5, Align: text.AlignCenter},
		{Number: 6, Align: text.AlignCenter},
	})
	t.AppendHeader(table.Row{"#", "Barcode", "Name", "Brand", "Nutri", "Eco"})

	for i, p := range products {
		t.AppendRow(table.Row{i + 1, p.Code, p.Name, orNA(p.Brand), gradeLabel(p.NutriScore), gradeLabel(p.EcoScore)})
	}

	t.AppendFooter(table.Row{"", "Total", total})
	t.Render()
}

// renderProduct prints one product as a two-column table
func renderProduct(out io.Writer, p domain.Product) {
	t := newTable(out)
	t.SetTitle(p.Name)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: categoryColumnWidth},
	})

	n := p.Nutriments
	t.AppendRows([]table.Row{
		{"Barcode", p.Code},
		{"Brand", orNA(p.Brand)},
		{"Nutri-Score", gradeLabel(p.NutriScore)},
		{"Eco-Score", gradeLabel(p.EcoScore)},
		{"Categories", orNA(p.Categories)},
		{"Image", p.ImageURL},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Energy", quantity(n.Energy, "kcal")},
		{"Fat", quantity(n.Fat, "g")},
		{"Saturated fat", quantity(n.SaturatedFat, "g")},
		{"Carbohydrates", quantity(n.Carbs, "g")},
		{"Sugars", quantity(n.Sugars, "g")},
		{"Fiber", quantity(n.Fiber, "g")},
		{"Protein", quantity(n.Protein, "g")},
		{"Salt", quantity(n.Salt, "g")},
	})
	t.Render()
}

// renderMacros prints the macronutrient breakdown
func renderMacros(out io.Writer, name string, macros []domain.Macro) {
	t := newTable(out)
	t.SetTitle("Macros per 100g: " + name)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.AppendHeader(table.Row{"Nutrient", "Amount"})
	for _, m := range macros {
		t.AppendRow(table.Row{m.Label, formatAmount(m.Value) + " " + m.Unit})
	}
	t.Render()
}

func gradeLabel(g domain.Grade) string {
	if g.IsZero() {
		return "-"
	}
	return strings.ToUpper(string(g))
}

func quantity(v *float64, unit string) string {
	if v == nil {
		return "N/A"
	}
	return formatAmount(*v) + " " + unit
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
