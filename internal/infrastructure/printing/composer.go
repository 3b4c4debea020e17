package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	printingapp "github.com/nextstock/backend/internal/application/printing"
	"github.com/nextstock/backend/internal/domain/printing"
	"github.com/nextstock/backend/internal/domain/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

// Ensure HTMLComposer implements the application composer contract
var _ printingapp.Composer = (*HTMLComposer)(nil)

// HTMLComposer turns document view models into printable HTML using the
// embedded receipt and proforma templates. Amounts are formatted in Go
// before templating so the templates stay purely presentational.
type HTMLComposer struct {
	templates *template.Template
}

// NewHTMLComposer parses the embedded templates.
func NewHTMLComposer() (*HTMLComposer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse print templates: %w", err)
	}
	return &HTMLComposer{templates: tmpl}, nil
}

// Compose renders the template matching the document type.
func (c *HTMLComposer) Compose(doc *printingapp.Document) (string, error) {
	if doc == nil {
		return "", shared.NewDomainError("INVALID_DOCUMENT", "Document is required")
	}

	var name string
	switch doc.Type {
	case printing.DocTypeReceipt:
		name = "receipt.html"
	case printing.DocTypeProforma:
		name = "proforma.html"
	default:
		return "", shared.NewDomainError("INVALID_DOCUMENT", fmt.Sprintf("No template for document type %s", doc.Type))
	}

	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, name, newDocumentView(doc)); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// lineView is one pre-formatted document line.
type lineView struct {
	ProductName string
	ProductSKU  string
	Quantity    string
	UnitPrice   string
	Discount    string
	LineTotal   string
	HasDiscount bool
}

// documentView carries the document with every amount already formatted
// for the store's currency.
type documentView struct {
	Doc         *printingapp.Document
	Lines       []lineView
	Subtotal    string
	Discount    string
	Tax         string
	Total       string
	Tendered    string
	Change      string
	IssuedAt    string
	ValidUntil  string
	HasDiscount bool
	HasTax      bool
	HasTendered bool
}

func newDocumentView(doc *printingapp.Document) *documentView {
	money := moneyFormatter(doc.Currency)

	view := &documentView{
		Doc:         doc,
		Subtotal:    money(doc.Subtotal),
		Discount:    money(doc.DiscountAmount),
		Tax:         money(doc.TaxAmount),
		Total:       money(doc.TotalAmount),
		Tendered:    money(doc.AmountTendered),
		Change:      money(doc.ChangeDue),
		IssuedAt:    doc.IssuedAt.Format("02/01/2006 15:04"),
		HasDiscount: doc.DiscountAmount.IsPositive(),
		HasTax:      doc.TaxAmount.IsPositive(),
		HasTendered: doc.AmountTendered.IsPositive(),
	}
	if doc.ValidUntil != nil {
		view.ValidUntil = doc.ValidUntil.Format("02/01/2006")
	}

	view.Lines = make([]lineView, len(doc.Lines))
	for i, line := range doc.Lines {
		view.Lines[i] = lineView{
			ProductName: line.ProductName,
			ProductSKU:  line.ProductSKU,
			Quantity:    formatQuantity(line.Quantity),
			UnitPrice:   money(line.UnitPrice),
			Discount:    money(line.DiscountAmount),
			LineTotal:   money(line.LineTotal),
			HasDiscount: line.DiscountAmount.IsPositive(),
		}
	}
	return view
}

// moneyFormatter returns a formatter for the given ISO currency code.
// Fraction digits follow the currency's cash rounding (XOF prints whole
// francs, USD prints cents); amounts get grouping separators.
func moneyFormatter(code string) func(decimal.Decimal) string {
	digits := 2
	if unit, err := currency.ParseISO(code); err == nil {
		digits, _ = currency.Cash.Rounding(unit)
	}
	printer := message.NewPrinter(language.English)
	return func(amount decimal.Decimal) string {
		value, _ := amount.Round(int32(digits)).Float64()
		formatted := printer.Sprint(number.Decimal(value,
			number.MinFractionDigits(digits),
			number.MaxFractionDigits(digits)))
		if code == "" {
			return formatted
		}
		return formatted + " " + code
	}
}

// formatQuantity trims trailing zeros so whole quantities read "3", not
// "3.000".
func formatQuantity(qty decimal.Decimal) string {
	return qty.Truncate(3).String()
}
