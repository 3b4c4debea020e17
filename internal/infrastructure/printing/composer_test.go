package printing

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	printingapp "github.com/nextstock/backend/internal/application/printing"
	"github.com/nextstock/backend/internal/domain/printing"
	"github.com/nextstock/backend/internal/domain/shared"
)

func testDocument(docType printing.DocType) *printingapp.Document {
	issuedAt := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)
	return &printingapp.Document{
		Type:         docType,
		Number:       "SAL-20260830-0001",
		StoreName:    "Boutique Centrale",
		StoreAddress: "12 Avenue de la Gare",
		StorePhone:   "+225 01 02 03 04",
		Header:       "Merci de votre visite",
		Footer:       "Ni repris ni echange",
		IssuedAt:     issuedAt,
		CustomerName: "Awa Traore",
		Lines: []printingapp.DocumentLine{
			{
				ProductName:    "Savon 250g",
				ProductSKU:     "SAV-250",
				Quantity:       decimal.NewFromInt(3),
				UnitPrice:      decimal.NewFromInt(500),
				DiscountAmount: decimal.Zero,
				LineTotal:      decimal.NewFromInt(1500),
			},
			{
				ProductName:    "Riz parfume 5kg",
				ProductSKU:     "RIZ-5K",
				Quantity:       decimal.NewFromFloat(1.5),
				UnitPrice:      decimal.NewFromInt(4000),
				DiscountAmount: decimal.NewFromInt(500),
				LineTotal:      decimal.NewFromInt(5500),
			},
		},
		Subtotal:       decimal.NewFromInt(7500),
		DiscountAmount: decimal.NewFromInt(500),
		TaxAmount:      decimal.Zero,
		TotalAmount:    decimal.NewFromInt(7000),
		Currency:       "XOF",
		PaymentMethod:  "CASH",
		AmountTendered: decimal.NewFromInt(10000),
		ChangeDue:      decimal.NewFromInt(3000),
	}
}

func TestHTMLComposer_ComposeReceipt(t *testing.T) {
	composer, err := NewHTMLComposer()
	require.NoError(t, err)

	html, err := composer.Compose(testDocument(printing.DocTypeReceipt))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(html), "<!DOCTYPE html>"))
	assert.Contains(t, html, "Boutique Centrale")
	assert.Contains(t, html, "SAL-20260830-0001")
	assert.Contains(t, html, "Savon 250g")
	assert.Contains(t, html, "30/08/2026 14:05")
	// XOF has no minor unit, so amounts print as whole francs
	assert.Contains(t, html, "7,000 XOF")
	assert.Contains(t, html, "10,000 XOF")
	assert.NotContains(t, html, "7,000.00")
	// 80mm receipt paper comes from the template's @page rule
	assert.Contains(t, html, "size: 80mm")
}

func TestHTMLComposer_ComposeProforma(t *testing.T) {
	composer, err := NewHTMLComposer()
	require.NoError(t, err)

	doc := testDocument(printing.DocTypeProforma)
	doc.Number = "PRO-20260830-0001"
	validUntil := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	doc.ValidUntil = &validUntil

	html, err := composer.Compose(doc)
	require.NoError(t, err)

	assert.Contains(t, html, "PROFORMA INVOICE")
	assert.Contains(t, html, "PRO-20260830-0001")
	assert.Contains(t, html, "Valid until 14/09/2026")
	assert.Contains(t, html, "size: A4")
	assert.Contains(t, html, "Awa Traore")
}

func TestHTMLComposer_EscapesMarkup(t *testing.T) {
	composer, err := NewHTMLComposer()
	require.NoError(t, err)

	doc := testDocument(printing.DocTypeReceipt)
	doc.Lines[0].ProductName = `<script>alert("x")</script>`

	html, err := composer.Compose(doc)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestHTMLComposer_RejectsUnknownDocType(t *testing.T) {
	composer, err := NewHTMLComposer()
	require.NoError(t, err)

	doc := testDocument(printing.DocType("INVOICE"))
	_, err = composer.Compose(doc)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DOCUMENT", domainErr.Code)
}

func TestHTMLComposer_NilDocument(t *testing.T) {
	composer, err := NewHTMLComposer()
	require.NoError(t, err)

	_, err = composer.Compose(nil)
	assert.Error(t, err)
}

func TestMoneyFormatter(t *testing.T) {
	t.Run("XOF prints whole amounts", func(t *testing.T) {
		money := moneyFormatter("XOF")
		assert.Equal(t, "1,500 XOF", money(decimal.NewFromInt(1500)))
		assert.Equal(t, "0 XOF", money(decimal.Zero))
	})

	t.Run("USD prints cents", func(t *testing.T) {
		money := moneyFormatter("USD")
		assert.Equal(t, "1,234.50 USD", money(decimal.NewFromFloat(1234.5)))
	})

	t.Run("unknown currency falls back to two digits", func(t *testing.T) {
		money := moneyFormatter("ZZZ")
		assert.Equal(t, "10.00 ZZZ", money(decimal.NewFromInt(10)))
	})

	t.Run("empty currency omits the suffix", func(t *testing.T) {
		money := moneyFormatter("")
		assert.Equal(t, "5.00", money(decimal.NewFromInt(5)))
	})
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "3", formatQuantity(decimal.NewFromInt(3)))
	assert.Equal(t, "1.5", formatQuantity(decimal.NewFromFloat(1.5)))
	assert.Equal(t, "0.25", formatQuantity(decimal.NewFromFloat(0.25)))
}
