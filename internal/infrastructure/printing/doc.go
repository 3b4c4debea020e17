// Package printing renders receipts and proforma invoices to PDF.
//
// Documents are composed from embedded HTML templates, printed with a
// headless Chrome instance via chromedp, and handed back to the
// application layer as raw PDF bytes.
package printing
