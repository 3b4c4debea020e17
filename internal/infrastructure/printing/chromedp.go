package printing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	printingapp "github.com/nextstock/backend/internal/application/printing"
	"github.com/nextstock/backend/internal/infrastructure/config"
)

// Ensure ChromeRenderer implements the application renderer contract
var _ printingapp.Renderer = (*ChromeRenderer)(nil)

const defaultRenderTimeout = 30 * time.Second

// ChromeRenderer converts HTML into PDF bytes using a headless Chrome
// instance. A fresh browser context is created per render; Chrome itself
// is reused across renders by the exec allocator's process cache.
type ChromeRenderer struct {
	cfg    config.PrintingConfig
	logger *zap.Logger
}

// NewChromeRenderer creates a renderer from the printing configuration.
func NewChromeRenderer(cfg config.PrintingConfig, logger *zap.Logger) *ChromeRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeRenderer{cfg: cfg, logger: logger}
}

// RenderPDF renders a complete HTML document to PDF. Page geometry comes
// from the document's @page CSS rule, so receipts print on 80mm paper and
// proformas on A4 without renderer-side switching.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	timeout := r.cfg.RenderTimeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		// Consistent glyph metrics between environments
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, timeout)
	defer cancelTimeout()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		setDocumentContent(ensureDocument(html)),
		printToPDF(&pdf),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome render failed: %w", err)
	}

	r.logger.Debug("rendered PDF",
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", time.Since(start)))
	return pdf, nil
}

// setDocumentContent injects HTML into the blank page's main frame.
func setDocumentContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return fmt.Errorf("get frame tree: %w", err)
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}

// printToPDF captures the current page. Margins are zero here; the
// templates reserve their own whitespace through @page margins.
func printToPDF(out *[]byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPreferCSSPageSize(true).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("print to pdf: %w", err)
		}
		*out = buf
		return nil
	})
}

// ensureDocument wraps bare HTML fragments in a minimal document so
// Chrome applies standards-mode layout.
func ensureDocument(html string) string {
	trimmed := strings.TrimSpace(html)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return trimmed
	}
	return "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>" + trimmed + "</body></html>"
}
