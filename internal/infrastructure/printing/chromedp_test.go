package printing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nextstock/backend/internal/infrastructure/config"
)

func TestNewChromeRenderer_NilLogger(t *testing.T) {
	r := NewChromeRenderer(config.PrintingConfig{}, nil)
	assert.NotNil(t, r.logger)
}

func TestEnsureDocument_CompleteDocument(t *testing.T) {
	html := "<!DOCTYPE html>\n<html><body>hi</body></html>"
	assert.Equal(t, html, ensureDocument(html))
}

func TestEnsureDocument_HtmlTagOnly(t *testing.T) {
	html := "<html><body>hi</body></html>"
	assert.Equal(t, html, ensureDocument(html))
}

func TestEnsureDocument_Fragment(t *testing.T) {
	wrapped := ensureDocument("<div>receipt</div>")
	assert.True(t, strings.HasPrefix(wrapped, "<!DOCTYPE html>"))
	assert.Contains(t, wrapped, `<meta charset="utf-8">`)
	assert.Contains(t, wrapped, "<div>receipt</div>")
}

func TestEnsureDocument_CaseInsensitiveDoctype(t *testing.T) {
	html := "<!doctype html><html></html>"
	assert.Equal(t, html, ensureDocument(html))
}

func TestChromeRenderer_TimeoutDefault(t *testing.T) {
	r := NewChromeRenderer(config.PrintingConfig{}, nil)
	assert.Equal(t, time.Duration(0), r.cfg.RenderTimeout)

	configured := NewChromeRenderer(config.PrintingConfig{RenderTimeout: 5 * time.Second}, nil)
	assert.Equal(t, 5*time.Second, configured.cfg.RenderTimeout)
}
