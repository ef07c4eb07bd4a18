package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// PDFRenderer renders a complete HTML document to PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, document string, opts PDFOptions) ([]byte, error)
}

// Engine names a PDFRenderer implementation
type Engine string

// Engine constants
const (
	EngineChromedp Engine = "chromedp"
	EngineRod      Engine = "rod"
	EngineNone     Engine = "none"
)

// NewRenderer returns the renderer for engine, or nil for EngineNone.
func NewRenderer(engine Engine, timeout time.Duration, logger *zap.Logger) (PDFRenderer, error) {
	switch Engine(strings.ToLower(string(engine))) {
	case EngineChromedp, "":
		return NewChromeRenderer(timeout, logger), nil
	case EngineRod:
		return NewRodRenderer(timeout, logger), nil
	case EngineNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q", engine)
	}
}

// ChromeRenderer prints documents to PDF in a headless Chrome driven by chromedp.
// Requires Chrome/Chromium to be installed on the system.
type ChromeRenderer struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewChromeRenderer creates a chromedp-backed renderer. A zero timeout means 60s.
func NewChromeRenderer(timeout time.Duration, logger *zap.Logger) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeRenderer{timeout: timeout, logger: logger}
}

// Render loads document into a blank page and prints it
func (r *ChromeRenderer) Render(ctx context.Context, document string, opts PDFOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, &ExportError{Format: "pdf", Message: "invalid options", Cause: err}
	}
	width, height, _ := opts.Format.Size()
	margin := opts.MarginInches()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithScale(opts.Scale).
				WithPreferCSSPageSize(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, &ExportError{Format: "pdf", Message: "browser rendering failed", Cause: err}
	}

	r.logger.Debug("pdf rendered",
		zap.String("engine", string(EngineChromedp)),
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pdf, nil
}
