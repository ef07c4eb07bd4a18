package export

import (
	"context"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// RodRenderer prints documents to PDF with go-rod. It launches (or downloads)
// a browser through rod's launcher.
type RodRenderer struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewRodRenderer creates a go-rod backed renderer. A zero timeout means 60s.
func NewRodRenderer(timeout time.Duration, logger *zap.Logger) *RodRenderer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodRenderer{timeout: timeout, logger: logger}
}

// Render loads document into a blank page and prints it
func (r *RodRenderer) Render(ctx context.Context, document string, opts PDFOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, &ExportError{Format: "pdf", Message: "invalid options", Cause: err}
	}
	width, height, _ := opts.Format.Size()
	margin := opts.MarginInches()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	l := launcher.New().Headless(true).NoSandbox(true).Context(ctx)
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, &ExportError{Format: "pdf", Message: "failed to launch browser", Cause: err}
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, &ExportError{Format: "pdf", Message: "failed to connect to browser", Cause: err}
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Warn("failed to close browser", zap.Error(err))
		}
	}()

	p, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, &ExportError{Format: "pdf", Message: "failed to open page", Cause: err}
	}
	if err := p.SetDocumentContent(document); err != nil {
		return nil, &ExportError{Format: "pdf", Message: "failed to load document", Cause: err}
	}
	if err := p.WaitLoad(); err != nil {
		return nil, &ExportError{Format: "pdf", Message: "document did not load", Cause: err}
	}

	start := time.Now()
	stream, err := p.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      &width,
		PaperHeight:     &height,
		MarginTop:       &margin,
		MarginBottom:    &margin,
		MarginLeft:      &margin,
		MarginRight:     &margin,
		Scale:           &opts.Scale,
	})
	if err != nil {
		return nil, &ExportError{Format: "pdf", Message: "print to pdf failed", Cause: err}
	}

	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, &ExportError{Format: "pdf", Message: "failed to read pdf stream", Cause: err}
	}

	r.logger.Debug("pdf rendered",
		zap.String("engine", string(EngineRod)),
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pdf, nil
}
