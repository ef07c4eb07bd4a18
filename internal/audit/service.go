package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/presence-audit/internal/currency"
	"github.com/jonathan/presence-audit/internal/export"
	"github.com/jonathan/presence-audit/internal/llm"
	"github.com/jonathan/presence-audit/internal/metrics"
	"github.com/jonathan/presence-audit/internal/preferences"
	"github.com/jonathan/presence-audit/internal/progress"
	"github.com/jonathan/presence-audit/internal/prompts"
	"github.com/jonathan/presence-audit/internal/reports"
	"github.com/jonathan/presence-audit/internal/sanitize"
	"github.com/jonathan/presence-audit/internal/types"
)

const (
	opGenerate = "generation"
	opExport   = "export"
)

// Options wires a Service. Factory, Preferences and Reports are required.
type Options struct {
	Factory     llm.Factory
	Preferences preferences.Store
	Reports     reports.Store
	Catalog     *currency.Catalog

	// DefaultAPIKey is used when the session has no override.
	DefaultAPIKey string
	Provider      string
	Generate      llm.GenerateOptions
	Pipeline      sanitize.Pipeline

	Phases        []string
	PhaseInterval time.Duration

	// Renderer may be nil, in which case PDF export is unavailable.
	Renderer   export.PDFRenderer
	PDFOptions export.PDFOptions

	Logger *zap.Logger
	Now    func() time.Time
}

// Service runs audits. It is safe for concurrent use; at most one generation
// and one export run per session at a time.
type Service struct {
	opts Options
	gate *Gate
}

// NewService creates a Service, filling unset optional fields with defaults.
func NewService(opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = currency.Default()
	}
	if len(opts.Phases) == 0 {
		opts.Phases = progress.DefaultPhases
	}
	if opts.PhaseInterval <= 0 {
		opts.PhaseInterval = progress.DefaultInterval
	}
	if opts.Generate.Tier == "" {
		opts.Generate.Tier = llm.TierStandard
	}
	if opts.Provider == "" {
		opts.Provider = string(llm.ProviderGenAI)
	}
	if opts.PDFOptions == (export.PDFOptions{}) {
		opts.PDFOptions = export.DefaultPDFOptions()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{opts: opts, gate: NewGate()}
}

// Busy reports whether a generation is running for session.
func (s *Service) Busy(session string) bool {
	return s.gate.Busy(gateKey(opGenerate, session))
}

func gateKey(op, session string) string {
	return op + ":" + session
}

// Generate produces and stores one audit report for session. onPhase, if not nil,
// receives a snapshot when the loading simulator activates and on every advance;
// the simulator is stopped before Generate returns, whatever the outcome.
//
// A second call for the same session while one is running fails with BusyError
// without contacting the model.
func (s *Service) Generate(ctx context.Context, session string, req types.AuditRequest, onPhase func(progress.Snapshot)) (types.Report, error) {
	key := gateKey(opGenerate, session)
	if !s.gate.TryAcquire(key) {
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeBusy).Inc()
		return types.Report{}, &BusyError{Operation: opGenerate}
	}
	defer s.gate.Release(key)

	report, err := s.generate(ctx, session, req, onPhase)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return types.Report{}, err
	}
	metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return report, nil
}

func (s *Service) generate(ctx context.Context, session string, req types.AuditRequest, onPhase func(progress.Snapshot)) (types.Report, error) {
	if err := req.Validate(); err != nil {
		return types.Report{}, toValidationError(err)
	}

	prefs, err := s.opts.Preferences.Get(ctx, session)
	if err != nil {
		return types.Report{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	apiKey := strings.TrimSpace(prefs.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(s.opts.DefaultAPIKey)
	}
	if apiKey == "" {
		return types.Report{}, &MissingCredentialError{}
	}

	cur := s.opts.Catalog.Resolve(prefs.Currency)
	prompt := prompts.AssembleAudit(req, cur)

	simOpts := []progress.Option{progress.WithInterval(s.opts.PhaseInterval)}
	if onPhase != nil {
		simOpts = append(simOpts, progress.WithOnAdvance(onPhase))
	}
	sim := progress.NewSimulator(s.opts.Phases, simOpts...)
	sim.Start(ctx)
	defer sim.Stop()

	raw, err := s.callModel(ctx, apiKey, prompt)
	if err != nil {
		s.opts.Logger.Error("audit generation failed",
			zap.String("business", req.BusinessName),
			zap.Error(err),
		)
		return types.Report{}, &GenerationError{Message: "the audit could not be generated, please try again", Cause: err}
	}

	cleaned, err := s.opts.Pipeline.Run(raw)
	if err != nil {
		return types.Report{}, &GenerationError{Message: "the model returned malformed markup", Cause: err}
	}
	if !cleaned.Present {
		return types.Report{}, &GenerationError{Message: "the model returned an empty report"}
	}
	metrics.SanitizedBytes.Observe(float64(len(cleaned.Fragment)))

	report := types.Report{
		ID:        uuid.New(),
		Session:   session,
		Request:   req,
		Currency:  cur.Code,
		Fragment:  cleaned.Fragment,
		Title:     sanitize.Title(cleaned.Fragment),
		CreatedAt: s.opts.Now().UTC(),
	}
	if err := s.opts.Reports.Save(ctx, report); err != nil {
		return types.Report{}, fmt.Errorf("failed to store report: %w", err)
	}

	s.opts.Logger.Info("audit generated",
		zap.String("id", report.ID.String()),
		zap.String("business", req.BusinessName),
		zap.String("currency", cur.Code),
		zap.Int("fragment_bytes", len(report.Fragment)),
	)
	return report, nil
}

func (s *Service) callModel(ctx context.Context, apiKey, prompt string) (string, error) {
	client, err := s.opts.Factory(ctx, apiKey)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			s.opts.Logger.Warn("failed to close model client", zap.Error(cerr))
		}
	}()

	metrics.GenerationsActive.Inc()
	defer metrics.GenerationsActive.Dec()

	start := time.Now()
	raw, err := client.Generate(ctx, prompt, s.opts.Generate)
	metrics.GenerationDuration.WithLabelValues(s.opts.Provider).Observe(time.Since(start).Seconds())
	return raw, err
}

// toValidationError converts validator output to the first failing field.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "request", Message: err.Error()}
	}
	fe := verrs[0]
	field := jsonFieldNames[fe.Field()]
	if field == "" {
		field = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Message: "is required"}
	case "max":
		return &ValidationError{Field: field, Message: "must be at most " + fe.Param() + " characters"}
	default:
		return &ValidationError{Field: field, Message: "is invalid"}
	}
}

var jsonFieldNames = map[string]string{
	"BusinessName": "business_name",
	"Location":     "location",
	"Category":     "category",
	"ContactName":  "contact_name",
}

// Report returns a report generated by session.
func (s *Service) Report(ctx context.Context, session string, id uuid.UUID) (types.Report, error) {
	return s.opts.Reports.Get(ctx, session, id)
}

// Recent lists the reports generated by session, newest first.
func (s *Service) Recent(ctx context.Context, session string, limit int) ([]types.Report, error) {
	return s.opts.Reports.List(ctx, session, limit)
}

// Download is an exported file.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportHTML renders report as a standalone HTML document.
func (s *Service) ExportHTML(report types.Report) (Download, error) {
	start := time.Now()
	doc, err := export.BuildDocument(report, s.opts.PDFOptions.PageBreakMode)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("html", metrics.OutcomeFailure).Inc()
		return Download{}, err
	}
	metrics.ExportsTotal.WithLabelValues("html", metrics.OutcomeSuccess).Inc()
	metrics.ExportDuration.WithLabelValues("html").Observe(time.Since(start).Seconds())
	return Download{
		Filename:    export.Filename(report.Request.BusinessName, report.CreatedAt, "html"),
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(doc),
	}, nil
}

// ExportPDF renders report to PDF. Like Generate, only one export per session
// runs at a time; the busy flag is cleared whether rendering succeeds or not.
func (s *Service) ExportPDF(ctx context.Context, session string, report types.Report) (Download, error) {
	if s.opts.Renderer == nil {
		return Download{}, &export.ExportError{Format: "pdf", Message: "pdf export is disabled"}
	}

	key := gateKey(opExport, session)
	if !s.gate.TryAcquire(key) {
		metrics.ExportsTotal.WithLabelValues("pdf", metrics.OutcomeBusy).Inc()
		return Download{}, &BusyError{Operation: opExport}
	}
	defer s.gate.Release(key)

	start := time.Now()
	doc, err := export.BuildDocument(report, s.opts.PDFOptions.PageBreakMode)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("pdf", metrics.OutcomeFailure).Inc()
		return Download{}, err
	}

	pdf, err := s.opts.Renderer.Render(ctx, doc, s.opts.PDFOptions)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("pdf", metrics.OutcomeFailure).Inc()
		s.opts.Logger.Error("pdf export failed",
			zap.String("id", report.ID.String()),
			zap.Error(err),
		)
		var exportErr *export.ExportError
		if !errors.As(err, &exportErr) {
			err = &export.ExportError{Format: "pdf", Message: "rendering failed", Cause: err}
		}
		return Download{}, err
	}

	metrics.ExportsTotal.WithLabelValues("pdf", metrics.OutcomeSuccess).Inc()
	metrics.ExportDuration.WithLabelValues("pdf").Observe(time.Since(start).Seconds())
	return Download{
		Filename:    export.Filename(report.Request.BusinessName, report.CreatedAt, "pdf"),
		ContentType: "application/pdf",
		Body:        pdf,
	}, nil
}

// PDFEnabled reports whether a renderer is configured.
func (s *Service) PDFEnabled() bool {
	return s.opts.Renderer != nil
}

// Catalog returns the currency catalog the service resolves against.
func (s *Service) Catalog() *currency.Catalog {
	return s.opts.Catalog
}
