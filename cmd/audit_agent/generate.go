package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/presence-audit/internal/audit"
	"github.com/jonathan/presence-audit/internal/observability"
	"github.com/jonathan/presence-audit/internal/progress"
	"github.com/jonathan/presence-audit/internal/types"
)

// cliSession is the preferences session used by the generate command.
const cliSession = "cli"

var (
	genName     string
	genLocation string
	genCategory string
	genContact  string
	genCurrency string
	genAPIKey   string
	genOutDir   string
	genPDF      bool
	genPlain    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an audit report from the command line",
	Long: `Generate a digital presence audit for one business and write it to disk as HTML,
and optionally PDF. Progress is shown in an interactive view unless --plain is set.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genName, "name", "n", "", "Business name (required)")
	generateCmd.Flags().StringVarP(&genLocation, "location", "l", "", "Business location (required)")
	generateCmd.Flags().StringVar(&genCategory, "category", "", "Business category (default: auto-detect)")
	generateCmd.Flags().StringVar(&genContact, "contact", "", "Contact name to address the report to")
	generateCmd.Flags().StringVar(&genCurrency, "currency", "", "Currency code for revenue figures (default: first in catalog)")
	generateCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API key (overrides gemini.api_key)")
	generateCmd.Flags().StringVarP(&genOutDir, "out", "o", ".", "Output directory")
	generateCmd.Flags().BoolVar(&genPDF, "pdf", false, "Also export a PDF")
	generateCmd.Flags().BoolVar(&genPlain, "plain", false, "Print phases as plain lines instead of the interactive view")

	if err := generateCmd.MarkFlagRequired("name"); err != nil {
		panic(fmt.Sprintf("failed to mark name flag as required: %v", err))
	}
	if err := generateCmd.MarkFlagRequired("location"); err != nil {
		panic(fmt.Sprintf("failed to mark location flag as required: %v", err))
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// CLI preferences come from flags, never from a shared store.
	cfg.Redis.Addr = ""

	logger := zap.NewNop()
	if genPlain {
		if logger, err = newLogger(cfg); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	prefs, err := a.prefs.Get(ctx, cliSession)
	if err != nil {
		return err
	}
	prefs.APIKey = genAPIKey
	if genCurrency != "" {
		prefs.Currency = genCurrency
	}
	if err := a.prefs.Put(ctx, cliSession, prefs); err != nil {
		return err
	}
	if prefs, err = a.prefs.Get(ctx, cliSession); err != nil {
		return err
	}

	req := types.AuditRequest{
		BusinessName: genName,
		Location:     genLocation,
		Category:     genCategory,
		ContactName:  genContact,
	}

	out := cmd.OutOrStdout()
	var report types.Report
	if genPlain {
		report, err = generatePlain(ctx, a.service, req, a.service.Catalog().Resolve(prefs.Currency), out)
	} else {
		report, err = generateInteractive(ctx, a.service, req)
	}
	if err != nil {
		return err
	}

	return writeReport(ctx, a.service, report, genOutDir, genPDF, out)
}

func generatePlain(ctx context.Context, svc *audit.Service, req types.AuditRequest, cur types.Currency, out io.Writer) (types.Report, error) {
	printer := observability.NewPrinter(out)
	printer.PrintAuditRequest(req, cur)

	report, err := svc.Generate(ctx, cliSession, req, func(s progress.Snapshot) {
		fmt.Fprintf(out, "[%3.0f%%] %s\n", s.Percent*100, s.Label)
	})
	if err != nil {
		return types.Report{}, err
	}
	printer.PrintReport(report)
	return report, nil
}

func generateInteractive(ctx context.Context, svc *audit.Service, req types.AuditRequest) (types.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newGenerateModel(req.BusinessName, cancel))

	go func() {
		report, err := svc.Generate(ctx, cliSession, req, func(s progress.Snapshot) {
			p.Send(phaseMsg(s))
		})
		p.Send(doneMsg{report: report, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return types.Report{}, fmt.Errorf("progress view failed: %w", err)
	}

	m, ok := final.(generateModel)
	if !ok {
		return types.Report{}, errors.New("unexpected progress model")
	}
	if m.cancelled {
		return types.Report{}, context.Canceled
	}
	return m.report, m.err
}

// writeReport saves the HTML export and, when requested, the PDF next to it.
// A PDF failure is reported but does not discard the HTML file.
func writeReport(ctx context.Context, svc *audit.Service, report types.Report, dir string, withPDF bool, out io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	html, err := svc.ExportHTML(report)
	if err != nil {
		return err
	}
	htmlPath := filepath.Join(dir, html.Filename)
	if err := os.WriteFile(htmlPath, html.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}
	fmt.Fprintln(out, okStyle.Render("✓")+" "+htmlPath)

	if !withPDF {
		return nil
	}
	pdf, err := svc.ExportPDF(ctx, cliSession, report)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("✗")+" PDF export failed; the HTML report above is complete")
		return err
	}
	pdfPath := filepath.Join(dir, pdf.Filename)
	if err := os.WriteFile(pdfPath, pdf.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", pdfPath, err)
	}
	fmt.Fprintln(out, okStyle.Render("✓")+" "+pdfPath)
	return nil
}
