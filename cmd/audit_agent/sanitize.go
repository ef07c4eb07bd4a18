package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/presence-audit/internal/sanitize"
)

var (
	sanitizeMode   string
	sanitizeScrub  bool
	sanitizeBreaks bool
)

// errEmptyReport is returned when nothing is left after sanitizing.
var errEmptyReport = errors.New("no report content after sanitizing")

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [file]",
	Short: "Clean a raw model response into a report fragment",
	Long: `Read a raw model response from a file (or stdin when no file or "-" is given),
strip code fences, document wrappers and edge page breaks, and print the fragment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSanitize,
}

func init() {
	sanitizeCmd.Flags().StringVar(&sanitizeMode, "mode", string(sanitize.ModePattern), "Edge marker matching: pattern or structural")
	sanitizeCmd.Flags().BoolVar(&sanitizeScrub, "scrub", true, "Remove scripts and event handlers")
	sanitizeCmd.Flags().BoolVar(&sanitizeBreaks, "count-breaks", false, "Print the number of interior page breaks to stderr")
	rootCmd.AddCommand(sanitizeCmd)
}

func runSanitize(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	mode, err := sanitize.ParseMode(sanitizeMode)
	if err != nil {
		return err
	}
	return sanitizeStream(in, cmd.OutOrStdout(), cmd.ErrOrStderr(), sanitize.Pipeline{Mode: mode, Scrub: sanitizeScrub}, sanitizeBreaks)
}

func sanitizeStream(in io.Reader, out, errOut io.Writer, pipeline sanitize.Pipeline, countBreaks bool) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	report, err := pipeline.Run(string(raw))
	if err != nil {
		return err
	}
	if !report.Present {
		return errEmptyReport
	}

	if countBreaks {
		fmt.Fprintf(errOut, "page breaks: %d\n", sanitize.CountPageBreaks(report.Fragment))
	}
	_, err = fmt.Fprintln(out, report.Fragment)
	return err
}
