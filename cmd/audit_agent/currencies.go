package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jonathan/presence-audit/internal/currency"
)

var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "List the supported report currencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printCurrencies(cmd.OutOrStdout(), currency.Default())
	},
}

func init() {
	rootCmd.AddCommand(currenciesCmd)
}

func printCurrencies(out io.Writer, catalog *currency.Catalog) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CODE", "SYMBOL", "LABEL").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i, c := range catalog.All() {
		code := c.Code
		if i == 0 {
			code += " *"
		}
		t.Row(code, c.Symbol, c.Label)
	}

	_, err := fmt.Fprintln(out, t.String())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, "* default")
	return err
}
