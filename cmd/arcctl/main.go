// Command arcctl scores questionnaires, renders reports and seeds the catalog
// from the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arc-backend/internal/questionnaire"
)

var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

type scoreFlags struct {
	persona string
	strict  bool
	pretty  bool
}

type pdfFlags struct {
	persona     string
	name        string
	email       string
	age         int
	out         string
	templateDir string
}

func main() {
	root := &cobra.Command{
		Use:           "arcctl",
		Short:         "Arc wellness backend tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScoreCmd(), newPDFCmd(), newSeedCmd(), newPersonasCmd())

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newScoreCmd() *cobra.Command {
	var flags scoreFlags
	cmd := &cobra.Command{
		Use:   "score <answers.json>",
		Short: "Score a questionnaire and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.OutOrStdout(), args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.persona, "persona", questionnaire.PersonaExplorer, "Persona: explorer, achiever or women")
	f.BoolVar(&flags.strict, "strict", false, "Fail on unknown answer labels instead of skipping them")
	f.BoolVar(&flags.pretty, "pretty", false, "Indent output (default when stdout is a terminal)")
	return cmd
}

func newPDFCmd() *cobra.Command {
	var flags pdfFlags
	cmd := &cobra.Command{
		Use:   "pdf <answers.json>",
		Short: "Score a questionnaire and render the PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPDF(cmd.Context(), args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.persona, "persona", questionnaire.PersonaExplorer, "Persona: explorer, achiever or women")
	f.StringVar(&flags.name, "name", "", "Name printed on the report (required)")
	f.StringVar(&flags.email, "email", "", "Email printed on the report")
	f.IntVar(&flags.age, "age", 0, "Age printed on the report")
	f.StringVarP(&flags.out, "out", "o", "report.pdf", "Output file")
	f.StringVar(&flags.templateDir, "templates", "", "Directory overriding the embedded report template")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert or update the default catalog in postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd.OutOrStdout(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.xml", "Path to config.xml")
	return cmd
}

func newPersonasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List personas and their question counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersonas(cmd.OutOrStdout())
		},
	}
}
