package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"psychescan"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

func newQuestionsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Print the question bank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bank := psychescan.DefaultQuestionBank()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(bank)
			}
			printQuestions(cmd.OutOrStdout(), bank)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the bank as JSON")
	return cmd
}

func printQuestions(w io.Writer, bank []psychescan.Question) {
	for i, q := range bank {
		fmt.Fprintf(w, "%s %s\n", cyan(fmt.Sprintf("%d.", i+1)), bold(q.Text))
		switch q.Kind {
		case psychescan.KindChoice:
			for _, opt := range q.Options {
				fmt.Fprintf(w, "   %s) %s %s\n", opt.ID, opt.Glyph, opt.Label)
			}
		case psychescan.KindFreeText:
			fmt.Fprintf(w, "   %s\n", gray("free text: "+q.Placeholder))
		}
		fmt.Fprintln(w)
	}
}

func newTonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tones",
		Short: "List the report narrators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, t := range psychescan.Tones() {
				fmt.Fprintf(w, "%s %s %s\n", t.Glyph(), bold(string(t)), gray("("+t.Key()+")"))
				fmt.Fprintf(w, "   %s\n", green(t.Description()))
			}
			return nil
		},
	}
}
