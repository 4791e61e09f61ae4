package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"
)

func formsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms <url>",
		Short: "List the bound forms of a page",
		Long: `Load a page and list every form carrying the GET or POST marker,
in document order. The index column is what 'htms change --form' takes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForms(cmd.Context(), a, cmd, args[0])
		},
	}
	return cmd
}

func runForms(ctx context.Context, a *app, cmd *cobra.Command, url string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := a.newPage()
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Load(ctx, url); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	forms := p.Forms()
	if len(forms) == 0 {
		info(w, "no bound forms on %s", p.Location())
		return a.flushMetrics()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tMETHOD\tPATH\tREPLACE\tPUSH-URL\tQUERY")
	doc := p.Document()
	for _, f := range forms {
		var query string
		doc.Read(func(*html.Node) { query = f.Query() })
		replace := strings.Join(f.Targets.Replace, " ")
		if replace == "" {
			replace = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n", f.Index, f.Method, f.Path, replace, f.PushURL, query)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return a.flushMetrics()
}
