package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/vango-dev/htms/internal/errors"
	"github.com/vango-dev/htms/pkg/formdata"
	"github.com/vango-dev/htms/pkg/page"
)

const (
	printHTML = "html"
	printURL  = "url"
	printBoth = "both"
)

type changeOptions struct {
	form        int
	set         []string
	print       string
	interactive bool
	wait        time.Duration
}

func changeCmd(a *app) *cobra.Command {
	var opts changeOptions

	cmd := &cobra.Command{
		Use:   "change <url>",
		Short: "Edit a bound form and fire its change event",
		Long: `Load a page, apply field edits to one bound form, fire the form's
change event and wait for the response to be merged.

Edits use name=value. For checkboxes and radios the box with that value
is checked; prefix the name with ! to uncheck it instead.

Examples:
  htms change http://localhost:9012/ --set author=Tolkien
  htms change http://localhost:9012/search --form 1 --set q=go --print url
  htms change http://localhost:9012/ -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChange(cmd.Context(), a, cmd, args[0], opts, surveyPrompter{})
		},
	}

	cmd.Flags().IntVarP(&opts.form, "form", "f", 0, "Index of the bound form (see 'htms forms')")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "Field edit name=value (repeatable)")
	cmd.Flags().StringVar(&opts.print, "print", printBoth, "What to print afterwards: html, url or both")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for each field value")
	cmd.Flags().DurationVar(&opts.wait, "wait", 30*time.Second, "Maximum time to wait for the change to settle")

	return cmd
}

func runChange(ctx context.Context, a *app, cmd *cobra.Command, url string, opts changeOptions, prompter Prompter) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch opts.print {
	case printHTML, printURL, printBoth:
	default:
		return errors.New("E182").WithDetail(fmt.Sprintf("got %q", opts.print))
	}

	edits := make([]formdata.Edit, 0, len(opts.set))
	for _, s := range opts.set {
		e, err := formdata.ParseEdit(s)
		if err != nil {
			return errors.New("E180").WithDetail(fmt.Sprintf("got %q", s)).Wrap(err)
		}
		edits = append(edits, e)
	}

	p, err := a.newPage()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		p.Run(ctx)
	}()
	defer func() {
		cancel()
		<-loopDone
	}()

	if err := p.Load(ctx, url); err != nil {
		return err
	}

	forms := p.Forms()
	if opts.form < 0 || opts.form >= len(forms) {
		return errors.New("E181").
			WithDetail(fmt.Sprintf("form %d requested, page has %d bound forms", opts.form, len(forms))).
			WithSuggestion("Run 'htms forms " + url + "' to list bound forms")
	}

	if opts.interactive {
		var fields []formdata.Field
		p.Document().Read(func(*html.Node) {
			fields = formdata.Collect(forms[opts.form].Node)
		})
		asked, err := promptFields(ctx, prompter, fields)
		if err != nil {
			return err
		}
		edits = append(asked, edits...)
	}

	if err := p.Change(ctx, opts.form, edits...); err != nil {
		switch {
		case stderrors.Is(err, formdata.ErrNoControl):
			return errors.New("E180").WithDetail(err.Error())
		case stderrors.Is(err, page.ErrNoSuchForm):
			return errors.New("E181").Wrap(err)
		}
		return err
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, opts.wait)
	defer waitCancel()
	if err := p.Wait(waitCtx); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch opts.print {
	case printHTML:
		fmt.Fprintln(w, p.HTML())
	case printURL:
		fmt.Fprintln(w, p.Location())
	default:
		fmt.Fprintln(w, p.HTML())
		success(cmd.ErrOrStderr(), "location %s", p.Location())
	}
	return a.flushMetrics()
}
