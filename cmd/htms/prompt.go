package main

import (
	"context"
	stderrors "errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/vango-dev/htms/pkg/formdata"
)

// errAborted is returned when the user interrupts a prompt.
var errAborted = stderrors.New("aborted")

// Prompter asks the user for a field value.
type Prompter interface {
	Input(ctx context.Context, name, current string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(ctx context.Context, name, current string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: name,
		Default: current,
		Help:    "Value submitted for this field. Leave as is to keep the current value.",
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if stderrors.Is(err, terminal.InterruptErr) {
			return "", errAborted
		}
		return "", err
	}
	return out, nil
}

// promptFields asks for a new value for each text-like field and returns
// edits for the ones that changed. Fields repeated under one name, such
// as checkbox groups, are left to --set.
func promptFields(ctx context.Context, p Prompter, fields []formdata.Field) ([]formdata.Edit, error) {
	counts := make(map[string]int, len(fields))
	for _, f := range fields {
		counts[f.Name]++
	}

	var edits []formdata.Edit
	for _, f := range fields {
		if counts[f.Name] > 1 {
			continue
		}
		v, err := p.Input(ctx, f.Name, f.Value)
		if err != nil {
			return nil, err
		}
		if v != f.Value {
			edits = append(edits, formdata.Edit{Name: f.Name, Value: v})
		}
	}
	return edits, nil
}
