// Package onboarding drives the multi-step account setup form shown to new
// users after their first login.
package onboarding

import (
	"context"
	"errors"
)

type Field struct {
	Name  string
	Label string
}

type Step struct {
	Title  string
	Fields []Field
}

// DefaultSteps mirrors the backend's new-user form.
var DefaultSteps = []Step{
	{
		Title: "About you",
		Fields: []Field{
			{Name: "full_name", Label: "Full name"},
			{Name: "position", Label: "Position"},
		},
	},
	{
		Title: "Your company",
		Fields: []Field{
			{Name: "company", Label: "Company"},
			{Name: "industry", Label: "Industry"},
		},
	},
	{
		Title: "What should Briefly know about it?",
		Fields: []Field{
			{Name: "company_brief", Label: "Company brief"},
		},
	},
}

var ErrNoSteps = errors.New("wizard has no steps")

// Poster is the backend call the wizard submits through.
type Poster interface {
	FinaliseNewUser(ctx context.Context, fields map[string]string) error
}

type Wizard struct {
	steps   []Step
	current int
	values  map[string]string
}

func New(steps []Step) (*Wizard, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return &Wizard{steps: steps, values: make(map[string]string)}, nil
}

func (w *Wizard) Current() Step { return w.steps[w.current] }
func (w *Wizard) Index() int    { return w.current }
func (w *Wizard) Len() int      { return len(w.steps) }
func (w *Wizard) IsFirst() bool { return w.current == 0 }
func (w *Wizard) IsLast() bool  { return w.current == len(w.steps)-1 }

// Next advances one step; it is a no-op on the last step.
func (w *Wizard) Next() {
	if w.current < len(w.steps)-1 {
		w.current++
	}
}

// Prev goes back one step; it is a no-op on the first step.
func (w *Wizard) Prev() {
	if w.current > 0 {
		w.current--
	}
}

// Progress is the completion percentage for the progress bar.
func (w *Wizard) Progress() float64 {
	return float64(w.current+1) / float64(len(w.steps)) * 100
}

func (w *Wizard) Set(name, value string) {
	w.values[name] = value
}

func (w *Wizard) Value(name string) string {
	return w.values[name]
}

// Values collects every field of every step. Fields never filled in are
// sent as empty strings.
func (w *Wizard) Values() map[string]string {
	out := make(map[string]string)
	for _, step := range w.steps {
		for _, f := range step.Fields {
			out[f.Name] = w.values[f.Name]
		}
	}
	return out
}

func (w *Wizard) Submit(ctx context.Context, p Poster) error {
	return p.FinaliseNewUser(ctx, w.Values())
}
