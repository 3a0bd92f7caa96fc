package stages

import (
	"context"

	"github.com/docsift/docsift/core/result"
)

// Formatter wraps content with structural markup for presentation. It is a
// pure local transform: it makes no collaborator calls and cannot fail;
// anything it does not recognise passes through untouched.
type Formatter struct{}

var _ Stage = (*Formatter)(nil)

// NewFormatter creates a Formatter.
func NewFormatter() *Formatter { return &Formatter{} }

// Name implements Stage.
func (f *Formatter) Name() string { return "format" }

// Run wraps Ok content with the response frame and relays anything else
// unchanged.
func (f *Formatter) Run(_ context.Context, input result.Outcome) result.Outcome {
	if !input.IsOK() {
		return input
	}

	return result.OK("FORMATTED RESPONSE\n" +
		"==================\n\n" +
		input.Text() +
		"\n\n---\n" +
		"Structured for readability; consistent sections and spacing applied.")
}
