package app

import (
	"context"

	"hotelapp_web/internal/domain"
)

// Confirmer asks the user before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Always is a Confirmer for callers that confirmed up front.
var Always = ConfirmFunc(func(context.Context, string) bool { return true })

// Confirmation carries a request's answer to a confirm prompt. Prompt is
// filled with the question that was asked.
type Confirmation struct {
	Answer bool
	Prompt string
}

type confirmKey struct{}

func WithConfirmation(ctx context.Context, c *Confirmation) context.Context {
	return context.WithValue(ctx, confirmKey{}, c)
}

// FromContext answers prompts from the Confirmation in ctx, declining when
// there is none.
var FromContext = ConfirmFunc(func(ctx context.Context, prompt string) bool {
	c, ok := ctx.Value(confirmKey{}).(*Confirmation)
	if !ok {
		return false
	}
	c.Prompt = prompt
	return c.Answer
})

// Invalidator drops cached reads of a hotel after it changed.
type Invalidator interface {
	Invalidate(ctx context.Context, hotelID int64)
}

// NoFilters is the filter set of lists that have none.
type NoFilters struct{}

// FormState is what a create or edit surface shows besides its fields.
type FormState struct {
	Error string `json:"error,omitempty"`
	OK    string `json:"ok,omitempty"`
}

// removeRow deletes one row after confirmation. When the row was the last
// one on a page past the first, the list steps back a page.
func removeRow[F any, T Row](ctx context.Context, list *SearchController[F, T], c Confirmer, prompt string, del func(context.Context) error) (bool, error) {
	if c == nil || !c.Confirm(ctx, prompt) {
		return false, nil
	}
	before := list.Page()
	if err := del(ctx); err != nil {
		return false, err
	}
	target := before.Number
	if len(before.Content) <= 1 && before.Number > 0 {
		target--
	}
	return true, settled(list.GoTo(ctx, target))
}

// settled filters the error of the reload that follows a mutation the
// backend already accepted. The list keeps its own error for display, so
// only an expired session is passed on.
func settled(reloadErr error) error {
	if domain.KindOf(reloadErr) == domain.KindUnauthorized {
		return reloadErr
	}
	return nil
}

// notice re-labels a failure with a fixed user message, keeping its kind.
func notice(err error, msg string) error {
	kind := domain.KindOf(err)
	if kind == "" {
		kind = domain.KindRequestFailed
	}
	if kind == domain.KindUnauthorized || kind == domain.KindValidationFailed {
		return err
	}
	return domain.WrapError(kind, domain.Message(err, msg), err)
}

// relabel replaces the message of a failure whatever it said.
func relabel(err error, msg string) error {
	kind := domain.KindOf(err)
	if kind == "" {
		kind = domain.KindRequestFailed
	}
	return domain.WrapError(kind, msg, err)
}
