// Package advice answers free-text questions with a completion service,
// using the sender's ledger as context.
package advice

import (
	"context"
	"strconv"
	"strings"
	"time"

	"finbot/internal/core"
	"finbot/internal/ledger"
	applog "finbot/internal/log"
	"finbot/internal/metrics"
	"finbot/internal/ratelimit"
)

// Persona is prepended to every prompt.
const Persona = "You are a personal finance assistant. Answer clearly, practically and in a friendly tone. " +
	"Suggest concrete everyday actions. Do not give professional financial advice; explain simple steps."

const (
	recentLimit = 5

	RateLimitedReply = "You are sending questions too fast. Please wait a minute and try again."
	errorReplyPrefix = "Error generating a response: "
)

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Ledger is the part of ledger.Service the responder reads.
type Ledger interface {
	RegisterUser(ctx context.Context, id int64, displayName string) error
	Balance(ctx context.Context, userID int64) (core.Money, error)
	List(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
}

type Responder struct {
	ledger    Ledger
	completer Completer
	format    ledger.Formatter
	limiter   *ratelimit.Limiter
	metrics   *metrics.Metrics
	logger    *applog.Logger
}

type Option func(*Responder)

// WithLimiter caps completion requests per user.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(r *Responder) { r.limiter = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Responder) { r.metrics = m }
}

func WithLogger(l *applog.Logger) Option {
	return func(r *Responder) {
		if l != nil {
			r.logger = l.WithComponent(applog.ComponentAdvice)
		}
	}
}

func NewResponder(l Ledger, c Completer, format ledger.Formatter, opts ...Option) *Responder {
	r := &Responder{
		ledger:    l,
		completer: c,
		format:    format,
		logger:    applog.Discard().WithComponent(applog.ComponentAdvice),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond always returns a reply; failures are rendered as an error message.
func (r *Responder) Respond(ctx context.Context, userID int64, displayName, question string) string {
	if r.limiter != nil && !r.limiter.Allow(strconv.FormatInt(userID, 10)) {
		r.metrics.Completion(metrics.OutcomeRateLimited, 0)
		r.logger.ForContext(ctx).WarnContext(ctx, "Advice request rate limited", applog.FieldUserID, userID)
		return RateLimitedReply
	}

	if err := r.ledger.RegisterUser(ctx, userID, displayName); err != nil {
		return r.fail(ctx, userID, err)
	}
	prompt, err := r.buildPrompt(ctx, userID, question)
	if err != nil {
		return r.fail(ctx, userID, err)
	}

	start := time.Now()
	text, err := r.completer.Complete(ctx, prompt)
	took := time.Since(start)
	if err == nil && strings.TrimSpace(text) == "" {
		err = core.CompletionError(applog.OpComplete, ErrEmptyCompletion)
	}
	if err != nil {
		r.metrics.Completion(metrics.OutcomeError, took)
		return r.fail(ctx, userID, err)
	}

	r.metrics.Completion(metrics.OutcomeOK, took)
	r.logger.DebugContext(ctx, "Advice generated",
		applog.FieldUserID, userID, applog.FieldDuration, took.Milliseconds())
	return text
}

// buildPrompt renders persona, balance, recent transactions and the question.
func (r *Responder) buildPrompt(ctx context.Context, userID int64, question string) (string, error) {
	balance, err := r.ledger.Balance(ctx, userID)
	if err != nil {
		return "", err
	}
	recent, err := r.ledger.List(ctx, userID, recentLimit)
	if err != nil {
		return "", err
	}

	history := "None"
	if len(recent) > 0 {
		history = r.format.Transactions(recent)
	}

	var b strings.Builder
	b.WriteString(Persona)
	b.WriteString("\n\nUser's current balance: ")
	b.WriteString(r.format.Money(balance))
	b.WriteString("\nRecent transactions:\n")
	b.WriteString(history)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String(), nil
}

func (r *Responder) fail(ctx context.Context, userID int64, err error) string {
	r.logger.ForContext(ctx).ErrorContext(ctx, "Advice request failed",
		applog.FieldUserID, userID,
		applog.FieldError, err,
		applog.FieldErrorKind, core.KindOf(err).String())
	return ErrorReply(err)
}

// ErrorReply is the text sent when an answer could not be produced.
func ErrorReply(err error) string {
	return errorReplyPrefix + err.Error()
}
