package advice

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/core"
	"finbot/internal/ledger"
	applog "finbot/internal/log"
	"finbot/internal/ratelimit"
	"finbot/internal/storage/memory"
)

type fakeCompleter struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type brokenLedger struct{ Ledger }

func (brokenLedger) RegisterUser(context.Context, int64, string) error {
	return core.StorageError("register_user", errors.New("database is locked"))
}

func newResponder(t *testing.T, c Completer, opts ...Option) (*Responder, *ledger.Service) {
	t.Helper()
	svc := ledger.NewService(memory.New(), ledger.WithLocation(time.UTC))
	return NewResponder(svc, c, ledger.NewFormatter("R$", time.UTC), opts...), svc
}

func TestResponder_PromptWithoutHistory(t *testing.T) {
	c := &fakeCompleter{reply: "Save 10% of your income."}
	r, _ := newResponder(t, c)

	reply := r.Respond(context.Background(), 7, "Ana", "How do I save?")
	assert.Equal(t, "Save 10% of your income.", reply)
	require.Len(t, c.prompts, 1)
	assert.Equal(t, Persona+"\n\nUser's current balance: R$0.00\nRecent transactions:\nNone\n\nQuestion: How do I save?", c.prompts[0])
}

func TestResponder_PromptIncludesLedger(t *testing.T) {
	ctx := context.Background()
	c := &fakeCompleter{reply: "ok"}
	r, svc := newResponder(t, c)

	require.NoError(t, svc.RegisterUser(ctx, 7, "Ana"))
	for i := 0; i < 6; i++ {
		_, err := svc.Record(ctx, 7, core.Expense, core.Money{Cents: 100}, "coffee")
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, 7, core.Income, core.Money{Cents: 200000}, "salary")
	require.NoError(t, err)

	r.Respond(ctx, 7, "Ana", "Am I spending too much on coffee?")
	require.Len(t, c.prompts, 1)
	p := c.prompts[0]
	assert.Contains(t, p, "User's current balance: R$1994.00")
	assert.Contains(t, p, "📈 Income: R$2000.00 — salary")
	assert.Equal(t, 4, countOccurrences(p, "📉 Expense"), "only the five newest transactions are included")
	assert.Contains(t, p, "\n\nQuestion: Am I spending too much on coffee?")
}

func TestResponder_CompletionFailure(t *testing.T) {
	c := &fakeCompleter{err: core.CompletionError("complete", errors.New("quota exceeded"))}
	r, _ := newResponder(t, c)

	reply := r.Respond(context.Background(), 1, "x", "hi")
	assert.Equal(t, "Error generating a response: completion: complete: quota exceeded", reply)
}

func TestResponder_EmptyCompletion(t *testing.T) {
	r, _ := newResponder(t, &fakeCompleter{reply: "  \n"})
	reply := r.Respond(context.Background(), 1, "x", "hi")
	assert.Contains(t, reply, errorReplyPrefix)
	assert.Contains(t, reply, ErrEmptyCompletion.Error())
}

func TestResponder_StorageFailure(t *testing.T) {
	c := &fakeCompleter{reply: "unused"}
	r := NewResponder(brokenLedger{}, c, ledger.NewFormatter("R$", time.UTC))

	reply := r.Respond(context.Background(), 1, "x", "hi")
	assert.Equal(t, "Error generating a response: storage: register_user: database is locked", reply)
	assert.Empty(t, c.prompts)
}

func TestResponder_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 1})
	defer limiter.Stop()

	c := &fakeCompleter{reply: "ok"}
	r, _ := newResponder(t, c, WithLimiter(limiter))

	assert.Equal(t, "ok", r.Respond(context.Background(), 1, "x", "first"))
	assert.Equal(t, RateLimitedReply, r.Respond(context.Background(), 1, "x", "second"))
	assert.Equal(t, "ok", r.Respond(context.Background(), 2, "y", "other user"))
	assert.Len(t, c.prompts, 2)
}

func TestResponder_FailureLogCarriesUpdateID(t *testing.T) {
	var buf bytes.Buffer
	ctx := applog.WithContext(context.Background(),
		applog.New(applog.Config{Output: &buf}).With(applog.FieldUpdateID, 5))

	c := &fakeCompleter{err: core.CompletionError("complete", errors.New("quota exceeded"))}
	r, _ := newResponder(t, c, WithLogger(applog.Discard()))
	r.Respond(ctx, 1, "x", "hi")

	assert.Contains(t, buf.String(), "Advice request failed")
	assert.Contains(t, buf.String(), "update_id=5")
	assert.Contains(t, buf.String(), "component=advice")
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
