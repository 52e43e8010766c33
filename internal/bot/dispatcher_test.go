package bot

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/core"
	"finbot/internal/ledger"
	applog "finbot/internal/log"
	"finbot/internal/metrics"
	"finbot/internal/storage/memory"
)

type stubAdvisor struct {
	questions []string
}

func (s *stubAdvisor) Respond(_ context.Context, _ int64, _ string, question string) string {
	s.questions = append(s.questions, question)
	return "advice: " + question
}

type failingLedger struct {
	Ledger
}

func (failingLedger) RegisterUser(context.Context, int64, string) error {
	return core.StorageError("register_user", errors.New("disk I/O error"))
}

type fixture struct {
	d       *Dispatcher
	svc     *ledger.Service
	advisor *stubAdvisor
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	svc := ledger.NewService(memory.New(), ledger.WithLocation(time.UTC))
	adv := &stubAdvisor{}
	m := metrics.New()
	return fixture{
		d:       NewDispatcher(svc, adv, ledger.NewFormatter("R$", time.UTC), m, nil),
		svc:     svc,
		advisor: adv,
		metrics: m,
	}
}

func (f fixture) send(text string) string {
	return f.d.Handle(context.Background(), Message{UserID: 42, ChatID: 42, DisplayName: "Ana", Text: text})
}

func TestDispatcher_LedgerScenario(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "✅ Income recorded (id: 1) — R$2000.00", f.send("/income 2000 Salary"))
	assert.Equal(t, "💰 Your current balance: R$2000.00", f.send("/balance"))

	assert.Equal(t, "✅ Expense recorded (id: 2) — R$50.00", f.send("/expense 50 Groceries"))
	assert.Equal(t, "💰 Your current balance: R$1950.00", f.send("/saldo"))

	list := f.send("/list")
	assert.Contains(t, list, "2. ")
	assert.Contains(t, list, "📉 Expense: R$50.00 — Groceries")

	assert.Equal(t, "✅ Transaction 2 deleted.", f.send("/delete 2"))
	assert.Equal(t, "💰 Your current balance: R$2000.00", f.send("/balance"))
	assert.Equal(t, deleteMissingReply, f.send("/delete 2"))
}

func TestDispatcher_InvalidAmountCreatesNothing(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "Invalid amount. Example: /income 1500 Salary", f.send("/income abc"))
	assert.Equal(t, ledger.NoTransactionsMessage, f.send("/list"))
	assert.Equal(t, "💰 Your current balance: R$0.00", f.send("/balance"))
}

func TestDispatcher_DeleteOtherUsersTransaction(t *testing.T) {
	f := newFixture(t)
	f.send("/income 10")

	reply := f.d.Handle(context.Background(), Message{UserID: 7, ChatID: 7, Text: "/delete 1"})
	assert.Equal(t, deleteMissingReply, reply)
	assert.Equal(t, "💰 Your current balance: R$10.00", f.send("/balance"))
}

func TestDispatcher_StaticReplies(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, welcomeReply, f.send("/start"))
	assert.Equal(t, helpReply, f.send("/help"))
	assert.Equal(t, ledger.NoTransactionsMessage, f.send("/statement_day"))
}

type userLog struct {
	ledger.Store
	users []core.User
}

func (l *userLog) RegisterUser(ctx context.Context, u core.User) error {
	l.users = append(l.users, u)
	return l.Store.RegisterUser(ctx, u)
}

func TestDispatcher_StartRegistersUser(t *testing.T) {
	store := &userLog{Store: memory.New()}
	svc := ledger.NewService(store)
	d := NewDispatcher(svc, &stubAdvisor{}, ledger.NewFormatter("R$", nil), nil, nil)

	d.Handle(context.Background(), Message{UserID: 9, DisplayName: "Bia", Text: "/start"})

	require.Len(t, store.users, 1)
	assert.Equal(t, int64(9), store.users[0].ID)
	assert.Equal(t, "Bia", store.users[0].DisplayName)
}

func TestDispatcher_FreeTextGoesToAdvisor(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "advice: should I buy a car?", f.send("should I buy a car?"))
	assert.Equal(t, "advice: /whatever", f.send("/whatever"))
	assert.Equal(t, []string{"should I buy a car?", "/whatever"}, f.advisor.questions)
}

func TestDispatcher_StorageFailure(t *testing.T) {
	d := NewDispatcher(failingLedger{}, &stubAdvisor{}, ledger.NewFormatter("R$", nil), nil, nil)

	reply := d.Handle(context.Background(), Message{UserID: 1, Text: "/balance"})
	assert.Equal(t, storageFailureReply, reply)
}

func TestDispatcher_FailureLogCarriesUpdateID(t *testing.T) {
	var buf bytes.Buffer
	updateLogger := applog.New(applog.Config{Output: &buf}).With(applog.FieldUpdateID, 99)
	ctx := applog.WithContext(context.Background(), updateLogger)

	d := NewDispatcher(failingLedger{}, &stubAdvisor{}, ledger.NewFormatter("R$", nil), nil, applog.Discard())
	d.Handle(ctx, Message{UserID: 1, Text: "/balance"})

	line := buf.String()
	require.True(t, strings.Contains(line, "Command failed"), line)
	assert.Contains(t, line, "update_id=99")
	assert.Contains(t, line, "component=bot")
}
