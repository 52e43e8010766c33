package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"finbot/internal/core"
	"finbot/internal/ledger"
	applog "finbot/internal/log"
	"finbot/internal/metrics"
)

// Message is an inbound chat message, independent of the transport.
type Message struct {
	UserID      int64
	ChatID      int64
	MessageID   int
	DisplayName string
	Text        string
}

// Ledger is the set of accounting operations commands use.
type Ledger interface {
	RegisterUser(ctx context.Context, id int64, displayName string) error
	Record(ctx context.Context, userID int64, kind core.Kind, amount core.Money, description string) (core.Transaction, error)
	Delete(ctx context.Context, userID, txID int64) (bool, error)
	List(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
	Balance(ctx context.Context, userID int64) (core.Money, error)
	Statement(ctx context.Context, userID int64, window core.StatementWindow) ([]core.Transaction, error)
}

// Advisor answers free text. It must always return a reply.
type Advisor interface {
	Respond(ctx context.Context, userID int64, displayName, question string) string
}

type Dispatcher struct {
	ledger  Ledger
	advisor Advisor
	format  ledger.Formatter
	metrics *metrics.Metrics
	logger  *applog.Logger
}

func NewDispatcher(l Ledger, advisor Advisor, format ledger.Formatter, m *metrics.Metrics, logger *applog.Logger) *Dispatcher {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Dispatcher{
		ledger:  l,
		advisor: advisor,
		format:  format,
		metrics: m,
		logger:  logger.WithComponent(applog.ComponentBot),
	}
}

// Handle produces the reply for msg. Every failure is turned into a reply.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) string {
	d.metrics.Update()

	cmd, err := Parse(msg.Text)
	if err != nil {
		var usage *UsageError
		if errors.As(err, &usage) {
			d.metrics.Command(usage.Command, metrics.OutcomeUsage)
			d.logger.DebugContext(ctx, "Rejected malformed command",
				applog.FieldUserID, msg.UserID, applog.FieldCommand, usage.Command)
			return usage.Reply
		}
		return d.fail(ctx, msg, "unknown", err)
	}

	if ft, ok := cmd.(FreeText); ok {
		reply := d.advisor.Respond(ctx, msg.UserID, msg.DisplayName, ft.Text)
		d.metrics.Command(cmd.Name(), metrics.OutcomeOK)
		return reply
	}

	if err := d.ledger.RegisterUser(ctx, msg.UserID, msg.DisplayName); err != nil {
		return d.fail(ctx, msg, cmd.Name(), err)
	}

	reply, err := d.run(ctx, msg.UserID, cmd)
	if err != nil {
		return d.fail(ctx, msg, cmd.Name(), err)
	}
	d.metrics.Command(cmd.Name(), metrics.OutcomeOK)
	return reply
}

func (d *Dispatcher) run(ctx context.Context, userID int64, cmd Command) (string, error) {
	switch c := cmd.(type) {
	case Start:
		return welcomeReply, nil

	case Help:
		return helpReply, nil

	case Record:
		tx, err := d.ledger.Record(ctx, userID, c.Kind, c.Amount, c.Description)
		if err != nil {
			return "", err
		}
		d.metrics.Transaction(c.Kind.String())
		return fmt.Sprintf("✅ %s recorded (id: %d) — %s", c.Kind.Label(), tx.ID, d.format.Money(tx.Amount)), nil

	case Balance:
		bal, err := d.ledger.Balance(ctx, userID)
		if err != nil {
			return "", err
		}
		return "💰 Your current balance: " + d.format.Money(bal), nil

	case List:
		txs, err := d.ledger.List(ctx, userID, ledger.DefaultListLimit)
		if err != nil {
			return "", err
		}
		return d.format.Transactions(txs), nil

	case Delete:
		removed, err := d.ledger.Delete(ctx, userID, c.ID)
		if err != nil {
			return "", err
		}
		if !removed {
			return deleteMissingReply, nil
		}
		return "✅ Transaction " + strconv.FormatInt(c.ID, 10) + " deleted.", nil

	case Statement:
		txs, err := d.ledger.Statement(ctx, userID, c.Window)
		if err != nil {
			return "", err
		}
		return d.format.Transactions(txs), nil

	case FreeText:
		return "", fmt.Errorf("free text reached command runner")

	default:
		return "", fmt.Errorf("unhandled command %T", cmd)
	}
}

func (d *Dispatcher) fail(ctx context.Context, msg Message, command string, err error) string {
	d.metrics.Command(command, metrics.OutcomeError)
	d.logger.ForContext(ctx).ErrorContext(ctx, "Command failed",
		applog.FieldUserID, msg.UserID,
		applog.FieldChatID, msg.ChatID,
		applog.FieldCommand, command,
		applog.FieldErrorKind, core.KindOf(err).String(),
		applog.FieldError, err)

	var usage *UsageError
	if errors.As(err, &usage) {
		return usage.Reply
	}
	var ce *core.Error
	if errors.As(err, &ce) && ce.Kind == core.KindValidation && ce.Err != nil {
		return "Invalid input: " + ce.Err.Error()
	}
	return storageFailureReply
}
