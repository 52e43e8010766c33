// Package bot turns chat messages into ledger commands and replies.
package bot

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"finbot/internal/core"
)

// Command is one of the variants below. The set is closed.
type Command interface {
	// Name is the canonical command name, used in logs and metrics.
	Name() string
	command()
}

type (
	Start struct{}
	Help  struct{}

	// Record adds an income or an expense.
	Record struct {
		Kind        core.Kind
		Amount      core.Money
		Description string
	}

	Balance struct{}
	List    struct{}

	Delete struct {
		ID int64
	}

	Statement struct {
		Window core.StatementWindow
	}

	// FreeText is anything that is not a known command.
	FreeText struct {
		Text string
	}
)

func (Start) Name() string    { return "start" }
func (Help) Name() string     { return "help" }
func (Balance) Name() string  { return "balance" }
func (List) Name() string     { return "list" }
func (Delete) Name() string   { return "delete" }
func (FreeText) Name() string { return "advice" }
func (c Record) Name() string { return "add-" + c.Kind.String() }
func (c Statement) Name() string {
	switch c.Window {
	case core.Last7Days:
		return "statement-week"
	case core.CurrentMonth:
		return "statement-month"
	default:
		return "statement-day"
	}
}

func (Start) command()     {}
func (Help) command()      {}
func (Record) command()    {}
func (Balance) command()   {}
func (List) command()      {}
func (Delete) command()    {}
func (Statement) command() {}
func (FreeText) command()  {}

// UsageError is a malformed command. Its message is the reply.
type UsageError struct {
	Command string
	Reply   string
}

func (e *UsageError) Error() string {
	return e.Reply
}

// Is makes errors.Is(err, core.ErrValidation) hold.
func (e *UsageError) Is(target error) bool {
	t, ok := target.(*core.Error)
	return ok && t.Kind == core.KindValidation && t.Op == ""
}

// Parse classifies text. Commands are case-insensitive and may carry an
// @botname suffix; unknown slash commands are free text.
func Parse(text string) (Command, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return FreeText{Text: text}, nil
	}

	head, rest := splitFirst(trimmed)
	name := strings.ToLower(head)
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}

	switch name {
	case "/start":
		return Start{}, nil
	case "/help", "/ajuda":
		return Help{}, nil
	case "/income", "/receita":
		return parseRecord(core.Income, name, rest)
	case "/expense", "/gasto":
		return parseRecord(core.Expense, name, rest)
	case "/balance", "/saldo":
		return Balance{}, nil
	case "/list", "/listar":
		return List{}, nil
	case "/delete", "/apagar":
		return parseDelete(name, rest)
	case "/statement_day", "/extrato_dia":
		return Statement{Window: core.Today}, nil
	case "/statement_week", "/extrato_semana":
		return Statement{Window: core.Last7Days}, nil
	case "/statement_month", "/extrato_mes":
		return Statement{Window: core.CurrentMonth}, nil
	default:
		return FreeText{Text: text}, nil
	}
}

func parseRecord(kind core.Kind, name, rest string) (Command, error) {
	cmd := Record{Kind: kind}
	if rest == "" {
		return nil, &UsageError{Command: cmd.Name(), Reply: "Usage: " + name + " <amount> [description]"}
	}

	amountText, description := splitFirst(rest)
	amount, err := core.ParseAmount(amountText)
	if err != nil {
		return nil, &UsageError{Command: cmd.Name(), Reply: "Invalid amount. Example: " + name + " " + example(kind)}
	}
	if utf8.RuneCountInString(description) > core.MaxDescriptionLen {
		return nil, &UsageError{Command: cmd.Name(), Reply: "Description too long (max 200 characters)."}
	}

	cmd.Amount = amount
	cmd.Description = description
	return cmd, nil
}

func parseDelete(name, rest string) (Command, error) {
	if rest == "" {
		return nil, &UsageError{Command: Delete{}.Name(), Reply: "Usage: " + name + " <id> (see /list to get the id)"}
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return nil, &UsageError{Command: Delete{}.Name(), Reply: "Invalid ID."}
	}
	return Delete{ID: id}, nil
}

func example(kind core.Kind) string {
	if kind == core.Income {
		return "1500 Salary"
	}
	return "12.50 Coffee"
}

// splitFirst returns the first whitespace-delimited token and the trimmed remainder.
func splitFirst(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
