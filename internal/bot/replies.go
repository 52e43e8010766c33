package bot

const (
	welcomeReply = "Hello! 👋 I am your personal finance assistant.\n" +
		"Use /help to see the available commands."

	helpReply = "📘 Help — Personal Finance Bot\n\n" +
		"/income <amount> [description] — record an income. Ex: /income 2000 Salary\n" +
		"/expense <amount> [description] — record an expense. Ex: /expense 50 Groceries\n" +
		"/balance — show your current balance\n" +
		"/list — list your latest transactions (with IDs)\n" +
		"/delete <id> — delete the transaction with that ID (see /list)\n" +
		"/statement_day — today's statement\n" +
		"/statement_week — statement for the last 7 days\n" +
		"/statement_month — statement for the current month\n" +
		"Portuguese aliases work too: /receita, /gasto, /saldo, /listar, /apagar, /extrato_dia, /extrato_semana, /extrato_mes.\n" +
		"You can also send free-form questions about your finances and I will answer with practical tips."

	deleteMissingReply = "Transaction not found or does not belong to you."

	// storageFailureReply hides storage details from users.
	storageFailureReply = "⚠️ Sorry, I could not access your data right now. Please try again later."
)
