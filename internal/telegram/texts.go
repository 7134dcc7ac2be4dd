package telegram

// UI texts in English
const (
	helpText = "👋 I am littleYBJ, your little helper! Commands:\n\n" +
		"## <Commands>\n" +
		"1. /help — this list\n" +
		"2. /hello — say hi\n" +
		"3. /mail [keyword...] — check mail now (the mail timers do this automatically)\n" +
		"4. /coursemail — recent course mail with labels\n" +
		"5. /timers — list all timers (mail timers query mail instead of pinging you)\n" +
		"6. /addtimer <name> <HH:MM> — add a personal timer\n" +
		"7. /settimer <name> <HH:MM> — change a timer's time\n" +
		"8. /deltimer <name> [name...] — delete personal timers\n" +
		"9. /ideas — list saved ideas\n" +
		"10. /idea <text> — save an idea (free text in the idea chat works too)\n" +
		"11. /delidea <title> — delete an idea"

	helloText = "Hello! I am littleYBJ, your little helper! What can I do for you?"

	timerListTitle = "## <All running timers>\n"
	ideaListTitle  = "## <Ideas>\n"
	noIdeasText    = "No ideas saved yet!"

	ideaExistsText = "❌ That idea already exists!"
	ideaSavedText  = "✅ Idea saved."

	mailCheckDoneText   = "📭 Mail check finished."
	mailFetchFailedText = "❌ Could not reach the mailbox; skipping this check."
	storeFailedText     = "❌ The record store did not respond. Try again later."
)
