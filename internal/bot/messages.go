package bot

const welcomeText = "Welcome to the clan roster bot!\n\n" +
	"Use /register to apply for membership.\n" +
	"Use /help to see all available commands."

const helpText = "Available commands:\n\n" +
	"/register - apply for clan membership\n" +
	"/cancel - abort the current operation\n" +
	"/help - show this message"

const adminHelpText = "\n\nAdministrator commands:\n\n" +
	"/approve <actor_id> - approve a pending application\n" +
	"/reject <actor_id> - reject a pending application\n" +
	"/exclude @handle <reason> - remove a member from the roster\n" +
	"/add @handle <nickname> - add a member directly\n" +
	"/pending - list open applications\n" +
	"/members - list the roster"

const unknownCommandText = "Unknown command. Use /help to see available commands."

const adminOnlyText = "This command is available only to the clan administrator."

const genericFailureText = "Something went wrong. Please try again later."

const rateLimitedFmt = "You are sending messages too fast. Please wait %d seconds and try again."
