package texts

const (
	Welcome = `🎉 Welcome to Birthday Reminder Bot!

I'll help you keep track of important birthdays with photos, categories, and automatic reminders.

<b>Available Commands:</b>
• /add - Add a birthday (interactive)
• /add_birthday Name YYYY-MM-DD [category] - Quick add
• /delete_birthday Name - Delete a birthday
• /update_birthday Name - Update birthday details
• /my_birthdays - View your birthdays
• /categories - View birthdays by category
• /birthdays_month MM - Birthdays in specific month
• /my_stats - Your detailed statistics
• /restore_birthday Name - Restore deleted birthday
• /set_timezone Area/City - Reminders in your local time
• /cancel - Cancel the current dialog

<b>Categories:</b> Love 💕, Family 👨‍👩‍👧‍👦, Relative 👥, Work 💼, Friend 👫, Other 🌟

<b>Example:</b>
<code>/add_birthday John 1995-09-27 family</code>

Let's get started! 🎂`

	UnknownCommand  = "❓ Unknown command /%s\nUse /help to see available commands."
	UseCommands     = "🤖 Use /help to see what I can do."
	Cancelled       = "👌 Cancelled."
	NothingToCancel = "Nothing to cancel."
	GenericError    = "❌ An error occurred. Please try again."
	AccessDenied    = "❌ Access denied. Admin only."

	AddFlowStart = "Let's add a birthday! 🎂\n\n" +
		"Please send the birthday details in this format:\n" +
		"<code>Name YYYY-MM-DD</code>\n\n" +
		"Example: <code>John Smith 1995-09-27</code>"
	AddFlowBadFormat      = "❌ Please use format: <code>Name YYYY-MM-DD</code>"
	AddFlowSelectCategory = "Great! Adding birthday for <b>%s</b> on <b>%s</b>\n\nPlease select a category:"
	AddFlowAskPhoto       = "<b>Category:</b> %s\n\nWould you like to add a photo?"
	AddFlowSendPhoto      = "📷 Please send a photo URL or type 'skip' to continue without a photo."
	AddFlowAskNotes       = "Would you like to add any notes about this person?"
	AddFlowSendNotes      = "📝 Please write your notes or type 'skip' to continue without notes."
	AddFlowExpired        = "⌛ This dialog has expired. Start again with /add."

	QuickAddUsage = "❌ Invalid format!\n\n" +
		"Use: <code>/add_birthday Name YYYY-MM-DD [category]</code>\n" +
		"Example: <code>/add_birthday John 1995-09-27 family</code>\n\n" +
		"Available categories: %s"
	DeleteUsage = "❌ Please specify a name!\n\n" +
		"Use: <code>/delete_birthday Name</code>\n" +
		"Example: <code>/delete_birthday John</code>"
	UpdateUsage = "❌ Please specify a name!\n\n" +
		"Use: <code>/update_birthday Name</code>\n" +
		"Then I'll guide you through the update process."
	RestoreUsage = "❌ Please specify a name!\n\n" +
		"Use: <code>/restore_birthday Name</code>\n" +
		"Example: <code>/restore_birthday John</code>"
	MonthUsage = "❌ Please specify a month!\n\n" +
		"Use: <code>/birthdays_month MM</code>\n" +
		"Example: <code>/birthdays_month 09</code> for September"
	MonthBadFormat  = "❌ Invalid month format. Use numbers 01-12."
	MonthOutOfRange = "❌ Month must be between 01 and 12."

	UpdateMenu = "<b>%s</b>\n" +
		"📅 Date: %s\n" +
		"🏷️ Category: %s\n" +
		"📷 Photo: %s\n" +
		"📝 Notes: %s\n\n" +
		"What would you like to update?"
	UpdateSendDate       = "📅 Please send the new date in format YYYY-MM-DD:"
	UpdateSelectCategory = "🏷️ Select new category:"
	UpdateSendPhoto      = "📷 Please send the new photo URL or 'remove' to delete current photo:"
	UpdateSendNotes      = "📝 Please send the new notes or 'remove' to delete current notes:"

	MyBirthdaysEmpty = "📝 You haven't added any birthdays yet!\n\n" +
		"Use /add for interactive adding or <code>/add_birthday Name YYYY-MM-DD</code> for quick add."
	MyBirthdaysHeader    = "🎂 <b>Your Birthdays:</b>\n\n"
	MyBirthdaysTruncated = "Too many birthdays to display all at once!"

	CategoriesMenu = "🏷️ <b>Birthday Categories</b>\n\nSelect a category to view birthdays:"
	CategoryHeader = "🏷️ <b>%s Birthdays:</b>\n\n"
	CategoryEmpty  = "📝 No birthdays found in category: %s"

	MonthHeader = "🗓️ <b>Birthdays in %s:</b>\n\n"
	MonthEmpty  = "📅 No birthdays in %s."

	StatsEmpty = "📊 No statistics available. Add some birthdays first!"

	TimezoneCurrent = "🕒 <b>Timezone Setting</b>\n\n" +
		"Current timezone: <b>%s</b>\n" +
		"Change it with <code>/set_timezone America/New_York</code>"
	TimezoneSet = "✅ Timezone set to <b>%s</b>. Reminders will follow your local date."

	AdminNoBirthdays    = "📝 No birthdays found in the database."
	AdminViewMenu       = "👑 <b>Admin: View Birthdays</b>\n\nChoose what to display:"
	AdminExportMenu     = "📊 <b>CSV Export Options:</b>\n\nChoose what to export:"
	AdminExporting      = "📊 Generating CSV export..."
	AdminNoExportData   = "📝 No data to export."
	AdminExportError    = "❌ Error exporting data."
	AdminAnalyticsWait  = "📊 Generating analytics report..."
	AdminUserStatsUsage = "❌ Please specify a user ID!\n\nUse: <code>/user_stats &lt;user_id&gt;</code>"
	AdminBadUserID      = "❌ Invalid user ID format."
	AdminBroadcastUsage = "❌ Please specify a message!\n\nUse: <code>/broadcast Your message here</code>"
	AdminCommandsList   = "\n<b>Available Commands:</b>\n" +
		"• /all_birthdays - View all birthdays\n" +
		"• /analytics - Detailed analytics\n" +
		"• /export_csv - Export data\n" +
		"• /user_stats &lt;id&gt; - User details\n" +
		"• /broadcast &lt;msg&gt; - Send message to all\n"

	ButtonAddPhoto    = "📷 Add Photo"
	ButtonSkipPhoto   = "✅ Skip Photo"
	ButtonAddNotes    = "📝 Add Notes"
	ButtonSkipNotes   = "✅ Skip Notes"
	ButtonDate        = "📅 Date"
	ButtonCategory    = "🏷️ Category"
	ButtonPhoto       = "📷 Photo"
	ButtonNotes       = "📝 Notes"
	ButtonActive      = "📊 Active Only"
	ButtonWithDeleted = "🗑️ Include Deleted"
	ButtonExportAll   = "🗂️ All Data"
)
