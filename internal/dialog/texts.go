package dialog

// User-facing copy, kept in one place so the flow code stays readable.
const (
	textWelcome        = "Welcome to Premium ImmigrationBot!"
	textSelectCategory = "Service Categories"
	textChooseCategory = "Select a category below"
	textSelectSub      = "Sub-Services"
	textChooseSubFmt   = "Select a service in %s"
	textProgressFmt    = "Question %d/%d"
	textCaseFmt        = "Thank you! Your case ID is %s."
	textDocListFmt     = "Personalized Document Checklist for %s:\n%s"
	textFAQHeaderFmt   = "FAQs for %s"
	textFAQBody        = "Select a question"
	textFAQAnswerFmt   = "Q: %s\nA: %s"
	textAskPromptFmt   = "What would you like to know about the %s?"
	textFollowUp       = "Anything else I can help with?"
	textFallback       = "Sorry, didn't catch that. Type 'menu' to restart."
)

// Prompt tags identify which menu a fallback entry belongs to.
const (
	tagCategoryPicker   = "category-picker"
	tagSubServicePicker = "subservice-picker"
	tagFAQPicker        = "faq-picker"
	tagFollowUp         = "followup"
)

// Follow-up button ids, recognized while idle.
const (
	idFollowUpFAQ     = "followup_faq"
	idFollowUpAsk     = "followup_ask"
	idFollowUpRestart = "followup_restart"
)

var resetKeywords = []string{"hi", "menu", "restart", "start"}
