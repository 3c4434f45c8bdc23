package notify

import "strings"

// Locale selects the display language for localized notification text. It is
// passed explicitly to Localize; there is no process-wide locale state.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleGerman  Locale = "de"
)

// DefaultLocale is used when a request carries no usable Accept-Language.
const DefaultLocale = LocaleEnglish

// ParseLocale maps a language tag to a supported locale, falling back to
// English for anything unrecognized.
func ParseLocale(tag string) Locale {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_;,"); i >= 0 {
		tag = tag[:i]
	}
	switch Locale(tag) {
	case LocaleGerman:
		return LocaleGerman
	default:
		return DefaultLocale
	}
}

// Phrase keys. Start keys are shared between kinds that open with the same
// English marker; end keys are one per kind.
const (
	phraseStartIssue    = "start.issue_titled"
	phraseStartCongrats = "start.congrats_quote"
	phraseStartSorry    = "start.sorry_quote"

	phraseEndCreated        = "end.issue_created"
	phraseEndQuoted         = "end.issue_quoted"
	phraseEndAccepted       = "end.offer_accepted"
	phraseEndAcceptedUpdate = "end.offer_accepted_update"
	phraseEndRejected       = "end.offer_rejected"
)

var catalog = map[Locale]map[string]string{
	LocaleEnglish: {
		phraseStartIssue:    "Your issue titled",
		phraseStartCongrats: "Congrats! Your quote for the job",
		phraseStartSorry:    "Sorry! Your quote for the job",

		phraseEndCreated:        "has been created successfully.",
		phraseEndQuoted:         "has received a new quote.",
		phraseEndAccepted:       "has been accepted. The job is now in progress.",
		phraseEndAcceptedUpdate: "has been accepted. Work starts now.",
		phraseEndRejected:       "has been rejected.",
	},
	LocaleGerman: {
		phraseStartIssue:    "Ihre Anfrage mit dem Titel",
		phraseStartCongrats: "Glückwunsch! Ihr Angebot für den Auftrag",
		phraseStartSorry:    "Leider wurde Ihr Angebot für den Auftrag",

		phraseEndCreated:        "wurde erfolgreich erstellt.",
		phraseEndQuoted:         "hat ein neues Angebot erhalten.",
		phraseEndAccepted:       "wurde angenommen. Der Auftrag ist jetzt in Bearbeitung.",
		phraseEndAcceptedUpdate: "wurde angenommen. Die Arbeit beginnt jetzt.",
		phraseEndRejected:       "abgelehnt.",
	},
}

// Localize re-renders a stored English message in the requested locale. The
// start and end fragments are classified independently, per the historical
// parse contract: an unmatched fragment resolves to the empty phrase, so the
// worst case degrades to the bare title framed by quotes. A message with no
// quoted title is returned unchanged.
func Localize(loc Locale, message string) string {
	before, title, after, ok := splitQuoted(message)
	if !ok {
		return message
	}

	startKey := classifyStart(before)
	endKey := classifyEnd(after)

	out := translate(loc, startKey) + ` "` + title + `" ` + translate(loc, endKey)
	return strings.TrimSpace(out)
}

func classifyStart(before string) string {
	switch {
	case strings.HasPrefix(before, "Your issue titled"):
		return phraseStartIssue
	case strings.HasPrefix(before, "Congrats"):
		return phraseStartCongrats
	case strings.HasPrefix(before, "Sorry"):
		return phraseStartSorry
	}
	return ""
}

func classifyEnd(after string) string {
	switch classifyTail(after) {
	case KindIssueCreated:
		return phraseEndCreated
	case KindIssueQuoted:
		return phraseEndQuoted
	case KindOfferAccepted:
		return phraseEndAccepted
	case KindOfferAcceptedUpdate:
		return phraseEndAcceptedUpdate
	case KindOfferRejected:
		return phraseEndRejected
	}
	return ""
}

func translate(loc Locale, key string) string {
	if key == "" {
		return ""
	}
	phrases, ok := catalog[loc]
	if !ok {
		phrases = catalog[DefaultLocale]
	}
	return phrases[key]
}
