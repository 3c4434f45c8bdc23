// Package notify renders notification events into user-facing messages and
// recovers the structured event from a previously rendered message.
//
// Messages are always rendered and stored in their canonical English form;
// translation happens only at the display edge (see Localize). Recovery keys
// off the fixed English fragments surrounding the quoted job title, so a
// stored message survives any number of display-language switches without
// being rewritten.
package notify

import "strings"

// Kind enumerates the recognized notification event categories.
type Kind string

const (
	KindIssueCreated  Kind = "issue_created"
	KindIssueQuoted   Kind = "issue_quoted"
	KindOfferAccepted Kind = "offer_accepted"
	KindOfferRejected Kind = "offer_rejected"

	// KindOfferAcceptedUpdate is the second surface variant of the accepted
	// message. It shares the "Congrats" edge marker with KindOfferAccepted
	// but carries a distinct tail; it is still recognized on recovery of
	// older stored messages.
	KindOfferAcceptedUpdate Kind = "offer_accepted_update"
)

// template splits a canonical message into the fragments before and after the
// quoted job title. Render produces start + `"` + title + `"` + end.
type template struct {
	start string
	end   string
}

var templates = map[Kind]template{
	KindIssueCreated:        {start: `Your issue titled `, end: ` has been created successfully.`},
	KindIssueQuoted:         {start: `Your issue titled `, end: ` has received a new quote.`},
	KindOfferAccepted:       {start: `Congrats! Your quote for the job `, end: ` has been accepted. The job is now in progress.`},
	KindOfferAcceptedUpdate: {start: `Congrats! Your quote for the job `, end: ` has been accepted. Work starts now.`},
	KindOfferRejected:       {start: `Sorry! Your quote for the job `, end: ` has been rejected.`},
}

// kindOrder fixes the matching order during recovery so classification is
// deterministic. Longer tails come first so no tail shadows another.
var kindOrder = []Kind{
	KindOfferAccepted,
	KindOfferAcceptedUpdate,
	KindOfferRejected,
	KindIssueCreated,
	KindIssueQuoted,
}

// Known reports whether k is a recognized notification kind.
func Known(k Kind) bool {
	_, ok := templates[k]
	return ok
}

// Render produces the canonical English message for an event. The title is
// substituted literally and is NOT escaped: a title containing a double-quote
// character renders fine but makes Recover ambiguous. That is a documented
// edge case, not something Render papers over.
func Render(kind Kind, title string) string {
	tpl, ok := templates[kind]
	if !ok {
		return `"` + title + `"`
	}
	return tpl.start + `"` + title + `"` + tpl.end
}

// Recover extracts the (kind, title) pair from a rendered message. The title
// is the substring between the first and last double quote; the fragments
// outside the quotes are classified against the known template edges. The
// third result is false when the message carries no quoted title or when
// neither fragment matches a template — a lossy but non-fatal outcome.
func Recover(message string) (Kind, string, bool) {
	_, title, after, ok := splitQuoted(message)
	if !ok {
		return "", "", false
	}
	// The tail alone decides the kind: every tail is unique while start
	// markers are shared between kinds, so the prefix carries no extra
	// information.
	kind := classifyTail(after)
	if kind == "" {
		return "", title, false
	}
	return kind, title, true
}

// splitQuoted cuts a message at the first and last double quote.
func splitQuoted(message string) (before, title, after string, ok bool) {
	i := strings.Index(message, `"`)
	j := strings.LastIndex(message, `"`)
	if i < 0 || j <= i {
		return "", "", "", false
	}
	return message[:i], message[i+1 : j], message[j+1:], true
}

func classifyTail(after string) Kind {
	trimmed := strings.TrimSpace(after)
	for _, k := range kindOrder {
		if trimmed == strings.TrimSpace(templates[k].end) {
			return k
		}
	}
	// Tolerate trailing junk appended by older clients.
	for _, k := range kindOrder {
		if strings.Contains(after, strings.TrimSpace(templates[k].end)) {
			return k
		}
	}
	return ""
}
