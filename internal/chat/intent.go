package chat

import "strings"

// Intent is the closed set of recognized main-menu intentions. The legacy
// behavior of sprinkling keyword checks through the handlers is deliberately
// centralized here so the state machine stays exhaustively testable.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentMenu
	IntentGreet
	IntentBook
	IntentCheckTickets
	IntentCancel
	IntentAskElse
)

// politenessTokens are courtesy phrases that short-circuit the whole
// dispatcher: they are answered without touching the session or the
// inactivity clock.
var politenessTokens = map[string]struct{}{
	"thanks":    {},
	"thank you": {},
	"thankyou":  {},
	"thx":       {},
	"ok":        {},
	"okay":      {},
	"got it":    {},
	"cool":      {},
	"great":     {},
	"nice":      {},
	"welcome":   {},
}

// normalize lowercases, strips punctuation, and collapses whitespace.
func normalize(msg string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(msg)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ' || r == '\t' || r == '\n' || r == '-':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// isPoliteness reports whether the message is a bare courtesy phrase.
func isPoliteness(msg string) bool {
	_, ok := politenessTokens[normalize(msg)]
	return ok
}

// wantsRestart matches the unconditional restart keyword anywhere in the
// message, regardless of the current step.
func wantsRestart(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "restart")
}

// isGreeting matches the literal greeting-gate token.
func isGreeting(msg string) bool {
	return normalize(msg) == "hi"
}

// detectIntent maps free text to a recognized intent by normalized keyword
// matching. First match wins; the order keeps "cancel" from shadowing
// "book" and vice versa because their keyword sets are disjoint.
func detectIntent(msg string) Intent {
	n := normalize(msg)
	if n == "" {
		return IntentUnknown
	}

	contains := func(keywords ...string) bool {
		for _, kw := range keywords {
			if strings.Contains(n, kw) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("ask something else", "something else", "ask a question", "other question"):
		return IntentAskElse
	case contains("cancel"):
		return IntentCancel
	case contains("check my ticket", "my tickets", "my bookings", "show my ticket"):
		return IntentCheckTickets
	case contains("book"):
		return IntentBook
	case contains("main menu", "menu", "back"):
		return IntentMenu
	case n == "hi" || n == "hello" || n == "hey":
		return IntentGreet
	default:
		return IntentUnknown
	}
}
