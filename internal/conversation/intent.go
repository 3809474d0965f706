package conversation

import (
	"regexp"
	"strings"
)

// Intent is the coarse classification of one inbound message. The
// classifier never interprets step-specific values ("2" can mean an
// event, a ticket type or a quantity); that resolution belongs to the
// state machine, which knows the current step.
type Intent string

const (
	// IntentCheckStatus interrupts any flow to look up a ticket code.
	IntentCheckStatus Intent = "check-status"
	// IntentBrowse starts (or restarts) event browsing.
	IntentBrowse Intent = "start-browse"
	// IntentContinue defers interpretation to the current step.
	IntentContinue Intent = "continue-flow"
)

// Classification is the classifier verdict plus any extracted token.
type Classification struct {
	Intent Intent
	Token  string
}

// prefixedCodeRe matches a code explicitly introduced by a ticket/qr/id
// keyword; the keyword removes ambiguity so any alphanumeric token of 6+
// characters qualifies.
var prefixedCodeRe = regexp.MustCompile(`(?i)\b(?:ticket|qr|id)\b[^A-Za-z0-9]*([A-Za-z0-9-]{6,})`)

// bareCodeRe matches a candidate code with no introducing keyword.
var bareCodeRe = regexp.MustCompile(`\b([A-Za-z0-9-]{6,})\b`)

// emailRe recognises an email-shaped token. Shared with the details
// step; the code extractor strips emails first so a local-part like
// "jane123" is never mistaken for a ticket code.
var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

var greetWords = map[string]struct{}{
	"hi":    {},
	"hello": {},
	"hey":   {},
	"start": {},
	"menu":  {},
}

var browsePrefixes = []string{"event", "ticket", "show", "list", "browse"}

// Classify applies the fixed precedence: ticket-code check first (it may
// interrupt any flow), then greeting/browse, then continue-flow. A
// mid-flow message carrying digits stays in the flow even when it also
// contains a browse word ("3 tickets" is a quantity, not a restart).
func Classify(text string, sess Session) Classification {
	if token := extractTicketToken(text); token != "" {
		return Classification{Intent: IntentCheckStatus, Token: token}
	}
	if !sess.Active() {
		return Classification{Intent: IntentBrowse}
	}
	if containsBrowseKeyword(text) && !hasDigit(text) {
		return Classification{Intent: IntentBrowse}
	}
	return Classification{Intent: IntentContinue}
}

// extractTicketToken finds a ticket-code-like token. Bare tokens must
// mix letters and digits; a long digit run on its own is more plausibly
// a quantity or a phone fragment than a code, and the threshold errs
// conservative per the keyword-less path.
func extractTicketToken(text string) string {
	text = emailRe.ReplaceAllString(text, " ")
	if m := prefixedCodeRe.FindStringSubmatch(text); len(m) == 2 {
		return m[1]
	}
	for _, m := range bareCodeRe.FindAllStringSubmatch(text, -1) {
		token := m[1]
		if hasLetter(token) && hasDigit(token) {
			return token
		}
	}
	return ""
}

func containsBrowseKeyword(text string) bool {
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(raw, ".,!?:;'\"")
		if _, ok := greetWords[word]; ok {
			return true
		}
		for _, prefix := range browsePrefixes {
			if strings.HasPrefix(word, prefix) {
				return true
			}
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
