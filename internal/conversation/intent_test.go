package conversation

import "testing"

func TestClassifyPrecedence(t *testing.T) {
	active := Session{Step: StepAwaitingQuantity}

	cases := []struct {
		name  string
		text  string
		sess  Session
		want  Intent
		token string
	}{
		{name: "greeting starts browse", text: "Hi", want: IntentBrowse},
		{name: "events keyword starts browse", text: "what events are on?", want: IntentBrowse},
		{name: "anything starts browse when idle", text: "howzit", want: IntentBrowse},
		{name: "prefixed code interrupts", text: "check ticket ABCD1234EF", sess: active, want: IntentCheckStatus, token: "ABCD1234EF"},
		{name: "qr keyword interrupts", text: "qr: X9Y8Z7W6", sess: active, want: IntentCheckStatus, token: "X9Y8Z7W6"},
		{name: "bare mixed code interrupts", text: "A1B2C3D4", sess: active, want: IntentCheckStatus, token: "A1B2C3D4"},
		{name: "long digit run is not a code", text: "0821234567", sess: active, want: IntentContinue},
		{name: "email is not a code", text: "jane123@example.com", sess: Session{Step: StepAwaitingDetails}, want: IntentContinue},
		{name: "quantity with tickets word stays in flow", text: "3 tickets", sess: active, want: IntentContinue},
		{name: "browse words restart without digits", text: "show me events", sess: active, want: IntentBrowse},
		{name: "plain number continues", text: "2", sess: Session{Step: StepList}, want: IntentContinue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.text, tc.sess)
			if got.Intent != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.text, got.Intent, tc.want)
			}
			if got.Token != tc.token {
				t.Fatalf("Classify(%q) token = %q, want %q", tc.text, got.Token, tc.token)
			}
		})
	}
}

func TestExtractTicketToken(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"ticket ABCD1234EF", "ABCD1234EF"},
		{"id TICKET-A1B2", "TICKET-A1B2"},
		{"is my ticket A7K9Q2 valid?", "A7K9Q2"},
		{"hello there", ""},
		{"123456", ""},
		{"ABCDEF", ""},
		{"jane123@example.com please", ""},
	}
	for _, tc := range cases {
		if got := extractTicketToken(tc.text); got != tc.want {
			t.Fatalf("extractTicketToken(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
