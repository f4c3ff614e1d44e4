package bot

import "strings"

// Event is one inbound Messenger event.
type Event struct {
	SenderID          string
	Text              string
	QuickReplyPayload string
	PostbackPayload   string
}

// Kind names the event for routing and metrics.
func (e Event) Kind() string {
	switch {
	case e.QuickReplyPayload != "":
		return "quick_reply"
	case e.PostbackPayload != "":
		return "postback"
	case strings.TrimSpace(e.Text) != "":
		return "message"
	default:
		return "other"
	}
}
