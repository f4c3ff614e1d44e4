package webhook

// delivery is the body Messenger posts to the webhook.
type delivery struct {
	Object string  `json:"object"`
	Entry  []entry `json:"entry"`
}

type entry struct {
	ID        string      `json:"id"`
	Time      int64       `json:"time"`
	Messaging []messaging `json:"messaging"`
}

type messaging struct {
	Sender    participant `json:"sender"`
	Recipient participant `json:"recipient"`
	Timestamp int64       `json:"timestamp"`
	Message   *message    `json:"message,omitempty"`
	Postback  *postback   `json:"postback,omitempty"`
}

type participant struct {
	ID string `json:"id"`
}

type message struct {
	MID        string      `json:"mid"`
	Text       string      `json:"text"`
	IsEcho     bool        `json:"is_echo"`
	QuickReply *quickReply `json:"quick_reply,omitempty"`
}

type quickReply struct {
	Payload string `json:"payload"`
}

type postback struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}
