package messenger

import "strings"

// Sender actions accepted by the Send API.
const (
	ActionMarkSeen  = "mark_seen"
	ActionTypingOn  = "typing_on"
	ActionTypingOff = "typing_off"
)

// Message is the message object of a Send API request.
type Message struct {
	Text         string       `json:"text,omitempty"`
	Attachment   *Attachment  `json:"attachment,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
}

// Attachment carries media or a structured template.
type Attachment struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// MediaPayload is the payload of an image attachment.
type MediaPayload struct {
	URL        string `json:"url"`
	IsReusable bool   `json:"is_reusable,omitempty"`
}

// TemplatePayload is the payload of a generic or button template.
type TemplatePayload struct {
	TemplateType string    `json:"template_type"`
	Text         string    `json:"text,omitempty"`
	Elements     []Element `json:"elements,omitempty"`
	Buttons      []Button  `json:"buttons,omitempty"`
}

// Element is one card of a generic template.
type Element struct {
	Title         string         `json:"title"`
	ImageURL      string         `json:"image_url,omitempty"`
	Subtitle      string         `json:"subtitle,omitempty"`
	DefaultAction *DefaultAction `json:"default_action,omitempty"`
	Buttons       []Button       `json:"buttons,omitempty"`
}

// DefaultAction is the tap target of a card.
type DefaultAction struct {
	Type               string `json:"type"`
	URL                string `json:"url"`
	WebviewHeightRatio string `json:"webview_height_ratio,omitempty"`
}

// Button is a web_url or postback button.
type Button struct {
	Type               string `json:"type"`
	Title              string `json:"title"`
	URL                string `json:"url,omitempty"`
	Payload            string `json:"payload,omitempty"`
	WebviewHeightRatio string `json:"webview_height_ratio,omitempty"`
}

// QuickReply is a suggested-reply chip.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// TextMessage builds a plain text message.
func TextMessage(text string) Message {
	return Message{Text: text}
}

// ImageMessage builds an image attachment message.
func ImageMessage(url string) Message {
	return Message{Attachment: &Attachment{Type: "image", Payload: MediaPayload{URL: url}}}
}

// GenericMessage builds a generic-template carousel.
func GenericMessage(elements []Element) Message {
	return Message{Attachment: &Attachment{
		Type:    "template",
		Payload: TemplatePayload{TemplateType: "generic", Elements: elements},
	}}
}

// ButtonMessage builds a button template.
func ButtonMessage(text string, buttons []Button) Message {
	return Message{Attachment: &Attachment{
		Type:    "template",
		Payload: TemplatePayload{TemplateType: "button", Text: text, Buttons: buttons},
	}}
}

// QuickReplyMessage builds a text message with quick replies.
func QuickReplyMessage(text string, replies []QuickReply) Message {
	return Message{Text: text, QuickReplies: replies}
}

// URLButton builds a web_url button.
func URLButton(title, url string) Button {
	return Button{Type: "web_url", Title: title, URL: url}
}

// PostbackButton builds a postback button.
func PostbackButton(title, payload string) Button {
	return Button{Type: "postback", Title: title, Payload: payload}
}

// TextQuickReply builds a text quick reply.
func TextQuickReply(title, payload string) QuickReply {
	return QuickReply{ContentType: "text", Title: title, Payload: payload}
}

// TallWebview is a default action opening url in a tall webview.
func TallWebview(url string) *DefaultAction {
	return &DefaultAction{Type: "web_url", URL: url, WebviewHeightRatio: "tall"}
}

// UserProfile is the subset of the User Profile API the bot reads.
type UserProfile struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic"`
}

// DisplayName returns the best available name for greetings.
func (p *UserProfile) DisplayName() string {
	if p == nil {
		return "bạn"
	}
	if p.Name != "" {
		return p.Name
	}
	if full := strings.TrimSpace(p.FirstName + " " + p.LastName); full != "" {
		return full
	}
	return "bạn"
}

type recipient struct {
	ID string `json:"id"`
}

type sendRequest struct {
	Recipient    recipient `json:"recipient"`
	Message      *Message  `json:"message,omitempty"`
	SenderAction string    `json:"sender_action,omitempty"`
}

// graphError is the error envelope returned by the Graph API.
type graphError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}
