package messenger

import (
	"context"
	"fmt"
)

// Postback payloads of the page-level entry points.
const (
	PayloadGetStarted       = "GET_STARTED"
	PayloadRestartBot       = "RESTART_BOT"
	PayloadToggleBot        = "TOGGLE_BOT"
	PayloadBotBuy           = "BOT_BUY"
	PayloadListFont         = "LIST_FONT"
	PayloadListFontImage    = "LIST_FONT_IMAGE"
	PayloadListFontImageEnd = "LIST_FONT_IMAGE_END"
	PayloadBotTutorial      = "BOT_TUTORIAL"
	PayloadPriceService     = "PRICE_SERVICE"
)

// ProfileSettings is the body of a Messenger Profile API request.
type ProfileSettings struct {
	GetStarted     *GetStarted      `json:"get_started,omitempty"`
	Greeting       []Greeting       `json:"greeting,omitempty"`
	PersistentMenu []PersistentMenu `json:"persistent_menu,omitempty"`
}

// GetStarted is the postback sent when a user taps "Get Started".
type GetStarted struct {
	Payload string `json:"payload"`
}

// Greeting is the welcome text shown before a conversation starts.
type Greeting struct {
	Locale string `json:"locale"`
	Text   string `json:"text"`
}

// PersistentMenu is the always-available conversation menu.
type PersistentMenu struct {
	Locale                string   `json:"locale"`
	ComposerInputDisabled bool     `json:"composer_input_disabled"`
	CallToActions         []Button `json:"call_to_actions"`
}

// SetupOptions holds the page links the menu points to.
type SetupOptions struct {
	PageURL  string
	GroupURL string
}

// GreetingSettings returns the get_started and greeting settings.
func GreetingSettings() ProfileSettings {
	return ProfileSettings{
		GetStarted: &GetStarted{Payload: PayloadGetStarted},
		Greeting: []Greeting{
			{
				Locale: "default",
				Text:   "Xin chào bạn đã đến với NVN Font! bạn có thể gửi tin nhắn cho NVN Font để sử dụng bot một cách miễn phí!",
			},
			{
				Locale: "en_US",
				Text:   "Hi, welcome to NVN Font! You can send message to NVN Font to use bot for free!",
			},
		},
	}
}

// MenuSettings returns the persistent menu.
func MenuSettings(opts SetupOptions) ProfileSettings {
	full := func(title, url string) Button {
		b := URLButton(title, url)
		b.WebviewHeightRatio = "full"
		return b
	}
	return ProfileSettings{
		PersistentMenu: []PersistentMenu{{
			Locale:                "default",
			ComposerInputDisabled: false,
			CallToActions: []Button{
				PostbackButton("Khởi động lại bot", PayloadRestartBot),
				PostbackButton("🔘 Tắt bật bot", PayloadToggleBot),
				PostbackButton("👋 Mua tồng hợp font", PayloadBotBuy),
				PostbackButton("📚 Xem các font mới nhất", PayloadListFontImageEnd),
				PostbackButton("📝 Danh sách font", PayloadListFont),
				PostbackButton("Xem Demo Danh Sách Font", PayloadListFontImage),
				full("Tham gia group", opts.GroupURL),
				PostbackButton("Xem hướng dẫn sử dụng bot", PayloadBotTutorial),
				PostbackButton("Xem giá Việt hóa", PayloadPriceService),
				full("Xem Trang", opts.PageURL),
			},
		}},
	}
}

// SetupProfile installs the greeting and then the persistent menu. The
// Messenger Profile API rejects a menu without get_started, so the order
// matters.
func (c *Client) SetupProfile(ctx context.Context, opts SetupOptions) error {
	if err := c.SetMessengerProfile(ctx, GreetingSettings()); err != nil {
		return fmt.Errorf("set greeting: %w", err)
	}
	if err := c.SetMessengerProfile(ctx, MenuSettings(opts)); err != nil {
		return fmt.Errorf("set persistent menu: %w", err)
	}
	return nil
}
