package messenger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupProfile(t *testing.T) {
	t.Parallel()
	graph := &fakeGraph{}
	c := newTestClient(t, graph)

	err := c.SetupProfile(context.Background(), SetupOptions{
		PageURL:  "https://www.facebook.com/NVNFONT/",
		GroupURL: "https://www.facebook.com/groups/NVNFONT/",
	})
	require.NoError(t, err)

	calls := graph.snapshot()
	require.Len(t, calls, 2)
	for _, call := range calls {
		assert.Equal(t, "/v15.0/me/messenger_profile", call.Path)
	}
	assert.Equal(t, map[string]any{"payload": "GET_STARTED"}, calls[0].Body["get_started"])
	assert.Len(t, calls[0].Body["greeting"], 2)

	menus := calls[1].Body["persistent_menu"].([]any)
	require.Len(t, menus, 1)
	menu := menus[0].(map[string]any)
	assert.Equal(t, false, menu["composer_input_disabled"])
	actions := menu["call_to_actions"].([]any)
	require.Len(t, actions, 10)
	assert.Equal(t, "RESTART_BOT", actions[0].(map[string]any)["payload"])
	group := actions[6].(map[string]any)
	assert.Equal(t, "web_url", group["type"])
	assert.Equal(t, "https://www.facebook.com/groups/NVNFONT/", group["url"])
	assert.Equal(t, "full", group["webview_height_ratio"])
}

func TestMenuSettings_Order(t *testing.T) {
	t.Parallel()
	actions := MenuSettings(SetupOptions{}).PersistentMenu[0].CallToActions

	var payloads []string
	for _, a := range actions {
		if a.Type == "postback" {
			payloads = append(payloads, a.Payload)
		}
	}
	assert.Equal(t, []string{
		PayloadRestartBot, PayloadToggleBot, PayloadBotBuy, PayloadListFontImageEnd,
		PayloadListFont, PayloadListFontImage, PayloadBotTutorial, PayloadPriceService,
	}, payloads)
}
