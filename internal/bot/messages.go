package bot

// Fixed replies.
const (
	msgNoPermission   = "Bạn không có quyền sử dụng lệnh này!"
	msgBanned         = "Bạn đã bị chặn khỏi bot!"
	msgBanContact     = "Nếu bạn cho rằng đây là nhầm lẫn, hãy liên hệ trang NVN Font để được hỗ trợ."
	msgUnbanned       = "Bạn đã được bỏ chặn!"
	msgUnbanDone      = "Đã bỏ chặn thành công!"
	msgUserNotFound   = "Không tìm thấy người dùng!"
	msgBotOnForUser   = "Bạn đã bật bot!"
	msgBotOffForUser  = "Bạn đã tắt bot!"
	msgMissingTarget  = "Vui lòng nhập PSID người dùng sau lệnh!"
	msgCommandFailed  = "Có lỗi xảy ra khi thực hiện lệnh, vui lòng thử lại sau!"
	msgBanListEmpty   = "Danh sách chặn đang trống!"
	msgBotOnGlobal    = "Đã bật bot cho tất cả người dùng!"
	msgBotOffGlobal   = "Đã tắt bot cho tất cả người dùng!"
	msgUpdating       = "Đang cập nhật"
	msgYouTubeUsage   = "Bạn hãy nhập theo cú pháp: @ytb <từ khóa>\nVí dụ: @ytb nhạc lofi"
	msgNoVideo        = "Không tìm thấy video nào!"
	msgCovidWorld     = "Đây là dữ liệu tổng hợp các ca bệnh trên toàn thế giới"
	msgCovidHint      = "Nếu bạn muốn xem dữ liệu chi tiết hãy nhập @covid tại <Quốc gia> "
	msgCovidExample   = "Ví dụ: @covid tại Việt Nam"
	msgGreetingPrompt = "Bạn muốn mình giúp gì nào %s?"

	msgSingleFont = "Chào %s\nTôi đã nhận được yêu cầu từ bạn\nTên font: %s\nLink download: %s"
	msgManyFonts  = "Chào %s\nTôi đã nhận được yêu cầu từ bạn\nBạn có thể tải font theo link bên dưới\n"
	msgFontItem   = "Tên font: %s\nLink download: %s"
	msgFontList   = "Chào %s\nĐây là danh sách font đang có trên hệ thống\n" +
		"Bạn có thể tải xuống bẳng cách nhắn tin theo cú pháp: Tôi muốn tải font <tên font>\n" +
		"Ví dụ: Tôi muốn tải font NVN Parka\n"
	msgToggleMuted  = "Chào %s\nBạn đã tắt bot, bạn có muốn bật lại bot không?"
	msgToggleActive = "Chào %s\nBạn đã bật bot, bạn có muốn tắt bot không?"

	msgAdminAdded   = "Đã thêm quản trị viên: %s!"
	msgAdminRemoved = "Đã xóa quản trị viên: %s!"
	msgBanDone      = "Đã chặn thành công người dùng: %s!"
	msgBanEntry     = "%d. %s\nPSID: %s"

	msgAdminHelp = "Các lệnh quản trị:\n" +
		"@nvn add-admin <psid>\n" +
		"@nvn remove-admin <psid>\n" +
		"@nvn on-bot\n" +
		"@nvn off-bot\n" +
		"@nvn ban <psid>\n" +
		"@nvn unban <psid>\n" +
		"@nvn list-ban"
)

// Link replies of the fixed postbacks, prefixed to the page URL.
const (
	linkBuy      = "Bạn có thể mua tổng hợp của NVN tại đây: "
	linkNewest   = "Bạn có thể xem các font mới nhất tại đây: "
	linkDemo     = "Bạn có thể xem demo danh sách font tại đây: "
	linkTutorial = "Bạn có thể xem hướng dẫn sử dụng bot tại đây: "
	linkPrice    = "Bạn có thể xem giá Việt hóa tại đây: "
	linkPage     = "Bạn có thể xem trang tại đây: "
)

// Quick reply payloads.
const (
	PayloadOnBot    = "ON_BOT"
	PayloadOffBot   = "OFF_BOT"
	PayloadBuyFont  = "BUY_FONT"
	PayloadHowToUse = "HOW_TO_USE"
)
