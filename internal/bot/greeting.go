package bot

import (
	"fmt"
	"time"
)

// GreetingText returns the time-of-day greeting for name at t, using t's
// location.
func GreetingText(name string, t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 10:
		return fmt.Sprintf("Chào %s, chúc bạn một buổi sáng tốt lành!", name)
	case h >= 10 && h <= 12:
		return fmt.Sprintf("Chào %s, bạn đã ăn trưa chưa?", name)
	case h > 12 && h < 18:
		return fmt.Sprintf("Chào %s, chúc bạn một buổi chiều tốt lành!", name)
	case h >= 18 && h < 22:
		return fmt.Sprintf("Chào %s, chúc bạn một buổi tối tốt lành, bạn đã ăn tối chưa?", name)
	case h >= 22:
		return fmt.Sprintf("Chào %s, khuya rồi làm việc ít thôi nè, đi ngủ đi!", name)
	default:
		return fmt.Sprintf("Chào %s, Nếu bạn nhắn tin giờ này thì đang làm phiền mình đây không nên nhé!", name)
	}
}
