package votesystem

import "time"

// IsInCurrentWeek 判断时间是否落在本自然周内（周一 00:00 起，服务器本地时区）
// 零值时间返回 false
func IsInCurrentWeek(date time.Time) bool {
	return isInWeekOf(date, time.Now())
}

// WeekStart 返回 now 所在自然周的周一 00:00
// 周日向前推 6 天
func WeekStart(now time.Time) time.Time {
	offset := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		offset = 6
	}
	y, m, d := now.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
}

// isInWeekOf 判断 date 是否落在 [周一, 下周一) 区间
func isInWeekOf(date, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	start := WeekStart(now)
	end := start.AddDate(0, 0, 7)
	return !date.Before(start) && date.Before(end)
}
