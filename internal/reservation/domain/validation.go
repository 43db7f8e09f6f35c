package domain

import (
	"time"

	"github.com/wyfcoding/storefront/pkg/errs"
)

// DateLayout 预约日期的格式
const DateLayout = "2006-01-02"

// TimeLayout 预约时段的格式
const TimeLayout = "15:04"

// ValidateLeadTime 校验交付日期是否满足商品的备货提前期
// 在任何事务开启前调用
func ValidateLeadTime(productName string, preparationDays int, date, today time.Time) error {
	// 按 today 所在时区的日历日比较，避免 UTC 截断把当地的今天算成昨天
	dy, dm, dd := date.Date()
	day := time.Date(dy, dm, dd, 0, 0, 0, 0, today.Location())
	ty, tm, td := today.Date()
	earliest := time.Date(ty, tm, td, 0, 0, 0, 0, today.Location()).AddDate(0, 0, preparationDays)
	if day.Before(earliest) {
		return errs.Newf(errs.CodeValidationFailure,
			"%q needs %d days of preparation; earliest date is %s",
			productName, preparationDays, earliest.Format(DateLayout))
	}
	return nil
}

// ParseDate 解析预约日期
func ParseDate(raw string) (time.Time, error) {
	date, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, errs.Newf(errs.CodeValidationFailure, "invalid date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}

// ParseTimeSlot 解析预约时段
func ParseTimeSlot(raw string) (string, error) {
	if _, err := time.Parse(TimeLayout, raw); err != nil {
		return "", errs.Newf(errs.CodeValidationFailure, "invalid time %q, expected HH:MM", raw)
	}
	return raw, nil
}
