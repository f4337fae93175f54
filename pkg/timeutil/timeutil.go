// Package timeutil provides timezone utilities for the bot timezone (Europe/Moscow).
// Every day boundary in the system (task day buckets, settlement, reminders,
// the weekly reward window) is computed in this zone, never in server local time.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// BotTZ is the bot timezone (Europe/Moscow, UTC+3, no DST).
// Russia abolished clock changes in 2014, so this is constant year-round.
var BotTZ = time.FixedZone("Europe/Moscow", 3*60*60)

// Now returns the current time in the bot timezone.
func Now() time.Time {
	return time.Now().In(BotTZ)
}

// ToBotTZ converts a time to the bot timezone.
func ToBotTZ(t time.Time) time.Time {
	return t.In(BotTZ)
}

// Date creates a time in the bot timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, BotTZ)
}

// DateTime creates a time in the bot timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, BotTZ)
}

// StartOfDay returns the start of the day (00:00:00) in the bot timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToBotTZ(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, BotTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the bot timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToBotTZ(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, BotTZ)
}

// IsSameDay checks whether two times fall on the same calendar day
// in the bot timezone.
func IsSameDay(a, b time.Time) bool {
	la, lb := ToBotTZ(a), ToBotTZ(b)
	return la.Year() == lb.Year() && la.Month() == lb.Month() && la.Day() == lb.Day()
}

// IsToday checks if the given time is today in the bot timezone.
func IsToday(t time.Time) bool {
	return IsSameDay(t, Now())
}

// IsSunday checks if the given time falls on Sunday in the bot timezone.
// Sunday opens the weekly reward-claim window.
func IsSunday(t time.Time) bool {
	return ToBotTZ(t).Weekday() == time.Sunday
}

// DaysSince calculates the number of whole days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	return int(now.Sub(then).Hours() / 24)
}

// At returns the given day with the clock set to hour:min in the bot timezone.
func At(day time.Time, hour, min int) time.Time {
	local := ToBotTZ(day)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, min, 0, 0, BotTZ)
}

// FormatDate formats a time as "2006-01-02" in the bot timezone.
// This is the canonical day-bucket key used by the task ledger.
func FormatDate(t time.Time) string {
	return ToBotTZ(t).Format("2006-01-02")
}

// FormatTime formats a time as "15:04" in the bot timezone.
func FormatTime(t time.Time) string {
	return ToBotTZ(t).Format("15:04")
}

// FormatDateTime formats a time as "2006-01-02 15:04" in the bot timezone.
func FormatDateTime(t time.Time) string {
	return ToBotTZ(t).Format("2006-01-02 15:04")
}

// ParseDate parses a "2006-01-02" day-bucket key into the start of that day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, BotTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: parse date %q: %w", s, err)
	}
	return t, nil
}

// Русские названия месяцев в родительном падеже для дат вида «7 января».
var monthNamesRu = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// Русские названия дней недели.
var weekdayNamesRu = [...]string{
	"воскресенье", "понедельник", "вторник", "среда",
	"четверг", "пятница", "суббота",
}

// FormatDateRu formats a date in Russian, for example "7 января".
func FormatDateRu(t time.Time) string {
	local := ToBotTZ(t)
	return fmt.Sprintf("%d %s", local.Day(), monthNamesRu[local.Month()-1])
}

// WeekdayRu returns the Russian weekday name.
func WeekdayRu(t time.Time) string {
	return weekdayNamesRu[ToBotTZ(t).Weekday()]
}
