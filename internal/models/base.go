package models

import "time"

// HomeCurrency is the reporting currency every valuation is converted into.
const HomeCurrency = "CNY"

// UnknownPath labels assets whose investment path no longer exists.
const UnknownPath = "Unknown"

// NowMillis returns the current time in milliseconds since the Unix epoch,
// the timestamp unit used throughout the snapshot wire format.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts a wire timestamp to a time.Time.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}
