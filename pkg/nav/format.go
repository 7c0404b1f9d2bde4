package nav

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatBytes renders a byte count with 1024-base unit scaling. Zero renders
// as the literal "0 Bytes". Trailing zeros after rounding are dropped, so
// 1536 bytes at two decimals is "1.5 KB". Non-positive decimals default to 2.
func FormatBytes(bytes int64, decimals int) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	if decimals <= 0 {
		decimals = 2
	}

	exp := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if exp >= len(byteUnits) {
		exp = len(byteUnits) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(exp))

	scale := math.Pow(10, float64(decimals))
	value = math.Round(value*scale) / scale
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + byteUnits[exp]
}

// Timestamp layouts accepted from the server and produced for display.
const (
	displayDateLayout = "Jan 02, 2006, 03:04 PM"
	logDateLayout     = "2006-01-02 15:04:05.000"
)

// FormatDate renders a server timestamp for display. Unparseable values pass
// through unchanged rather than failing the projection.
func FormatDate(value string) string {
	t, err := parseServerTime(value)
	if err != nil {
		return value
	}
	return t.Format(displayDateLayout)
}

// FormatLogDate renders a timestamp for log-channel lines, millisecond
// precision.
func FormatLogDate(t time.Time) string {
	return t.Format(logDateLayout)
}

// LogLine prefixes a message with the log-channel timestamp format.
func LogLine(t time.Time, message string) string {
	return fmt.Sprintf("%s %s", FormatLogDate(t), message)
}

func parseServerTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z0700"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
