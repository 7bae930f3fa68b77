package timeutils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ncruces/go-strftime"
)

// Archive timestamps are 14-digit UTC strings of the form YYYYMMDDHHmmss.
// Shorter prefixes are accepted anywhere a timestamp is taken and are padded
// down to the earliest moment they can denote (missing month/day become 01,
// missing time fields become 00).
const timestampLayout = "20060102150405"

// padSuffix supplies the lowest-value digits for positions 4..14.
const padSuffix = "0101000000"

// ErrBadTimestamp reports a timestamp that cannot be interpreted.
var ErrBadTimestamp = errors.New("timeutils: invalid timestamp")

// PadTimestamp expands a 4..14 digit timestamp prefix to the full 14 digits.
func PadTimestamp(ts string) (string, error) {
	if len(ts) < 4 || len(ts) > 14 {
		return "", fmt.Errorf("%w: %q", ErrBadTimestamp, ts)
	}
	for _, c := range ts {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: %q", ErrBadTimestamp, ts)
		}
	}
	if len(ts) == 14 {
		return ts, nil
	}
	return ts + padSuffix[len(ts)-4:], nil
}

// ToTime converts an archive timestamp to a UTC time.Time.
func ToTime(ts string) (time.Time, error) {
	padded, err := PadTimestamp(ts)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(timestampLayout, padded, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, ts)
	}
	return t, nil
}

// ToSec converts an archive timestamp to Unix epoch seconds.
func ToSec(ts string) (int64, error) {
	t, err := ToTime(ts)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// SecToTimestamp converts Unix epoch seconds to a 14-digit timestamp.
func SecToTimestamp(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(timestampLayout)
}

// Now returns the current wall-clock time as a 14-digit timestamp.
func Now() string {
	return time.Now().UTC().Format(timestampLayout)
}

// Format renders an archive timestamp using an strftime-style pattern. The
// pattern "%s" is special-cased to return the epoch seconds as a decimal
// string, matching the template filter contract.
func Format(ts string, pattern string) (string, error) {
	if pattern == "%s" {
		sec, err := ToSec(ts)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(sec, 10), nil
	}
	t, err := ToTime(ts)
	if err != nil {
		return "", err
	}
	return strftime.Format(pattern, t), nil
}
