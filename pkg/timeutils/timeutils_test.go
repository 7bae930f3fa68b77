package timeutils

import (
	"regexp"
	"testing"
)

func TestPadTimestamp(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "full", in: "20200102030405", want: "20200102030405"},
		{name: "year only", in: "2020", want: "20200101000000"},
		{name: "year month", in: "202006", want: "20200601000000"},
		{name: "to the day", in: "20200630", want: "20200630000000"},
		{name: "to the hour", in: "2020063012", want: "20200630120000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PadTimestamp(tc.in)
			if err != nil {
				t.Fatalf("pad %q: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("pad %q = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPadTimestampRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "20", "2020x1", "202001020304051"} {
		if _, err := PadTimestamp(in); err == nil {
			t.Fatalf("pad %q: expected error", in)
		}
	}
}

func TestToSec(t *testing.T) {
	sec, err := ToSec("19700101000000")
	if err != nil {
		t.Fatalf("to sec: %v", err)
	}
	if sec != 0 {
		t.Fatalf("epoch start = %d, want 0", sec)
	}

	sec, err = ToSec("20140126101112")
	if err != nil {
		t.Fatalf("to sec: %v", err)
	}
	if sec != 1390731072 {
		t.Fatalf("sec = %d, want 1390731072", sec)
	}
}

func TestSecToTimestampRoundTrip(t *testing.T) {
	if got := SecToTimestamp(1390731072); got != "20140126101112" {
		t.Fatalf("sec to timestamp = %q", got)
	}
}

func TestFormatEpochPattern(t *testing.T) {
	got, err := Format("20140126101112", "%s")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "1390731072" {
		t.Fatalf("format %%s = %q, want 1390731072", got)
	}
}

func TestFormatCalendarPattern(t *testing.T) {
	got, err := Format("20140126101112", "%a, %b %d %Y %H:%M:%S")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "Sun, Jan 26 2014 10:11:12" {
		t.Fatalf("format = %q", got)
	}
}

func TestNowShape(t *testing.T) {
	if !regexp.MustCompile(`^\d{14}$`).MatchString(Now()) {
		t.Fatalf("now = %q, want 14 digits", Now())
	}
}
