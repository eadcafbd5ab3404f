package alarm

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNormalizeDays(t *testing.T) {
	tests := []struct {
		name string
		in   []time.Weekday
		want []time.Weekday
	}{
		{name: "nil stays nil", in: nil, want: nil},
		{name: "empty collapses to nil", in: []time.Weekday{}, want: nil},
		{
			name: "duplicates removed and order restored",
			in:   []time.Weekday{time.Friday, time.Monday, time.Friday, time.Sunday},
			want: []time.Weekday{time.Sunday, time.Monday, time.Friday},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeDays(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts empty label and no days", func(t *testing.T) {
		if err := Validate("", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects overlong label", func(t *testing.T) {
		err := Validate(strings.Repeat("x", MaxLabelLength+1), nil)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["label"]; !ok {
			t.Fatalf("expected label field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects out of range weekday", func(t *testing.T) {
		err := Validate("", []time.Weekday{time.Weekday(7)})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["days"]; !ok {
			t.Fatalf("expected days field error, got %v", vErr.FieldErrors)
		}
	})
}

func TestFormatWeekdays(t *testing.T) {
	tests := []struct {
		name string
		in   []time.Weekday
		want string
	}{
		{name: "empty selection", in: nil, want: "One time"},
		{
			name: "full week",
			in: []time.Weekday{
				time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
				time.Thursday, time.Friday, time.Saturday,
			},
			want: "Every day",
		},
		{
			name: "sorted short names",
			in:   []time.Weekday{time.Friday, time.Monday, time.Wednesday},
			want: "Mon, Wed, Fri",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatWeekdays(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{0, 5, "12:05 AM"},
		{7, 30, "7:30 AM"},
		{12, 0, "12:00 PM"},
		{18, 45, "6:45 PM"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			in := time.Date(2024, time.March, 4, tc.hour, tc.minute, 0, 0, time.UTC)
			if got := FormatTime(in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAlarmClone(t *testing.T) {
	original := Alarm{
		ID:   "a-1",
		Days: []time.Weekday{time.Monday},
	}

	clone := original.Clone()
	clone.Days[0] = time.Friday

	if original.Days[0] != time.Monday {
		t.Fatal("Clone must not share the Days slice")
	}
}
