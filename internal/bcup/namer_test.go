package bcup

import (
	"errors"
	"testing"
	"time"
)

func TestSnapshotName(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 2, 123456789, time.UTC)

	tests := []struct {
		format string
		want   string
	}{
		{"Y-m-d_H-M-S", "2024-03-07_09-05-02"},
		{"YmdHMS", "20240307090502"},
		{"y-m-d", "24-03-07"},
		{"Y-m-d_H-M-S.f", "2024-03-07_09-05-02.123456"},
		{"backup_Y", "backup_2024"},
	}
	for _, tt := range tests {
		if got := SnapshotName(tt.format, ts); got != tt.want {
			t.Errorf("SnapshotName(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestSnapshotName_LexicographicOrderMatchesTime(t *testing.T) {
	format := "Y-m-d_H-M-S"
	times := []time.Time{
		time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC),
		time.Date(2024, 9, 30, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 1, 2, 0, 0, 0, time.UTC),
	}
	for i := 1; i < len(times); i++ {
		prev := SnapshotName(format, times[i-1])
		next := SnapshotName(format, times[i])
		if !(prev < next) {
			t.Errorf("names out of order: %q >= %q", prev, next)
		}
	}
}

func TestValidateNameFormat(t *testing.T) {
	t.Run("accepts the default style", func(t *testing.T) {
		if err := ValidateNameFormat("Y-m-d_H-M-S"); err != nil {
			t.Errorf("ValidateNameFormat() error = %v", err)
		}
	})

	t.Run("rejects empty result", func(t *testing.T) {
		err := ValidateNameFormat("")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ValidateNameFormat(\"\") error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("rejects path separators", func(t *testing.T) {
		err := ValidateNameFormat("Y/m/d")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ValidateNameFormat(\"Y/m/d\") error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("rejects hidden names", func(t *testing.T) {
		err := ValidateNameFormat(".Y")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ValidateNameFormat(\".Y\") error = %v, want ErrInvalidConfig", err)
		}
	})
}
