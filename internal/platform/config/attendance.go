package config

import (
	"fmt"
	"os"
	"strconv"
)

// AttendanceConfig configures derived attendance statistics.
type AttendanceConfig struct {
	// MeetingsPerYear is the baseline used for attendance percentage.
	MeetingsPerYear int
}

func LoadAttendanceConfigFromEnv() (AttendanceConfig, error) {
	cfg := AttendanceConfig{MeetingsPerYear: 16}

	if v := os.Getenv("MEETINGS_PER_YEAR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return AttendanceConfig{}, fmt.Errorf("MEETINGS_PER_YEAR must be a positive integer, got %q", v)
		}
		cfg.MeetingsPerYear = n
	}

	return cfg, nil
}
