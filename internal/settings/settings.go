package settings

import (
	"errors"
	"fmt"
	"time"
)

// Settings is the server-sourced configuration snapshot for one dashboard
// session. It is loaded once before any polling task starts and never changes
// afterwards; a settings update on the server takes effect on the next session.
type Settings struct {
	Advice1 string `json:"advice1"`
	Advice2 string `json:"advice2"`
	Advice3 string `json:"advice3"`
	Advice4 string `json:"advice4"`
	Advice5 string `json:"advice5"`
	Advice6 string `json:"advice6"`

	// Polling intervals in milliseconds.
	FetchSensorMs   int `json:"fetch_sensor"`
	FetchAveragesMs int `json:"fetch_averages"`
	FetchMinMaxMs   int `json:"fetch_minmax"`

	// Alert-channel enable flag. The remaining notification preferences
	// (threshold, cooldown, message) are evaluated server-side and carried
	// here only for display.
	Notifications         bool    `json:"notifications"`
	NotificationThreshold float64 `json:"notification_threshold"`
	NotificationCooldown  int     `json:"cooldown"`
	NotificationMessage   string  `json:"notification_message"`
}

// Validate checks that the snapshot can drive a session: every interval must
// be positive and every advisory band must have text. A task never starts
// with an undefined interval.
func (s Settings) Validate() error {
	if s.FetchSensorMs <= 0 {
		return errors.New("settings: fetch_sensor interval must be positive")
	}
	if s.FetchAveragesMs <= 0 {
		return errors.New("settings: fetch_averages interval must be positive")
	}
	if s.FetchMinMaxMs <= 0 {
		return errors.New("settings: fetch_minmax interval must be positive")
	}
	for i, advice := range s.advisories() {
		if advice == "" {
			return fmt.Errorf("settings: missing advisory for band %d", i+1)
		}
	}
	return nil
}

// SensorInterval returns the sensor polling interval.
func (s Settings) SensorInterval() time.Duration {
	return time.Duration(s.FetchSensorMs) * time.Millisecond
}

// AveragesInterval returns the rolling-average polling interval.
func (s Settings) AveragesInterval() time.Duration {
	return time.Duration(s.FetchAveragesMs) * time.Millisecond
}

// MinMaxInterval returns the min/max polling interval.
func (s Settings) MinMaxInterval() time.Duration {
	return time.Duration(s.FetchMinMaxMs) * time.Millisecond
}

// AdviceFor returns the advisory text for a zero-based band index.
func (s Settings) AdviceFor(band int) string {
	advisories := s.advisories()
	if band < 0 || band >= len(advisories) {
		return ""
	}
	return advisories[band]
}

func (s Settings) advisories() [6]string {
	return [6]string{s.Advice1, s.Advice2, s.Advice3, s.Advice4, s.Advice5, s.Advice6}
}
