package config

import "time"

const (
	warningWindowVar   = "SUBFINDER_WARNING_WINDOW"
	refreshThrottleVar = "SUBFINDER_REFRESH_THROTTLE"
	tickIntervalVar    = "SUBFINDER_TICK_INTERVAL"
)

type SessionConfig interface {
	GetExpiryWarningWindow() time.Duration
	GetRefreshThrottle() time.Duration
	GetTickInterval() time.Duration
}

type Session struct {
	file *FileValues
}

var _ SessionConfig = Session{}

// GetExpiryWarningWindow is how long before access token expiry the warning is shown
// and activity starts refreshing the token.
func (s Session) GetExpiryWarningWindow() time.Duration {
	return GetDurationEnv(warningWindowVar, s.file.Session.WarningWindow, 180*time.Second)
}

// GetRefreshThrottle is the minimum spacing between activity-triggered refreshes.
func (s Session) GetRefreshThrottle() time.Duration {
	return GetDurationEnv(refreshThrottleVar, s.file.Session.RefreshThrottle, 30*time.Second)
}

func (s Session) GetTickInterval() time.Duration {
	return GetDurationEnv(tickIntervalVar, s.file.Session.TickInterval, 1*time.Second)
}
