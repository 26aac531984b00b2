package session

import (
	"fmt"

	"github.com/jrsteele09/go-subscription-client/apimodel"
)

// Warning is the expiry warning shown during the final seconds of an access token.
// It is derived on every clock tick and never persisted.
type Warning struct {
	Visible          bool
	SecondsRemaining int
}

// Snapshot is a consistent copy of the session state handed to observers.
type Snapshot struct {
	Token    string
	User     *apimodel.User
	IsAuthed bool
	Warning  Warning
}

// LogoutReason is recorded in logs when the session ends.
type LogoutReason string

const (
	LogoutUser          LogoutReason = "user"
	LogoutExpired       LogoutReason = "expired"
	LogoutRefreshFailed LogoutReason = "refresh_failed"
)

// FormatCountdown renders seconds as m:ss.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
