// Package session owns the client's authentication lifecycle: the access/refresh
// token pair, the expiry countdown, silent refresh on user activity and forced
// logout when a token can no longer be renewed.
//
// Storage is the source of truth for the current token; the Manager keeps an
// in-memory copy in sync through Login, Logout, RefreshAccessToken and Resync.
// Expiry is read from the token's exp claim without verifying it (see package
// token), so the countdown is advisory and the API remains authoritative.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jrsteele09/go-subscription-client/apimodel"
	"github.com/jrsteele09/go-subscription-client/internal/config"
	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
	"github.com/jrsteele09/go-subscription-client/storage"
	"github.com/jrsteele09/go-subscription-client/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Refresher performs the network half of a refresh: it trades a refresh token for
// a new access token. *api.Client implements it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Dependencies are the collaborators of a Manager. Clock defaults to time.Now.
type Dependencies struct {
	Store     storage.Store
	Refresher Refresher
	Config    config.SessionConfig
	Clock     func() time.Time
}

// Manager is safe for concurrent use. Overlapping refreshes are not serialised:
// whichever new access token arrives last is kept, in memory and in storage.
type Manager struct {
	store     storage.Store
	refresher Refresher
	clock     func() time.Time

	warningWindow int64
	tickInterval  time.Duration
	throttle      *rate.Limiter

	mu        sync.RWMutex
	token     string
	user      *apimodel.User
	warning   Warning
	observers map[int]func(Snapshot)
	nextID    int
}

// NewManager hydrates state from storage. No network call is made.
func NewManager(deps Dependencies) *Manager {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	m := &Manager{
		store:         deps.Store,
		refresher:     deps.Refresher,
		clock:         clock,
		warningWindow: int64(deps.Config.GetExpiryWarningWindow() / time.Second),
		tickInterval:  deps.Config.GetTickInterval(),
		throttle:      rate.NewLimiter(rate.Every(deps.Config.GetRefreshThrottle()), 1),
		observers:     make(map[int]func(Snapshot)),
	}
	m.token, m.user = m.readStorage()
	return m
}

func (m *Manager) readStorage() (string, *apimodel.User) {
	access := m.adoptLegacyToken()

	rawUser, err := storage.GetOptional(m.store, storage.KeyUser)
	if err != nil {
		log.Warn().Err(err).Msg("session: reading user")
	}
	if rawUser == "" {
		return access, nil
	}

	var user apimodel.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		log.Warn().Err(err).Msg("session: stored user is not valid JSON")
		return access, nil
	}
	return access, &user
}

// adoptLegacyToken returns the stored access token. A token found only under the
// legacy key is copied to the current key so the clock and activity paths see it.
func (m *Manager) adoptLegacyToken() string {
	current, err := storage.GetOptional(m.store, storage.KeyAccessToken)
	if err != nil {
		log.Warn().Err(err).Msg("session: reading access token")
		return ""
	}
	if current != "" {
		return current
	}

	legacy, err := storage.GetOptional(m.store, storage.KeyLegacyToken)
	if err != nil {
		log.Warn().Err(err).Msg("session: reading legacy token")
		return ""
	}
	if legacy == "" {
		return ""
	}
	if err := m.store.Put(map[string]string{storage.KeyAccessToken: legacy}); err != nil {
		log.Warn().Err(err).Msg("session: migrating legacy token")
	}
	return legacy
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	var user *apimodel.User
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return Snapshot{Token: m.token, User: user, IsAuthed: m.token != "", Warning: m.warning}
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) User() *apimodel.User {
	return m.Snapshot().User
}

func (m *Manager) IsAuthed() bool {
	return m.Token() != ""
}

// OnChange registers fn to be called after every state change. Callbacks run on
// the goroutine that made the change and must not block.
func (m *Manager) OnChange(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// update applies fn under the lock and notifies observers if it reports a change.
func (m *Manager) update(fn func() bool) {
	m.mu.Lock()
	if !fn() {
		m.mu.Unlock()
		return
	}
	snap := m.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(m.observers))
	for _, o := range m.observers {
		observers = append(observers, o)
	}
	m.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
}

// Login adopts the result of a successful login or register call. Any subset of
// the fields may be present; absent ones leave state untouched.
func (m *Manager) Login(result apimodel.AuthResult) error {
	values := map[string]string{}
	if result.AccessToken != "" {
		values[storage.KeyAccessToken] = result.AccessToken
		values[storage.KeyLegacyToken] = result.AccessToken
	}
	if result.RefreshToken != "" {
		values[storage.KeyRefreshToken] = result.RefreshToken
	}
	if result.User != nil {
		raw, err := json.Marshal(result.User)
		if err != nil {
			return apperrors.Wrapf(err, "session: encoding user")
		}
		values[storage.KeyUser] = string(raw)
	}
	if len(values) == 0 {
		return nil
	}

	if err := m.store.Put(values); err != nil {
		return apperrors.Wrapf(err, "session: storing login")
	}

	m.update(func() bool {
		if result.AccessToken != "" {
			m.token = result.AccessToken
		}
		if result.User != nil {
			u := *result.User
			m.user = &u
		}
		return true
	})

	log.Info().Bool("access_token", result.AccessToken != "").Bool("refresh_token", result.RefreshToken != "").Msg("session: login adopted")
	return nil
}

// Logout clears every session key and resets state. It is idempotent.
func (m *Manager) Logout() {
	m.logout(LogoutUser)
}

func (m *Manager) logout(reason LogoutReason) {
	if err := m.store.Delete(storage.SessionKeys...); err != nil {
		log.Error().Err(err).Msg("session: clearing storage")
	}

	wasAuthed := false
	m.update(func() bool {
		wasAuthed = m.token != ""
		changed := wasAuthed || m.user != nil || m.warning != (Warning{})
		m.token = ""
		m.user = nil
		m.warning = Warning{}
		return changed
	})

	if wasAuthed {
		log.Info().Str("reason", string(reason)).Msg("session: logged out")
	}
}

// RefreshAccessToken trades the stored refresh token for a new access token and
// adopts it. Only the current key is written; the legacy key is left as is.
func (m *Manager) RefreshAccessToken(ctx context.Context) (string, error) {
	refresh, err := storage.GetOptional(m.store, storage.KeyRefreshToken)
	if err != nil {
		return "", apperrors.Wrapf(err, "session: reading refresh token")
	}
	if refresh == "" {
		return "", apperrors.ErrMissingRefreshToken
	}

	access, err := m.refresher.Refresh(ctx, refresh)
	if err != nil {
		return "", err
	}

	if err := m.store.Put(map[string]string{storage.KeyAccessToken: access}); err != nil {
		return "", apperrors.Wrapf(err, "session: storing refreshed token")
	}
	m.update(func() bool {
		m.token = access
		return true
	})

	log.Debug().Msg("session: access token refreshed")
	return access, nil
}

// NoteActivity is called for every user input event. At most one refresh is
// attempted per throttle window, and only when a token is stored and it is inside
// the warning window. A failed refresh ends the session.
func (m *Manager) NoteActivity(ctx context.Context) {
	now := m.clock()
	if m.throttle.TokensAt(now) < 1 {
		log.Debug().Msg("session: activity throttled")
		return
	}

	access, err := storage.GetOptional(m.store, storage.KeyAccessToken)
	if err != nil || access == "" {
		return
	}
	if token.SecondsUntilExpiry(access, now) > m.warningWindow {
		return
	}

	// Concurrent callers may all pass the check above; only one wins the slot.
	if !m.throttle.AllowN(now, 1) {
		return
	}
	m.refreshOrLogout(ctx, "activity")
}

// ContinueSession is the explicit "continue" action from the expiry warning. It
// is not throttled.
func (m *Manager) ContinueSession(ctx context.Context) {
	m.refreshOrLogout(ctx, "continue")
}

func (m *Manager) refreshOrLogout(ctx context.Context, trigger string) {
	if _, err := m.RefreshAccessToken(ctx); err != nil {
		log.Warn().Err(err).Str("trigger", trigger).Msg("session: refresh failed")
		m.logout(LogoutRefreshFailed)
		return
	}
	m.update(func() bool {
		changed := m.warning.Visible
		m.warning.Visible = false
		return changed
	})
}

// Tick recomputes the countdown from the stored token: expired tokens end the
// session, tokens inside the warning window show the warning, others hide it.
func (m *Manager) Tick() {
	access, err := storage.GetOptional(m.store, storage.KeyAccessToken)
	if err != nil || access == "" {
		m.update(func() bool {
			changed := m.warning.Visible
			m.warning = Warning{}
			return changed
		})
		return
	}

	remaining := token.SecondsUntilExpiry(access, m.clock())
	if remaining <= 0 {
		m.logout(LogoutExpired)
		return
	}

	next := Warning{}
	if remaining <= m.warningWindow {
		next = Warning{Visible: true, SecondsRemaining: int(remaining)}
	}
	m.update(func() bool {
		changed := m.warning != next
		m.warning = next
		return changed
	})
}

// Resync reloads token and user from storage, e.g. after another process wrote it.
func (m *Manager) Resync() {
	access, user := m.readStorage()
	m.update(func() bool {
		changed := access != m.token || (user == nil) != (m.user == nil) || (user != nil && *user != *m.user)
		m.token, m.user = access, user
		if access == "" {
			changed = changed || m.warning != (Warning{})
			m.warning = Warning{}
		}
		return changed
	})
}

// Run drives the clock and consumes activity until ctx is cancelled. Activity
// refreshes run on their own goroutines so a slow network never stalls the
// countdown; Run waits for them before returning.
func (m *Manager) Run(ctx context.Context, activity <-chan struct{}) error {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Tick()
		case _, ok := <-activity:
			if !ok {
				activity = nil
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.NoteActivity(ctx)
			}()
		}
	}
}
