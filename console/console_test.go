package console_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-subscription-client/api"
	"github.com/jrsteele09/go-subscription-client/apimodel"
	"github.com/jrsteele09/go-subscription-client/console"
	"github.com/jrsteele09/go-subscription-client/internal/utils"
	"github.com/jrsteele09/go-subscription-client/session"
	"github.com/jrsteele09/go-subscription-client/storage"
	"github.com/jrsteele09/go-subscription-client/storage/storagefake"
	"github.com/jrsteele09/go-subscription-client/token"
	"github.com/jrsteele09/go-subscription-client/token/tokentest"
	"github.com/stretchr/testify/require"
)

type testSessionConfig struct{}

func (testSessionConfig) GetExpiryWarningWindow() time.Duration { return 180 * time.Second }
func (testSessionConfig) GetRefreshThrottle() time.Duration      { return 30 * time.Second }
func (testSessionConfig) GetTickInterval() time.Duration         { return time.Second }

// scriptedPrompter answers prompts from a fixed script and then reports EOF.
type scriptedPrompter struct {
	mu    sync.Mutex
	lines []string
}

func (p *scriptedPrompter) Prompt(string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *scriptedPrompter) PasswordPrompt(prompt string) (string, error) {
	return p.Prompt(prompt)
}

func (p *scriptedPrompter) script(lines ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, lines...)
}

type recordedRequest struct {
	method string
	path   string
	query  string
	body   string
}

type consoleFixture struct {
	now      time.Time
	store    *storagefake.FakeStore
	manager  *session.Manager
	prompter *scriptedPrompter
	out      *bytes.Buffer
	activity chan struct{}
	console  *console.Console
	mux      *http.ServeMux

	mu       sync.Mutex
	requests []recordedRequest
}

func setupConsoleFixture(t *testing.T) *consoleFixture {
	t.Helper()

	f := &consoleFixture{
		now:      time.Now(),
		store:    storagefake.NewFakeStore(),
		prompter: &scriptedPrompter{},
		out:      &bytes.Buffer{},
		activity: make(chan struct{}, 16),
		mux:      http.NewServeMux(),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(body)})
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	client := api.NewWithHTTPClient(server.URL, server.Client(), token.NewStoreSource(f.store))
	f.manager = session.NewManager(session.Dependencies{
		Store:     f.store,
		Refresher: client,
		Config:    testSessionConfig{},
		Clock:     func() time.Time { return f.now },
	})
	f.console = console.New(console.Dependencies{
		API:      client,
		Session:  f.manager,
		Prompter: f.prompter,
		Out:      f.out,
		Activity: f.activity,
	})
	return f
}

func (f *consoleFixture) login(t *testing.T, expiresIn time.Duration) {
	t.Helper()
	require.NoError(t, f.manager.Login(apimodel.AuthResult{
		AccessToken:  tokentest.WithExpiry(f.now.Add(expiresIn)),
		RefreshToken: "refresh-1",
		User:         &apimodel.User{ID: 1, Email: "x@y.com"},
	}))
}

func (f *consoleFixture) exec(line string) bool {
	return f.console.Execute(context.Background(), line)
}

func (f *consoleFixture) lastRequest(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *consoleFixture) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestConsole_ProtectedCommandsNeedLogin(t *testing.T) {
	f := setupConsoleFixture(t)

	for _, line := range []string{"dashboard", "subs", "sub add", "candidates", "confirm 1", "import x.csv", "whoami", "continue"} {
		f.out.Reset()
		require.False(t, f.exec(line))
		require.Contains(t, f.out.String(), "not logged in", line)
	}
	require.Zero(t, f.requestCount())

	f.out.Reset()
	f.exec("status")
	require.Contains(t, f.out.String(), "Not logged in.")
}

func TestConsole_Login(t *testing.T) {
	f := setupConsoleFixture(t)
	access := tokentest.WithExpiry(f.now.Add(time.Hour))
	f.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds apimodel.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, apimodel.ErrorBody{Error: "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, apimodel.AuthResult{
			AccessToken:  access,
			RefreshToken: "refresh-1",
			User:         &apimodel.User{ID: 7, Email: creds.Email},
		})
	})

	t.Run("bad password", func(t *testing.T) {
		f.prompter.script("x@y.com", "wrong")
		require.False(t, f.exec("login"))
		require.Contains(t, f.out.String(), "Invalid credentials")
		require.False(t, f.manager.IsAuthed())
	})

	t.Run("success", func(t *testing.T) {
		f.out.Reset()
		f.prompter.script("x@y.com", "secret")
		f.exec("login")
		require.Contains(t, f.out.String(), "Logged in as x@y.com.")
		require.True(t, f.manager.IsAuthed())

		stored, err := f.store.Get(storage.KeyRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "refresh-1", stored)
	})

	t.Run("invalid email never reaches the API", func(t *testing.T) {
		before := f.requestCount()
		f.out.Reset()
		f.prompter.script("nope", "secret")
		f.exec("register")
		require.Contains(t, f.out.String(), "valid email is required")
		require.Equal(t, before, f.requestCount())
	})
}

func TestConsole_Logout(t *testing.T) {
	f := setupConsoleFixture(t)
	f.login(t, time.Hour)

	f.exec("logout")
	require.Contains(t, f.out.String(), "Logged out.")
	require.False(t, f.manager.IsAuthed())
	for _, k := range storage.SessionKeys {
		require.False(t, f.store.Has(k))
	}
}

func TestConsole_Subscriptions(t *testing.T) {
	f := setupConsoleFixture(t)
	f.login(t, time.Hour)
	f.mux.HandleFunc("GET /api/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []apimodel.Subscription{
			{ID: 3, Name: "Netflix", Amount: 15.99, Cadence: apimodel.CadenceMonthly, NextDueDate: "2026-11-01", Category: utils.Ptr("Streaming"), Status: "active"},
		})
	})
	f.mux.HandleFunc("PATCH /api/subscriptions/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, apimodel.Subscription{ID: 3, Name: "Netflix", Status: "canceled"})
	})
	f.mux.HandleFunc("DELETE /api/subscriptions/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, apimodel.Deleted{Deleted: true})
	})
	f.mux.HandleFunc("POST /api/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		var sub apimodel.NewSubscription
		_ = json.NewDecoder(r.Body).Decode(&sub)
		writeJSON(w, http.StatusCreated, apimodel.Subscription{ID: 9, Name: sub.Name})
	})

	t.Run("list", func(t *testing.T) {
		f.exec("subs active")
		require.Contains(t, f.out.String(), "Netflix")
		require.Contains(t, f.out.String(), "$15.99")
		require.Contains(t, f.out.String(), "Streaming")
		require.Equal(t, "status=active", f.lastRequest(t).query)
	})

	t.Run("cancel", func(t *testing.T) {
		f.out.Reset()
		f.exec("sub cancel 3")
		req := f.lastRequest(t)
		require.Equal(t, http.MethodPatch, req.method)
		require.Equal(t, "/api/subscriptions/3", req.path)
		require.JSONEq(t, `{"status":"canceled"}`, req.body)
		require.Contains(t, f.out.String(), "Netflix is now canceled.")
	})

	t.Run("delete", func(t *testing.T) {
		f.out.Reset()
		f.exec("sub delete 3")
		require.Equal(t, http.MethodDelete, f.lastRequest(t).method)
		require.Contains(t, f.out.String(), "Subscription 3 deleted.")
	})

	t.Run("bad id", func(t *testing.T) {
		before := f.requestCount()
		f.out.Reset()
		f.exec("sub cancel abc")
		require.Contains(t, f.out.String(), `id "abc" must be a positive number`)
		require.Equal(t, before, f.requestCount())
	})

	t.Run("add", func(t *testing.T) {
		f.out.Reset()
		f.prompter.script("Spotify", "$9.99", "", "2026-11-15", "Music", "")
		f.exec("sub add")
		req := f.lastRequest(t)
		require.Equal(t, http.MethodPost, req.method)
		require.JSONEq(t, `{"name":"Spotify","amount":9.99,"cadence":"monthly","next_due_date":"2026-11-15","category":"Music"}`, req.body)
		require.Contains(t, f.out.String(), "Added Spotify (id 9).")
	})

	t.Run("add rejects bad amount locally", func(t *testing.T) {
		before := f.requestCount()
		f.out.Reset()
		f.prompter.script("Spotify", "free")
		f.exec("sub add")
		require.Contains(t, f.out.String(), "must be a positive number")
		require.Equal(t, before, f.requestCount())
	})
}

func TestConsole_Candidates(t *testing.T) {
	f := setupConsoleFixture(t)
	f.login(t, time.Hour)
	f.mux.HandleFunc("GET /api/candidates", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []apimodel.Candidate{{ID: 5, DisplayName: "Hulu", AvgAmount: 7.99, CadenceGuess: apimodel.CadenceMonthly, Confidence: 0.85}})
	})
	f.mux.HandleFunc("POST /api/candidates/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, apimodel.Confirmation{
			Subscription: apimodel.Subscription{ID: 11},
			Candidate:    apimodel.Candidate{ID: 5, DisplayName: "Hulu", Status: apimodel.CandidateConfirmed},
		})
	})
	f.mux.HandleFunc("PATCH /api/candidates/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, apimodel.Candidate{ID: 5, DisplayName: "Hulu", Status: apimodel.CandidateIgnored})
	})
	f.mux.HandleFunc("DELETE /api/candidates/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, apimodel.ErrorBody{Error: "Candidate not found"})
	})

	f.exec("candidates")
	require.Contains(t, f.out.String(), "Hulu")
	require.Contains(t, f.out.String(), "85%")
	require.Equal(t, "status=pending", f.lastRequest(t).query)

	f.out.Reset()
	f.exec("confirm 5")
	require.Contains(t, f.out.String(), "Confirmed Hulu as subscription 11.")

	f.out.Reset()
	f.exec("ignore 5")
	require.JSONEq(t, `{"status":"ignored"}`, f.lastRequest(t).body)
	require.Contains(t, f.out.String(), "Ignored Hulu.")

	f.out.Reset()
	require.False(t, f.exec("candidate delete 5"))
	require.Contains(t, f.out.String(), "Candidate not found")
}

func TestConsole_Import(t *testing.T) {
	f := setupConsoleFixture(t)
	f.login(t, time.Hour)
	f.mux.HandleFunc("POST /api/imports", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apimodel.ErrorBody{Error: "CSV file is required"})
			return
		}
		defer file.Close()
		writeJSON(w, http.StatusCreated, apimodel.ImportResult{
			Import:    apimodel.Import{Filename: header.Filename},
			RowsAdded: 2, CandidatesCreated: 1,
		})
	})

	path := filepath.Join(t.TempDir(), "bank.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,description,amount\n2026-01-01,NETFLIX,15.99\n"), 0o600))

	f.exec("import " + path)
	require.Contains(t, f.out.String(), "Imported bank.csv: 2 rows added, 0 skipped, 1 candidates created, 0 updated.")

	f.out.Reset()
	f.exec("import " + filepath.Join(t.TempDir(), "missing.csv"))
	require.Contains(t, f.out.String(), "[Error]")
}

func TestConsole_Dashboard(t *testing.T) {
	f := setupConsoleFixture(t)
	f.login(t, time.Hour)
	f.mux.HandleFunc("GET /api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, apimodel.Dashboard{
			MonthlyTotal: 23.98, AnnualTotal: 287.76, ActiveCount: 2,
			Upcoming30Days:   []apimodel.UpcomingCharge{{Name: "Netflix", Amount: 15.99, DueDate: "2026-11-01"}},
			TopSubscriptions: []apimodel.TopSubscription{{Name: "Netflix", Amount: 15.99}},
		})
	})

	f.exec("dashboard")
	out := f.out.String()
	require.Contains(t, out, "$23.98")
	require.Contains(t, out, "$287.76")
	require.Contains(t, out, "2026-11-01")
}

func TestConsole_ExpiryWarning(t *testing.T) {
	f := setupConsoleFixture(t)
	f.login(t, 100*time.Second)
	f.prompter.script("status")
	require.NoError(t, f.console.Run(context.Background()))
	require.Contains(t, f.out.String(), "Logged in as x@y.com.")

	t.Run("warning box with countdown", func(t *testing.T) {
		f.out.Reset()
		f.manager.Tick()
		require.True(t, f.manager.Snapshot().Warning.Visible)
		f.exec("status")
		require.Contains(t, f.out.String(), "Session expiring")
		require.Contains(t, f.out.String(), "1:40")
	})

	t.Run("continue extends the session", func(t *testing.T) {
		f.mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer refresh-1" {
				writeJSON(w, http.StatusUnauthorized, apimodel.ErrorBody{Error: "invalid token"})
				return
			}
			writeJSON(w, http.StatusOK, apimodel.RefreshResult{AccessToken: tokentest.WithExpiry(f.now.Add(time.Hour))})
		})
		f.out.Reset()
		f.exec("continue")
		require.Contains(t, f.out.String(), "Session extended.")
		require.False(t, f.manager.Snapshot().Warning.Visible)
	})
}

func TestConsole_SessionNotices(t *testing.T) {
	f := setupConsoleFixture(t)
	f.login(t, 100*time.Second)

	// The console stays on its first prompt, observing the session, while the
	// manager changes state from this goroutine.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	started := make(chan struct{})
	blocking := &blockingPrompter{release: make(chan struct{}), started: started}
	c := console.New(console.Dependencies{Session: f.manager, Prompter: blocking, Out: f.out})
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.Run(ctx)
	}()
	<-started

	f.manager.Tick()
	f.now = f.now.Add(200 * time.Second)
	f.manager.Tick()

	close(blocking.release)
	wg.Wait()

	out := f.out.String()
	require.Contains(t, out, "Session expiring")
	require.Contains(t, out, "Your session has ended. Please log in again.")
	require.False(t, f.manager.IsAuthed())
}

// blockingPrompter holds the first prompt open until release is closed.
type blockingPrompter struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (p *blockingPrompter) Prompt(string) (string, error) {
	p.once.Do(func() { close(p.started) })
	<-p.release
	return "", io.EOF
}

func (p *blockingPrompter) PasswordPrompt(prompt string) (string, error) { return p.Prompt(prompt) }

func TestConsole_RunSignalsActivity(t *testing.T) {
	f := setupConsoleFixture(t)
	f.prompter.script("help", "status", "quit", "help")

	require.NoError(t, f.console.Run(context.Background()))
	require.Len(t, f.activity, 3)
	require.Contains(t, f.out.String(), "Available Commands")

	f.prompter.mu.Lock()
	require.Equal(t, []string{"help"}, f.prompter.lines)
	f.prompter.mu.Unlock()
}

func TestConsole_UnknownCommand(t *testing.T) {
	f := setupConsoleFixture(t)
	require.False(t, f.exec("frobnicate"))
	require.True(t, strings.Contains(f.out.String(), "unknown command: frobnicate"))
	require.True(t, f.exec("exit"))
}
