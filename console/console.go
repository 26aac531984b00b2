// Package console is the interactive front end: it reads commands, calls the API
// and keeps the user informed about their session, including the expiry warning.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jrsteele09/go-subscription-client/api"
	"github.com/jrsteele09/go-subscription-client/apimodel"
	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
	"github.com/jrsteele09/go-subscription-client/session"
	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
)

// API is the part of *api.Client the console drives.
type API interface {
	Login(ctx context.Context, creds apimodel.Credentials) (*apimodel.AuthResult, error)
	Register(ctx context.Context, creds apimodel.Credentials) (*apimodel.AuthResult, error)
	Me(ctx context.Context) (*apimodel.User, error)
	ListSubscriptions(ctx context.Context, status string) ([]apimodel.Subscription, error)
	CreateSubscription(ctx context.Context, sub apimodel.NewSubscription) (*apimodel.Subscription, error)
	UpdateSubscription(ctx context.Context, id int64, patch apimodel.SubscriptionPatch) (*apimodel.Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) error
	ListCandidates(ctx context.Context, status string) ([]apimodel.Candidate, error)
	IgnoreCandidate(ctx context.Context, id int64) (*apimodel.Candidate, error)
	ConfirmCandidate(ctx context.Context, id int64) (*apimodel.Confirmation, error)
	DeleteCandidate(ctx context.Context, id int64) error
	ImportCSV(ctx context.Context, filename string, csv io.Reader) (*apimodel.ImportResult, error)
	Dashboard(ctx context.Context) (*apimodel.Dashboard, error)
}

// Session is the part of *session.Manager the console drives.
type Session interface {
	Snapshot() session.Snapshot
	Login(result apimodel.AuthResult) error
	Logout()
	ContinueSession(ctx context.Context)
	OnChange(fn func(session.Snapshot)) (unsubscribe func())
}

var (
	_ API     = (*api.Client)(nil)
	_ Session = (*session.Manager)(nil)
)

type Dependencies struct {
	API      API
	Session  Session
	Prompter Prompter
	Out      io.Writer
	// Activity receives a signal for every line entered. May be nil.
	Activity chan<- struct{}
}

type Console struct {
	api      API
	session  Session
	in       Prompter
	activity chan<- struct{}

	outMu sync.Mutex
	out   io.Writer

	// last state seen by the session observer
	warningShown bool
	wasAuthed    bool
	userLogout   bool
}

func New(deps Dependencies) *Console {
	return &Console{
		api:      deps.API,
		session:  deps.Session,
		in:       deps.Prompter,
		activity: deps.Activity,
		out:      deps.Out,
	}
}

// Run reads and executes commands until quit, end of input or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	unsubscribe := c.watchSession()
	defer unsubscribe()

	c.printf("%s\n\n", infoStyle.Render("Type help for a list of commands."))
	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := c.in.Prompt(c.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				c.printf("\n")
				return nil
			}
			return fmt.Errorf("console.Prompt: %w", err)
		}

		c.noteActivity()
		if quit := c.Execute(ctx, input); quit {
			return nil
		}
	}
}

func (c *Console) prompt() string {
	snap := c.session.Snapshot()
	if snap.IsAuthed && snap.User != nil {
		return promptStyle.Render(snap.User.Email + "> ")
	}
	return promptStyle.Render("subfinder> ")
}

// noteActivity never blocks input; a dropped signal is covered by the throttle window.
func (c *Console) noteActivity() {
	if c.activity == nil {
		return
	}
	select {
	case c.activity <- struct{}{}:
	default:
	}
}

// Execute runs one command line and reports whether the console should exit.
// Errors are printed, never returned.
func (c *Console) Execute(ctx context.Context, input string) (quit bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	cmd, ok := lookupCommand(name)
	if !ok {
		c.printError(fmt.Errorf("unknown command: %s (type help for commands)", name))
		return false
	}
	if cmd.protected && !c.session.Snapshot().IsAuthed {
		c.printError(apperrors.ErrNotAuthenticated)
		c.printf("%s\n", infoStyle.Render("Use login or register first."))
		return false
	}

	var err error
	switch cmd.name {
	case "quit":
		return true
	case "help":
		c.printHelp()
	case "login":
		err = c.authenticate(ctx, c.api.Login)
	case "register":
		err = c.authenticate(ctx, c.api.Register)
	case "logout":
		c.logout()
	case "whoami":
		err = c.whoami(ctx)
	case "status":
		c.printStatus()
	case "continue":
		c.continueSession(ctx)
	case "dashboard":
		err = c.dashboard(ctx)
	case "subs":
		err = c.listSubscriptions(ctx, optionalArg(args))
	case "sub":
		err = c.subscriptionCommand(ctx, args)
	case "candidates":
		err = c.listCandidates(ctx, optionalArg(args))
	case "confirm":
		err = c.confirmCandidate(ctx, args)
	case "ignore":
		err = c.ignoreCandidate(ctx, args)
	case "candidate":
		err = c.candidateCommand(ctx, args)
	case "import":
		err = c.importCSV(ctx, args)
	}
	if err != nil {
		log.Debug().Err(err).Str("command", cmd.name).Msg("console: command failed")
		c.printError(err)
	}
	return false
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) printSuccess(msg string) {
	c.printf("%s\n", successStyle.Render(msg))
}

// printError shows the API's message for API errors and the error text otherwise.
func (c *Console) printError(err error) {
	msg := err.Error()
	var apiErr *api.APIError
	if apperrors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	c.printf("%s %s\n", errorStyle.Render("[Error]"), msg)
}
