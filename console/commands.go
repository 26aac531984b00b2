package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-subscription-client/apimodel"
	"github.com/jrsteele09/go-subscription-client/session"
	"github.com/jrsteele09/go-subscription-client/token"
)

type command struct {
	name      string
	usage     string
	desc      string
	protected bool
}

// commands is in help order. Protected commands need a logged-in session.
var commands = []command{
	{name: "login", usage: "login", desc: "Log in with email and password"},
	{name: "register", usage: "register", desc: "Create an account and log in"},
	{name: "logout", usage: "logout", desc: "End the session", protected: true},
	{name: "whoami", usage: "whoami", desc: "Show the logged-in user", protected: true},
	{name: "status", usage: "status", desc: "Show session and token expiry"},
	{name: "continue", usage: "continue", desc: "Extend a session that is about to expire", protected: true},
	{name: "dashboard", usage: "dashboard", desc: "Totals and upcoming charges", protected: true},
	{name: "subs", usage: "subs [active|canceled]", desc: "List subscriptions", protected: true},
	{name: "sub", usage: "sub add | sub cancel|activate|delete <id>", desc: "Manage a subscription", protected: true},
	{name: "candidates", usage: "candidates [pending|confirmed|ignored]", desc: "List detected subscriptions", protected: true},
	{name: "confirm", usage: "confirm <id>", desc: "Turn a candidate into a subscription", protected: true},
	{name: "ignore", usage: "ignore <id>", desc: "Ignore a candidate", protected: true},
	{name: "candidate", usage: "candidate delete <id>", desc: "Delete a candidate", protected: true},
	{name: "import", usage: "import <file.csv>", desc: "Upload a bank export", protected: true},
	{name: "help", usage: "help", desc: "Show this help"},
	{name: "quit", usage: "quit", desc: "Exit"},
}

var commandAliases = map[string]string{
	"exit":          "quit",
	"q":             "quit",
	"?":             "help",
	"subscriptions": "subs",
}

func lookupCommand(name string) (command, bool) {
	if alias, ok := commandAliases[name]; ok {
		name = alias
	}
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (c *Console) printHelp() {
	var b strings.Builder
	b.WriteString("\n" + headerStyle.Render("Available Commands") + "\n")
	b.WriteString(infoStyle.Render(strings.Repeat("─", 20)) + "\n\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-40s", cmd.usage)),
			infoStyle.Render(cmd.desc))
	}
	b.WriteString("\n" + infoStyle.Render("Tip: Ctrl+C or Ctrl+D exits") + "\n\n")
	c.printf("%s", b.String())
}

type authFunc func(ctx context.Context, creds apimodel.Credentials) (*apimodel.AuthResult, error)

func (c *Console) authenticate(ctx context.Context, call authFunc) error {
	email, err := c.in.Prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := c.in.PasswordPrompt("Password: ")
	if err != nil {
		return err
	}

	result, err := call(ctx, apimodel.Credentials{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return err
	}
	if err := c.session.Login(*result); err != nil {
		return err
	}

	who := strings.TrimSpace(email)
	if result.User != nil && result.User.Email != "" {
		who = result.User.Email
	}
	c.printSuccess("Logged in as " + who + ".")
	return nil
}

func (c *Console) whoami(ctx context.Context) error {
	user, err := c.api.Me(ctx)
	if err != nil {
		return err
	}
	c.printf("%s (id %d)\n", user.Email, user.ID)
	return nil
}

func (c *Console) printStatus() {
	snap := c.session.Snapshot()
	if !snap.IsAuthed {
		c.printf("%s\n", infoStyle.Render("Not logged in."))
		return
	}

	who := "unknown user"
	if snap.User != nil {
		who = snap.User.Email
	}
	remaining := token.SecondsUntilExpiry(snap.Token, time.Now())
	c.printf("Logged in as %s. Access token expires in %s.\n", who, session.FormatCountdown(int(remaining)))
	if snap.Warning.Visible {
		c.printf("%s\n", renderExpiryWarning(snap.Warning))
	}
}

func (c *Console) logout() {
	c.outMu.Lock()
	c.userLogout = true
	c.outMu.Unlock()

	c.session.Logout()

	c.outMu.Lock()
	c.userLogout = false
	c.outMu.Unlock()
	c.printSuccess("Logged out.")
}

func (c *Console) continueSession(ctx context.Context) {
	c.session.ContinueSession(ctx)
	if c.session.Snapshot().IsAuthed {
		c.printSuccess("Session extended.")
	}
}

// watchSession prints the expiry warning when it appears and a notice when the
// session ends underneath the user.
func (c *Console) watchSession() (unsubscribe func()) {
	snap := c.session.Snapshot()
	c.outMu.Lock()
	c.wasAuthed = snap.IsAuthed
	c.warningShown = snap.Warning.Visible
	c.outMu.Unlock()

	return c.session.OnChange(c.sessionChanged)
}

func (c *Console) sessionChanged(snap session.Snapshot) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	switch {
	case c.wasAuthed && !snap.IsAuthed && c.userLogout:
	case c.wasAuthed && !snap.IsAuthed:
		fmt.Fprintf(c.out, "\n%s\n", warningTitleStyle.Render("Your session has ended. Please log in again."))
	case snap.Warning.Visible && (!c.warningShown || snap.Warning.SecondsRemaining%60 == 0):
		fmt.Fprintf(c.out, "\n%s\n", renderExpiryWarning(snap.Warning))
	}
	c.wasAuthed = snap.IsAuthed
	c.warningShown = snap.Warning.Visible
}
