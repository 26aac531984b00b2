package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-subscription-client/apimodel"
	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
	"github.com/jrsteele09/go-subscription-client/internal/utils"
)

func (c *Console) dashboard(ctx context.Context) error {
	d, err := c.api.Dashboard(ctx)
	if err != nil {
		return err
	}
	c.printf("%s\n", renderDashboard(d))
	return nil
}

func (c *Console) listSubscriptions(ctx context.Context, status string) error {
	subs, err := c.api.ListSubscriptions(ctx, strings.ToLower(status))
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		c.printf("%s\n", infoStyle.Render("No subscriptions yet. Add one with sub add or import a CSV."))
		return nil
	}
	c.printf("%s\n", renderSubscriptions(subs))
	return nil
}

func (c *Console) subscriptionCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("sub")
	}
	action := strings.ToLower(args[0])
	if action == "add" {
		return c.addSubscription(ctx)
	}

	id, err := parseID(args[1:])
	if err != nil {
		return err
	}
	switch action {
	case "cancel", "activate":
		status := apimodel.SubscriptionCanceled
		if action == "activate" {
			status = apimodel.SubscriptionActive
		}
		sub, err := c.api.UpdateSubscription(ctx, id, apimodel.SubscriptionPatch{Status: utils.Ptr(status)})
		if err != nil {
			return err
		}
		c.printSuccess(fmt.Sprintf("%s is now %s.", sub.Name, sub.Status))
	case "delete":
		if err := c.api.DeleteSubscription(ctx, id); err != nil {
			return err
		}
		c.printSuccess(fmt.Sprintf("Subscription %d deleted.", id))
	default:
		return usageError("sub")
	}
	return nil
}

// addSubscription asks for each field and validates locally before sending.
func (c *Console) addSubscription(ctx context.Context) error {
	name, err := c.in.Prompt("Name: ")
	if err != nil {
		return err
	}
	rawAmount, err := c.in.Prompt("Amount: ")
	if err != nil {
		return err
	}
	amount, err := apimodel.ParseAmount(rawAmount)
	if err != nil {
		return err
	}
	rawCadence, err := c.in.Prompt(fmt.Sprintf("Cadence %v [monthly]: ", apimodel.Cadences))
	if err != nil {
		return err
	}
	cadence := apimodel.CadenceMonthly
	if strings.TrimSpace(rawCadence) != "" {
		if cadence, err = apimodel.ParseCadence(rawCadence); err != nil {
			return err
		}
	}
	due, err := c.in.Prompt("Next due date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	category, err := c.in.Prompt("Category (optional): ")
	if err != nil {
		return err
	}
	notes, err := c.in.Prompt("Notes (optional): ")
	if err != nil {
		return err
	}

	sub, err := c.api.CreateSubscription(ctx, apimodel.NewSubscription{
		Name:        strings.TrimSpace(name),
		Amount:      amount,
		Cadence:     cadence,
		NextDueDate: strings.TrimSpace(due),
		Category:    utils.OptionalString(category),
		Notes:       utils.OptionalString(notes),
	})
	if err != nil {
		return err
	}
	c.printSuccess(fmt.Sprintf("Added %s (id %d).", sub.Name, sub.ID))
	return nil
}

func (c *Console) listCandidates(ctx context.Context, status string) error {
	cands, err := c.api.ListCandidates(ctx, strings.ToLower(status))
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		c.printf("%s\n", infoStyle.Render("No candidates. Import a bank CSV to detect subscriptions."))
		return nil
	}
	c.printf("%s\n", renderCandidates(cands))
	return nil
}

func (c *Console) confirmCandidate(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	confirmation, err := c.api.ConfirmCandidate(ctx, id)
	if err != nil {
		return err
	}
	c.printSuccess(fmt.Sprintf("Confirmed %s as subscription %d.",
		confirmation.Candidate.DisplayName, confirmation.Subscription.ID))
	return nil
}

func (c *Console) ignoreCandidate(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	cand, err := c.api.IgnoreCandidate(ctx, id)
	if err != nil {
		return err
	}
	c.printSuccess(fmt.Sprintf("Ignored %s.", cand.DisplayName))
	return nil
}

func (c *Console) candidateCommand(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.ToLower(args[0]) != "delete" {
		return usageError("candidate")
	}
	id, err := parseID(args[1:])
	if err != nil {
		return err
	}
	if err := c.api.DeleteCandidate(ctx, id); err != nil {
		return err
	}
	c.printSuccess(fmt.Sprintf("Candidate %d deleted.", id))
	return nil
}

func (c *Console) importCSV(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("import")
	}
	path := strings.Join(args, " ")
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := c.api.ImportCSV(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	c.printSuccess(fmt.Sprintf("Imported %s: %d rows added, %d skipped, %d candidates created, %d updated.",
		result.Import.Filename, result.RowsAdded, result.RowsSkipped, result.CandidatesCreated, result.CandidatesUpdated))
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "an id is required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "id %q must be a positive number", args[0])
	}
	return id, nil
}

func usageError(name string) error {
	cmd, _ := lookupCommand(name)
	return apperrors.Wrapf(apperrors.ErrInvalidInput, "usage: %s", cmd.usage)
}
