package console

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jrsteele09/go-subscription-client/apimodel"
	"github.com/jrsteele09/go-subscription-client/internal/utils"
	"github.com/jrsteele09/go-subscription-client/session"
)

func renderExpiryWarning(w session.Warning) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		warningTitleStyle.Render("Session expiring"),
		"",
		fmt.Sprintf("Your session expires in %s.", session.FormatCountdown(w.SecondsRemaining)),
		"",
		commandStyle.Render("continue")+infoStyle.Render("  stay logged in"),
		commandStyle.Render("logout")+infoStyle.Render("    log out now"),
	)
	return warningBoxStyle.Render(body)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		String()
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func renderSubscriptions(subs []apimodel.Subscription) string {
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			money(s.Amount),
			string(s.Cadence),
			s.NextDueDate,
			utils.Value(s.Category),
			s.Status,
		})
	}
	return renderTable([]string{"ID", "Name", "Amount", "Cadence", "Next due", "Category", "Status"}, rows)
}

func renderCandidates(cands []apimodel.Candidate) string {
	rows := make([][]string, 0, len(cands))
	for _, c := range cands {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.DisplayName,
			money(c.AvgAmount),
			string(c.CadenceGuess),
			fmt.Sprintf("%.0f%%", c.Confidence*100),
			c.LastSeen,
			c.NextPredicted,
		})
	}
	return renderTable([]string{"ID", "Merchant", "Avg amount", "Cadence", "Confidence", "Last seen", "Next"}, rows)
}

func renderDashboard(d *apimodel.Dashboard) string {
	summary := fmt.Sprintf("%s %s   %s %s   %s %d",
		infoStyle.Render("Monthly"), money(d.MonthlyTotal),
		infoStyle.Render("Annual"), money(d.AnnualTotal),
		infoStyle.Render("Active"), d.ActiveCount)

	upcoming := make([][]string, 0, len(d.Upcoming30Days))
	for _, u := range d.Upcoming30Days {
		upcoming = append(upcoming, []string{u.DueDate, u.Name, money(u.Amount), string(u.Cadence)})
	}
	top := make([][]string, 0, len(d.TopSubscriptions))
	for _, t := range d.TopSubscriptions {
		top = append(top, []string{t.Name, money(t.Amount), string(t.Cadence)})
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Dashboard"),
		summary,
		"",
		headerStyle.Render("Upcoming (30 days)"),
		renderTable([]string{"Due", "Name", "Amount", "Cadence"}, upcoming),
		"",
		headerStyle.Render("Top subscriptions"),
		renderTable([]string{"Name", "Amount", "Cadence"}, top),
	)
}
