package apimodel

// Dashboard totals are computed server side from active subscriptions.
type Dashboard struct {
	MonthlyTotal     float64           `json:"monthly_total"`
	AnnualTotal      float64           `json:"annual_total"`
	ActiveCount      int               `json:"active_count"`
	Upcoming30Days   []UpcomingCharge  `json:"upcoming_30_days"`
	TopSubscriptions []TopSubscription `json:"top_subscriptions"`
}

type UpcomingCharge struct {
	SubscriptionID int64   `json:"subscription_id"`
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	DueDate        string  `json:"due_date"`
	Cadence        Cadence `json:"cadence"`
}

type TopSubscription struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Cadence Cadence `json:"cadence"`
}
