package apimodel

// Candidate review statuses.
const (
	CandidatePending   = "pending"
	CandidateConfirmed = "confirmed"
	CandidateIgnored   = "ignored"
)

// Candidate is a recurring charge the API detected in imported transactions.
type Candidate struct {
	ID                      int64   `json:"id"`
	UserID                  int64   `json:"user_id"`
	MerchantKey             string  `json:"merchant_key"`
	DisplayName             string  `json:"display_name"`
	AvgAmount               float64 `json:"avg_amount"`
	CadenceGuess            Cadence `json:"cadence_guess"`
	Confidence              float64 `json:"confidence"`
	LastSeen                string  `json:"last_seen"`
	NextPredicted           string  `json:"next_predicted"`
	Status                  string  `json:"status"`
	ConfirmedSubscriptionID *int64  `json:"confirmed_subscription_id"`
	CreatedAt               string  `json:"created_at"`
	UpdatedAt               string  `json:"updated_at"`
}

// CandidatePatch is the body of PATCH /api/candidates/{id}.
type CandidatePatch struct {
	DisplayName  *string  `json:"display_name,omitempty"`
	AvgAmount    *float64 `json:"avg_amount,omitempty"`
	CadenceGuess *Cadence `json:"cadence_guess,omitempty"`
	Status       *string  `json:"status,omitempty"`
}

// Confirmation is returned when a candidate is turned into a subscription.
type Confirmation struct {
	Subscription Subscription `json:"subscription"`
	Candidate    Candidate    `json:"candidate"`
}
