package apimodel

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-subscription-client/internal/errors"
)

// Cadence is how often a subscription charges.
type Cadence string

const (
	CadenceWeekly    Cadence = "weekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
)

// Cadences lists the cadences the API accepts, in display order.
var Cadences = []Cadence{CadenceWeekly, CadenceMonthly, CadenceQuarterly, CadenceYearly}

func ParseCadence(s string) (Cadence, error) {
	c := Cadence(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Cadences {
		if c == known {
			return c, nil
		}
	}
	return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "cadence must be one of %v", Cadences)
}

// SubscriptionStatus values accepted by the API.
const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
)

// DateLayout is the API's date format (ISO date, no time).
const DateLayout = "2006-01-02"

type Subscription struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Name        string  `json:"name"`
	MerchantKey string  `json:"merchant_key"`
	Amount      float64 `json:"amount"`
	Cadence     Cadence `json:"cadence"`
	NextDueDate string  `json:"next_due_date"`
	Category    *string `json:"category"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// NewSubscription is the body of POST /api/subscriptions.
type NewSubscription struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Cadence     Cadence `json:"cadence"`
	NextDueDate string  `json:"next_due_date"`
	Category    *string `json:"category,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (n NewSubscription) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "name is required")
	}
	if n.Amount <= 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}
	if _, err := ParseCadence(string(n.Cadence)); err != nil {
		return err
	}
	return ValidateDate(n.NextDueDate)
}

// SubscriptionPatch is the body of PATCH /api/subscriptions/{id}. Nil fields are left untouched.
type SubscriptionPatch struct {
	Name        *string  `json:"name,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Cadence     *Cadence `json:"cadence,omitempty"`
	NextDueDate *string  `json:"next_due_date,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(s)); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "date %q must be YYYY-MM-DD", s)
	}
	return nil
}

// ParseAmount accepts "15.99", "$15.99" and "1,015.99".
func ParseAmount(s string) (float64, error) {
	clean := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v <= 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "amount %q must be a positive number", s)
	}
	return v, nil
}
