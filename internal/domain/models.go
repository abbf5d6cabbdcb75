package domain

import (
	"strconv"
	"time"
)

// SubscriptionTier is a user's billing tier
type SubscriptionTier string

const (
	TierFree SubscriptionTier = "FREE"
	TierPro  SubscriptionTier = "PRO"
)

// ProCredits is the sentinel balance assigned on upgrade. PRO users are never
// metered, the value only exists so the wallet has something to show.
const ProCredits = 999999

// GuestOwnerID attributes results produced without a registered profile.
const GuestOwnerID = "guest"

// FoodStatus is the closed verdict set for a single food item
type FoodStatus string

const (
	FoodStatusSafe     FoodStatus = "SAFE"
	FoodStatusModerate FoodStatus = "MODERATE"
	FoodStatusAvoid    FoodStatus = "AVOID"
)

// Valid reports whether the status is one of SAFE, MODERATE or AVOID
func (s FoodStatus) Valid() bool {
	switch s {
	case FoodStatusSafe, FoodStatusModerate, FoodStatusAvoid:
		return true
	}
	return false
}

// Attachment is one user-supplied input file, encoded for transport.
// DisplayHandle is an ephemeral preview reference (a Telegram file ID here)
// and is never persisted.
type Attachment struct {
	RawBytes       []byte
	EncodedPayload string
	MediaType      string
	DisplayHandle  string
}

// AnalysisRequest is the assembled reasoning-service request. It is ephemeral
// and never persisted. Ordering is a contract: the instruction tells the model
// that the first set of images are reports and the second set is food, so
// Attachments must return reports first, food second, both in input order.
type AnalysisRequest struct {
	Instruction string
	Reports     []Attachment
	Foods       []Attachment
}

// Attachments returns all attachments in the documented order
func (r *AnalysisRequest) Attachments() []Attachment {
	out := make([]Attachment, 0, len(r.Reports)+len(r.Foods))
	out = append(out, r.Reports...)
	out = append(out, r.Foods...)
	return out
}

// Biomarker is one value extracted from a lab report
type Biomarker struct {
	Name           string `json:"name"`
	Value          string `json:"value"`
	Status         string `json:"status"`
	ReferenceRange string `json:"referenceRange,omitempty"`
}

// FoodItem is one identified food item and its compatibility verdict.
// Reason is expected to quote a concrete biomarker value; that is a content
// contract enforced by the instruction text, not by this type.
type FoodItem struct {
	Name          string     `json:"name"`
	Status        FoodStatus `json:"status"`
	Reason        string     `json:"biotechReason"`
	SuggestedSwap string     `json:"suggestedSwap,omitempty"`
}

// AnalysisResult is the atomic unit of output and of history
type AnalysisResult struct {
	ID                 string      `json:"id"`
	OwnerID            string      `json:"ownerId"`
	CreatedAt          time.Time   `json:"createdAt"`
	CompatibilityScore int         `json:"compatibilityScore"`
	Biomarkers         []Biomarker `json:"biomarkers"`
	FoodItems          []FoodItem  `json:"foodItems"`
	Summary            string      `json:"summary"`
	Synced             bool        `json:"isSynced"`
}

// UserProfile represents a registered user
type UserProfile struct {
	ID           uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	Tier         SubscriptionTier
	Credits      int
	LastSyncedAt time.Time
}

// OwnerID returns the history/persistence scope key for the profile.
// A nil or unsaved profile maps to the guest scope.
func (u *UserProfile) OwnerID() string {
	if u == nil || u.ID == 0 {
		return GuestOwnerID
	}
	return strconv.FormatUint(uint64(u.ID), 10)
}

// DisplayName returns the best human-readable name for the profile
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return "Guest"
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return strconv.FormatInt(u.TelegramID, 10)
}

// PaymentChannel is a supported checkout route
type PaymentChannel string

const (
	ChannelPayPal PaymentChannel = "PAYPAL"
	ChannelUPI    PaymentChannel = "UPI"
)

// PaymentRecord is one row of the payment audit trail
type PaymentRecord struct {
	ID        uint
	OwnerID   string
	Channel   PaymentChannel
	AmountUSD float64
	Reference string
	TxID      string
	Verified  bool
	CreatedAt time.Time
}
