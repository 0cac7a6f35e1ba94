package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RedemptionStatus string

const (
	RedemptionStatusActive  RedemptionStatus = "active"
	RedemptionStatusUsed    RedemptionStatus = "used"
	RedemptionStatusExpired RedemptionStatus = "expired"
)

// Reward is a catalog entry redeemable against one token category.
type Reward struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      TokenCategory `json:"category"`
	Cost          int           `json:"cost"`
	Brand         string        `json:"brand"`
	OriginalPrice string        `json:"original_price,omitempty"`
	Discount      string        `json:"discount,omitempty"`
	Image         string        `json:"image,omitempty"`
	Available     bool          `json:"available"`
	Featured      bool          `json:"featured"`
	Terms         []string      `json:"terms,omitempty"`
}

// Redemption records a voucher issued against a reward.
type Redemption struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"user_id" bson:"user_id"`
	RewardID    string             `json:"reward_id" bson:"reward_id"`
	Category    TokenCategory      `json:"category" bson:"category"`
	Cost        int                `json:"cost" bson:"cost"`
	VoucherCode string             `json:"voucher_code" bson:"voucher_code"`
	Status      RedemptionStatus   `json:"status" bson:"status"`
	RedeemedAt  time.Time          `json:"redeemed_at" bson:"redeemed_at"`
	ExpiresAt   time.Time          `json:"expires_at" bson:"expires_at"`
}
