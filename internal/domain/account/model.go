package account

import "time"

// CustomerMapping links a Stripe customer id to an internal account.
// Written at checkout time by the account layer; this core only reads it
// to resolve customers whose billing row has no direct link yet.
type CustomerMapping struct {
	CustomerID string    `json:"customer_id" gorm:"primaryKey;column:customer_id"`
	AccountID  string    `json:"account_id" gorm:"column:account_id;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (CustomerMapping) TableName() string {
	return "customer_accounts"
}
