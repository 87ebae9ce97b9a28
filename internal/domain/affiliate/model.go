package affiliate

import (
	"time"

	"github.com/shopspring/decimal"
)

// Affiliate is a partner earning commissions on referred accounts.
// Read-only inside this core; the affiliate back office owns writes.
type Affiliate struct {
	ID string `json:"id" gorm:"primaryKey;column:id"`
	// CommissionRate is the fraction of the net invoice amount paid out,
	// e.g. 0.25 for 25 percent
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"column:commission_rate;type:numeric(5,4)"`
	// Blocked affiliates accrue no commissions; blocking is a normal
	// business state, not an error
	Blocked bool `json:"blocked" gorm:"column:blocked"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Affiliate) TableName() string {
	return "affiliates"
}
