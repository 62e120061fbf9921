package models

import "time"

// PlanType is the billing period of a subscription.
type PlanType string

const (
	// PlanMonthly lasts one calendar month.
	PlanMonthly PlanType = "monthly"
	// PlanAnnual lasts one calendar year.
	PlanAnnual PlanType = "annual"
)

// Subscription is a premium plan of a user. At most one row per user is active.
type Subscription struct {
	UUIDModel
	UserID    uint64    `gorm:"index;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PlanType  PlanType  `gorm:"type:varchar(16);not null" json:"plan_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `gorm:"index" json:"end_date"`
	IsActive  bool      `gorm:"index" json:"is_active"`
}

// TableName specifies the database table name for the Subscription model.
func (Subscription) TableName() string {
	return "subscriptions"
}
