// Package subscription manages the premium plans of users.
package subscription

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/db/models"
)

var (
	// ErrNotFound is returned when the user has no active subscription.
	ErrNotFound = errors.New("no active subscription")
	// ErrInvalidPlan is returned for plans other than monthly and annual.
	ErrInvalidPlan = errors.New("invalid plan type")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// EndDate returns when a plan started at start runs out.
func EndDate(plan models.PlanType, start time.Time) (time.Time, error) {
	switch plan {
	case models.PlanMonthly:
		return start.AddDate(0, 1, 0), nil
	case models.PlanAnnual:
		return start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}
}

// Subscribe starts a plan at now, deactivating any active subscription of the user.
func Subscribe(db *gorm.DB, userID uint64, plan models.PlanType, now time.Time) (*models.Subscription, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	end, err := EndDate(plan, now)
	if err != nil {
		return nil, err
	}

	s := models.Subscription{UserID: userID, PlanType: plan, StartDate: now, EndDate: end, IsActive: true}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}

		return tx.Create(&s).Error
	})
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Current returns the active subscription of a user that has not ended at now.
func Current(db *gorm.DB, userID uint64, now time.Time) (*models.Subscription, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var s models.Subscription

	err := db.Where("user_id = ? AND is_active = ? AND end_date > ?", userID, true, now).
		Order("end_date DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Cancel deactivates the active subscription of a user.
func Cancel(db *gorm.DB, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Model(&models.Subscription{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ExpireDue deactivates every subscription that ended at or before now and returns how many.
func ExpireDue(db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	res := db.Model(&models.Subscription{}).
		Where("is_active = ? AND end_date <= ?", true, now).
		Update("is_active", false)

	return res.RowsAffected, res.Error
}
