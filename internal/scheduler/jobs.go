package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biblia-online/biblia/internal/bible"
	"github.com/biblia-online/biblia/internal/db/controller/subscription"
)

// Job names.
const (
	JobSubscriptionSweep = "subscription_sweep"
	JobDailyVerseWarmup  = "daily_verse_warmup"
)

// DailyVerser resolves the verse of a day.
type DailyVerser interface {
	DailyVerse(ctx context.Context, day time.Time) bible.DailyVerse
}

// SubscriptionSweep deactivates expired subscriptions.
func SubscriptionSweep(spec string, db *gorm.DB, now func() time.Time) Job {
	return Job{
		Name: JobSubscriptionSweep,
		Spec: spec,
		Run: func(ctx context.Context) error {
			n, err := subscription.ExpireDue(db.WithContext(ctx), now())
			if err != nil {
				return err
			}

			if n > 0 {
				log.Info().Int64("count", n).Msg("expired subscriptions deactivated")
			}

			return nil
		},
	}
}

// DailyVerseWarmup resolves the verse of the day so the first page view is served from cache.
func DailyVerseWarmup(spec string, r DailyVerser, now func() time.Time) Job {
	return Job{
		Name: JobDailyVerseWarmup,
		Spec: spec,
		Run: func(ctx context.Context) error {
			dv := r.DailyVerse(ctx, now())
			log.Debug().Str("reference", dv.Reference).Str("source", string(dv.Source)).Msg("daily verse warmed up")

			return nil
		},
	}
}
