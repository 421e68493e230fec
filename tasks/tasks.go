package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"styleforecastapi/models"
	"styleforecastapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const TypeArchivePlans = "plans:archive"

type ArchivePlansPayload struct {
	// archive plans strictly before this date (YYYY-MM-DD); empty means today
	Before string `json:"before"`
}

// Client initializes an asynq client for enqueuing tasks
func NewClient() (*asynq.Client, error) {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: services.GetEnv("ASYNC_BROKER_ADDRESS", "localhost:6379")}), nil
}

func NewArchivePlansTask(before string) (*asynq.Task, error) {
	payload, err := json.Marshal(ArchivePlansPayload{Before: before})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeArchivePlans, payload), nil
}

// HandleArchivePlansTask moves past dated plans into outfit history. Plans
// with a saved outfit become history entries; plans without one are just
// deleted. Runs nightly from the scheduler, safe to run twice: an already
// archived plan no longer exists.
func HandleArchivePlansTask(ctx context.Context, t *asynq.Task, db *gorm.DB) error {
	var payload ArchivePlansPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal archive payload: %v: %w", err, asynq.SkipRetry)
	}
	before := payload.Before
	if before == "" {
		before = time.Now().UTC().Format("2006-01-02")
	}

	var plans []models.Plan
	if err := db.WithContext(ctx).Where("date < ?", before).Find(&plans).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}
	fmt.Printf("[Plans] Archiving %v plans before %s\n", len(plans), before)

	archived := 0
	for _, plan := range plans {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if plan.OutfitJSON != "" {
				entry := models.OutfitHistory{
					Date:       plan.Date,
					Location:   plan.Location,
					Weather:    plan.Weather,
					Occasion:   plan.Occasion,
					OutfitJSON: plan.OutfitJSON,
					OwnerID:    plan.OwnerID,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&models.Plan{}, plan.ID).Error
		})
		if err != nil {
			sentry.CaptureException(fmt.Errorf("[Plans] Failed to archive plan %v: %v", plan.ID, err))
			return err
		}
		archived++
	}
	fmt.Printf("[Plans] Archived %v plans\n", archived)
	return nil
}
