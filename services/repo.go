package services

import (
	"context"

	"gorm.io/gorm"

	"styleforecastapi/models"
)

// GormWardrobeQuery reads a user's wardrobe snapshot for one generation call.
type GormWardrobeQuery struct {
	DB *gorm.DB
}

func (q *GormWardrobeQuery) ItemsForUser(ctx context.Context, userID uint) ([]models.WardrobeItem, error) {
	var items []models.WardrobeItem
	err := q.DB.WithContext(ctx).Where("owner_id = ?", userID).Find(&items).Error
	return items, err
}

type GormAccessoryQuery struct {
	DB *gorm.DB
}

func (q *GormAccessoryQuery) AccessoriesForUser(ctx context.Context, userID uint) ([]models.Accessory, error) {
	var accessories []models.Accessory
	err := q.DB.WithContext(ctx).Where("owner_id = ?", userID).Find(&accessories).Error
	return accessories, err
}
