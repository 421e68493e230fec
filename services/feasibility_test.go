package services

import (
	"testing"

	"styleforecastapi/models"

	"github.com/stretchr/testify/assert"
)

func snapshot(condition string, temp int) *WeatherSnapshot {
	return &WeatherSnapshot{Condition: condition, Temp: IntPointer(temp)}
}

func TestOuterRequired(t *testing.T) {
	assert.True(t, OuterRequired(snapshot("Clear", 5)))
	assert.True(t, OuterRequired(snapshot("Clear", -3)))
	assert.False(t, OuterRequired(snapshot("Clear", 6)))
	assert.True(t, OuterRequired(snapshot("Snow", 20)))
	assert.True(t, OuterRequired(snapshot("Rain", 20)))
	assert.False(t, OuterRequired(snapshot("Clouds", 20)))
	assert.False(t, OuterRequired(nil))
}

func TestFeasibilityProceedsWithCompletePool(t *testing.T) {
	pool := testPool()
	assert.Nil(t, CheckFeasibility(pool, pool, snapshot("Clear", 20), "Casual", false))
}

func TestFeasibilityOnePieceReplacesTopBottom(t *testing.T) {
	pool := []models.WardrobeItem{
		{JsonModel: models.JsonModel{ID: 1}, ItemType: models.TypeOnePiece, Status: models.StatusClean},
		{JsonModel: models.JsonModel{ID: 2}, ItemType: models.TypeShoes, Status: models.StatusClean},
	}
	assert.Nil(t, CheckFeasibility(pool, pool, snapshot("Clear", 20), "Casual", false))
}

func TestFeasibilityMissingRoles(t *testing.T) {
	pool := []models.WardrobeItem{
		{JsonModel: models.JsonModel{ID: 1}, ItemType: models.TypeTop, Status: models.StatusClean},
	}
	failure := CheckFeasibility(pool, pool, snapshot("Clear", 20), "Casual", false)
	assert.NotNil(t, failure)
	assert.Equal(t, []string{"shoes", "bottom"}, failure.MissingRoles)
}

func TestFeasibilityRequiresOuterInSnow(t *testing.T) {
	pool := testPool()
	failure := CheckFeasibility(pool, pool, snapshot("Snow", 2), "Casual", false)
	assert.NotNil(t, failure)
	assert.Equal(t, []string{"outerwear"}, failure.MissingRoles)

	pool = append(pool, models.WardrobeItem{JsonModel: models.JsonModel{ID: 4}, ItemType: models.TypeOuter, Status: models.StatusClean})
	assert.Nil(t, CheckFeasibility(pool, pool, snapshot("Snow", 2), "Casual", false))
}

func TestFeasibilityHintListsOtherCategories(t *testing.T) {
	cleanItems := []models.WardrobeItem{
		{JsonModel: models.JsonModel{ID: 1}, Category: "Formal", ItemType: models.TypeTop, Status: models.StatusClean},
		{JsonModel: models.JsonModel{ID: 2}, Category: "Formal", ItemType: models.TypeShoes, Status: models.StatusClean},
		{JsonModel: models.JsonModel{ID: 3}, Category: "Gym", ItemType: models.TypeTop, Status: models.StatusClean},
	}
	failure := CheckFeasibility(nil, cleanItems, snapshot("Clear", 20), "Casual", true)
	assert.NotNil(t, failure)

	message := failure.Error()
	assert.Contains(t, message, "Can't create a Casual outfit")
	assert.Contains(t, message, "2 Formal")
	assert.Contains(t, message, "1 Gym")
	assert.Contains(t, message, "excluded from the previous outfit")
}
