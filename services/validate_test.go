package services

import (
	"testing"

	"styleforecastapi/models"

	"github.com/stretchr/testify/assert"
)

func testPool() []models.WardrobeItem {
	return []models.WardrobeItem{
		{JsonModel: models.JsonModel{ID: 1}, Name: "White Tee", Category: "Casual", ItemType: models.TypeTop, Color: "white", Status: models.StatusClean},
		{JsonModel: models.JsonModel{ID: 2}, Name: "Blue Jeans", Category: "Casual", ItemType: models.TypeBottom, Color: "blue", Status: models.StatusClean},
		{JsonModel: models.JsonModel{ID: 3}, Name: "Sneakers", Category: "Casual", ItemType: models.TypeShoes, Color: "white", Status: models.StatusClean},
	}
}

func mustCandidate(t *testing.T, text string) *GenerationCandidate {
	candidate, llmErr := ParseCandidateText(text)
	if llmErr != nil {
		t.Fatalf("failed to parse candidate: %v", llmErr.Message)
	}
	return candidate
}

func TestValidateAcceptsCompleteOutfit(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 1}, {"role": "bottom", "id": 2}, {"role": "shoes", "id": 3}], "explanation": "classic casual", "score": 0.8}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, nil)

	assert.True(t, result.Valid)
	assert.Len(t, result.Entries, 3)
	assert.False(t, result.HasAccessory)
	assert.Equal(t, "classic casual", *result.Explanation)
	assert.Equal(t, 0.8, *result.Score)
	assert.Equal(t, "Sneakers", result.Entries[2].Name)
	assert.Equal(t, uint(3), result.Entries[2].ID)
}

func TestValidatePropagatesLLMError(t *testing.T) {
	result := ValidateCandidate(nil, &LLMError{Message: "Groq is down"}, testPool(), nil, nil)
	assert.False(t, result.Valid)
	assert.Equal(t, CodeLLMError, result.Code)
	assert.Equal(t, "Groq is down", result.Message)
}

func TestValidateRejectsMissingOutfitList(t *testing.T) {
	candidate := mustCandidate(t, `{"explanation": "no outfit key here"}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	assert.Equal(t, CodeInvalidSchema, result.Code)
}

func TestValidateRejectsPoolWithoutShoes(t *testing.T) {
	pool := testPool()[:2]
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 1}]}`)
	result := ValidateCandidate(candidate, nil, pool, nil, nil)
	assert.Equal(t, CodeNoShoes, result.Code)
}

func TestValidateRejectsPoolWithOnlyDirtyShoes(t *testing.T) {
	pool := testPool()
	pool[2].Status = models.StatusNeedsWash
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 1}]}`)
	result := ValidateCandidate(candidate, nil, pool, nil, nil)
	assert.Equal(t, CodeNoCleanShoes, result.Code)
}

func TestValidateRejectsUnknownItem(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 99}, {"role": "shoes", "id": 3}]}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	assert.Equal(t, CodeUnknownItem, result.Code)
}

func TestValidateRejectsNonIntegerItemID(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": "blue-shirt"}, {"role": "shoes", "id": 3}]}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	assert.Equal(t, CodeUnknownItem, result.Code)
}

func TestValidateAcceptsQuotedNumericID(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": "1"}, {"role": "bottom", "id": 2}, {"role": "shoes", "id": "3"}]}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	assert.True(t, result.Valid)
}

func TestValidateRejectsExcludedItem(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 1}, {"role": "bottom", "id": 2}, {"role": "shoes", "id": 3}]}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, map[uint]bool{3: true})
	assert.Equal(t, CodeUsedExcluded, result.Code)
}

func TestValidateRejectsDirtyItem(t *testing.T) {
	pool := testPool()
	pool[0].Status = models.StatusNeedsWash
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 1}, {"role": "shoes", "id": 3}]}`)
	result := ValidateCandidate(candidate, nil, pool, nil, nil)
	assert.Equal(t, CodeDirtyItem, result.Code)
}

func TestValidateRejectsNonObjectEntry(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": ["just a string"]}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	assert.Equal(t, CodeInvalidEntry, result.Code)
}

func TestValidateRejectsEmptyOutfit(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": []}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	assert.Equal(t, CodeEmptyOutfit, result.Code)
}

func TestValidateRejectsMissingShoes(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 1}, {"role": "bottom", "id": 2}]}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	assert.Equal(t, CodeMissingShoes, result.Code)
}

func TestValidateAccessories(t *testing.T) {
	accessories := []models.Accessory{
		{ID: "acc-1", Name: "Gold Watch", AccType: "watch"},
	}
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 1}, {"role": "shoes", "id": 3}, {"role": "accessory", "id": "acc-1"}]}`)
	result := ValidateCandidate(candidate, nil, testPool(), accessories, nil)

	assert.True(t, result.Valid)
	assert.True(t, result.HasAccessory)
	assert.Equal(t, "⌚", result.Entries[2].Icon)
	assert.Equal(t, "acc-1", result.Entries[2].ID)
}

func TestValidateRejectsUnknownAccessory(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 1}, {"role": "shoes", "id": 3}, {"role": "accessory", "id": "nope"}]}`)
	result := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	assert.Equal(t, CodeUnknownAccessory, result.Code)
}

func TestValidateIsDeterministic(t *testing.T) {
	candidate := mustCandidate(t, `{"outfit": [{"role": "top", "id": 1}, {"role": "bottom", "id": 2}, {"role": "shoes", "id": 3}]}`)
	first := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	second := ValidateCandidate(candidate, nil, testPool(), nil, nil)
	assert.Equal(t, first, second)
}

func TestAccessoryIconKeywords(t *testing.T) {
	assert.Equal(t, "🕶️", AccessoryIcon("sunglasses", "Aviators"))
	assert.Equal(t, "🕶️", AccessoryIcon("sunglass", "Single"))
	assert.Equal(t, "👜", AccessoryIcon("", "Leather Bag"))
	assert.Equal(t, "👜", AccessoryIcon("", "Evening Clutch"))
	assert.Equal(t, "👜", AccessoryIcon("purse", ""))
	assert.Equal(t, "🧢", AccessoryIcon("cap", ""))
	assert.Equal(t, "🧢", AccessoryIcon("", "Blue Beanie"))
	assert.Equal(t, "🧣", AccessoryIcon("scarf", ""))
	assert.Equal(t, "☂️", AccessoryIcon("umbrella", "Compact"))
	assert.Equal(t, "💎", AccessoryIcon("jewelry", ""))
	assert.Equal(t, "💎", AccessoryIcon("ring", "Silver Ring"))
	assert.Equal(t, "💎", AccessoryIcon("", "Pearl Necklace"))
	assert.Equal(t, "💎", AccessoryIcon("", "Gold Earrings"))
	assert.Equal(t, "✨", AccessoryIcon("gadget", "Mystery Thing"))
}

func TestRemediableCodes(t *testing.T) {
	assert.True(t, IsRemediableCode(CodeMissingShoes))
	assert.True(t, IsRemediableCode(CodeUnknownAccessory))
	assert.True(t, IsRemediableCode(CodeInvalidSchema))
	assert.True(t, IsRemediableCode(CodeUsedExcluded))
	assert.False(t, IsRemediableCode(CodeUnknownItem))
	assert.False(t, IsRemediableCode(CodeDirtyItem))
	assert.False(t, IsRemediableCode(CodeEmptyOutfit))
	assert.False(t, IsRemediableCode(CodeLLMError))
}
