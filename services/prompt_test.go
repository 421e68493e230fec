package services

import (
	"encoding/json"
	"testing"

	"styleforecastapi/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptShape(t *testing.T) {
	items := testPool()
	accessories := []models.Accessory{{ID: "acc-1", Name: "Gold Watch", AccType: "watch"}}

	prompt, err := BuildPrompt(items, accessories, "Clear, 12°C", "Casual", "")
	assert.NoError(t, err)

	var payload promptPayload
	assert.NoError(t, json.Unmarshal([]byte(prompt), &payload))
	assert.Equal(t, "Clear, 12°C", payload.Weather)
	assert.Equal(t, "Casual", payload.Occasion)
	assert.Len(t, payload.Items, 3)
	assert.Equal(t, uint(1), payload.Items[0].ID)
	assert.Equal(t, "top", payload.Items[0].Type)
	assert.Len(t, payload.Accessories, 1)
	assert.Equal(t, "acc-1", payload.Accessories[0].ID)
	assert.Contains(t, payload.Instruction, "exactly one shoes item")
}

func TestBuildPromptAppendsExtraInstruction(t *testing.T) {
	prompt, err := BuildPrompt(testPool(), nil, "Clear, 12°C", "Casual", "  Do NOT use item 3.  ")
	assert.NoError(t, err)

	var payload promptPayload
	assert.NoError(t, json.Unmarshal([]byte(prompt), &payload))
	assert.Contains(t, payload.Instruction, "\n\nDo NOT use item 3.")
	assert.Len(t, payload.Accessories, 0)
}

func TestBuildPromptSkipsAccessoriesWithoutID(t *testing.T) {
	accessories := []models.Accessory{{Name: "Ghost"}, {ID: "acc-2", Name: "Cap", AccType: "hat"}}
	prompt, err := BuildPrompt(testPool(), accessories, "Clear, 12°C", "Casual", "")
	assert.NoError(t, err)

	var payload promptPayload
	assert.NoError(t, json.Unmarshal([]byte(prompt), &payload))
	assert.Len(t, payload.Accessories, 1)
	assert.Equal(t, "acc-2", payload.Accessories[0].ID)
}
