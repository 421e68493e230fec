package services

import (
	"encoding/json"
	"strings"

	"styleforecastapi/models"
)

// The model sees only these compact shapes, never full rows.
type promptItem struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Color    string `json:"color"`
}

type promptAccessory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type promptPayload struct {
	Instruction string            `json:"instruction"`
	Items       []promptItem      `json:"items"`
	Accessories []promptAccessory `json:"accessories"`
	Weather     string            `json:"weather"`
	Occasion    string            `json:"occasion"`
}

const outfitInstruction = "You are a helpful wardrobe assistant. Return ONLY valid JSON (no extra text).\n" +
	"Use ONLY the provided wardrobe items (by id).\n" +
	"If the accessories list is non-empty, INCLUDE 1 accessory in most outfits (by id).\n" +
	"You may omit accessories only when clearly inappropriate (e.g., Gym) or if none are provided.\n" +
	"Never include more than 2 accessories.\n" +
	"IMPORTANT: Always include exactly one shoes item (type='shoes') if any shoes exist.\n" +
	"If no shoes exist in the wardrobe, return JSON with an 'error' telling the user to add shoes.\n" +
	"Input fields: 'items' (list of available wardrobe items with id,name,type,category,color),\n" +
	"'accessories' (list of optional accessories with id,name,type),\n" +
	"'weather' (string, e.g., 'Clear, 12°C'), and 'occasion' (string).\n" +
	"Output schema:\n" +
	"{\n" +
	"  \"outfit\": [ { role, id, reason } ],\n" +
	"  \"explanation\": string (optional),\n" +
	"  \"score\": float between 0 and 1 (optional)\n" +
	"}\n" +
	"Roles should be one of: top,bottom,onepiece,outer,shoes,accessory.\n" +
	"Wardrobe item ids are numbers. Accessory ids are strings.\n" +
	"Make it weather/occasion appropriate.\n" +
	"If you cannot assemble an outfit from the provided items, return JSON with an 'error' key describing why."

// BuildPrompt renders the offered pool plus constraints into the JSON user
// message for the chat completion. extraInstruction is appended verbatim and
// is only ever set by the retry controller, never on the first pass.
func BuildPrompt(items []models.WardrobeItem, accessories []models.Accessory, weather string, occasion string, extraInstruction string) (string, error) {
	itemsShort := make([]promptItem, 0, len(items))
	for _, item := range items {
		itemsShort = append(itemsShort, promptItem{
			ID:       item.ID,
			Name:     item.Name,
			Type:     string(item.ItemType),
			Category: item.Category,
			Color:    item.Color,
		})
	}

	accessoriesShort := make([]promptAccessory, 0, len(accessories))
	for _, accessory := range accessories {
		if accessory.ID == "" {
			continue
		}
		accessoriesShort = append(accessoriesShort, promptAccessory{
			ID:   accessory.ID,
			Name: accessory.Name,
			Type: accessory.AccType,
		})
	}

	instruction := outfitInstruction
	if extra := strings.TrimSpace(extraInstruction); extra != "" {
		instruction = instruction + "\n\n" + extra
	}

	payload := promptPayload{
		Instruction: instruction,
		Items:       itemsShort,
		Accessories: accessoriesShort,
		Weather:     weather,
		Occasion:    occasion,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
