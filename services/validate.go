package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"styleforecastapi/models"
)

// Rejection codes the retry controller branches on.
const (
	CodeLLMError         = "llm_error"
	CodeInvalidSchema    = "invalid_schema"
	CodeNoShoes          = "no_shoes"
	CodeNoCleanShoes     = "no_clean_shoes"
	CodeUnknownAccessory = "unknown_accessory"
	CodeUnknownItem      = "unknown_item"
	CodeUsedExcluded     = "used_excluded"
	CodeDirtyItem        = "dirty_item"
	CodeInvalidEntry     = "invalid_entry"
	CodeEmptyOutfit      = "empty_outfit"
	CodeMissingShoes     = "missing_shoes"
)

// IsRemediableCode reports whether one corrective regeneration is worth
// attempting for the given rejection. Anything else is terminal: the model
// either hallucinated inventory or the pool itself is defective.
func IsRemediableCode(code string) bool {
	switch code {
	case CodeMissingShoes, CodeUnknownAccessory, CodeInvalidSchema, CodeUsedExcluded:
		return true
	}
	return false
}

// OutfitEntry is one resolved piece of an accepted outfit. ID is a uint for
// wardrobe items and a string for accessories, matching what clients store
// back into history.
type OutfitEntry struct {
	Role   string  `json:"role"`
	ID     any     `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Color  string  `json:"color,omitempty"`
	Icon   string  `json:"icon,omitempty"`
	Reason *string `json:"reason,omitempty"`
}

// ValidationResult is the validator's verdict over one candidate: either an
// accepted normalized outfit or a coded rejection.
type ValidationResult struct {
	Valid        bool
	Code         string
	Message      string
	Entries      []OutfitEntry
	HasAccessory bool
	Explanation  *string
	Score        *float64
}

type candidateEntry struct {
	Role   string          `json:"role"`
	ID     json.RawMessage `json:"id"`
	Reason *string         `json:"reason"`
}

func rejected(code, message string) ValidationResult {
	return ValidationResult{Valid: false, Code: code, Message: message}
}

// AccessoryIcon picks a display icon by keyword match on the accessory's
// type and name.
func AccessoryIcon(accType, name string) string {
	haystack := strings.ToLower(accType + " " + name)
	icons := []struct {
		keyword string
		icon    string
	}{
		// "sunglass" and "bag" also cover "sunglasses" and "handbag"
		{"sunglass", "🕶️"},
		{"watch", "⌚"},
		{"bag", "👜"},
		{"purse", "👜"},
		{"clutch", "👜"},
		{"hat", "🧢"},
		{"cap", "🧢"},
		{"beanie", "🧢"},
		{"scarf", "🧣"},
		{"belt", "🧷"},
		{"umbrella", "☂️"},
		{"ring", "💎"},
		{"necklace", "💎"},
		{"earring", "💎"},
		{"jewelry", "💎"},
	}
	for _, entry := range icons {
		if strings.Contains(haystack, entry.keyword) {
			return entry.icon
		}
	}
	return "✨"
}

// parseWardrobeID accepts both a JSON number and a numeric string, since
// models get the quoting wrong either way.
func parseWardrobeID(raw json.RawMessage) (uint, bool) {
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		if parsed, err := asNumber.Int64(); err == nil && parsed >= 0 {
			return uint(parsed), true
		}
		return 0, false
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(asString), 10, 64); err == nil && parsed >= 0 {
			return uint(parsed), true
		}
	}
	return 0, false
}

// ValidateCandidate treats the model reply as fully untrusted and checks every
// reference against the pool offered for this call. Pure function of its
// inputs; the same candidate against the same pool always resolves the same
// way.
func ValidateCandidate(
	candidate *GenerationCandidate,
	llmErr *LLMError,
	pool []models.WardrobeItem,
	accessories []models.Accessory,
	excludeIDs map[uint]bool,
) ValidationResult {
	if llmErr != nil {
		return rejected(CodeLLMError, llmErr.Message)
	}
	if candidate == nil || !candidate.HasOutfit {
		return rejected(CodeInvalidSchema, "The stylist returned an invalid response. Please try again.")
	}

	itemsByID := make(map[uint]models.WardrobeItem, len(pool))
	for _, item := range pool {
		itemsByID[item.ID] = item
	}
	accessoriesByID := make(map[string]models.Accessory, len(accessories))
	for _, accessory := range accessories {
		accessoriesByID[accessory.ID] = accessory
	}

	// Pool defects are reported before entry scanning: a candidate can't be
	// blamed for shoes the user doesn't have.
	anyShoes := false
	anyCleanShoes := false
	for _, item := range pool {
		if item.ItemType == models.TypeShoes {
			anyShoes = true
			if item.Status.IsClean() {
				anyCleanShoes = true
			}
		}
	}
	if !anyShoes {
		return rejected(CodeNoShoes, "You have no shoes in this category. Add shoes to your wardrobe first!")
	}
	if !anyCleanShoes {
		return rejected(CodeNoCleanShoes, "All your shoes need washing. Mark a pair as Clean first!")
	}

	entries := make([]OutfitEntry, 0, len(candidate.Outfit))
	hasShoes := false
	hasAccessory := false
	for _, raw := range candidate.Outfit {
		var entry candidateEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return rejected(CodeInvalidEntry, "The stylist returned an invalid outfit entry. Please try again.")
		}

		if entry.Role == "accessory" {
			var accessoryID string
			if err := json.Unmarshal(entry.ID, &accessoryID); err != nil {
				return rejected(CodeUnknownAccessory, "The stylist referenced an accessory you don't own. Please try again.")
			}
			accessory, known := accessoriesByID[accessoryID]
			if !known {
				return rejected(CodeUnknownAccessory, fmt.Sprintf("The stylist referenced an unknown accessory (%s). Please try again.", accessoryID))
			}
			entries = append(entries, OutfitEntry{
				Role:   "accessory",
				ID:     accessory.ID,
				Name:   accessory.Name,
				Type:   accessory.AccType,
				Icon:   AccessoryIcon(accessory.AccType, accessory.Name),
				Reason: entry.Reason,
			})
			hasAccessory = true
			continue
		}

		itemID, ok := parseWardrobeID(entry.ID)
		if !ok {
			return rejected(CodeUnknownItem, "The stylist referenced an item you don't own. Please try again.")
		}
		item, known := itemsByID[itemID]
		if !known {
			return rejected(CodeUnknownItem, fmt.Sprintf("The stylist referenced an unknown item (%d). Please try again.", itemID))
		}
		if excludeIDs[itemID] {
			return rejected(CodeUsedExcluded, "The stylist reused an item from your previous outfit. Please try again.")
		}
		if !item.Status.IsClean() {
			return rejected(CodeDirtyItem, fmt.Sprintf("The stylist picked %q, which needs washing. Please try again.", item.Name))
		}
		entries = append(entries, OutfitEntry{
			Role:   entry.Role,
			ID:     item.ID,
			Name:   item.Name,
			Type:   string(item.ItemType),
			Color:  item.Color,
			Icon:   item.Icon,
			Reason: entry.Reason,
		})
		if item.ItemType == models.TypeShoes {
			hasShoes = true
		}
	}

	if len(entries) == 0 {
		return rejected(CodeEmptyOutfit, "The stylist returned an empty outfit. Please try again.")
	}
	if !hasShoes {
		return rejected(CodeMissingShoes, "The outfit is missing shoes. Please try again.")
	}

	return ValidationResult{
		Valid:        true,
		Entries:      entries,
		HasAccessory: hasAccessory,
		Explanation:  candidate.Explanation,
		Score:        candidate.Score,
	}
}
