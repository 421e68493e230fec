package services

import (
	"fmt"
	"sort"
	"strings"

	"styleforecastapi/models"
)

// FeasibilityError means the filtered clean pool cannot possibly produce an
// outfit for the requested occasion/weather, so no LLM call should be made.
type FeasibilityError struct {
	Occasion     string
	MissingRoles []string
	// other categories the user has clean items in, for the "try changing
	// the occasion" hint
	OtherCategories map[string]int
	HadExclusions   bool
}

func (e *FeasibilityError) Error() string {
	label := e.Occasion
	if label == "" {
		label = "selected"
	}

	msg := fmt.Sprintf(
		"Can't create a %s outfit right now.\n\nMissing: %s\nFix: Add the missing items to your wardrobe or mark existing items as Clean.",
		label, strings.Join(e.MissingRoles, ", "),
	)

	if len(e.OtherCategories) > 0 {
		categories := make([]string, 0, len(e.OtherCategories))
		for category := range e.OtherCategories {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		parts := make([]string, 0, len(categories))
		for _, category := range categories {
			parts = append(parts, fmt.Sprintf("%d %s", e.OtherCategories[category], category))
		}
		msg += fmt.Sprintf("\n\n💡 Tip: You have %s items. Try changing the occasion!", strings.Join(parts, ", "))
	}

	if e.HadExclusions {
		msg += "\n\n⚠️ Some items were excluded from the previous outfit. Add more items for variety!"
	}
	return msg
}

// OuterRequired reports whether outerwear is mandatory for the given weather:
// very cold or wet conditions.
func OuterRequired(snapshot *WeatherSnapshot) bool {
	if snapshot == nil {
		return false
	}
	if snapshot.Temp != nil && *snapshot.Temp <= 5 {
		return true
	}
	condition := strings.ToLower(snapshot.Condition)
	return condition == "snow" || condition == "rain"
}

// CheckFeasibility verifies the occasion-filtered clean pool can satisfy the
// required roles (shoes, onepiece or top+bottom, outer when cold/wet) before
// any external call. cleanItems is the full clean pool regardless of occasion,
// used only for the category hint. Returns nil when generation may proceed.
func CheckFeasibility(pool []models.WardrobeItem, cleanItems []models.WardrobeItem, snapshot *WeatherSnapshot, occasion string, hadExclusions bool) *FeasibilityError {
	countType := func(t models.ItemType) int {
		count := 0
		for _, item := range pool {
			if item.ItemType == t {
				count++
			}
		}
		return count
	}

	var missing []string
	if countType(models.TypeShoes) == 0 {
		missing = append(missing, "shoes")
	}
	topCount := countType(models.TypeTop)
	bottomCount := countType(models.TypeBottom)
	if countType(models.TypeOnePiece) == 0 && (topCount == 0 || bottomCount == 0) {
		if topCount == 0 {
			missing = append(missing, "top")
		}
		if bottomCount == 0 {
			missing = append(missing, "bottom")
		}
	}
	if OuterRequired(snapshot) && countType(models.TypeOuter) == 0 {
		missing = append(missing, "outerwear")
	}

	if len(missing) == 0 {
		return nil
	}

	otherCategories := map[string]int{}
	if occasion != "" {
		for _, item := range cleanItems {
			category := strings.TrimSpace(item.Category)
			if category == "" || strings.EqualFold(category, occasion) {
				continue
			}
			otherCategories[category]++
		}
	}

	return &FeasibilityError{
		Occasion:        occasion,
		MissingRoles:    missing,
		OtherCategories: otherCategories,
		HadExclusions:   hadExclusions,
	}
}
