package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/getsentry/sentry-go"

	"styleforecastapi/models"
)

// Generation temperatures. Exclusion reruns get a bit more variety so the
// model doesn't reproduce the disliked outfit.
const (
	baseTemperature             = 0.25
	exclusionTemperature        = 0.35
	correctionTemperature       = 0.25
	accessoryUpgradeTemperature = 0.3
)

// Occasions where pushing an accessory onto the outfit would be silly.
var accessoryExemptOccasions = map[string]bool{
	"gym": true,
}

type WardrobeQuery interface {
	ItemsForUser(ctx context.Context, userID uint) ([]models.WardrobeItem, error)
}

type AccessoryQuery interface {
	AccessoriesForUser(ctx context.Context, userID uint) ([]models.Accessory, error)
}

// WeatherOverride lets the caller pin weather instead of a live lookup, used
// by the Plan Ahead flow where the forecast is already known.
type WeatherOverride struct {
	Condition string  `json:"condition"`
	Temp      float64 `json:"temp"`
}

type GenerateOutfitParams struct {
	Lat             float64
	Lon             float64
	Occasion        string
	UserID          uint
	UseLLM          bool
	ExcludeIDs      []uint
	WeatherOverride *WeatherOverride
}

// OutfitResult is the accepted outfit plus the weather context it was
// generated under.
type OutfitResult struct {
	Outfit      []OutfitEntry `json:"outfit"`
	Explanation *string       `json:"explanation"`
	Score       *float64      `json:"score"`
	Weather     string        `json:"weather"`
	Condition   string        `json:"condition"`
	Temp        *int          `json:"temp"`
	Humidity    *int          `json:"humidity"`
	Wind        *float64      `json:"wind"`
	Occasion    string        `json:"occasion"`
	Source      string        `json:"source"`
	Warning     *string       `json:"warning"`
}

// OutfitError is a terminal generation failure. Weather context is carried
// along whenever it was resolved so the client can still render the header.
type OutfitError struct {
	Message    string   `json:"error"`
	Code       string   `json:"code,omitempty"`
	RetryAfter *float64 `json:"retry_after,omitempty"`
	Weather    string   `json:"weather,omitempty"`
	Condition  string   `json:"condition,omitempty"`
	Temp       *int     `json:"temp,omitempty"`
	Humidity   *int     `json:"humidity,omitempty"`
	Wind       *float64 `json:"wind,omitempty"`
}

func (e *OutfitError) Error() string {
	return e.Message
}

// OutfitService wires the generation pipeline together: feasibility check,
// prompt, model call, validation, bounded repair, assembly.
type OutfitService struct {
	Wardrobe    WardrobeQuery
	Accessories AccessoryQuery
	Weather     WeatherProvider
	LLM         OutfitLLMProvider
}

func errorWithWeather(snapshot *WeatherSnapshot, message, code string, retryAfter *float64) *OutfitError {
	result := &OutfitError{Message: message, Code: code, RetryAfter: retryAfter}
	if snapshot != nil {
		result.Weather = snapshot.DisplayString()
		result.Condition = snapshot.Condition
		result.Temp = snapshot.Temp
		result.Humidity = snapshot.Humidity
		result.Wind = snapshot.Wind
	}
	return result
}

// normalizeOccasion maps legacy occasion names onto the wardrobe category
// they draw from. Business outfits pull from the Formal closet, and the
// normalized name is what the prompt, feasibility check and result carry.
func normalizeOccasion(occasion string) string {
	if strings.EqualFold(occasion, "Business") {
		return "Formal"
	}
	return occasion
}

func formatUintList(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func exclusionClause(excludeIDs []uint) string {
	if len(excludeIDs) == 0 {
		return ""
	}
	return fmt.Sprintf(
		"Do NOT use these wardrobe item ids (they were in the user's previous, disliked outfit): %s. Pick different items.",
		formatUintList(excludeIDs),
	)
}

// Generate runs the full pipeline for one request. At most three model calls
// happen per invocation: the base generation, one correction, one accessory
// upgrade.
func (s *OutfitService) Generate(ctx context.Context, params GenerateOutfitParams) (*OutfitResult, *OutfitError) {
	if !params.UseLLM && !GetEnvBool("USE_LLM_OUTFITS") && !GetEnvBool("LLM_ONLY_MODE") {
		return nil, &OutfitError{Message: "LLM outfit generation is disabled. Enable it in settings."}
	}

	var snapshot *WeatherSnapshot
	if params.WeatherOverride != nil {
		temp := int(math.Round(params.WeatherOverride.Temp))
		snapshot = &WeatherSnapshot{Condition: params.WeatherOverride.Condition, Temp: &temp}
	} else {
		var err error
		snapshot, err = s.Weather.Current(ctx, params.Lat, params.Lon)
		if err != nil {
			return nil, &OutfitError{Message: err.Error()}
		}
	}

	allItems, err := s.Wardrobe.ItemsForUser(ctx, params.UserID)
	if err != nil {
		sentry.CaptureException(err)
		return nil, errorWithWeather(snapshot, "Unable to load your wardrobe right now.", "", nil)
	}
	accessories, err := s.Accessories.AccessoriesForUser(ctx, params.UserID)
	if err != nil {
		sentry.CaptureException(err)
		return nil, errorWithWeather(snapshot, "Unable to load your accessories right now.", "", nil)
	}

	excludeSet := make(map[uint]bool, len(params.ExcludeIDs))
	for _, id := range params.ExcludeIDs {
		excludeSet[id] = true
	}

	occasion := normalizeOccasion(params.Occasion)
	cleanItems := make([]models.WardrobeItem, 0, len(allItems))
	pool := make([]models.WardrobeItem, 0, len(allItems))
	for _, item := range allItems {
		if !item.Status.IsClean() {
			continue
		}
		cleanItems = append(cleanItems, item)
		if occasion == "" || strings.EqualFold(item.Category, occasion) {
			pool = append(pool, item)
		}
	}

	// Feasibility is judged on what the model may actually use.
	available := make([]models.WardrobeItem, 0, len(pool))
	for _, item := range pool {
		if !excludeSet[item.ID] {
			available = append(available, item)
		}
	}
	if feasibility := CheckFeasibility(available, cleanItems, snapshot, occasion, len(excludeSet) > 0); feasibility != nil {
		return nil, errorWithWeather(snapshot, feasibility.Error(), "", nil)
	}

	weatherText := snapshot.DisplayString()

	var lastLLMErr *LLMError
	callModel := func(extraInstruction string, temperature float64) ValidationResult {
		lastLLMErr = nil
		if ctx.Err() != nil {
			return rejected(CodeLLMError, "request cancelled")
		}
		prompt, err := BuildPrompt(pool, accessories, weatherText, occasion, extraInstruction)
		if err != nil {
			return rejected(CodeLLMError, fmt.Sprintf("failed to build prompt: %v", err))
		}
		candidate, llmErr := s.LLM.GenerateOutfitCandidate(ctx, prompt, temperature)
		lastLLMErr = llmErr
		return ValidateCandidate(candidate, llmErr, pool, accessories, excludeSet)
	}

	temperature := baseTemperature
	if len(excludeSet) > 0 {
		temperature = exclusionTemperature
	}
	verdict := callModel(exclusionClause(params.ExcludeIDs), temperature)

	if !verdict.Valid && IsRemediableCode(verdict.Code) {
		verdict = callModel(s.correctionClause(verdict, pool, params.ExcludeIDs), correctionTemperature)
	}
	if !verdict.Valid {
		code := verdict.Code
		var retryAfter *float64
		// provider errors keep their own classification, e.g. rate limits
		if verdict.Code == CodeLLMError && lastLLMErr != nil {
			if lastLLMErr.Code != "" {
				code = lastLLMErr.Code
			}
			retryAfter = lastLLMErr.RetryAfter
		}
		return nil, errorWithWeather(snapshot, verdict.Message, code, retryAfter)
	}

	// Optional accessory upgrade. Never allowed to break an accepted outfit:
	// a failed upgrade just keeps the original.
	if len(accessories) > 0 && !verdict.HasAccessory && !accessoryExemptOccasions[strings.ToLower(occasion)] {
		upgradeTemperature := accessoryUpgradeTemperature
		if len(excludeSet) > 0 {
			upgradeTemperature = exclusionTemperature
		}
		upgraded := callModel(accessoryUpgradeClause(accessories), upgradeTemperature)
		if upgraded.Valid && upgraded.HasAccessory {
			verdict = upgraded
		}
	}

	return &OutfitResult{
		Outfit:      verdict.Entries,
		Explanation: verdict.Explanation,
		Score:       verdict.Score,
		Weather:     weatherText,
		Condition:   snapshot.Condition,
		Temp:        snapshot.Temp,
		Humidity:    snapshot.Humidity,
		Wind:        snapshot.Wind,
		Occasion:    occasion,
		Source:      "llm",
		Warning:     nil,
	}, nil
}

// correctionClause tells the model exactly what it got wrong: the clean shoe
// ids it must pick from, the ids it must avoid, and that inventing ids is
// forbidden.
func (s *OutfitService) correctionClause(verdict ValidationResult, pool []models.WardrobeItem, excludeIDs []uint) string {
	shoeIDs := make([]uint, 0)
	for _, item := range pool {
		if item.ItemType == models.TypeShoes && item.Status.IsClean() {
			shoeIDs = append(shoeIDs, item.ID)
		}
	}
	sort.Slice(shoeIDs, func(i, j int) bool { return shoeIDs[i] < shoeIDs[j] })

	clause := fmt.Sprintf(
		"Your previous answer was rejected (%s). Include exactly ONE shoes entry choosing an id from %s. Use ONLY ids that appear in the provided lists; NEVER invent ids.",
		verdict.Code, formatUintList(shoeIDs),
	)
	if len(excludeIDs) > 0 {
		clause += fmt.Sprintf(" Do NOT use these excluded wardrobe item ids: %s.", formatUintList(excludeIDs))
	}
	return clause
}

func accessoryUpgradeClause(accessories []models.Accessory) string {
	ids := make([]string, 0, len(accessories))
	for _, accessory := range accessories {
		ids = append(ids, fmt.Sprintf("%q", accessory.ID))
	}
	return fmt.Sprintf(
		"Keep the outfit weather/occasion appropriate and include EXACTLY ONE accessory entry, choosing its id from this list: [%s].",
		strings.Join(ids, ", "),
	)
}
