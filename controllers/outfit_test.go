package controllers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"styleforecastapi/dbhelper"
	"styleforecastapi/services"
	"styleforecastapi/test"

	"github.com/stretchr/testify/assert"
)

func clearSkies() *test.WeatherProviderMock {
	return &test.WeatherProviderMock{Snapshot: services.WeatherSnapshot{
		Condition: "Clear",
		Temp:      IntPointer(20),
		Humidity:  IntPointer(40),
		Wind:      Float64Pointer(2.5),
	}}
}

func TestGetOutfitEndpoint(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)
	items := test.FakeWardrobe(db, user.ID, "Casual")

	llm := &test.OutfitLLMMock{Replies: []string{fmt.Sprintf(
		`{"outfit": [{"role": "top", "id": %v}, {"role": "bottom", "id": %v}, {"role": "shoes", "id": %v}], "explanation": "easy casual", "score": 0.8}`,
		items[0].ID, items[1].ID, items[2].ID,
	)}}
	e := SetupServer(db, clearSkies(), llm, nil, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequest("POST", "/api/get_outfit", UIntToStr(user.ID), GetOutfitIn{
		Lat:      40.4,
		Lon:      49.8,
		Occasion: "Casual",
	}))
	assert.Equal(t, 200, rec.Code)

	var result services.OutfitResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Outfit, 3)
	assert.Equal(t, "Clear, 20°C", result.Weather)
	assert.Equal(t, "llm", result.Source)
	assert.Nil(t, result.Warning)
	assert.Equal(t, "easy casual", *result.Explanation)
	assert.Equal(t, 1, llm.CallCount())
}

func TestGetOutfitFeasibilityFailure(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)
	// top and bottom only, no shoes

	llm := &test.OutfitLLMMock{Replies: []string{`{"outfit": []}`}}
	e := SetupServer(db, clearSkies(), llm, nil, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequest("POST", "/api/get_outfit", UIntToStr(user.ID), GetOutfitIn{
		Occasion: "Casual",
	}))
	assert.Equal(t, 422, rec.Code)

	var result map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Contains(t, result["error"], "Missing:")
	assert.Equal(t, "Clear, 20°C", result["weather"])
	assert.Equal(t, 0, llm.CallCount())
}

func TestGetOutfitRateLimited(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)
	test.FakeWardrobe(db, user.ID, "Casual")

	llm := &test.OutfitLLMMock{Errs: []*services.LLMError{{
		Message:    "Groq is rate limiting requests right now (token limit).",
		Code:       "rate_limit_exceeded",
		RetryAfter: Float64Pointer(30),
	}}, Replies: []string{""}}
	e := SetupServer(db, clearSkies(), llm, nil, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequest("POST", "/api/get_outfit", UIntToStr(user.ID), GetOutfitIn{
		Occasion: "Casual",
	}))
	assert.Equal(t, 429, rec.Code)

	var result map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "rate_limit_exceeded", result["code"])
	assert.Equal(t, 30.0, result["retry_after"])
}

func TestWeatherEndpoint(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	e := SetupServer(db, clearSkies(), &test.OutfitLLMMock{}, nil, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequest("GET", "/api/weather?lat=40.4&lon=49.8", UIntToStr(user.ID), nil))
	assert.Equal(t, 200, rec.Code)

	var result map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Clear, 20°C", result["weather"])
	assert.Equal(t, "Clear", result["condition"])
	assert.Equal(t, 20.0, result["temp"])
}
