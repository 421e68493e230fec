package controllers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"styleforecastapi/dbhelper"
	"styleforecastapi/models"
	"styleforecastapi/test"

	"github.com/stretchr/testify/assert"
)

func TestHistoryAddMarksItemsWorn(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, &test.WeatherProviderMock{}, &test.OutfitLLMMock{}, nil, nil)
	user := test.FakeUser(db)
	items := test.FakeWardrobe(db, user.ID, "Casual")

	outfit := fmt.Sprintf(
		`[{"role": "top", "id": %v}, {"role": "shoes", "id": %v}, {"role": "accessory", "id": "acc-1"}]`,
		items[0].ID, items[2].ID,
	)
	body := fmt.Sprintf(
		`{"date": "2026-08-30", "location": "Baku", "weather": "Clear, 20°C", "occasion": "Casual", "liked": true, "outfit": %s}`,
		outfit,
	)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequestRaw("POST", "/api/history", UIntToStr(user.ID), body))
	assert.Equal(t, 201, rec.Code)

	var entry HistoryEntryOut
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.True(t, entry.Liked)
	assert.Equal(t, "2026-08-30", entry.Date)

	// worn wardrobe items flipped to Needs Wash, the untouched one stayed clean
	var top, bottom, shoes models.WardrobeItem
	db.First(&top, items[0].ID)
	db.First(&bottom, items[1].ID)
	db.First(&shoes, items[2].ID)
	assert.Equal(t, models.StatusNeedsWash, top.Status)
	assert.Equal(t, models.StatusClean, bottom.Status)
	assert.Equal(t, models.StatusNeedsWash, shoes.Status)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequest("GET", "/api/history", UIntToStr(user.ID), nil))
	assert.Equal(t, 200, rec.Code)
	var listOut struct {
		History []HistoryEntryOut `json:"history"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listOut))
	assert.Len(t, listOut.History, 1)
	assert.JSONEq(t, outfit, string(listOut.History[0].Outfit))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/api/history/%v", entry.ID), UIntToStr(user.ID), nil))
	assert.Equal(t, 200, rec.Code)
}

func TestHistoryFromPlan(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, &test.WeatherProviderMock{}, &test.OutfitLLMMock{}, nil, nil)
	user := test.FakeUser(db)

	plan := models.Plan{
		Date:       "2026-08-29",
		Location:   "Baku",
		Occasion:   "Formal",
		Weather:    "Clouds, 18°C",
		OutfitJSON: `[{"role": "onepiece", "id": 7}]`,
		OwnerID:    user.ID,
	}
	db.Create(&plan)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequest("POST", fmt.Sprintf("/api/history/from_plan/%v", plan.ID), UIntToStr(user.ID), nil))
	assert.Equal(t, 201, rec.Code)

	var entry HistoryEntryOut
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "2026-08-29", entry.Date)
	assert.Equal(t, "Formal", entry.Occasion)

	// a plan without an outfit can't be archived to history
	emptyPlan := models.Plan{Date: "2026-09-01", OwnerID: user.ID}
	db.Create(&emptyPlan)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, test.NewJSONAuthRequest("POST", fmt.Sprintf("/api/history/from_plan/%v", emptyPlan.ID), UIntToStr(user.ID), nil))
	assert.Equal(t, 400, rec.Code)
}
