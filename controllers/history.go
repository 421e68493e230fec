package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"styleforecastapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type AddHistoryIn struct {
	Date     string          `json:"date" validate:"required,max=30"`
	Location string          `json:"location" validate:"omitempty,max=200"`
	Weather  string          `json:"weather" validate:"omitempty,max=100"`
	Occasion string          `json:"occasion" validate:"omitempty,max=50"`
	Liked    *bool           `json:"liked"`
	Outfit   json.RawMessage `json:"outfit" validate:"required"`
}

type HistoryEntryOut struct {
	ID       uint            `json:"id"`
	Date     string          `json:"date"`
	Location string          `json:"location"`
	Weather  string          `json:"weather"`
	Occasion string          `json:"occasion"`
	Liked    bool            `json:"liked"`
	Outfit   json.RawMessage `json:"outfit"`
}

type HistoryController struct {
}

func (controller *HistoryController) HistoryRoutes(g *echo.Group) {
	g.GET("", controller.ListHistory)
	g.POST("", controller.AddHistory)
	g.DELETE("/:entryId", controller.DeleteHistory)
	g.POST("/from_plan/:planId", controller.AddFromPlan)
}

func historyOut(entry models.OutfitHistory) HistoryEntryOut {
	return HistoryEntryOut{
		ID:       entry.ID,
		Date:     entry.Date,
		Location: entry.Location,
		Weather:  entry.Weather,
		Occasion: entry.Occasion,
		Liked:    entry.Liked,
		Outfit:   json.RawMessage(entry.OutfitJSON),
	}
}

func (controller *HistoryController) ListHistory(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var entries []models.OutfitHistory
	if err := db.Where("owner_id = ?", user.ID).Order("date DESC, id DESC").Find(&entries).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch history"})
	}
	out := make([]HistoryEntryOut, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyOut(entry))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"history": out})
}

// markOutfitWorn flips every wardrobe item referenced by the outfit to Needs
// Wash. Accessory entries carry string ids and are skipped. Idempotent: a
// repeated save of the same outfit changes nothing.
func markOutfitWorn(db *gorm.DB, userID uint, outfitJSON json.RawMessage) {
	var entries []struct {
		Role string          `json:"role"`
		ID   json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(outfitJSON, &entries); err != nil {
		return
	}
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		if entry.Role == "accessory" {
			continue
		}
		var id uint
		if err := json.Unmarshal(entry.ID, &id); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := db.Model(&models.WardrobeItem{}).
		Where("owner_id = ? AND id IN ?", userID, ids).
		Update("status", models.StatusNeedsWash).Error; err != nil {
		sentry.CaptureException(err)
	}
}

func (controller *HistoryController) AddHistory(c echo.Context) error {
	var req AddHistoryIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	entry := models.OutfitHistory{
		Date:       req.Date,
		Location:   req.Location,
		Weather:    req.Weather,
		Occasion:   req.Occasion,
		OutfitJSON: string(req.Outfit),
		OwnerID:    user.ID,
	}
	if req.Liked != nil {
		entry.Liked = *req.Liked
	}
	if err := db.Create(&entry).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save history entry, please try again"})
	}

	markOutfitWorn(db, user.ID, req.Outfit)

	return c.JSON(http.StatusCreated, historyOut(entry))
}

func (controller *HistoryController) DeleteHistory(c echo.Context) error {
	var entryId uint
	if err := echo.PathParamsBinder(c).Uint("entryId", &entryId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	result := db.Where("id = ? AND owner_id = ?", entryId, user.ID).Delete(&models.OutfitHistory{})
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete history entry"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "History entry not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "History entry deleted"})
}

// AddFromPlan copies a planned outfit into history once the day arrives.
func (controller *HistoryController) AddFromPlan(c echo.Context) error {
	var planId uint
	if err := echo.PathParamsBinder(c).Uint("planId", &planId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var plan models.Plan
	r := db.Where("id = ? AND owner_id = ?", planId, user.ID).Limit(1).Find(&plan)
	if r.Error != nil {
		sentry.CaptureException(r.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch plan"})
	}
	if r.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Plan not found"})
	}
	if plan.OutfitJSON == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Plan has no outfit to save"})
	}

	entry := models.OutfitHistory{
		Date:       plan.Date,
		Location:   plan.Location,
		Weather:    plan.Weather,
		Occasion:   plan.Occasion,
		OutfitJSON: plan.OutfitJSON,
		OwnerID:    user.ID,
	}
	if err := db.Create(&entry).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save history entry, please try again"})
	}

	markOutfitWorn(db, user.ID, json.RawMessage(plan.OutfitJSON))

	return c.JSON(http.StatusCreated, historyOut(entry))
}
