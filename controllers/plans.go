package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"styleforecastapi/models"
	"styleforecastapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const planDateLayout = "2006-01-02"

type CreatePlanIn struct {
	Date        string          `json:"date" validate:"required,max=30"`
	EndDate     *string         `json:"end_date" validate:"omitempty,max=30"`
	Location    string          `json:"location" validate:"omitempty,max=200"`
	Lat         *float64        `json:"lat"`
	Lon         *float64        `json:"lon"`
	Occasion    string          `json:"occasion" validate:"omitempty,max=50"`
	Weather     string          `json:"weather" validate:"omitempty,max=100"`
	Temp        *int            `json:"temp"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Outfit      json.RawMessage `json:"outfit"`
}

type UpdatePlanIn struct {
	Location    *string         `json:"location" validate:"omitempty,max=200"`
	Occasion    *string         `json:"occasion" validate:"omitempty,max=50"`
	Weather     *string         `json:"weather" validate:"omitempty,max=100"`
	Temp        *int            `json:"temp"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Outfit      json.RawMessage `json:"outfit"`
}

type PlanOut struct {
	ID          uint            `json:"id"`
	Date        string          `json:"date"`
	Location    string          `json:"location"`
	Lat         *float64        `json:"lat"`
	Lon         *float64        `json:"lon"`
	Occasion    string          `json:"occasion"`
	Weather     string          `json:"weather"`
	Temp        *int            `json:"temp"`
	Description *string         `json:"description"`
	GroupID     *uint           `json:"group_id"`
	Outfit      json.RawMessage `json:"outfit"`
}

type PlanController struct {
}

func (controller *PlanController) PlanRoutes(g *echo.Group) {
	g.GET("", controller.ListPlans)
	g.POST("", controller.CreatePlan)
	g.PUT("/:planId", controller.UpdatePlan)
	g.DELETE("/:planId", controller.DeletePlan)
	g.DELETE("/group/:groupId", controller.DeletePlanGroup)
	g.POST("/archive", controller.ArchivePlans)
	g.GET("/archive/status", controller.ArchiveStatus)
}

func planOut(plan models.Plan) PlanOut {
	out := PlanOut{
		ID:          plan.ID,
		Date:        plan.Date,
		Location:    plan.Location,
		Lat:         plan.Lat,
		Lon:         plan.Lon,
		Occasion:    plan.Occasion,
		Weather:     plan.Weather,
		Temp:        plan.Temp,
		Description: plan.Description,
		GroupID:     plan.GroupID,
	}
	if plan.OutfitJSON != "" {
		out.Outfit = json.RawMessage(plan.OutfitJSON)
	}
	return out
}

func (controller *PlanController) ListPlans(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var plans []models.Plan
	if err := db.Where("owner_id = ?", user.ID).Order("date, id").Find(&plans).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch plans"})
	}
	out := make([]PlanOut, 0, len(plans))
	for _, plan := range plans {
		out = append(out, planOut(plan))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"plans": out})
}

// CreatePlan saves one planned day, or a whole range when end_date is given
// (a vacation). Range plans share a GroupID so they can be deleted together.
func (controller *PlanController) CreatePlan(c echo.Context) error {
	var req CreatePlanIn
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

	start, err := time.Parse(planDateLayout, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	makePlan := func(date string) models.Plan {
		plan := models.Plan{
			Date:        date,
			Location:    req.Location,
			Lat:         req.Lat,
			Lon:         req.Lon,
			Occasion:    req.Occasion,
			Weather:     req.Weather,
			Temp:        req.Temp,
			Description: req.Description,
			OwnerID:     user.ID,
		}
		if len(req.Outfit) > 0 {
			plan.OutfitJSON = string(req.Outfit)
		}
		return plan
	}

	if req.EndDate == nil {
		plan := makePlan(req.Date)
		if err := db.Create(&plan).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save plan, please try again"})
		}
		return c.JSON(http.StatusCreated, planOut(plan))
	}

	end, err := time.Parse(planDateLayout, *req.EndDate)
	if err != nil || end.Before(start) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid end_date"})
	}
	if end.Sub(start) > 30*24*time.Hour {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Plan range is limited to 31 days"})
	}

	var plans []models.Plan
	err = db.Transaction(func(tx *gorm.DB) error {
		// first day anchors the group
		anchor := makePlan(start.Format(planDateLayout))
		if err := tx.Create(&anchor).Error; err != nil {
			return err
		}
		anchor.GroupID = UIntPointer(anchor.ID)
		if err := tx.Save(&anchor).Error; err != nil {
			return err
		}
		plans = append(plans, anchor)
		for day := start.AddDate(0, 0, 1); !day.After(end); day = day.AddDate(0, 0, 1) {
			plan := makePlan(day.Format(planDateLayout))
			plan.GroupID = anchor.GroupID
			if err := tx.Create(&plan).Error; err != nil {
				return err
			}
			plans = append(plans, plan)
		}
		return nil
	})
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save plans, please try again"})
	}

	out := make([]PlanOut, 0, len(plans))
	for _, plan := range plans {
		out = append(out, planOut(plan))
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"plans": out})
}

func (controller *PlanController) UpdatePlan(c echo.Context) error {
	var planId uint
	if err := echo.PathParamsBinder(c).Uint("planId", &planId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	var req UpdatePlanIn
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

	var plan models.Plan
	r := db.Where("id = ? AND owner_id = ?", planId, user.ID).Limit(1).Find(&plan)
	if r.Error != nil {
		sentry.CaptureException(r.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch plan"})
	}
	if r.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Plan not found"})
	}

	if req.Location != nil {
		plan.Location = *req.Location
	}
	if req.Occasion != nil {
		plan.Occasion = *req.Occasion
	}
	if req.Weather != nil {
		plan.Weather = *req.Weather
	}
	if req.Temp != nil {
		plan.Temp = req.Temp
	}
	if req.Description != nil {
		plan.Description = req.Description
	}
	if len(req.Outfit) > 0 {
		plan.OutfitJSON = string(req.Outfit)
	}
	if err := db.Save(&plan).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update plan, please try again"})
	}
	return c.JSON(http.StatusOK, planOut(plan))
}

func (controller *PlanController) DeletePlan(c echo.Context) error {
	var planId uint
	if err := echo.PathParamsBinder(c).Uint("planId", &planId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	result := db.Where("id = ? AND owner_id = ?", planId, user.ID).Delete(&models.Plan{})
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete plan"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Plan not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Plan deleted"})
}

func (controller *PlanController) DeletePlanGroup(c echo.Context) error {
	var groupId uint
	if err := echo.PathParamsBinder(c).Uint("groupId", &groupId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	result := db.Where("group_id = ? AND owner_id = ?", groupId, user.ID).Delete(&models.Plan{})
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete plans"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Plan group not found"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Plans deleted", "count": result.RowsAffected})
}

// ArchivePlans enqueues an archive run right away instead of waiting for the
// nightly schedule.
func (controller *PlanController) ArchivePlans(c echo.Context) error {
	if _, ok := c.Get("currentUser").(models.UserAccount); !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	client, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok || client == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Task queue is unavailable"})
	}

	task, err := tasks.NewArchivePlansTask("")
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to build archive task"})
	}
	info, err := client.Enqueue(task)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to enqueue archive task"})
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Archiving scheduled", "task_id": info.ID})
}

func (controller *PlanController) ArchiveStatus(c echo.Context) error {
	if _, ok := c.Get("currentUser").(models.UserAccount); !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	inspector, ok := c.Get("__asynqinspector").(*asynq.Inspector)
	if !ok || inspector == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Task queue is unavailable"})
	}

	info, err := inspector.GetQueueInfo("default")
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to inspect task queue"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"pending":   info.Pending,
		"active":    info.Active,
		"completed": info.Completed,
	})
}
