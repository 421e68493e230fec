package controllers

import (
	"fmt"
	"net/http"

	"styleforecastapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CreateAccessoryIn struct {
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"required,max=50"`
}

type AccessoryController struct {
}

func (controller *AccessoryController) AccessoryRoutes(g *echo.Group) {
	g.GET("", controller.ListAccessories)
	g.POST("", controller.CreateAccessory)
	g.DELETE("/:accessoryId", controller.DeleteAccessory)
}

func (controller *AccessoryController) ListAccessories(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	var accessories []models.Accessory
	if err := db.Where("owner_id = ?", user.ID).Order("created_at").Find(&accessories).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch accessories"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"accessories": accessories})
}

func (controller *AccessoryController) CreateAccessory(c echo.Context) error {
	var req CreateAccessoryIn
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

	accessory := models.Accessory{
		ID:      uuid.NewString(),
		Name:    req.Name,
		AccType: req.Type,
		OwnerID: user.ID,
	}
	if err := db.Create(&accessory).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save accessory, please try again"})
	}
	return c.JSON(http.StatusCreated, accessory)
}

func (controller *AccessoryController) DeleteAccessory(c echo.Context) error {
	accessoryId := c.Param("accessoryId")
	if accessoryId == "" {
		return echo.ErrBadRequest
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	result := db.Where("id = ? AND owner_id = ?", accessoryId, user.ID).Delete(&models.Accessory{})
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete accessory"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Accessory not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Accessory deleted"})
}
