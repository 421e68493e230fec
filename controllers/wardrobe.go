package controllers

import (
	"fmt"
	"net/http"

	"styleforecastapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CreateWardrobeItemIn struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required,max=50"`
	Type     string `json:"type" validate:"required,itemtype"`
	Color    string `json:"color" validate:"omitempty,max=50"`
	Icon     string `json:"icon" validate:"omitempty,max=10"`
	Status   string `json:"status" validate:"omitempty,itemstatus"`
}

type UpdateWardrobeItemIn struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Category *string `json:"category" validate:"omitempty,max=50"`
	Type     *string `json:"type" validate:"omitempty,itemtype"`
	Color    *string `json:"color" validate:"omitempty,max=50"`
	Icon     *string `json:"icon" validate:"omitempty,max=10"`
	Status   *string `json:"status" validate:"omitempty,itemstatus"`
}

type WardrobeController struct {
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.GET("", controller.ListItems)
	g.POST("", controller.CreateItem)
	g.PUT("/:itemId", controller.UpdateItem)
	g.DELETE("/:itemId", controller.DeleteItem)
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	query := db.Where("owner_id = ?", user.ID)
	// ?filter=Clean / ?filter=Needs Wash narrows by status,
	// ?category=Casual narrows by occasion category
	if filter := c.QueryParam("filter"); filter != "" {
		if !models.ValidateItemStatusRaw(filter) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid status filter"})
		}
		query = query.Where("status = ?", filter)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var items []models.WardrobeItem
	if err := query.Order("id").Find(&items).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req CreateWardrobeItemIn
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

	status := models.ItemStatus(req.Status)
	if req.Status == "" {
		status = models.StatusClean
	}
	item := models.WardrobeItem{
		Name:     req.Name,
		Category: req.Category,
		ItemType: models.ItemType(req.Type),
		Color:    req.Color,
		Icon:     req.Icon,
		Status:   status,
		OwnerID:  user.ID,
	}
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save item, please try again"})
	}
	return c.JSON(http.StatusCreated, item)
}

func (controller *WardrobeController) UpdateItem(c echo.Context) error {
	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	var req UpdateWardrobeItemIn
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

	var item models.WardrobeItem
	r := db.Where("id = ? AND owner_id = ?", itemId, user.ID).Limit(1).Find(&item)
	if r.Error != nil {
		sentry.CaptureException(r.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch item"})
	}
	if r.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Type != nil {
		item.ItemType = models.ItemType(*req.Type)
	}
	if req.Color != nil {
		item.Color = *req.Color
	}
	if req.Icon != nil {
		item.Icon = *req.Icon
	}
	if req.Status != nil {
		item.Status = models.ItemStatus(*req.Status)
	}
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update item, please try again"})
	}
	return c.JSON(http.StatusOK, item)
}

func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db := c.Get("__db").(*gorm.DB)

	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).Delete(&models.WardrobeItem{})
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete item"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Item deleted"})
}
