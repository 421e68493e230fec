package controllers

import (
	"fmt"
	"net/http"

	"styleforecastapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileController struct {
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("/me", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		return c.JSON(http.StatusOK, user)
	})

	g.PUT("/me", func(c echo.Context) error {
		var req models.ProfileUpdateIn
		if err := c.Bind(&req); err != nil {
			fmt.Println(err)
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)

		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.Gender != nil {
			user.Gender = *req.Gender
		}
		if req.Age != nil {
			user.Age = req.Age
		}
		if req.DaysUntilDirty != nil {
			user.DaysUntilDirty = req.DaysUntilDirty
		}
		if req.Password != nil {
			if req.ConfirmPassword == nil || *req.ConfirmPassword != *req.Password {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Passwords do not match"})
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				sentry.CaptureException(err)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			}
			user.Password = string(hashed)
		}

		if err := db.Save(&user).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update profile, please try again"})
		}
		return c.JSON(http.StatusOK, user)
	})
}
