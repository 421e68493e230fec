package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"styleforecastapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
}

func (m *AuthController) AuthRoutes(g *echo.Group) {
	g.POST("/register", m.Register)
	g.POST("/login", m.Login)
}

func (m *AuthController) Register(c echo.Context) error {
	var req models.RegisterIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	db := c.Get("__db").(*gorm.DB)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.UserAccount
	r := db.Where("email = ?", email).Limit(1).Find(&existing)
	if r.Error != nil {
		sentry.CaptureException(r.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if r.RowsAffected > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "An account with this email already exists"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	user := models.UserAccount{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Password:  string(hashed),
		LastIp:    c.RealIP(),
	}
	if err := db.Create(&user).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create account, please try again"})
	}

	return c.JSON(http.StatusCreated, models.TokenOut{
		AccessToken: GenerateUserToken(fmt.Sprint(user.ID), c, 72),
		Email:       user.Email,
		Name:        strings.TrimSpace(user.FirstName + " " + user.LastName),
	})
}

func (m *AuthController) Login(c echo.Context) error {
	var req models.LoginIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	db := c.Get("__db").(*gorm.DB)

	var user models.UserAccount
	result := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).Take(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if user.Banned {
		return echo.ErrForbidden
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}

	user.LastIp = c.RealIP()
	db.Save(&user)

	return c.JSON(http.StatusOK, models.TokenOut{
		AccessToken: GenerateUserToken(fmt.Sprint(user.ID), c, 72),
		Email:       user.Email,
		Name:        strings.TrimSpace(user.FirstName + " " + user.LastName),
	})
}
