package controllers

import (
	"net/http"
	"os"

	"styleforecastapi/models"
	"styleforecastapi/services"

	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		// Optionally, you could return the error to give each route more control over the status code
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	weatherService services.WeatherProvider,
	llmService services.OutfitLLMProvider,
	asynqClient *asynq.Client,
	asynqInspector *asynq.Inspector,
) *echo.Echo {
	e := echo.New()
	v := validator.New()
	v.RegisterValidation("itemstatus", models.ValidateItemStatus)
	v.RegisterValidation("itemtype", models.ValidateItemType)
	e.Validator = &CustomValidator{validator: v}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__asynqclient", asynqClient)
			c.Set("__asynqinspector", asynqInspector)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	authController := AuthController{}
	authController.AuthRoutes(e.Group("/auth"))

	apiGroup := e.Group("/api", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))))
	apiGroup.Use(UserMiddleware)

	outfitController := OutfitController{
		Outfits: &services.OutfitService{
			Wardrobe:    &services.GormWardrobeQuery{DB: db},
			Accessories: &services.GormAccessoryQuery{DB: db},
			Weather:     weatherService,
			LLM:         llmService,
		},
		Weather: weatherService,
	}
	outfitController.OutfitRoutes(apiGroup)

	wardrobeController := WardrobeController{}
	wardrobeController.WardrobeRoutes(apiGroup.Group("/wardrobe"))

	accessoryController := AccessoryController{}
	accessoryController.AccessoryRoutes(apiGroup.Group("/accessories"))

	historyController := HistoryController{}
	historyController.HistoryRoutes(apiGroup.Group("/history"))

	planController := PlanController{}
	planController.PlanRoutes(apiGroup.Group("/plans"))

	profileController := ProfileController{}
	profileController.ProfileRoutes(apiGroup.Group("/profile"))

	return e
}
