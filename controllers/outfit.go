package controllers

import (
	"fmt"
	"net/http"

	"styleforecastapi/models"
	"styleforecastapi/services"

	"github.com/labstack/echo/v4"
)

type GetOutfitIn struct {
	Lat             float64                   `json:"lat"`
	Lon             float64                   `json:"lon"`
	Occasion        string                    `json:"occasion" validate:"required,max=50"`
	UseLLM          *bool                     `json:"use_llm"`
	ExcludeIDs      []uint                    `json:"exclude_ids"`
	WeatherOverride *services.WeatherOverride `json:"weather_override"`
}

type OutfitController struct {
	Outfits *services.OutfitService
	Weather services.WeatherProvider
}

func (controller *OutfitController) OutfitRoutes(g *echo.Group) {
	g.POST("/get_outfit", controller.GetOutfit)
	g.GET("/weather", controller.GetWeather)
}

func (controller *OutfitController) GetOutfit(c echo.Context) error {
	var req GetOutfitIn
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

	useLLM := true
	if req.UseLLM != nil {
		useLLM = *req.UseLLM
	}
	result, genErr := controller.Outfits.Generate(c.Request().Context(), services.GenerateOutfitParams{
		Lat:             req.Lat,
		Lon:             req.Lon,
		Occasion:        req.Occasion,
		UserID:          user.ID,
		UseLLM:          useLLM,
		ExcludeIDs:      req.ExcludeIDs,
		WeatherOverride: req.WeatherOverride,
	})
	if genErr != nil {
		status := http.StatusUnprocessableEntity
		if genErr.Code == "rate_limit_exceeded" {
			status = http.StatusTooManyRequests
		}
		return c.JSON(status, genErr)
	}
	return c.JSON(http.StatusOK, result)
}

func (controller *OutfitController) GetWeather(c echo.Context) error {
	var lat, lon float64
	if err := echo.QueryParamsBinder(c).Float64("lat", &lat).Float64("lon", &lon).BindError(); err != nil {
		return echo.ErrBadRequest
	}
	snapshot, err := controller.Weather.Current(c.Request().Context(), lat, lon)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"weather":   snapshot.DisplayString(),
		"condition": snapshot.Condition,
		"temp":      snapshot.Temp,
		"humidity":  snapshot.Humidity,
		"wind":      snapshot.Wind,
	})
}
