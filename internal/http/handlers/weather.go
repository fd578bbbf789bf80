package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hannakang/schedhub/internal/config"
)

// WeatherSource is a WeatherReader that also knows which date its forecast
// answers are for, so the response date always matches the lookup.
type WeatherSource interface {
	WeatherReader
	Date() string
}

type WeatherHandler struct {
	weather WeatherSource
}

func NewWeatherHandler(weather WeatherSource) *WeatherHandler {
	return &WeatherHandler{weather: weather}
}

func (h *WeatherHandler) GetToday(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	today, err := h.weather.Today(cctx)

	if err != nil {
		RespondError(ctx, http.StatusBadGateway, "weather_unavailable", "Weather service is unavailable.", nil)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"date":    h.weather.Date(),
		"weather": today,
	})
}
