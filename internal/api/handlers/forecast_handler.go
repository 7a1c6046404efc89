package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/inventory-intel/internal/forecast"
	"github.com/prepflow/inventory-intel/internal/ledger"
	"github.com/prepflow/inventory-intel/internal/service"
)

// wasteHorizonHours is the default lookahead for waste predictions; spoilage
// plays out over days, not a single service period.
const wasteHorizonHours = 72

type ForecastHandler struct {
	service        *service.ForecastService
	defaultHorizon float64
}

func NewForecastHandler(service *service.ForecastService, defaultHorizon float64) *ForecastHandler {
	if defaultHorizon <= 0 {
		defaultHorizon = forecast.DefaultHorizonHours
	}
	return &ForecastHandler{service: service, defaultHorizon: defaultHorizon}
}

func parseHorizon(c *gin.Context, fallback float64) float64 {
	if raw := c.Query("horizon_hours"); raw != "" {
		if h, err := strconv.ParseFloat(raw, 64); err == nil && h > 0 {
			return h
		}
	}
	return fallback
}

// GetForecast returns the demand forecast for one item without exogenous
// signals. Clients with weather or event data use PostForecast instead.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	itemID := c.Param("item_id")
	in := forecast.Input{HorizonHours: parseHorizon(c, h.defaultHorizon)}

	fc, err := h.service.ForecastItem(c.Request.Context(), itemID, in)
	if err != nil {
		if errors.Is(err, ledger.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, fc)
}

// PostForecast accepts weather, event and correlation signals in the body.
func (h *ForecastHandler) PostForecast(c *gin.Context) {
	itemID := c.Param("item_id")

	var in forecast.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forecast input: " + err.Error()})
		return
	}

	fc, err := h.service.ForecastItem(c.Request.Context(), itemID, in)
	if err != nil {
		if errors.Is(err, ledger.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, fc)
}

func (h *ForecastHandler) GetAllForecasts(c *gin.Context) {
	in := forecast.Input{HorizonHours: parseHorizon(c, h.defaultHorizon)}

	forecasts, err := h.service.ForecastAll(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts, "count": len(forecasts)})
}

func (h *ForecastHandler) GetWastePrediction(c *gin.Context) {
	itemID := c.Param("item_id")
	horizon := parseHorizon(c, wasteHorizonHours)

	prediction, err := h.service.PredictWaste(c.Request.Context(), itemID, horizon, forecast.Input{})
	if err != nil {
		if errors.Is(err, ledger.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func (h *ForecastHandler) GetAllWastePredictions(c *gin.Context) {
	horizon := parseHorizon(c, wasteHorizonHours)

	predictions, err := h.service.PredictWasteAll(c.Request.Context(), horizon, forecast.Input{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": predictions, "count": len(predictions)})
}
