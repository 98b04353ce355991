package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type AirportHandler struct {
	service flights.FlightUseCase
}

type airportQuery struct {
	Query string `form:"query"`
}

type locationQuery struct {
	At time.Time `form:"at" time_format:"2006-01-02T15:04:05Z07:00"`
}

func NewAirportHandler(service flights.FlightUseCase) *AirportHandler {
	return &AirportHandler{service: service}
}

func (h *AirportHandler) Register(router *gin.RouterGroup) {
	router.GET("/airports", h.list)
	router.GET("/airplanes/:id/location", h.airplaneLocation)
}

func (h *AirportHandler) list(c *gin.Context) {
	var q airportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	airports, err := h.service.SearchAirports(c.Request.Context(), q.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, airports)
}

// airplaneLocation reports where the airplane will be at the given time, based on its last landing.
func (h *AirportHandler) airplaneLocation(c *gin.Context) {
	var q locationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.At.IsZero() {
		q.At = time.Now()
	}

	airportID, err := h.service.AirplaneLocation(c.Request.Context(), c.Param("id"), q.At)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": airportID})
}
