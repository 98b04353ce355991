package api

import (
	"cmp"
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/flightdesk/internal/backend"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/itinerary"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
	auth    *Authenticator
}

type legRequest struct {
	OriginID        string    `json:"leg_origin_id" binding:"required"`
	DestinationID   string    `json:"leg_destination_id" binding:"required"`
	DepartureTime   time.Time `json:"leg_departure_time" binding:"required"`
	ArrivalTime     time.Time `json:"leg_arrival_time" binding:"required"`
	TransitDuration int       `json:"transit_duration" binding:"min=0"`
}

type flightRequest struct {
	Airline            string       `json:"airline" binding:"required"`
	FlightNumber       string       `json:"flight_number" binding:"required"`
	AirplaneID         string       `json:"airplane_id" binding:"required"`
	OriginID           string       `json:"origin_id" binding:"required"`
	DestinationID      string       `json:"destination_id" binding:"required,nefield=OriginID"`
	DepartureTime      time.Time    `json:"departure_time" binding:"required"`
	ArrivalTime        time.Time    `json:"arrival_time" binding:"required"`
	Status             string       `json:"status" binding:"omitempty,oneof=SCHEDULED DELAYED CANCELLED"`
	EconomySeats       int          `json:"economy_seats" binding:"min=0"`
	BusinessSeats      int          `json:"business_seats" binding:"min=0"`
	FirstSeats         int          `json:"first_seats" binding:"min=0"`
	EconomyPriceCents  int64        `json:"economy_price_cents" binding:"min=0"`
	BusinessPriceCents int64        `json:"business_price_cents" binding:"min=0"`
	FirstPriceCents    int64        `json:"first_price_cents" binding:"min=0"`
	FlightLegs         []legRequest `json:"flight_legs" binding:"dive"`
}

func (r flightRequest) draft() itinerary.Draft {
	d := itinerary.Draft{
		Airline:       r.Airline,
		FlightNumber:  r.FlightNumber,
		AirplaneID:    r.AirplaneID,
		OriginID:      r.OriginID,
		DestinationID: r.DestinationID,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		Status:        domain.FlightStatus(r.Status),
		Cabins: domain.Cabins{
			EconomySeats:       r.EconomySeats,
			BusinessSeats:      r.BusinessSeats,
			FirstSeats:         r.FirstSeats,
			EconomyPriceCents:  r.EconomyPriceCents,
			BusinessPriceCents: r.BusinessPriceCents,
			FirstPriceCents:    r.FirstPriceCents,
		},
		Legs: make([]domain.FlightLeg, 0, len(r.FlightLegs)),
	}
	for _, l := range r.FlightLegs {
		d.Legs = append(d.Legs, domain.FlightLeg{
			OriginID:        l.OriginID,
			DestinationID:   l.DestinationID,
			DepartureTime:   l.DepartureTime,
			ArrivalTime:     l.ArrivalTime,
			TransitDuration: l.TransitDuration,
		})
	}
	return d
}

type flightResponse struct {
	*domain.Itinerary
	DurationLabel string `json:"duration_label"`
}

func toFlightResponse(it *domain.Itinerary) flightResponse {
	return flightResponse{Itinerary: it, DurationLabel: itinerary.FormatDuration(it.Duration)}
}

type searchQuery struct {
	Origin      string   `form:"origin"`
	Destination string   `form:"destination"`
	Direct      bool     `form:"direct"`
	Cabin       string   `form:"cabin" binding:"omitempty,oneof=ECONOMY BUSINESS FIRST"`
	MaxPrice    int64    `form:"max_price" binding:"min=0"`
	Airlines    []string `form:"airline"`
	Sort        string   `form:"sort" binding:"omitempty,oneof=price_low price_high duration_low duration_high departure_early departure_late"`
}

func (q searchQuery) query() flights.SearchQuery {
	return flights.SearchQuery{
		Origin:        q.Origin,
		Destination:   q.Destination,
		DirectOnly:    q.Direct,
		Cabin:         domain.CabinClass(q.Cabin),
		MaxPriceCents: q.MaxPrice,
		Airlines:      q.Airlines,
		Sort:          flights.SortOrder(q.Sort),
	}
}

type durationQuery struct {
	Departure time.Time `form:"departure" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	Arrival   time.Time `form:"arrival" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
}

func NewFlightHandler(service flights.FlightUseCase, auth *Authenticator) *FlightHandler {
	return &FlightHandler{service: service, auth: auth}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.auth.RequireRole(RoleAdmin, RoleOperator), h.create)
	router.POST("/validate", h.validate)
}

// RegisterItinerary mounts the stateless itinerary helpers.
func (h *FlightHandler) RegisterItinerary(router *gin.RouterGroup) {
	router.GET("/duration", h.duration)
}

// list returns the flights matching the optional search filters.
func (h *FlightHandler) list(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.service.Search(c.Request.Context(), q.query())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]flightResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toFlightResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Create(c.Request.Context(), req.draft())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight))
}

func (h *FlightHandler) validate(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := req.draft()
	if err := h.service.Validate(c.Request.Context(), draft); err != nil {
		writeError(c, err)
		return
	}
	duration := itinerary.ComputeDuration(draft.DepartureTime, draft.ArrivalTime)
	c.JSON(http.StatusOK, gin.H{
		"valid":          true,
		"duration":       duration,
		"duration_label": itinerary.FormatDuration(duration),
	})
}

func (h *FlightHandler) duration(c *gin.Context) {
	var q durationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d := itinerary.ComputeDuration(q.Departure, q.Arrival)
	c.JSON(http.StatusOK, gin.H{"duration": d, "duration_label": itinerary.FormatDuration(d)})
}

func writeError(c *gin.Context, err error) {
	var verr *itinerary.ValidationError
	var statusErr backend.ResponseStatusError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "error": "invalid itinerary", "details": verr.Errors})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, flights.ErrAirplaneNotAtOrigin):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, backend.ErrUnauthorized):
		c.JSON(http.StatusBadGateway, gin.H{"error": "flight backend rejected credentials"})
	case errors.As(err, &statusErr):
		// backend 4xx statuses pass through; everything else is a gateway failure.
		code := http.StatusBadGateway
		if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			code = statusErr.StatusCode
		}
		c.JSON(code, gin.H{"error": cmp.Or(statusErr.Message, statusErr.Status)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
