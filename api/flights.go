package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/service/flights"
)

const dateLayout = "2006-01-02"

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightRequest struct {
	Code                 string    `json:"code" binding:"required,flightcode"`
	Name                 string    `json:"name" binding:"required"`
	OwnerID              int64     `json:"owner_id"`
	DepartureAirportID   int64     `json:"departure_airport_id" binding:"required"`
	DestinationAirportID int64     `json:"destination_airport_id" binding:"required,nefield=DepartureAirportID"`
	DepartureTime        time.Time `json:"departure_time" binding:"required"`
	ArrivalTime          time.Time `json:"arrival_time" binding:"required,gtfield=DepartureTime"`
	Capacity             int       `json:"capacity" binding:"required,gt=0"`
	Price                string    `json:"price" binding:"required,money"`
}

type searchQuery struct {
	From int64  `form:"from" binding:"required"`
	To   int64  `form:"to" binding:"required"`
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

// Register mounts the read-only routes on public and the management routes
// on private, which must already authenticate.
func (h *FlightHandler) Register(public, private *gin.RouterGroup) {
	public.GET("/airports", h.airports)
	public.GET("/flights", h.list)
	public.GET("/flights/search", h.search)
	public.GET("/flights/:id", h.get)
	public.GET("/flights/:id/availability", h.availability)

	manage := private.Group("", RequireRole(domain.RoleOwner, domain.RoleAdmin))
	manage.GET("/owners/:id/flights", h.listByOwner)
	manage.POST("/flights", h.create)
	manage.PUT("/flights/:id", h.update)
	manage.DELETE("/flights/:id", h.delete)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightsResponse(list))
}

func (h *FlightHandler) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	day, err := time.Parse(dateLayout, q.Date)
	if err != nil {
		badRequest(c, "invalid date")
		return
	}

	found, err := h.service.Search(c.Request.Context(), flights.SearchInput{
		FromAirportID: q.From,
		ToAirportID:   q.To,
		Date:          day,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightsResponse(found))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightResponse(flight))
}

func (h *FlightHandler) availability(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	free, err := h.service.Availability(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight_id": id, "available_seats": free})
}

func (h *FlightHandler) airports(c *gin.Context) {
	list, err := h.service.Airports(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) listByOwner(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	list, err := h.service.ListByOwner(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightsResponse(list))
}

func (h *FlightHandler) create(c *gin.Context) {
	input, ok := bindFlight(c)
	if !ok {
		return
	}
	flight, err := h.service.Create(c.Request.Context(), sessionFrom(c), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newFlightResponse(flight))
}

func (h *FlightHandler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	input, ok := bindFlight(c)
	if !ok {
		return
	}
	flight, err := h.service.Update(c.Request.Context(), sessionFrom(c), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightResponse(flight))
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), sessionFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindFlight(c *gin.Context) (flights.FlightInput, bool) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return flights.FlightInput{}, false
	}
	price, err := domain.ParseCents(req.Price)
	if err != nil {
		badRequest(c, err.Error())
		return flights.FlightInput{}, false
	}
	return flights.FlightInput{
		Code:                 req.Code,
		Name:                 req.Name,
		OwnerID:              req.OwnerID,
		DepartureAirportID:   req.DepartureAirportID,
		DestinationAirportID: req.DestinationAirportID,
		DepartureTime:        req.DepartureTime,
		ArrivalTime:          req.ArrivalTime,
		Capacity:             req.Capacity,
		PriceCents:           price,
	}, true
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
