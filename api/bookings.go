package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID int64 `json:"flight_id" binding:"required,gt=0"`
}

type paymentRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED FAILED"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING CONFIRMED CANCELLED"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the booking routes on an authenticated group.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", RequireRole(domain.RoleUser), h.create)
	router.GET("/bookings", h.list)
	router.GET("/bookings/:id", h.get)
	router.GET("/bookings/pnr/:pnr", h.getByPNR)
	router.POST("/bookings/:id/cancel", h.cancel)
	router.PUT("/bookings/:id/payment", h.payment)
	router.PUT("/bookings/:id/status", RequireRole(domain.RoleAdmin), h.status)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:   sessionFrom(c).PrincipalID,
		FlightID: req.FlightID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookingResponse(b))
}

// list returns the caller's booking history, or every booking for admins.
func (h *BookingHandler) list(c *gin.Context) {
	session := sessionFrom(c)
	var (
		list []domain.Booking
		err  error
	)
	if session.IsAdmin() {
		list, err = h.service.ListAllBookings(c.Request.Context(), session)
	} else {
		list, err = h.service.ListUserBookings(c.Request.Context(), session)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingsResponse(list))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) getByPNR(c *gin.Context) {
	code := c.Param("pnr")
	found, err := h.service.GetByPNR(c.Request.Context(), code)
	if err == nil {
		// Re-read through GetBooking so the caller's access is checked.
		found, err = h.service.GetBooking(c.Request.Context(), sessionFrom(c), found.ID)
	}
	// Someone else's locator reads exactly like an unknown one.
	if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrNotFound) {
		writeError(c, fmt.Errorf("booking %s: %w", code, domain.ErrNotFound))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(found))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) payment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	b, err := h.service.SetPaymentStatus(c.Request.Context(), sessionFrom(c), id, domain.PaymentStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) status(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	b, err := h.service.SetBookingStatus(c.Request.Context(), sessionFrom(c), id, domain.BookingStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}
