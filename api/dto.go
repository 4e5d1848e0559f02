package api

import (
	"time"

	"github.com/Domenick1991/goaero/internal/domain"
)

type flightResponse struct {
	ID                   int64     `json:"id"`
	Code                 string    `json:"code"`
	Name                 string    `json:"name"`
	OwnerID              int64     `json:"owner_id"`
	AirlineCode          string    `json:"airline_code"`
	AirlineName          string    `json:"airline_name"`
	DepartureAirportID   int64     `json:"departure_airport_id"`
	DestinationAirportID int64     `json:"destination_airport_id"`
	DepartureTime        time.Time `json:"departure_time"`
	ArrivalTime          time.Time `json:"arrival_time"`
	Capacity             int       `json:"capacity"`
	AvailableSeats       int       `json:"available_seats"`
	Price                string    `json:"price"`
}

func newFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:                   f.ID,
		Code:                 f.Code,
		Name:                 f.Name,
		OwnerID:              f.OwnerID,
		AirlineCode:          f.AirlineCode,
		AirlineName:          f.AirlineName,
		DepartureAirportID:   f.DepartureAirportID,
		DestinationAirportID: f.DestinationAirportID,
		DepartureTime:        f.DepartureTime,
		ArrivalTime:          f.ArrivalTime,
		Capacity:             f.Capacity,
		AvailableSeats:       f.AvailableSeats,
		Price:                domain.FormatCents(f.PriceCents),
	}
}

func newFlightsResponse(flights []domain.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(flights))
	for i := range flights {
		out = append(out, newFlightResponse(&flights[i]))
	}
	return out
}

type bookingResponse struct {
	ID                   int64     `json:"id"`
	PNR                  string    `json:"pnr"`
	UserID               int64     `json:"user_id"`
	FlightID             int64     `json:"flight_id"`
	DepartureAirportID   int64     `json:"departure_airport_id"`
	DestinationAirportID int64     `json:"destination_airport_id"`
	DepartureTime        time.Time `json:"departure_time"`
	ArrivalTime          time.Time `json:"arrival_time"`
	Amount               string    `json:"amount"`
	Status               string    `json:"status"`
	PaymentStatus        string    `json:"payment_status"`
	CreatedAt            time.Time `json:"created_at"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:                   b.ID,
		PNR:                  b.PNR,
		UserID:               b.UserID,
		FlightID:             b.FlightID,
		DepartureAirportID:   b.DepartureAirportID,
		DestinationAirportID: b.DestinationAirportID,
		DepartureTime:        b.DepartureTime,
		ArrivalTime:          b.ArrivalTime,
		Amount:               domain.FormatCents(b.AmountCents),
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		CreatedAt:            b.CreatedAt,
	}
}

func newBookingsResponse(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, newBookingResponse(&bookings[i]))
	}
	return out
}
