package domain

import (
	"fmt"
	"strings"
	"time"
)

type Flight struct {
	ID                   int64
	Code                 string
	Name                 string
	OwnerID              int64
	AirlineCode          string
	AirlineName          string
	DepartureAirportID   int64
	DestinationAirportID int64
	DepartureTime        time.Time
	ArrivalTime          time.Time
	Capacity             int
	AvailableSeats       int
	PriceCents           int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate checks the schedule, route, capacity and price of a flight.
func (f *Flight) Validate() error {
	if strings.TrimSpace(f.Code) == "" {
		return fmt.Errorf("%w: flight code is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: flight name is required", ErrInvalidArgument)
	}
	if f.OwnerID <= 0 {
		return fmt.Errorf("%w: airline is required", ErrInvalidArgument)
	}
	if f.DepartureAirportID <= 0 || f.DestinationAirportID <= 0 {
		return fmt.Errorf("%w: departure and destination airports are required", ErrInvalidArgument)
	}
	if f.DepartureAirportID == f.DestinationAirportID {
		return fmt.Errorf("%w: departure and destination airports cannot be the same", ErrInvalidArgument)
	}
	if !f.ArrivalTime.After(f.DepartureTime) {
		return fmt.Errorf("%w: arrival must be after departure", ErrInvalidArgument)
	}
	if f.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be a positive number", ErrInvalidArgument)
	}
	if f.PriceCents <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidArgument)
	}
	return nil
}

type Airport struct {
	ID      int64
	Code    string
	Name    string
	City    string
	Country string
}
