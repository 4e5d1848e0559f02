package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// FlightOwner is an airline. CompanyCode prefixes the record locators of its
// bookings.
type FlightOwner struct {
	ID           int64
	CompanyName  string
	CompanyCode  string
	ContactInfo  string
	PasswordHash string
	CreatedAt    time.Time
}
