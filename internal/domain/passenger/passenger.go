package passenger

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Passenger is a traveller identified by email. Passengers are created
// lazily: booked by email, inserted only when unknown.
type Passenger struct {
	ID        int64
	FullName  string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Passenger domain errors.
var (
	ErrPassengerNotFound = errors.New("passenger not found")
	ErrNameRequired      = errors.New("passenger name is required")
	ErrEmailRequired     = errors.New("passenger email is required")
	ErrEmailTaken        = errors.New("passenger email already registered")
)

// New normalizes and creates a passenger.
func New(fullName, email, phone string) *Passenger {
	return &Passenger{
		FullName:  strings.TrimSpace(fullName),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: time.Now(),
	}
}

// Validate checks passenger fields.
func (p *Passenger) Validate() error {
	if p.FullName == "" {
		return ErrNameRequired
	}
	if p.Email == "" {
		return ErrEmailRequired
	}
	return nil
}

// Repository persists passengers.
type Repository interface {
	Create(ctx context.Context, p *Passenger) error
	GetByEmail(ctx context.Context, email string) (*Passenger, error)
	GetByID(ctx context.Context, id int64) (*Passenger, error)
	List(ctx context.Context) ([]*Passenger, error)
}
