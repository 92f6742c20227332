package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a free-form label attached to vendors and trips.
type Tag struct {
	ID          uuid.UUID
	Name        string
	Description *string
	CreatedAt   time.Time
}

// LocationTag labels a destination. Country and region are optional.
type LocationTag struct {
	ID        uuid.UUID
	Name      string
	Country   *string
	Region    *string
	CreatedAt time.Time
}

// ServiceType is a kind of service a vendor provides (hotel, transport, guide...).
type ServiceType struct {
	ID   uuid.UUID
	Name string
}
