package service

import (
	"context"
	"log/slog"

	"github.com/forgo/handy/api/internal/model"
)

// EventPublisher publishes domain events for downstream consumers.
// Publishing is best-effort: a failed publish is logged and never fails
// the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// Event subjects
const (
	SubjectListingCreated = "handy.listing.created"
	SubjectListingDeleted = "handy.listing.deleted"
	SubjectBookingCreated = "handy.booking.created"
	SubjectBookingStatus  = "handy.booking.status"
)

// ListingEvent is the payload for listing lifecycle events
type ListingEvent struct {
	ListingID string  `json:"listing_id"`
	OwnerID   string  `json:"owner_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// BookingEvent is the payload for booking lifecycle events
type BookingEvent struct {
	BookingID   string `json:"booking_id"`
	ListingID   string `json:"listing_id"`
	RequesterID string `json:"requester_id"`
	ProviderID  string `json:"provider_id"`
	Status      string `json:"status"`
}

// publish sends an event when a publisher is configured
func publish(ctx context.Context, events EventPublisher, subject string, payload interface{}) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, subject, payload); err != nil {
		slog.Warn("event publish failed", slog.String("subject", subject), slog.String("error", err.Error()))
	}
}

func listingEvent(listing *model.Listing) ListingEvent {
	return ListingEvent{
		ListingID: listing.ID,
		OwnerID:   listing.OwnerID,
		Name:      listing.Name,
		Price:     listing.Price,
	}
}

func bookingEvent(booking *model.Booking) BookingEvent {
	return BookingEvent{
		BookingID:   booking.ID,
		ListingID:   booking.ListingID,
		RequesterID: booking.RequesterID,
		ProviderID:  booking.ProviderID,
		Status:      booking.Status,
	}
}
