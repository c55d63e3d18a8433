// Package messaging publishes marketplace domain events to NATS.
//
// Events are informational: listing and booking writes succeed whether or
// not their events can be delivered. Services publish through the
// service.EventPublisher interface, which NATSPublisher satisfies.
//
// Subjects follow the "handy.<entity>.<action>" convention, for example
// handy.listing.created and handy.booking.status.
package messaging
