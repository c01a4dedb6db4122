// Package queue publishes booking events to a message broker.
package queue

import (
	"context"
	"time"
)

// RoutingAppointmentBooked is the routing key of AppointmentBooked.
const RoutingAppointmentBooked = "appointment.booked"

type Publisher interface {
	Publish(ctx context.Context, key string, event any, reqID string) error
	Close() error
}

type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(context.Context, string, any, string) error { return nil }
func (NoopPub) Close() error                                         { return nil }

type AppointmentBooked struct {
	AppointmentID int64     `json:"appointment_id"`
	DoctorID      int64     `json:"doctor_id"`
	BookedBy      int64     `json:"booked_by"`
	Date          time.Time `json:"date"`
	SyncStatus    string    `json:"sync_status"`
}
