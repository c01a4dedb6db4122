package handler

import (
	"context"

	"go.uber.org/zap"

	"clinic-booking/internal/booking"
	"clinic-booking/internal/model"
	"clinic-booking/internal/rpc"
	"clinic-booking/internal/session"
)

type Registrar interface {
	CreateUser(ctx context.Context, email, password string) (*model.User, error)
}

type Handler struct {
	rpc.UnimplementedBookingServiceServer
	users   Registrar
	gate    *session.Gate
	booking *booking.Service
	log     *zap.Logger
}

func New(users Registrar, gate *session.Gate, svc *booking.Service, log *zap.Logger) *Handler {
	return &Handler{users: users, gate: gate, booking: svc, log: log}
}

func toUser(u *model.User) *rpc.User {
	if u == nil {
		return nil
	}
	return &rpc.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toAppointment(a *model.Appointment) *rpc.Appointment {
	if a == nil {
		return nil
	}
	return &rpc.Appointment{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		BookedBy:        a.BookedBy,
		Date:            a.Date,
		Notes:           a.Notes,
		ExternalEventID: a.ExternalEventID,
		SyncStatus:      string(a.SyncStatus),
		CreatedAt:       a.CreatedAt,
	}
}
