package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-booking/internal/middleware"
	"clinic-booking/internal/rpc"
)

// BookAppointment returns the stored appointment even when the calendar
// sync failed. gRPC callers only see the Unavailable status, whose message
// names the appointment id; in-process callers get both.
func (h *Handler) BookAppointment(ctx context.Context, req *rpc.BookAppointmentRequest) (*rpc.BookAppointmentResponse, error) {
	if req.DoctorID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "doctorId: must be positive")
	}
	a, err := h.booking.Book(ctx, middleware.SessionFrom(ctx), req.DoctorID, req.Date, req.Notes)
	if a == nil {
		return nil, h.fail(ctx, err)
	}
	resp := &rpc.BookAppointmentResponse{Appointment: toAppointment(a)}
	if err != nil {
		return resp, h.fail(ctx, err)
	}
	return resp, nil
}

func (h *Handler) ListDoctorAppointments(ctx context.Context, req *rpc.ListDoctorAppointmentsRequest) (*rpc.ListDoctorAppointmentsResponse, error) {
	appts, err := h.booking.ListDoctorAppointments(ctx, req.DoctorID)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	out := make([]*rpc.Appointment, len(appts))
	for i := range appts {
		out[i] = toAppointment(&appts[i])
	}
	return &rpc.ListDoctorAppointmentsResponse{Appointments: out}, nil
}

func (h *Handler) SyncAppointment(ctx context.Context, req *rpc.SyncAppointmentRequest) (*rpc.SyncAppointmentResponse, error) {
	a, err := h.booking.RetrySync(ctx, middleware.SessionFrom(ctx), req.AppointmentID)
	if a == nil {
		return nil, h.fail(ctx, err)
	}
	resp := &rpc.SyncAppointmentResponse{Appointment: toAppointment(a)}
	if err != nil {
		return resp, h.fail(ctx, err)
	}
	return resp, nil
}
