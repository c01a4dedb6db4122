// Package booking ties the session gate, the appointment store and the
// calendar together into the booking flow.
//
// A booking is committed before the calendar is contacted. A calendar
// failure never rolls the booking back; it is recorded on the appointment
// and reported to the caller as ErrServiceUnavailable next to the stored
// appointment.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinic-booking/internal/calendar"
	"clinic-booking/internal/logger"
	"clinic-booking/internal/metrics"
	"clinic-booking/internal/model"
	"clinic-booking/internal/queue"
	"clinic-booking/internal/worker"
)

type Sessions interface {
	CurrentUser(ctx context.Context, handle string) (*model.User, error)
}

type Repository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	CreateAppointment(ctx context.Context, bookedBy, doctorID int64, date, notes string) (*model.Appointment, error)
	FindByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error)
	FindAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	ClaimSync(ctx context.Context, id int64, lease time.Duration) (*model.Appointment, bool, error)
	RecordSync(ctx context.Context, id int64, eventID string, status model.SyncStatus) (*model.Appointment, error)
}

type Options struct {
	// Calendar may be nil; appointments are then marked skipped.
	Calendar        calendar.Adapter
	CalendarTimeout time.Duration
	Publisher       queue.Publisher
	Pool            *worker.Pool
	Log             *zap.Logger
}

type Service struct {
	sessions Sessions
	repo     Repository
	cal      calendar.Adapter
	timeout  time.Duration
	pub      queue.Publisher
	pool     *worker.Pool
	log      *zap.Logger
}

const (
	publishTimeout = 5 * time.Second
	// added to the calendar timeout before an open sync claim counts as abandoned
	claimGrace = 30 * time.Second
)

func New(sessions Sessions, repo Repository, opts Options) *Service {
	if opts.CalendarTimeout <= 0 {
		opts.CalendarTimeout = 10 * time.Second
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Publisher == nil {
		opts.Publisher = queue.NewNoop()
	}
	if opts.Pool == nil {
		opts.Pool = worker.NewPool(opts.Log)
	}
	return &Service{
		sessions: sessions,
		repo:     repo,
		cal:      opts.Calendar,
		timeout:  opts.CalendarTimeout,
		pub:      opts.Publisher,
		pool:     opts.Pool,
		log:      opts.Log,
	}
}

// Book creates an appointment for the user behind handle and mirrors it
// into the calendar. When the calendar fails the stored appointment is
// returned together with an error wrapping model.ErrServiceUnavailable.
func (s *Service) Book(ctx context.Context, handle string, doctorID int64, date, notes string) (*model.Appointment, error) {
	u, err := s.authenticate(ctx, handle)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.CreateAppointment(ctx, u.ID, doctorID, date, notes)
	if err != nil {
		metrics.Bookings.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	metrics.Bookings.WithLabelValues("created").Inc()
	logger.For(ctx, s.log).Info("appointment booked",
		zap.Int64("appointment_id", a.ID),
		zap.Int64("doctor_id", a.DoctorID),
		zap.Int64("user_id", u.ID),
		zap.Time("date", a.Date),
	)

	a, syncErr := s.sync(ctx, a)
	s.publish(ctx, a)
	return a, syncErr
}

// RetrySync runs the calendar sync again for an appointment that has no
// external event yet. Only the user who booked it or its doctor may ask.
// Already synced appointments, and ones another caller is syncing right
// now, are returned unchanged.
func (s *Service) RetrySync(ctx context.Context, handle string, appointmentID int64) (*model.Appointment, error) {
	u, err := s.authenticate(ctx, handle)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.FindAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a == nil || (u.ID != a.BookedBy && u.ID != a.DoctorID) {
		return nil, fmt.Errorf("%w: appointment %d", model.ErrNotFound, appointmentID)
	}
	if a.Synced() {
		return a, nil
	}
	return s.sync(ctx, a)
}

func (s *Service) ListDoctorAppointments(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	doc, err := s.repo.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: doctor %d", model.ErrNotFound, doctorID)
	}
	return s.repo.FindByDoctor(ctx, doctorID)
}

func (s *Service) authenticate(ctx context.Context, handle string) (*model.User, error) {
	u, err := s.sessions.CurrentUser(ctx, handle)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: not logged in", model.ErrAuth)
	}
	return u, nil
}

func (s *Service) sync(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	log := logger.For(ctx, s.log).With(zap.Int64("appointment_id", a.ID))
	// the outcome is recorded even if the caller has gone away
	recordCtx := context.WithoutCancel(ctx)

	claimed, ok, err := s.repo.ClaimSync(ctx, a.ID, s.timeout+claimGrace)
	if err != nil {
		return a, err
	}
	if !ok {
		log.Debug("calendar sync already done or in flight", zap.String("status", string(claimed.SyncStatus)))
		return claimed, nil
	}
	a = claimed

	if s.cal == nil {
		metrics.CalendarSync.WithLabelValues(string(model.SyncSkipped)).Inc()
		return s.record(recordCtx, a, "", model.SyncSkipped)
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	eventID, err := s.cal.CreateEvent(cctx, a.Date, a.Notes)
	metrics.CalendarLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CalendarSync.WithLabelValues(string(model.SyncFailed)).Inc()
		log.Warn("calendar sync failed", zap.Error(err))
		updated, rerr := s.record(recordCtx, a, "", model.SyncFailed)
		if rerr != nil {
			return updated, rerr
		}
		return updated, fmt.Errorf("%w: appointment %d was booked but not added to the calendar: %v",
			model.ErrServiceUnavailable, a.ID, err)
	}

	metrics.CalendarSync.WithLabelValues(string(model.SyncSynced)).Inc()
	log.Info("calendar event created", zap.String("event_id", eventID))
	return s.record(recordCtx, a, eventID, model.SyncSynced)
}

func (s *Service) record(ctx context.Context, a *model.Appointment, eventID string, status model.SyncStatus) (*model.Appointment, error) {
	updated, err := s.repo.RecordSync(ctx, a.ID, eventID, status)
	if err != nil {
		s.log.Error("record sync outcome", zap.Int64("appointment_id", a.ID), zap.Error(err))
		a.ExternalEventID, a.SyncStatus = eventID, status
		return a, err
	}
	return updated, nil
}

func (s *Service) publish(ctx context.Context, a *model.Appointment) {
	ev := queue.AppointmentBooked{
		AppointmentID: a.ID,
		DoctorID:      a.DoctorID,
		BookedBy:      a.BookedBy,
		Date:          a.Date,
		SyncStatus:    string(a.SyncStatus),
	}
	reqID := logger.RequestID(ctx)
	s.pool.SubmitWithTimeout(publishTimeout, func(ctx context.Context) {
		if err := s.pub.Publish(ctx, queue.RoutingAppointmentBooked, ev, reqID); err != nil {
			s.log.Warn("publish appointment.booked", zap.Int64("appointment_id", ev.AppointmentID), zap.Error(err))
		}
	})
}

func outcome(err error) string {
	switch {
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	case errors.Is(err, model.ErrValidation):
		return "invalid"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
