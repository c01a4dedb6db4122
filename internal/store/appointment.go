package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"clinic-booking/internal/model"
)

func (s *Store) CreateAppointment(ctx context.Context, bookedBy, doctorID int64, date, notes string) (*model.Appointment, error) {
	at, err := ParseDate(date, s.now())
	if err != nil {
		return nil, err
	}
	doc, err := s.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, DoctorNotFound(doctorID)
	}

	// check and insert are linearized per doctor
	unlock := s.doctors.Lock(doctorID)
	defer unlock()

	s.mu.RLock()
	pos, clash := s.slot(doctorID, at)
	s.mu.RUnlock()
	if clash != nil {
		return nil, DoctorBusy(doctorID, clash.Date)
	}

	s.mu.Lock()
	s.lastAppt++
	a := model.Appointment{
		ID:         s.lastAppt,
		DoctorID:   doctorID,
		BookedBy:   bookedBy,
		Date:       at,
		Notes:      notes,
		SyncStatus: model.SyncPending,
		CreatedAt:  s.now().UTC(),
	}
	s.appts[a.ID] = a
	s.byDoctor[doctorID] = slices.Insert(s.byDoctor[doctorID], pos, a.ID)
	s.mu.Unlock()

	return &a, nil
}

// slot finds where at belongs in the doctor's index and the neighbour it
// clashes with, if any. The index is sorted, so only the two neighbours of
// the insertion point can be within the window. Caller holds s.mu.
func (s *Store) slot(doctorID int64, at time.Time) (int, *model.Appointment) {
	ids := s.byDoctor[doctorID]
	pos := sort.Search(len(ids), func(i int) bool {
		return !s.appts[ids[i]].Date.Before(at)
	})
	for _, i := range []int{pos - 1, pos} {
		if i < 0 || i >= len(ids) {
			continue
		}
		if e := s.appts[ids[i]]; Conflicts(e.Date, at) {
			return pos, &e
		}
	}
	return pos, nil
}

func (s *Store) FindByDoctor(_ context.Context, doctorID int64) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byDoctor[doctorID]
	out := make([]model.Appointment, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.appts[id])
	}
	return out, nil
}

func (s *Store) FindAppointment(_ context.Context, id int64) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// ClaimSync marks the appointment as being synced so only one caller talks
// to the calendar for it at a time. It reports false, with the current
// record, when the appointment is already synced or another claim younger
// than lease is still open.
func (s *Store) ClaimSync(_ context.Context, id int64, lease time.Duration) (*model.Appointment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, false, fmt.Errorf("%w: appointment %d", model.ErrNotFound, id)
	}
	now := s.now()
	if a.Synced() {
		return &a, false, nil
	}
	if a.SyncStatus == model.SyncInProgress && now.Sub(s.claims[id]) < lease {
		return &a, false, nil
	}
	a.SyncStatus = model.SyncInProgress
	s.appts[id] = a
	s.claims[id] = now
	return &a, true, nil
}

// RecordSync stores the outcome of a calendar sync attempt and releases
// the claim.
func (s *Store) RecordSync(_ context.Context, id int64, eventID string, status model.SyncStatus) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %d", model.ErrNotFound, id)
	}
	a.ExternalEventID = eventID
	a.SyncStatus = status
	s.appts[id] = a
	delete(s.claims, id)
	return &a, nil
}
