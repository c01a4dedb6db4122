// Package store is the in-process booking and identity repository.
//
// A single Store owns both the user collection and the appointment
// collection. Every read hands out copies; callers never see the records
// held in the maps.
package store

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/model"
)

type Options struct {
	Policy     auth.Policy
	BcryptCost int
	Now        func() time.Time
}

type Store struct {
	policy auth.Policy
	cost   int
	dummy  string
	now    func() time.Time

	mu       sync.RWMutex
	users    map[int64]userRecord
	byEmail  map[string]int64
	appts    map[int64]model.Appointment
	byDoctor map[int64][]int64 // appointment ids ordered by date
	lastUser int64
	lastAppt int64
	claims   map[int64]time.Time // sync claim start per appointment

	doctors keyLock
}

func New(opts Options) (*Store, error) {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Policy.MinLength == 0 {
		opts.Policy = auth.DefaultPolicy()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	dummy, err := auth.DummyHash(opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("store: dummy hash: %w", err)
	}
	return &Store{
		policy:   opts.Policy,
		cost:     opts.BcryptCost,
		dummy:    dummy,
		now:      opts.Now,
		users:    make(map[int64]userRecord),
		byEmail:  make(map[string]int64),
		appts:    make(map[int64]model.Appointment),
		byDoctor: make(map[int64][]int64),
		claims:   make(map[int64]time.Time),
	}, nil
}
