// Package postgres is the durable Store backend. It honours the same
// contract as the in-process store; per-doctor serialisation uses a
// transaction-scoped advisory lock instead of a process mutex.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/model"
	"clinic-booking/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "23505"

type Store struct {
	pool   *pgxpool.Pool
	policy auth.Policy
	cost   int
	dummy  string
	now    func() time.Time
}

// Open connects and pings.
func Open(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func New(pool *pgxpool.Pool, opts store.Options) (*Store, error) {
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
		return nil, fmt.Errorf("postgres: dummy hash: %w", err)
	}
	return &Store{pool: pool, policy: opts.Policy, cost: opts.BcryptCost, dummy: dummy, now: opts.Now}, nil
}

func dbErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrInternal, op, err)
}

func isUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) CreateUser(ctx context.Context, email, password string) (*model.User, error) {
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := s.policy.Validate(password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password, s.cost)
	if err != nil {
		return nil, dbErr("hash password", err)
	}

	u := &model.User{Email: email, CreatedAt: s.now().UTC()}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES ($1,$2,$3) RETURNING id`,
		email, hash, u.CreatedAt,
	).Scan(&u.ID)
	if isUnique(err) {
		return nil, store.EmailTaken(email)
	}
	if err != nil {
		return nil, dbErr("insert user", err)
	}
	return u, nil
}

func (s *Store) findUser(ctx context.Context, where string, arg any) (*model.User, string, error) {
	u := &model.User{}
	var hash string
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Email, &hash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", dbErr("select user", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, hash, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, _, err := s.findUser(ctx, "email = $1", email)
	return u, err
}

func (s *Store) FindByID(ctx context.Context, id int64) (*model.User, error) {
	u, _, err := s.findUser(ctx, "id = $1", id)
	return u, err
}

func (s *Store) ValidateCredentials(ctx context.Context, email, password string) (*model.User, error) {
	u, hash, err := s.findUser(ctx, "email = $1", email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		hash = s.dummy
	}
	if !auth.CheckPassword(hash, password) || u == nil {
		return nil, model.ErrAuth
	}
	return u, nil
}

const apptColumns = `id, doctor_id, booked_by, date, notes, external_event_id, sync_status, created_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	a := &model.Appointment{}
	var st string
	if err := row.Scan(&a.ID, &a.DoctorID, &a.BookedBy, &a.Date, &a.Notes, &a.ExternalEventID, &st, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.SyncStatus = model.SyncStatus(st)
	a.Date = a.Date.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, bookedBy, doctorID int64, date, notes string) (*model.Appointment, error) {
	at, err := store.ParseDate(date, s.now())
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, dbErr("begin", err)
	}
	defer tx.Rollback(ctx)

	// serialises bookings per doctor until commit
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, doctorID); err != nil {
		return nil, dbErr("advisory lock", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, doctorID).Scan(&exists); err != nil {
		return nil, dbErr("select doctor", err)
	}
	if !exists {
		return nil, store.DoctorNotFound(doctorID)
	}

	var clash time.Time
	err = tx.QueryRow(ctx,
		`SELECT date FROM appointments
		 WHERE doctor_id = $1 AND date > $2 AND date < $3
		 ORDER BY date LIMIT 1`,
		doctorID, at.Add(-model.ConflictWindow), at.Add(model.ConflictWindow),
	).Scan(&clash)
	switch {
	case err == nil:
		return nil, store.DoctorBusy(doctorID, clash)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, dbErr("conflict check", err)
	}

	a, err := scanAppointment(tx.QueryRow(ctx,
		`INSERT INTO appointments (doctor_id, booked_by, date, notes, sync_status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6) RETURNING `+apptColumns,
		doctorID, bookedBy, at, notes, string(model.SyncPending), s.now().UTC(),
	))
	if err != nil {
		return nil, dbErr("insert appointment", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, dbErr("commit", err)
	}
	return a, nil
}

func (s *Store) FindByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE doctor_id = $1 ORDER BY date, id`, doctorID)
	if err != nil {
		return nil, dbErr("select appointments", err)
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, dbErr("scan appointment", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("select appointments", err)
	}
	return out, nil
}

func (s *Store) FindAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbErr("select appointment", err)
	}
	return a, nil
}

// ClaimSync flips an unsynced appointment to syncing in one statement;
// a claim older than lease may be taken over.
func (s *Store) ClaimSync(ctx context.Context, id int64, lease time.Duration) (*model.Appointment, bool, error) {
	now := s.now().UTC()
	a, err := scanAppointment(s.pool.QueryRow(ctx,
		`UPDATE appointments SET sync_status = $2, sync_claimed_at = $3
		 WHERE id = $1 AND external_event_id = ''
		   AND (sync_status <> $2 OR sync_claimed_at IS NULL OR sync_claimed_at <= $4)
		 RETURNING `+apptColumns,
		id, string(model.SyncInProgress), now, now.Add(-lease)))
	if err == nil {
		return a, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, dbErr("claim sync", err)
	}

	cur, err := s.FindAppointment(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if cur == nil {
		return nil, false, fmt.Errorf("%w: appointment %d", model.ErrNotFound, id)
	}
	return cur, false, nil
}

func (s *Store) RecordSync(ctx context.Context, id int64, eventID string, status model.SyncStatus) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx,
		`UPDATE appointments SET external_event_id = $2, sync_status = $3, sync_claimed_at = NULL
		 WHERE id = $1 RETURNING `+apptColumns,
		id, eventID, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: appointment %d", model.ErrNotFound, id)
	}
	if err != nil {
		return nil, dbErr("record sync", err)
	}
	return a, nil
}
