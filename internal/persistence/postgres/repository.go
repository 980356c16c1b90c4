// Package postgres provides pgx-backed persistence for activities, check-ins,
// gem balances, and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/club/internal/domain"
	"example.com/club/internal/events"
	"example.com/club/internal/observability"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const activityColumns = `activity_id, title, activity_type, starts_at, ends_at, location, description,
        checkin_enabled, requires_evidence, status, gem_amount, created_at, updated_at`

const checkInColumns = `checkin_id, user_id, activity_id, checked_at, status, evidence,
        gems_awarded, rewarded_at, created_at`

// Repository implements the domain repositories on top of a pgx pool. The
// database is the synchronization point: uniqueness and one-shot decisions
// are enforced by constraints and guarded writes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActivities returns every activity ordered by starts_at descending.
func (r *Repository) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities ORDER BY starts_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *activity)
	}
	return activities, rows.Err()
}

// GetActivity retrieves an activity by ID, nil if absent.
func (r *Repository) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE activity_id=$1`

	activity, err := scanActivity(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// CreateActivity persists the activity and records the created event inside a
// single transaction.
func (r *Repository) CreateActivity(ctx context.Context, activity domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const stmt = `INSERT INTO activities (` + activityColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err = tx.Exec(ctx, stmt,
		activity.ID,
		activity.Title,
		activity.Type,
		activity.StartsAt,
		activity.EndsAt,
		activity.Location,
		activity.Description,
		activity.CheckinEnabled,
		activity.RequiresEvidence,
		activity.Status,
		activity.GemAmount,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		return err
	}

	err = insertOutbox(ctx, tx, "activity", activity.ID, "activity.created", events.ActivityCreated{
		ActivityID:   activity.ID,
		Title:        activity.Title,
		ActivityType: activity.Type,
		StartsAt:     activity.StartsAt,
		Status:       string(activity.Status),
		GemAmount:    activity.GemAmount,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordActivityCreated(activity.CreatedAt)
	return nil
}

// UpdateActivity replaces the stored row with the given record. The column
// list is fixed; partial-update semantics are resolved by the registry before
// this call.
func (r *Repository) UpdateActivity(ctx context.Context, activity domain.Activity) error {
	const stmt = `UPDATE activities SET
        title=$2, activity_type=$3, starts_at=$4, ends_at=$5, location=$6, description=$7,
        checkin_enabled=$8, requires_evidence=$9, status=$10, gem_amount=$11, updated_at=$12
        WHERE activity_id=$1`

	tag, err := r.pool.Exec(ctx, stmt,
		activity.ID,
		activity.Title,
		activity.Type,
		activity.StartsAt,
		activity.EndsAt,
		activity.Location,
		activity.Description,
		activity.CheckinEnabled,
		activity.RequiresEvidence,
		activity.Status,
		activity.GemAmount,
		activity.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

// DeleteActivity removes the activity. The RESTRICT foreign key refuses the
// delete while check-ins reference it.
func (r *Repository) DeleteActivity(ctx context.Context, id string) (*domain.Activity, error) {
	query := `DELETE FROM activities WHERE activity_id=$1 RETURNING ` + activityColumns

	activity, err := scanActivity(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, domain.ErrActivityHasCheckIns
		}
		return nil, err
	}
	return activity, nil
}

// GetCheckIn retrieves a check-in by ID, nil if absent.
func (r *Repository) GetCheckIn(ctx context.Context, id string) (*domain.CheckIn, error) {
	query := `SELECT ` + checkInColumns + ` FROM check_ins WHERE checkin_id=$1`

	checkIn, err := scanCheckIn(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return checkIn, nil
}

// CreateCheckIn inserts the claim and records the submission event inside a
// single transaction. The UNIQUE (user_id, activity_id) constraint settles
// concurrent submissions: exactly one insert wins.
func (r *Repository) CreateCheckIn(ctx context.Context, checkIn domain.CheckIn) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const stmt = `INSERT INTO check_ins (checkin_id, user_id, activity_id, checked_at, status, evidence, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, stmt,
		checkIn.ID,
		checkIn.UserID,
		checkIn.ActivityID,
		checkIn.CheckedAt,
		checkIn.Status,
		checkIn.Evidence,
		checkIn.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgUniqueViolation:
				return domain.ErrDuplicateCheckIn
			case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == "check_ins_activity_id_fkey":
				return domain.ErrActivityNotFound
			case pgErr.Code == pgForeignKeyViolation:
				return domain.Validationf("unknown member %s", checkIn.UserID)
			}
		}
		return err
	}

	err = insertOutbox(ctx, tx, "check_in", checkIn.ID, "checkin.recorded", events.CheckInRecorded{
		CheckInID:  checkIn.ID,
		ActivityID: checkIn.ActivityID,
		UserID:     checkIn.UserID,
		CheckedAt:  checkIn.CheckedAt,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordCheckInSubmitted()
	return nil
}

// DecideCheckIn settles a pending claim in one transaction: the guarded
// status write, the gem credit, the rewarded marker, and the outbox event
// commit together or not at all. A retried or racing review finds no pending
// row and observes ErrAlreadyDecided, so a check-in can never credit twice.
func (r *Repository) DecideCheckIn(ctx context.Context, id string, decision domain.CheckInStatus, credit *domain.GemCredit) (*domain.CheckIn, int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	decidedAt := time.Now().UTC()

	var row pgx.Row
	if credit != nil {
		stmt := `UPDATE check_ins SET status=$2, gems_awarded=$3, rewarded_at=$4
            WHERE checkin_id=$1 AND status='pending'
            RETURNING ` + checkInColumns
		row = tx.QueryRow(ctx, stmt, id, decision, credit.Amount, decidedAt)
	} else {
		stmt := `UPDATE check_ins SET status=$2
            WHERE checkin_id=$1 AND status='pending'
            RETURNING ` + checkInColumns
		row = tx.QueryRow(ctx, stmt, id, decision)
	}

	checkIn, err := scanCheckIn(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, r.classifyDecideMiss(ctx, tx, id)
	}
	if err != nil {
		return nil, 0, err
	}

	var balance int64
	if credit != nil {
		const creditStmt = `UPDATE users SET gem_balance = gem_balance + $2 WHERE user_id=$1 RETURNING gem_balance`
		if err := tx.QueryRow(ctx, creditStmt, credit.UserID, credit.Amount).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, 0, fmt.Errorf("member %s missing from balance ledger", credit.UserID)
			}
			return nil, 0, err
		}
	}

	gemsAwarded := 0
	if credit != nil {
		gemsAwarded = credit.Amount
	}
	err = insertOutbox(ctx, tx, "check_in", checkIn.ID, "checkin.decided", events.CheckInDecided{
		CheckInID:   checkIn.ID,
		ActivityID:  checkIn.ActivityID,
		UserID:      checkIn.UserID,
		Decision:    string(decision),
		GemsAwarded: gemsAwarded,
		DecidedAt:   decidedAt,
	})
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}

	observability.RecordCheckInDecided(string(decision))
	if gemsAwarded > 0 {
		observability.RecordGemsCredited(gemsAwarded)
	}
	return checkIn, balance, nil
}

// classifyDecideMiss distinguishes a missing check-in from one already
// settled, inside the same transaction snapshot.
func (r *Repository) classifyDecideMiss(ctx context.Context, tx pgx.Tx, id string) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM check_ins WHERE checkin_id=$1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrCheckInNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: status is %s", domain.ErrAlreadyDecided, status)
}

// ListParticipants joins an activity's check-ins with member identities,
// ordered by checked_at descending.
func (r *Repository) ListParticipants(ctx context.Context, activityID string) ([]domain.Participant, error) {
	const query = `SELECT c.checkin_id, c.user_id, c.activity_id, c.checked_at, c.status, c.evidence,
            c.gems_awarded, c.rewarded_at, c.created_at,
            u.username, u.email, u.avatar, u.club_role
        FROM check_ins c
        JOIN users u ON u.user_id = c.user_id
        WHERE c.activity_id=$1
        ORDER BY c.checked_at DESC`

	rows, err := r.pool.Query(ctx, query, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]domain.Participant, 0)
	for rows.Next() {
		var (
			c           domain.CheckIn
			m           domain.MemberIdentity
			gemsAwarded *int
		)
		err := rows.Scan(&c.ID, &c.UserID, &c.ActivityID, &c.CheckedAt, &c.Status, &c.Evidence,
			&gemsAwarded, &c.RewardedAt, &c.CreatedAt,
			&m.Username, &m.Email, &m.Avatar, &m.ClubRole)
		if err != nil {
			return nil, err
		}
		if gemsAwarded != nil {
			c.GemsAwarded = *gemsAwarded
		}
		m.UserID = c.UserID
		participants = append(participants, domain.Participant{CheckIn: c, Member: m})
	}
	return participants, rows.Err()
}

// GemBalance returns a member's current gem balance.
func (r *Repository) GemBalance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `SELECT gem_balance FROM users WHERE user_id=$1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

// Standings returns members ordered by gem balance descending.
func (r *Repository) Standings(ctx context.Context, limit int) ([]domain.Standing, error) {
	const query = `SELECT user_id, username, avatar, gem_balance
        FROM users
        ORDER BY gem_balance DESC, username ASC
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]domain.Standing, 0, limit)
	for rows.Next() {
		var s domain.Standing
		if err := rows.Scan(&s.UserID, &s.Username, &s.Avatar, &s.GemBalance); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateType, aggregateID, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	dedupeKey := fmt.Sprintf("%s:%s", aggregateID, eventType)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		aggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		aggregateID,
		body,
		dedupeKey,
	)
	return err
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(&a.ID, &a.Title, &a.Type, &a.StartsAt, &a.EndsAt, &a.Location, &a.Description,
		&a.CheckinEnabled, &a.RequiresEvidence, &a.Status, &a.GemAmount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanCheckIn(row pgx.Row) (*domain.CheckIn, error) {
	var (
		c           domain.CheckIn
		gemsAwarded *int
	)
	err := row.Scan(&c.ID, &c.UserID, &c.ActivityID, &c.CheckedAt, &c.Status, &c.Evidence,
		&gemsAwarded, &c.RewardedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if gemsAwarded != nil {
		c.GemsAwarded = *gemsAwarded
	}
	return &c, nil
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"activity.created": {
		Topic:         "club_activity_events",
		SchemaSubject: "club_activity_events-value",
	},
	"checkin.recorded": {
		Topic:         "club_checkin_events",
		SchemaSubject: "club_checkin_events-value",
	},
	"checkin.decided": {
		Topic:         "club_checkin_decisions",
		SchemaSubject: "club_checkin_decisions-value",
	},
}
