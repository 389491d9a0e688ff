// Package sqlstore persists election state in PostgreSQL or SQLite through
// database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"election/internal/election/models"
	"election/internal/election/store"
	"election/internal/election/store/sqlstore/migrations"
	"election/internal/platform/storage"
	"election/internal/platform/storage/migrate"
	"election/pkg/platform/tx"
)

// Store is the SQL-backed election store. Per-voter serialization uses a
// transaction-scoped advisory lock on PostgreSQL; SQLite handles opened by
// storage.Open have a single connection, so transactions are already
// exclusive.
type Store struct {
	db        *sql.DB
	dialect   storage.Dialect
	protector store.Protector
	logger    *slog.Logger
	ownsDB    bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithOwnedDB makes Close also close the underlying *sql.DB.
func WithOwnedDB() Option {
	return func(s *Store) {
		s.ownsDB = true
	}
}

// New applies the election schema and returns a store on db.
func New(ctx context.Context, db *sql.DB, dialect storage.Dialect, p store.Protector, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("sql db is required")
	}
	if p == nil {
		return nil, errors.New("pii protector is required")
	}
	s := &Store{db: db, dialect: dialect, protector: p}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if err := migrate.Apply(ctx, db, dialect, migrations.FS, string(dialect)); err != nil {
		return nil, fmt.Errorf("migrate election schema: %w", err)
	}
	return s, nil
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *Store) AddCandidate(ctx context.Context, name string) (models.Candidate, error) {
	var id int64
	err := tx.ExecerFrom(ctx, s.db).
		QueryRowContext(ctx, s.q(`INSERT INTO candidates (name) VALUES (?) RETURNING candidate_id`), name).
		Scan(&id)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("add candidate: %w", err)
	}
	return models.Candidate{ID: strconv.FormatInt(id, 10), Name: name}, nil
}

func (s *Store) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}
	var name string
	err = tx.ExecerFrom(ctx, s.db).
		QueryRowContext(ctx, s.q(`SELECT name FROM candidates WHERE candidate_id = ?`), n).
		Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return &models.Candidate{ID: id, Name: name}, nil
}

func (s *Store) GetAllCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).
		QueryContext(ctx, `SELECT candidate_id, name FROM candidates ORDER BY candidate_id`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, models.Candidate{ID: strconv.FormatInt(id, 10), Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return candidates, nil
}

// AddVoter checks and inserts under the voter lock. A concurrent insert that
// still slips through surfaces as a unique violation and reports false.
func (s *Store) AddVoter(ctx context.Context, voter models.Voter) (bool, error) {
	mv, err := store.Project(ctx, s.protector, voter)
	if err != nil {
		return false, err
	}

	added := false
	err = tx.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.lockVoter(ctx, mv.ObfuscatedNationalID); err != nil {
			return err
		}
		status, found, err := s.statusByKey(ctx, mv.ObfuscatedNationalID)
		if err != nil {
			return err
		}
		if found && status != models.VoterNotRegistered {
			return nil
		}

		exec := tx.ExecerFrom(ctx, s.db)
		if _, err := exec.ExecContext(ctx, s.q(`
			INSERT INTO voters (obfuscated_national_id, obfuscated_first_name, obfuscated_last_name)
			VALUES (?, ?, ?)
			ON CONFLICT (obfuscated_national_id) DO UPDATE SET
				obfuscated_first_name = EXCLUDED.obfuscated_first_name,
				obfuscated_last_name = EXCLUDED.obfuscated_last_name
		`), mv.ObfuscatedNationalID, mv.EncryptedFirstName, mv.EncryptedLastName); err != nil {
			return fmt.Errorf("insert voter: %w", err)
		}

		if found {
			_, err = exec.ExecContext(ctx, s.q(`UPDATE voter_status SET status = ? WHERE obfuscated_national_id = ?`),
				models.VoterRegisteredNotVoted.String(), mv.ObfuscatedNationalID)
		} else {
			_, err = exec.ExecContext(ctx, s.q(`INSERT INTO voter_status (obfuscated_national_id, status) VALUES (?, ?)`),
				mv.ObfuscatedNationalID, models.VoterRegisteredNotVoted.String())
		}
		if err != nil {
			return fmt.Errorf("insert voter status: %w", err)
		}
		added = true
		return nil
	})
	if isUniqueViolation(err) {
		s.logger.DebugContext(ctx, "concurrent voter registration lost the race")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *Store) GetVoterStatus(ctx context.Context, nationalID string) (models.VoterStatus, error) {
	status, found, err := s.statusByKey(ctx, store.VoterKey(ctx, s.protector, nationalID))
	if err != nil {
		return models.VoterNotRegistered, err
	}
	if !found {
		return models.VoterNotRegistered, nil
	}
	return status, nil
}

func (s *Store) statusByKey(ctx context.Context, key string) (models.VoterStatus, bool, error) {
	var raw string
	err := tx.ExecerFrom(ctx, s.db).
		QueryRowContext(ctx, s.q(`SELECT status FROM voter_status WHERE obfuscated_national_id = ?`), key).
		Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VoterNotRegistered, false, nil
	}
	if err != nil {
		return models.VoterNotRegistered, false, fmt.Errorf("get voter status: %w", err)
	}
	status, err := models.ParseVoterStatus(raw)
	if err != nil {
		return models.VoterNotRegistered, false, err
	}
	return status, true, nil
}

func (s *Store) SetVoterStatus(ctx context.Context, nationalID string, status models.VoterStatus) error {
	_, err := tx.ExecerFrom(ctx, s.db).ExecContext(ctx,
		s.q(`UPDATE voter_status SET status = ? WHERE obfuscated_national_id = ?`),
		status.String(), store.VoterKey(ctx, s.protector, nationalID))
	if err != nil {
		return fmt.Errorf("set voter status: %w", err)
	}
	return nil
}

func (s *Store) GetVoterNames(ctx context.Context, nationalID string) (string, string, bool, error) {
	mv := models.MinimalVoter{ObfuscatedNationalID: store.VoterKey(ctx, s.protector, nationalID)}
	err := tx.ExecerFrom(ctx, s.db).QueryRowContext(ctx, s.q(`
		SELECT obfuscated_first_name, obfuscated_last_name
		FROM voters
		WHERE obfuscated_national_id = ?
	`), mv.ObfuscatedNationalID).Scan(&mv.EncryptedFirstName, &mv.EncryptedLastName)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("get voter names: %w", err)
	}
	voter, err := store.Reveal(s.protector, mv)
	if err != nil {
		return "", "", false, err
	}
	return voter.FirstName, voter.LastName, true, nil
}

func (s *Store) DeleteVoter(ctx context.Context, nationalID string) error {
	key := store.VoterKey(ctx, s.protector, nationalID)
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		exec := tx.ExecerFrom(ctx, s.db)
		if _, err := exec.ExecContext(ctx, s.q(`DELETE FROM voters WHERE obfuscated_national_id = ?`), key); err != nil {
			return fmt.Errorf("delete voter: %w", err)
		}
		if _, err := exec.ExecContext(ctx, s.q(`DELETE FROM voter_status WHERE obfuscated_national_id = ?`), key); err != nil {
			return fmt.Errorf("delete voter status: %w", err)
		}
		return nil
	})
}

func (s *Store) AddBallotToVoter(ctx context.Context, nationalID, ballotNumber string) error {
	_, err := tx.ExecerFrom(ctx, s.db).ExecContext(ctx, s.q(`
		INSERT INTO ballots (obfuscated_national_id, ballot_number, chosen_candidate_id, voter_comments, valid)
		VALUES (?, ?, NULL, NULL, TRUE)
		ON CONFLICT (obfuscated_national_id, ballot_number) DO NOTHING
	`), store.VoterKey(ctx, s.protector, nationalID), ballotNumber)
	if err != nil {
		return fmt.Errorf("add ballot: %w", err)
	}
	return nil
}

func (s *Store) GetBallot(ctx context.Context, ballotNumber string) (*models.Ballot, error) {
	return s.scanBallot(ctx, s.q(`
		SELECT ballot_number, chosen_candidate_id, voter_comments, valid
		FROM ballots
		WHERE ballot_number = ? AND valid = TRUE
		LIMIT 1
	`), ballotNumber)
}

func (s *Store) GetBallotForVoter(ctx context.Context, ballotNumber, nationalID string) (*models.Ballot, error) {
	return s.scanBallot(ctx, s.q(`
		SELECT ballot_number, chosen_candidate_id, voter_comments, valid
		FROM ballots
		WHERE ballot_number = ? AND obfuscated_national_id = ? AND valid = TRUE
	`), ballotNumber, store.VoterKey(ctx, s.protector, nationalID))
}

func (s *Store) scanBallot(ctx context.Context, query string, args ...any) (*models.Ballot, error) {
	var (
		b         models.Ballot
		candidate sql.NullString
		comment   sql.NullString
	)
	err := tx.ExecerFrom(ctx, s.db).QueryRowContext(ctx, query, args...).
		Scan(&b.BallotNumber, &candidate, &comment, &b.Valid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ballot: %w", err)
	}
	if candidate.Valid {
		b.ChosenCandidateID = &candidate.String
	}
	if comment.Valid {
		b.VoterComments = &comment.String
	}
	return &b, nil
}

// CountBallotForVoter records the vote only on a ballot that is still valid
// and uncast. The vote is written first; if the row no longer qualifies the
// call fails with store.ErrBallotNotCastable before anything else changes.
func (s *Store) CountBallotForVoter(ctx context.Context, ballot models.Ballot, nationalID string) error {
	first, last, _, err := s.GetVoterNames(ctx, nationalID)
	if err != nil {
		return err
	}
	comment := store.RedactComment(ballot.VoterComments, first, last)
	key := store.VoterKey(ctx, s.protector, nationalID)

	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		exec := tx.ExecerFrom(ctx, s.db)
		result, err := exec.ExecContext(ctx, s.q(`
			UPDATE ballots SET chosen_candidate_id = ?, voter_comments = ?
			WHERE obfuscated_national_id = ? AND ballot_number = ?
				AND valid = TRUE AND chosen_candidate_id IS NULL
		`), nullString(ballot.ChosenCandidateID), nullString(comment), key, ballot.BallotNumber)
		if err != nil {
			return fmt.Errorf("record vote: %w", err)
		}
		recorded, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("record vote rows affected: %w", err)
		}
		if recorded != 1 {
			return store.ErrBallotNotCastable
		}
		if _, err := exec.ExecContext(ctx, s.q(`
			UPDATE ballots SET valid = FALSE
			WHERE obfuscated_national_id = ? AND ballot_number <> ?
		`), key, ballot.BallotNumber); err != nil {
			return fmt.Errorf("invalidate other ballots: %w", err)
		}
		if _, err := exec.ExecContext(ctx, s.q(`UPDATE voter_status SET status = ? WHERE obfuscated_national_id = ?`),
			models.VoterBallotCounted.String(), key); err != nil {
			return fmt.Errorf("mark ballot counted: %w", err)
		}
		return nil
	})
}

func (s *Store) InvalidateBallot(ctx context.Context, ballotNumber string) (bool, error) {
	result, err := tx.ExecerFrom(ctx, s.db).ExecContext(ctx, s.q(`
		UPDATE ballots SET valid = FALSE
		WHERE ballot_number = ? AND valid = TRUE AND chosen_candidate_id IS NULL
	`), ballotNumber)
	if err != nil {
		return false, fmt.Errorf("invalidate ballot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("invalidate ballot rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *Store) GetWinner(ctx context.Context) (*models.Candidate, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx, `
		SELECT chosen_candidate_id, COUNT(*)
		FROM ballots
		WHERE valid = TRUE AND chosen_candidate_id IS NOT NULL
		GROUP BY chosen_candidate_id
	`)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	defer rows.Close()

	var tallies []store.Tally
	for rows.Next() {
		var t store.Tally
		if err := rows.Scan(&t.CandidateID, &t.Votes); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tallies: %w", err)
	}

	winner, ok := store.PickWinner(tallies)
	if !ok {
		return nil, nil
	}
	return s.GetCandidate(ctx, winner)
}

func (s *Store) GetAllBallotComments(ctx context.Context) ([]string, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx, `
		SELECT DISTINCT voter_comments
		FROM ballots
		WHERE voter_comments IS NOT NULL AND voter_comments <> ''
	`)
	if err != nil {
		return nil, fmt.Errorf("list ballot comments: %w", err)
	}
	defer rows.Close()

	var comments []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan ballot comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ballot comments: %w", err)
	}
	return store.SortedComments(comments), nil
}

func (s *Store) GetAllFraudulentVoters(ctx context.Context) ([]models.Voter, error) {
	rows, err := tx.ExecerFrom(ctx, s.db).QueryContext(ctx, s.q(`
		SELECT v.obfuscated_national_id, v.obfuscated_first_name, v.obfuscated_last_name
		FROM voters v
		JOIN voter_status vs ON vs.obfuscated_national_id = v.obfuscated_national_id
		WHERE vs.status = ?
		ORDER BY v.obfuscated_national_id
	`), models.VoterFraudCommitted.String())
	if err != nil {
		return nil, fmt.Errorf("list fraudulent voters: %w", err)
	}
	defer rows.Close()

	var projected []models.MinimalVoter
	for rows.Next() {
		var mv models.MinimalVoter
		if err := rows.Scan(&mv.ObfuscatedNationalID, &mv.EncryptedFirstName, &mv.EncryptedLastName); err != nil {
			return nil, fmt.Errorf("scan fraudulent voter: %w", err)
		}
		projected = append(projected, mv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fraudulent voters: %w", err)
	}

	voters := make([]models.Voter, 0, len(projected))
	for _, mv := range projected {
		v, err := store.Reveal(s.protector, mv)
		if err != nil {
			return nil, err
		}
		voters = append(voters, v)
	}
	return voters, nil
}

// RunInVoterTx opens (or joins) a transaction and, on PostgreSQL, takes the
// voter's advisory lock for its lifetime.
func (s *Store) RunInVoterTx(ctx context.Context, nationalID string, fn func(ctx context.Context) error) error {
	key := store.VoterKey(ctx, s.protector, nationalID)
	ctx = store.WithVoterKey(ctx, nationalID, key)
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.lockVoter(ctx, key); err != nil {
			return err
		}
		return fn(ctx)
	})
}

func (s *Store) lockVoter(ctx context.Context, key string) error {
	if s.dialect != storage.DialectPostgres {
		return nil
	}
	_, err := tx.ExecerFrom(ctx, s.db).ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, key)
	if err != nil {
		return fmt.Errorf("lock voter: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

var _ store.Store = (*Store)(nil)
