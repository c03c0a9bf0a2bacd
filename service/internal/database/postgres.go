package database

import (
	"context"
	"embed"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/klondike/service/internal/models"
)

//go:embed schema.sql
var schema embed.FS

const uniqueViolation = "23505"

// Postgres implements SaveRepo, ScoreRepo and ProfileRepo on a pgx pool.
type Postgres struct{ *pgxpool.Pool }

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return &Postgres{p}, nil
}

// Migrate applies the embedded schema. It is idempotent.
func (db *Postgres) Migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

const saveColumns = `id, mode, draw_count, seed, player, score, moves, seconds, won, state, created_at, updated_at`

func scanSave(row pgx.Row) (models.Save, error) {
	var s models.Save
	err := row.Scan(&s.ID, &s.Mode, &s.DrawCount, &s.Seed, &s.Player, &s.Score, &s.Moves,
		&s.Seconds, &s.Won, &s.State, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (db *Postgres) Create(ctx context.Context, s models.Save) error {
	_, err := db.Exec(ctx, `
		INSERT INTO saves(`+saveColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, s.ID, s.Mode, s.DrawCount, s.Seed, s.Player, s.Score, s.Moves, s.Seconds, s.Won, s.State,
		s.CreatedAt, s.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrExists
	}
	return err
}

func (db *Postgres) Get(ctx context.Context, id uuid.UUID) (models.Save, error) {
	s, err := scanSave(db.QueryRow(ctx, `SELECT `+saveColumns+` FROM saves WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Save{}, ErrNotFound
	}
	return s, err
}

func (db *Postgres) Update(ctx context.Context, s models.Save) error {
	tag, err := db.Exec(ctx, `
		UPDATE saves
		   SET mode = $2,
		       draw_count = $3,
		       seed = $4,
		       player = $5,
		       score = $6,
		       moves = $7,
		       seconds = $8,
		       won = $9,
		       state = $10,
		       updated_at = $11
		 WHERE id = $1
	`, s.ID, s.Mode, s.DrawCount, s.Seed, s.Player, s.Score, s.Moves, s.Seconds, s.Won, s.State, s.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := db.Exec(ctx, `DELETE FROM saves WHERE id = $1`, id)
	return err
}

func (db *Postgres) List(ctx context.Context) ([]models.Save, error) {
	rows, err := db.Query(ctx, `SELECT `+saveColumns+` FROM saves ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Save
	for rows.Next() {
		s, err := scanSave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Scores returns a ScoreRepo view of the same pool.
func (db *Postgres) Scores() ScoreRepo { return pgScores{db} }

// Profiles returns a ProfileRepo view of the same pool.
func (db *Postgres) Profiles() ProfileRepo { return pgProfiles{db} }

type pgScores struct{ db *Postgres }

func (r pgScores) Add(ctx context.Context, e models.ScoreEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO scores(name, score, moves, seconds, draw, ts)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.Name, e.Score, e.Moves, e.Seconds, e.Draw, e.TS)
	return err
}

func (r pgScores) List(ctx context.Context) ([]models.ScoreEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, score, moves, seconds, draw, ts
		  FROM scores
		 ORDER BY score DESC, seconds, moves, ts
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.ScoreEntry
	for rows.Next() {
		var e models.ScoreEntry
		if err := rows.Scan(&e.Name, &e.Score, &e.Moves, &e.Seconds, &e.Draw, &e.TS); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type pgProfiles struct{ db *Postgres }

func (r pgProfiles) Get(ctx context.Context, user string) (models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRow(ctx, `
		SELECT name, language, high_contrast FROM profiles WHERE user_id = $1
	`, user).Scan(&p.Name, &p.Language, &p.HighContrast)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Profile{}, nil
	}
	return p, err
}

func (r pgProfiles) Set(ctx context.Context, user string, p models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO profiles(user_id, name, language, high_contrast)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE
		  SET name = EXCLUDED.name,
		      language = EXCLUDED.language,
		      high_contrast = EXCLUDED.high_contrast
	`, user, p.Name, p.Language, p.HighContrast)
	return err
}
