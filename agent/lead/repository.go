// Package lead persists captured leads in Postgres through bun. Email
// uniqueness is enforced by the schema; a duplicate insert surfaces as
// contract.ErrDuplicateEmail, not as a raw driver error.
package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

type PostgresConfig struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"10"`
}

// PostgresRepository implements contract.LeadSink and contract.LeadDirectory.
type PostgresRepository struct {
	db *bun.DB
}

var (
	_ contractx.LeadSink      = (*PostgresRepository)(nil)
	_ contractx.LeadDirectory = (*PostgresRepository)(nil)
)

func NewPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
	))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	repo := &PostgresRepository{db: db}
	if err := repo.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PostgresRepository) ensureSchema(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().
		Model((*Record)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create leads table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Store inserts a captured lead. A unique-constraint conflict on email maps
// to contract.ErrDuplicateEmail.
func (r *PostgresRepository) Store(ctx context.Context, lead contractx.Lead) error {
	capturedAt := lead.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	rec := Record{
		Name:      lead.Name,
		Email:     lead.Email,
		Platform:  lead.Platform,
		Plan:      lead.Plan,
		CreatedAt: capturedAt,
		Status:    StatusNew,
	}

	if _, err := r.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		if isIntegrityViolation(err) {
			return fmt.Errorf("%w: %s", contractx.ErrDuplicateEmail, lead.Email)
		}
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// List returns all captured leads, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]contractx.LeadRecord, error) {
	var recs []Record
	if err := r.db.NewSelect().
		Model(&recs).
		Order("created_at DESC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	out := make([]contractx.LeadRecord, len(recs))
	for i, rec := range recs {
		out[i] = rec.toContract()
	}
	return out, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (contractx.LeadRecord, error) {
	var rec Record
	err := r.db.NewSelect().
		Model(&rec).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contractx.LeadRecord{}, fmt.Errorf("%w: %s", contractx.ErrLeadNotFound, email)
		}
		return contractx.LeadRecord{}, fmt.Errorf("get lead by email: %w", err)
	}
	return rec.toContract(), nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, email string, status string) error {
	res, err := r.db.NewUpdate().
		Model((*Record)(nil)).
		Set("status = ?", status).
		Where("email = ?", email).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", contractx.ErrLeadNotFound, email)
	}
	return nil
}

func isIntegrityViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}
