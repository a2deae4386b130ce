package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/estimate"
)

const (
	estimatesTable   = "estimates"
	sequencesTable   = "sequences"
	estimateSequence = "estimate"
	maxNumberRetries = 8
)

var estimateColumns = []string{
	"id", "number", "sequence", "job_id", "job_type", "address", "breakdown", "total",
	"currency", "created_by", "created_at", "valid_until",
}

type EstimateRepository interface {
	// Create assigns the next estimate number and inserts est in one
	// transaction, so numbers are unique and gap-free.
	Create(ctx context.Context, est *entity.Estimate) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Estimate, error)
	List(ctx context.Context, limit int) ([]*entity.Estimate, error)
}

type estimateRepository struct {
	db     *DB
	logger *slog.Logger
	// newBackOff is swapped in tests.
	newBackOff func() backoff.BackOff
}

func NewEstimateRepository(db *DB, logger *slog.Logger) EstimateRepository {
	return &estimateRepository{
		db:     db,
		logger: logger,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxNumberRetries)
		},
	}
}

func (r *estimateRepository) Create(ctx context.Context, est *entity.Estimate) error {
	breakdown, err := json.Marshal(est.Breakdown)
	if err != nil {
		return common.InternalError("failed to encode estimate breakdown", err)
	}

	attempt := 0
	op := func() error {
		attempt++
		err := r.db.withTx(ctx, func(tx dialect.Tx) error {
			seq, err := r.nextSequence(ctx, tx)
			if err != nil {
				return err
			}
			est.Sequence = seq
			est.Number = estimate.FormatNumber(seq)

			var createdBy *string
			if est.CreatedBy != nil {
				s := est.CreatedBy.String()
				createdBy = &s
			}
			q, args := r.db.builder().Insert(estimatesTable).
				Columns(estimateColumns...).
				Values(
					est.ID.String(), est.Number, est.Sequence, est.JobID, string(est.JobType), est.Address,
					string(breakdown), est.Breakdown.Total, est.Currency, createdBy,
					toMillis(est.CreatedAt), toMillis(est.ValidUntil),
				).
				Query()
			_, err = exec(ctx, tx, q, args)
			return err
		})
		if err == nil {
			return nil
		}
		if isTransient(err) || isUniqueViolation(err) {
			r.logger.Warn("estimate numbering conflict, retrying", "attempt", attempt, "error", err)
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, backoff.WithContext(r.newBackOff(), ctx)); err != nil {
		if isTransient(err) || isUniqueViolation(err) {
			return common.RetryableError("estimate numbering contention, try again", err)
		}
		r.logger.Error("failed to create estimate", "error", err)
		return common.DatabaseError("failed to create estimate", err)
	}
	r.logger.Info("estimate created", "number", est.Number, "attempts", attempt)
	return nil
}

// nextSequence bumps the counter row. The row lock taken by the update holds
// until the transaction ends, which serialises concurrent creators.
func (r *estimateRepository) nextSequence(ctx context.Context, tx dialect.Tx) (int64, error) {
	q, args := r.db.builder().Update(sequencesTable).
		Add("value", 1).
		Where(entsql.EQ("name", estimateSequence)).
		Query()
	n, err := exec(ctx, tx, q, args)
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, fmt.Errorf("sequence %q missing", estimateSequence)
	}

	q, args = r.db.builder().Select("value").
		From(entsql.Table(sequencesTable)).
		Where(entsql.EQ("name", estimateSequence)).
		Query()
	var seq int64
	err = query(ctx, tx, q, args, func(rows *entsql.Rows) error {
		return rows.Scan(&seq)
	})
	return seq, err
}

func (r *estimateRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Estimate, error) {
	q, args := r.db.builder().Select(estimateColumns...).
		From(entsql.Table(estimatesTable)).
		Where(entsql.EQ("id", id.String())).
		Query()
	var out *entity.Estimate
	err := query(ctx, r.db.Driver, q, args, func(rows *entsql.Rows) error {
		e, err := scanEstimate(rows)
		out = e
		return err
	})
	if err != nil {
		r.logger.Error("failed to get estimate", "estimate_id", id, "error", err)
		return nil, common.DatabaseError("failed to get estimate", err)
	}
	if out == nil {
		return nil, common.NotFoundErrorf("estimate %s not found", id)
	}
	return out, nil
}

func (r *estimateRepository) List(ctx context.Context, limit int) ([]*entity.Estimate, error) {
	sel := r.db.builder().Select(estimateColumns...).
		From(entsql.Table(estimatesTable)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()
	var out []*entity.Estimate
	err := query(ctx, r.db.Driver, q, args, func(rows *entsql.Rows) error {
		e, err := scanEstimate(rows)
		if err == nil {
			out = append(out, e)
		}
		return err
	})
	if err != nil {
		r.logger.Error("failed to list estimates", "error", err)
		return nil, common.DatabaseError("failed to list estimates", err)
	}
	return out, nil
}

func scanEstimate(rows *entsql.Rows) (*entity.Estimate, error) {
	var (
		e                  entity.Estimate
		id, jobType        string
		jobID, createdBy   sql.NullString
		breakdown          []byte
		total              float64
		created, validTill int64
	)
	err := rows.Scan(&id, &e.Number, &e.Sequence, &jobID, &jobType, &e.Address, &breakdown, &total,
		&e.Currency, &createdBy, &created, &validTill)
	if err != nil {
		return nil, err
	}
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(breakdown, &e.Breakdown); err != nil {
		return nil, fmt.Errorf("decode breakdown of %s: %w", e.Number, err)
	}
	if jobID.Valid {
		e.JobID = &jobID.String
	}
	if createdBy.Valid {
		u, err := uuid.Parse(createdBy.String)
		if err != nil {
			return nil, err
		}
		e.CreatedBy = &u
	}
	e.JobType = constants.JobType(jobType)
	e.CreatedAt = fromMillis(created)
	e.ValidUntil = fromMillis(validTill)
	return &e, nil
}
