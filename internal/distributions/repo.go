package distributions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkezman/coindrop/internal/telemetry/tracing"
	"github.com/mkezman/coindrop/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// Repo is the durable postgres variant of the ledger Store.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Append(ctx context.Context, tx Transaction) (_ *Transaction, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.distributions.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx.ID = uuid.NewString()
	tx.Status = StatusCompleted
	tx.CreatedAt = time.Now()

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO transactions
				(id, user_uid, uc_amount, coins_amount, admin_id, admin_username, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		tx.ID, tx.UserUID, tx.UCAmount, tx.CoinsAmount, tx.AdminID, tx.AdminUsername, tx.Status, tx.CreatedAt,
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, fmt.Errorf("append transaction: unknown admin id %s", tx.AdminID)
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("transaction.id", tx.ID))
	return &tx, nil
}

func (r *Repo) ListRecent(ctx context.Context, limit, offset int) (_ []Transaction, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.distributions.listRecent")
	span.SetAttributes(attribute.Int("limit", limit))
	span.SetAttributes(attribute.Int("offset", offset))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	total, err = r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_uid, uc_amount, coins_amount, admin_id, admin_username, status, created_at
			FROM transactions
			ORDER BY created_at DESC, id DESC
			LIMIT $1
			OFFSET $2;`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	transactions, err := r.rows2transactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *Repo) ListByUID(ctx context.Context, uid string) (_ []Transaction, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.distributions.listByUID")
	span.SetAttributes(attribute.String("user.uid", uid))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_uid, uc_amount, coins_amount, admin_id, admin_username, status, created_at
			FROM transactions
			WHERE user_uid = $1
			ORDER BY created_at DESC, id DESC;`,
		uid,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2transactions(rows)
}

func (r *Repo) Count(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.distributions.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `SELECT COUNT(*) FROM transactions;`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return 0, err
	}

	if rows.Next() {
		var count int
		if err := rows.Scan(&count); err == nil {
			return count, nil
		}
	}

	return 0, errors.New("unexpected error, failed to get transactions count")
}

func (r *Repo) rows2transactions(rows pgx.Rows) ([]Transaction, error) {
	transactions := []Transaction{}
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserUID, &tx.UCAmount, &tx.CoinsAmount,
			&tx.AdminID, &tx.AdminUsername, &tx.Status, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}
