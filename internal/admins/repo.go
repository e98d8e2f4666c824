package admins

import (
	"context"
	"fmt"

	"github.com/mkezman/coindrop/internal/telemetry/tracing"
	"github.com/mkezman/coindrop/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) GetByID(ctx context.Context, id string) (_ *Administrator, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.admins.getById")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getByQuery(
		ctx,
		`SELECT id, username, password_hash, is_active FROM admins WHERE id = $1;`,
		id,
	)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (_ *Administrator, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.admins.getByUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getByQuery(
		ctx,
		`SELECT id, username, password_hash, is_active FROM admins WHERE username = $1;`,
		username,
	)
}

func (r *Repo) Create(ctx context.Context, username, password string) (_ *Administrator, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.admins.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &Administrator{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Active:       true,
		Balance:      DefaultBalance,
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO admins (id, username, password_hash, is_active) VALUES ($1, $2, $3, $4);`,
		admin.ID, admin.Username, admin.PasswordHash, admin.Active,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return admin, nil
}

func (r *Repo) VerifyCredentials(ctx context.Context, username, password string) (*Administrator, error) {
	admin, err := r.GetByUsername(ctx, username)
	return verifyCredentials(admin, err, password)
}

func (r *Repo) getByQuery(ctx context.Context, query string, arg any) (*Administrator, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrAdminNotFound
	}

	var admin Administrator
	if err := rows.Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.Active); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	admin.Balance = DefaultBalance
	return &admin, nil
}
