package distributions

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mkezman/coindrop/internal/apierr"
	"github.com/mkezman/coindrop/internal/auth"
	"github.com/mkezman/coindrop/internal/telemetry/tracing"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// DistributeRequest is the create-distribution payload. Amounts are
// whole currency units; at least one of the two must be positive.
type DistributeRequest struct {
	UserUID     string `json:"userUID" validate:"required"`
	UCAmount    int64  `json:"ucAmount" validate:"gte=0"`
	CoinsAmount int64  `json:"coinsAmount" validate:"gte=0"`
}

// Page is one slice of the ledger plus the paging bookkeeping the
// client needs to ask for the next one.
type Page struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

type Service struct {
	store    Store
	validate *validator.Validate
}

func NewService(store Store) *Service {
	validate := validator.New()
	// report errors against the json field names, the only names the
	// API clients ever see
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{
		store:    store,
		validate: validate,
	}
}

// Distribute validates the request and appends a completed transaction
// stamped with the calling administrator's identity.
func (s *Service) Distribute(ctx context.Context, identity *auth.Session, req DistributeRequest) (_ *Transaction, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.distributions.distribute")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if identity == nil {
		return nil, auth.ErrNoSession
	}

	if vErr := s.validateDistribute(req); vErr.HasErrors() {
		return nil, vErr
	}

	tx, err := s.store.Append(ctx, Transaction{
		UserUID:       req.UserUID,
		UCAmount:      req.UCAmount,
		CoinsAmount:   req.CoinsAmount,
		AdminID:       identity.AdminID,
		AdminUsername: identity.AdminUsername,
	})
	if err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}

	log.Debugf(
		"admin %s distributed [uc %d, coins %d] to user %s, tx %s",
		tx.AdminUsername, tx.UCAmount, tx.CoinsAmount, tx.UserUID, tx.ID,
	)

	return tx, nil
}

func (s *Service) validateDistribute(req DistributeRequest) *apierr.ValidationError {
	vErr := &apierr.ValidationError{}

	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			vErr.Add("request", "invalid request")
			return vErr
		}
		for _, fe := range fieldErrs {
			switch fe.Tag() {
			case "required":
				vErr.Add(fe.Field(), "is required")
			case "gte":
				vErr.Add(fe.Field(), "must not be negative")
			default:
				vErr.Add(fe.Field(), "is invalid")
			}
		}
	}

	if req.UCAmount == 0 && req.CoinsAmount == 0 {
		vErr.Add("amounts", "at least one of ucAmount and coinsAmount must be positive")
	}

	return vErr
}

func (s *Service) GetPage(ctx context.Context, limit, offset int) (_ *Page, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.distributions.getPage")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	transactions, total, err := s.store.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}

	return &Page{
		Transactions: transactions,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

func (s *Service) GetByUID(ctx context.Context, uid string) (_ []Transaction, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.distributions.getByUID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	transactions, err := s.store.ListByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %s: %w", uid, err)
	}
	return transactions, nil
}

// ExportCSV streams the whole ledger, most recent first, as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.distributions.exportCSV")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	total, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}

	transactions, _, err := s.store.ListRecent(ctx, total, 0)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write([]string{
		"id", "user_uid", "uc_amount", "coins_amount",
		"admin_id", "admin_username", "status", "created_at",
	}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, tx := range transactions {
		if err := csvWriter.Write([]string{
			tx.ID,
			tx.UserUID,
			strconv.FormatInt(tx.UCAmount, 10),
			strconv.FormatInt(tx.CoinsAmount, 10),
			tx.AdminID,
			tx.AdminUsername,
			tx.Status,
			tx.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
