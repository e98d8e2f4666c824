package distributions

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mkezman/coindrop/internal/apierr"
	"github.com/mkezman/coindrop/internal/auth"
	"github.com/mkezman/coindrop/internal/telemetry/metrics"
	"github.com/mkezman/coindrop/internal/telemetry/tracing"
	"github.com/mkezman/coindrop/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const defaultPageLimit = 50

type Handler struct {
	service      *Service
	loginChecker auth.Checker
	metrics      *metrics.Manager
}

func NewHandler(
	service *Service,
	loginChecker auth.Checker,
	metrics *metrics.Manager,
) *Handler {
	return &Handler{
		service:      service,
		loginChecker: loginChecker,
		metrics:      metrics,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/transactions", handler.handleDistribute).Methods("POST", "OPTIONS").Name("distribute")
	router.HandleFunc("/transactions", handler.handleList).Methods("GET").Name("transactions-list")
	router.HandleFunc("/transactions/export", handler.handleExport).Methods("GET").Name("transactions-export")
	router.HandleFunc("/transactions/user/{uid}", handler.handleListByUID).Methods("GET").Name("transactions-by-user")
}

type DistributeResponse struct {
	Transaction *Transaction `json:"transaction"`
}

func (handler *Handler) handleDistribute(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "distributionsHandler.distribute")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	identity, err := handler.loginChecker.GetSession(ctx, auth.TokenFromRequest(r))
	if err != nil {
		apierr.WriteUnauthenticated(w)
		return
	}

	var req DistributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("distribute, unmarshal json params: %s", err)
		validationErr := &apierr.ValidationError{}
		validationErr.Add("body", "invalid JSON payload")
		apierr.WriteValidationError(w, validationErr)
		return
	}

	tx, err := handler.service.Distribute(ctx, identity, req)
	if err != nil {
		var validationErr *apierr.ValidationError
		switch {
		case errors.As(err, &validationErr):
			apierr.WriteValidationError(w, validationErr)
		case errors.Is(err, auth.ErrNoSession):
			apierr.WriteUnauthenticated(w)
		default:
			log.Errorf("distribute: %s", err)
			apierr.WriteInternal(w)
		}
		return
	}

	handler.metrics.CounterDistributions.Inc()

	respJson, err := json.Marshal(DistributeResponse{Transaction: tx})
	if err != nil {
		log.Errorf("marshal distribute response: %s", err)
		apierr.WriteInternal(w)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, http.StatusCreated, respJson)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "distributionsHandler.list")
	defer span.End()

	limit, offset, vErr := pageParams(r)
	if vErr.HasErrors() {
		apierr.WriteValidationError(w, vErr)
		return
	}

	page, err := handler.service.GetPage(ctx, limit, offset)
	if err != nil {
		log.Errorf("list transactions: %s", err)
		apierr.WriteInternal(w)
		return
	}

	pageJson, err := json.Marshal(page)
	if err != nil {
		log.Errorf("marshal transactions page: %s", err)
		apierr.WriteInternal(w)
		return
	}
	pkg.WriteJSONBytesResponseOK(w, pageJson)
}

func (handler *Handler) handleListByUID(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "distributionsHandler.listByUID")
	defer span.End()

	vars := mux.Vars(r)
	uid := vars["uid"]
	if uid == "" {
		validationErr := &apierr.ValidationError{}
		validationErr.Add("uid", "is required")
		apierr.WriteValidationError(w, validationErr)
		return
	}

	transactions, err := handler.service.GetByUID(ctx, uid)
	if err != nil {
		log.Errorf("list transactions for user %s: %s", uid, err)
		apierr.WriteInternal(w)
		return
	}

	type listResponse struct {
		Transactions []Transaction `json:"transactions"`
		Total        int           `json:"total"`
	}
	respJson, err := json.Marshal(listResponse{
		Transactions: transactions,
		Total:        len(transactions),
	})
	if err != nil {
		log.Errorf("marshal user transactions: %s", err)
		apierr.WriteInternal(w)
		return
	}
	pkg.WriteJSONBytesResponseOK(w, respJson)
}

func (handler *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "distributionsHandler.export")
	defer span.End()

	fileName := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", pkg.ContentType.CSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := handler.service.ExportCSV(ctx, w); err != nil {
		// headers are likely out already, just log it
		log.Errorf("export transactions csv: %s", err)
	}
}

func pageParams(r *http.Request) (limit, offset int, vErr *apierr.ValidationError) {
	vErr = &apierr.ValidationError{}
	limit, offset = defaultPageLimit, 0

	// limit is deliberately not capped, this is an internal tool
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			vErr.Add("limit", "must be a positive integer")
		} else {
			limit = parsed
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			vErr.Add("offset", "must be a non-negative integer")
		} else {
			offset = parsed
		}
	}

	return limit, offset, vErr
}
