package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mkezman/coindrop/internal/admins"
	"github.com/mkezman/coindrop/internal/apierr"
	"github.com/mkezman/coindrop/internal/telemetry/metrics"
	"github.com/mkezman/coindrop/internal/telemetry/tracing"
	"github.com/mkezman/coindrop/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	authService  *Service
	loginChecker Checker
	adminsStore  admins.Store
	metrics      *metrics.Manager
}

func NewHandler(
	authService *Service,
	loginChecker Checker,
	adminsStore admins.Store,
	metrics *metrics.Manager,
) *Handler {
	return &Handler{
		authService:  authService,
		loginChecker: loginChecker,
		adminsStore:  adminsStore,
		metrics:      metrics,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/auth/login", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	router.HandleFunc("/auth/logout", handler.handleLogout).Methods("POST", "OPTIONS").Name("logout")
	router.HandleFunc("/auth/me", handler.handleMe).Methods("GET", "OPTIONS").Name("me")
}

type AdminResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Balance  string `json:"balance,omitempty"`
}

type LoginResponse struct {
	Admin AdminResponse `json:"admin"`
}

type MeResponse struct {
	Admin AdminResponse `json:"admin"`
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if r.Header.Get("Content-Type") == pkg.ContentType.JSON {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Tracef("login, unmarshal json params: %s", err)
			validationErr := &apierr.ValidationError{}
			validationErr.Add("body", "invalid JSON payload")
			apierr.WriteValidationError(w, validationErr)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			apierr.WriteInternal(w)
			return
		}
		loginReq = loginRequest{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	validationErr := &apierr.ValidationError{}
	if loginReq.Username == "" {
		validationErr.Add("username", "must not be empty")
	}
	if loginReq.Password == "" {
		validationErr.Add("password", "must not be empty")
	}
	if validationErr.HasErrors() {
		apierr.WriteValidationError(w, validationErr)
		return
	}

	token, admin, err := handler.authService.Login(r.Context(), loginReq.Username, loginReq.Password, time.Now())
	if err != nil {
		if errors.Is(err, admins.ErrInvalidCredentials) {
			log.Tracef("failed login attempt for user: %s", loginReq.Username)
			handler.metrics.CounterFailedLogins.Inc()
			pkg.WriteJSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Errorf("login failed for user %s: %s", loginReq.Username, err)
		apierr.WriteInternal(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(DefaultTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	handler.metrics.CounterLogins.Inc()
	log.Tracef("new login for admin [%s]", admin.Username)

	respJson, err := json.Marshal(LoginResponse{
		Admin: AdminResponse{ID: admin.ID, Username: admin.Username},
	})
	if err != nil {
		log.Errorf("marshal login response: %s", err)
		apierr.WriteInternal(w)
		return
	}
	pkg.WriteJSONBytesResponseOK(w, respJson)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	token := TokenFromRequest(r)
	if token == "" {
		apierr.WriteUnauthenticated(w)
		return
	}

	if err := handler.authService.Logout(r.Context(), token); err != nil {
		log.Errorf("logout: %s", err)
		apierr.WriteInternal(w)
		return
	}

	// expire the session cookie client side too
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	pkg.WriteJSONResponseOK(w, `{"message":"logged out"}`)
}

func (handler *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.me")
	defer span.End()

	session, err := handler.loginChecker.GetSession(ctx, TokenFromRequest(r))
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			log.Errorf("get session: %s", err)
		}
		apierr.WriteUnauthenticated(w)
		return
	}

	admin, err := handler.adminsStore.GetByID(ctx, session.AdminID)
	if err != nil {
		if errors.Is(err, admins.ErrAdminNotFound) {
			apierr.WriteNotFound(w, "administrator not found")
			return
		}
		log.Errorf("get admin %s: %s", session.AdminID, err)
		apierr.WriteInternal(w)
		return
	}

	respJson, err := json.Marshal(MeResponse{
		Admin: AdminResponse{ID: admin.ID, Username: admin.Username, Balance: admin.Balance},
	})
	if err != nil {
		log.Errorf("marshal me response: %s", err)
		apierr.WriteInternal(w)
		return
	}
	pkg.WriteJSONBytesResponseOK(w, respJson)
}
