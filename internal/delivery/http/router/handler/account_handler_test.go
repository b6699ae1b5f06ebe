package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gatehouse/config"
	deliverycontext "gatehouse/internal/delivery/context"
	"gatehouse/internal/delivery/http/middleware"
	"gatehouse/internal/delivery/http/validator"
	"gatehouse/internal/delivery/http/view"
	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/infra/auth"
	"gatehouse/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryAccountRepo is an in-memory AccountRepository with the same
// uniqueness semantics as the Postgres indexes.
type memoryAccountRepo struct {
	mu       sync.Mutex
	accounts []*entity.Account

	createErr error // forced insert-time error
	findErr   error // forced lookup error
}

func (r *memoryAccountRepo) FindByEmailOrUsername(_ context.Context, email, username string) (*entity.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email || account.Username == username {
			clone := *account

			return &clone, nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *memoryAccountRepo) FindByUsername(_ context.Context, username string) (*entity.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Username == username {
			clone := *account

			return &clone, nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *memoryAccountRepo) Create(_ context.Context, account *entity.Account) error {
	if r.createErr != nil {
		return r.createErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return domainerrors.NewConflictError("email")
		}
		if existing.Username == account.Username {
			return domainerrors.NewConflictError("username")
		}
	}

	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	clone := *account
	r.accounts = append(r.accounts, &clone)

	return nil
}

type testServer struct {
	echo *echo.Echo
	repo *memoryAccountRepo
	logs *bytes.Buffer
}

// newTestServer wires the real usecase, hasher, token service, validator and
// error middleware behind an echo instance, with only the store faked.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Token = "test-secret"

	tokenSvc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	logBuf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logBuf, nil))
	repo := &memoryAccountRepo{}
	uc := usecase.NewAccountService(repo, auth.NewBcryptHasherWithCost(bcrypt.MinCost), tokenSvc, logger)

	renderer, err := view.New()
	require.NoError(t, err)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewRequestIDMiddleware(logger).Process)
	e.Validator = validator.New()
	e.Renderer = renderer
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	h := NewAccountHandler(uc, tokenSvc, logger)
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)

	e.GET("/user/register", h.RegisterForm)
	e.POST("/user/register", h.Register)
	e.GET("/user/login", h.LoginForm)
	e.POST("/user/login", h.Login)
	e.GET("/user/profile", h.Profile, authMiddleware.Authenticate)
	e.GET("/health", HealthCheck)

	return &testServer{echo: e, repo: repo, logs: logBuf}
}

func (s *testServer) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func TestAccountHandler_RegisterLoginScenario(t *testing.T) {
	srv := newTestServer(t)

	// Register a new account.
	rec := srv.postJSON("/user/register", `{"email":"a@b.com","password":"secret1","username":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered struct {
		Message string `json:"message"`
		User    struct {
			ID       string `json:"id"`
			Email    string `json:"email"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Equal(t, "User registered successfully", registered.Message)
	assert.Equal(t, "a@b.com", registered.User.Email)
	assert.Equal(t, "alice", registered.User.Username)
	assert.NotEmpty(t, registered.User.ID)
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	// Registering the same identity again fails the pre-check.
	rec = srv.postJSON("/user/register", `{"email":"a@b.com","password":"secret1","username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists with this email or username")

	// Login with the right credentials sets the token cookie.
	rec = srv.postJSON("/user/login", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged in successfully", rec.Body.String())

	var tokenCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "token" {
			tokenCookie = cookie
		}
	}
	require.NotNil(t, tokenCookie)
	assert.NotEmpty(t, tokenCookie.Value)
	assert.True(t, tokenCookie.HttpOnly)

	// Login with a wrong password is rejected.
	rec = srv.postJSON("/user/login", `{"username":"alice","password":"wrong1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "username or password is incorrect")

	// The cookie authenticates the profile endpoint.
	rec = srv.get("/user/profile", tokenCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.Contains(t, rec.Body.String(), `"email":"a@b.com"`)
}

func TestAccountHandler_LoginErrorsDoNotRevealAccountExistence(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.postJSON("/user/register", `{"email":"a@b.com","password":"secret1","username":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	unknown := srv.postJSON("/user/login", `{"username":"mallory","password":"secret1"}`)
	wrong := srv.postJSON("/user/login", `{"username":"alice","password":"wrong1"}`)

	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	// Byte-identical bodies prevent account enumeration.
	assert.Equal(t, wrong.Body.Bytes(), unknown.Body.Bytes())
}

func TestAccountHandler_Register_ValidationListsAllViolatedFields(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.postJSON("/user/register", `{"email":"nope","password":"123","username":"al"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Message string `json:"message"`
		Errors  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid input", body.Message)

	fields := make([]string, 0, len(body.Errors))
	for _, fieldErr := range body.Errors {
		fields = append(fields, fieldErr.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password", "username"}, fields)
}

func TestAccountHandler_Register_TrimsAndLowercasesBeforeValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.postJSON("/user/register", `{"email":"  A@B.com ","password":" secret1 ","username":" Alice "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@b.com"`)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	// Padding must not rescue a too-short password.
	rec = srv.postJSON("/user/register", `{"email":"c@d.com","password":"  123  ","username":"carol"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountHandler_Register_InsertTimeConflictNamesField(t *testing.T) {
	srv := newTestServer(t)

	// The pre-check sees nothing but the insert hits the email index, as when
	// two registrations race.
	srv.repo.createErr = domainerrors.NewConflictError("email")

	rec := srv.postJSON("/user/register", `{"email":"a@b.com","password":"secret1","username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already exists. Please choose a different email.")
}

func TestAccountHandler_Register_StoreFailureIsServerError(t *testing.T) {
	srv := newTestServer(t)
	srv.repo.findErr = assert.AnError

	rec := srv.postJSON("/user/register", `{"email":"a@b.com","password":"secret1","username":"alice"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server error during registration")
}

func TestAccountHandler_Login_ValidatesInput(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.postJSON("/user/login", `{"username":"al","password":"1234"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "username must be at least 3 characters long")
	assert.Contains(t, rec.Body.String(), "password must be at least 5 characters long")
}

func TestAccountHandler_Forms(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.get("/user/register")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/user/register"`)

	rec = srv.get("/user/login")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/user/login"`)
}

func TestAccountHandler_Register_LogsCarryRequestID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(`{"email":"a@b.com","password":"secret1","username":"alice"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(deliverycontext.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The request id is echoed back and stamps the usecase's log lines.
	assert.Equal(t, "req-123", rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.Contains(t, srv.logs.String(), `"request_id":"req-123"`)
	assert.Contains(t, srv.logs.String(), "Starting account registration")
}

func TestAccountHandler_Profile_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.get("/user/profile")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.get("/user/profile", &http.Cookie{Name: "token", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
