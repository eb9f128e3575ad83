package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/contalivre/cadastro-api/internal/application"
	"github.com/contalivre/cadastro-api/internal/domain/entity"
	repo "github.com/contalivre/cadastro-api/internal/domain/repository"
	"github.com/contalivre/cadastro-api/pkg/helpers"
	"github.com/contalivre/cadastro-api/pkg/validation"
)

type memAccountRepo struct {
	mu       sync.Mutex
	seq      int64
	accounts map[int64]*entity.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[int64]*entity.Account)}
}

func (r *memAccountRepo) Create(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a.ID = r.seq
	a.RequestedAt = time.Now().UTC()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *memAccountRepo) find(match func(*entity.Account) bool) *entity.Account {
	for _, a := range r.accounts {
		if match(a) {
			cp := *a
			return &cp
		}
	}
	return nil
}

func (r *memAccountRepo) FindByID(_ context.Context, id int64) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(a *entity.Account) bool { return a.ID == id }), nil
}

func (r *memAccountRepo) FindByCPF(_ context.Context, cpf string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(a *entity.Account) bool { return a.CPF == cpf }), nil
}

func (r *memAccountRepo) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(a *entity.Account) bool { return a.Email == email }), nil
}

func (r *memAccountRepo) ExistsBy(_ context.Context, field repo.AccountField, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.find(func(a *entity.Account) bool {
		switch field {
		case repo.FieldCPF:
			return a.CPF == value
		case repo.FieldName:
			return a.Name == value
		case repo.FieldEmail:
			return a.Email == value
		case repo.FieldPhone:
			return a.Phone == value
		}
		return false
	})
	return a != nil, nil
}

func (r *memAccountRepo) UpdateStatus(_ context.Context, id int64, from []entity.Status, to entity.Status, decidedAt *time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return 0, nil
	}
	for _, s := range from {
		if a.Status == s {
			a.Status = to
			if decidedAt != nil {
				d := *decidedAt
				a.DecidedAt = &d
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memAccountRepo) UpdateSecretByEmail(_ context.Context, email, hash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if a.Email == email {
			a.PasswordHash = hash
			n++
		}
	}
	return n, nil
}

func (r *memAccountRepo) CountByStatus(_ context.Context, status entity.Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memAccountRepo) ListByStatuses(_ context.Context, statuses []entity.Status) ([]entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Account
	for _, a := range r.accounts {
		for _, s := range statuses {
			if a.Status == s {
				out = append(out, *a)
				break
			}
		}
	}
	return out, nil
}

func (r *memAccountRepo) List(_ context.Context) ([]entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (r *memAccountRepo) setStatus(id int64, status entity.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.Status = status
	}
}

var _ repo.AccountRepository = (*memAccountRepo)(nil)

type memAdminRepo struct{ admins map[string]string }

func (r *memAdminRepo) FindByUsername(_ context.Context, username string) (*entity.AdminPrincipal, error) {
	if hash, ok := r.admins[username]; ok {
		return &entity.AdminPrincipal{Username: username, PasswordHash: hash}, nil
	}
	return nil, nil
}

func (r *memAdminRepo) Upsert(_ context.Context, username, hash string) error {
	r.admins[username] = hash
	return nil
}

var _ repo.AdminRepository = (*memAdminRepo)(nil)

type accountRouterFixture struct {
	router   *gin.Engine
	accounts *memAccountRepo
	hasher   *helpers.Hasher
}

func newAccountRouter(t *testing.T) *accountRouterFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	accounts := newMemAccountRepo()
	admins := &memAdminRepo{admins: make(map[string]string)}
	hasher := helpers.NewHasher(bcrypt.MinCost, 4)
	tokens := helpers.NewTokenManager("user-secret", "admin-secret", time.Hour, 8*time.Hour)
	svc := application.NewAccountService(accounts, admins, hasher, tokens, nil, nil, logger)

	h := NewAccountHandler(svc, logger)
	r := gin.New()
	api := r.Group("/api")
	api.POST("/accounts", h.Register)
	api.POST("/login", h.Login)
	api.GET("/accounts/check/:field/:value", h.CheckAvailability)

	return &accountRouterFixture{router: r, accounts: accounts, hasher: hasher}
}

func (f *accountRouterFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func validRegisterBody() gin.H {
	return gin.H{
		"cpf":      "12345678901",
		"name":     "Maria Souza",
		"email":    "maria@example.com",
		"phone":    "11987654321",
		"password": "s3cret-pass",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	f := newAccountRouter(t)

	w := f.do(t, http.MethodPost, "/api/accounts", validRegisterBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID     int64  `json:"id"`
			CPF    string `json:"cpf"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "12345678901", resp.Data.CPF)
	assert.Equal(t, "pending", resp.Data.Status)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	f := newAccountRouter(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/accounts", validRegisterBody()).Code)

	w := f.do(t, http.MethodPost, "/api/accounts", validRegisterBody())
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(gin.H)
	}{
		{"short password", func(b gin.H) { b["password"] = "short" }},
		{"cpf not numeric", func(b gin.H) { b["cpf"] = "1234567890a" }},
		{"cpf wrong length", func(b gin.H) { b["cpf"] = "123" }},
		{"bad email", func(b gin.H) { b["email"] = "not-an-email" }},
		{"missing name", func(b gin.H) { delete(b, "name") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAccountRouter(t)
			body := validRegisterBody()
			tt.mutate(body)

			w := f.do(t, http.MethodPost, "/api/accounts", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	f := newAccountRouter(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/accounts", validRegisterBody()).Code)

	login := gin.H{"cpf": "12345678901", "password": "s3cret-pass"}

	// Pending accounts cannot log in yet.
	w := f.do(t, http.MethodPost, "/api/login", login)
	assert.Equal(t, http.StatusForbidden, w.Code)

	f.accounts.setStatus(1, entity.StatusApproved)

	w = f.do(t, http.MethodPost, "/api/login", login)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Token  string `json:"token"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, "approved", resp.Data.Status)
}

func TestLoginEndpointFailures(t *testing.T) {
	f := newAccountRouter(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/accounts", validRegisterBody()).Code)
	f.accounts.setStatus(1, entity.StatusApproved)

	w := f.do(t, http.MethodPost, "/api/login", gin.H{"cpf": "99999999999", "password": "whatever1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/login", gin.H{"cpf": "12345678901", "password": "wrong-guess"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.accounts.setStatus(1, entity.StatusBlocked)
	w = f.do(t, http.MethodPost, "/api/login", gin.H{"cpf": "12345678901", "password": "s3cret-pass"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	f := newAccountRouter(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/accounts", validRegisterBody()).Code)

	w := f.do(t, http.MethodGet, "/api/accounts/check/cpf/12345678901", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exists":true`)

	w = f.do(t, http.MethodGet, "/api/accounts/check/email/free@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exists":false`)

	w = f.do(t, http.MethodGet, "/api/accounts/check/balance/100", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
