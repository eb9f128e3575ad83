package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/contalivre/cadastro-api/internal/application"
	"github.com/contalivre/cadastro-api/internal/domain/entity"
	repo "github.com/contalivre/cadastro-api/internal/domain/repository"
	"github.com/contalivre/cadastro-api/pkg/response"
	"github.com/contalivre/cadastro-api/pkg/validation"
)

const birthDateLayout = "2006-01-02"

type AccountHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

func requestMeta(c *gin.Context) application.RequestMeta {
	ip := c.GetString("real_ip")
	if ip == "" {
		ip = c.ClientIP()
	}
	return application.RequestMeta{IP: ip, UserAgent: c.GetHeader("User-Agent")}
}

// accountView is the caller-facing account shape. The password hash never
// leaves the server.
type accountView struct {
	ID          int64      `json:"id"`
	CPF         string     `json:"cpf"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	BirthDate   string     `json:"birth_date,omitempty"`
	Status      string     `json:"status"`
	Balance     string     `json:"balance"`
	RequestedAt time.Time  `json:"requested_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

func toView(a *entity.Account) accountView {
	v := accountView{
		ID:          a.ID,
		CPF:         a.CPF,
		Name:        a.Name,
		Email:       a.Email,
		Phone:       a.Phone,
		Status:      a.Status.String(),
		Balance:     a.Balance.StringFixed(2),
		RequestedAt: a.RequestedAt,
		DecidedAt:   a.DecidedAt,
	}
	if a.BirthDate != nil {
		v.BirthDate = a.BirthDate.Format(birthDateLayout)
	}
	return v
}

func toViews(accounts []entity.Account) []accountView {
	out := make([]accountView, 0, len(accounts))
	for i := range accounts {
		out = append(out, toView(&accounts[i]))
	}
	return out
}

type registerRequest struct {
	CPF       string `json:"cpf" binding:"required,cpf"`
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
	BirthDate string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Password  string `json:"password" binding:"required,pwd"`
}

// Register POST /api/accounts
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := application.RegisterInput{
		CPF:      req.CPF,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}
	if req.BirthDate != "" {
		d, err := time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid birth date", nil)
			return
		}
		in.BirthDate = &d
	}
	a, err := h.Svc.Register(c.Request.Context(), in, requestMeta(c))
	if err != nil {
		if errors.Is(err, application.ErrCPFTaken) {
			response.Fail(c, http.StatusConflict, "cpf already registered", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).Error("account registration failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to create account", nil)
		return
	}
	response.Success(c, http.StatusCreated, toView(a), "account created; awaiting review")
}

type loginRequest struct {
	CPF      string `json:"cpf" binding:"required,cpf"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.CPF, req.Password, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrAccountNotFound):
			response.Fail(c, http.StatusNotFound, "cpf not found", nil)
		case errors.Is(err, application.ErrInvalidCredential):
			response.Fail(c, http.StatusUnauthorized, "wrong password", nil)
		case errors.Is(err, application.ErrAccountPending):
			response.Fail(c, http.StatusForbidden, "account awaiting review", nil)
		case errors.Is(err, application.ErrAccountRejected):
			response.Fail(c, http.StatusForbidden, "account rejected", nil)
		case errors.Is(err, application.ErrAccountBlocked):
			response.Fail(c, http.StatusForbidden, "account blocked", nil)
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).Error("login failed")
			}
			response.Fail(c, http.StatusInternalServerError, "failed to process login", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"status":     res.Account.Status.String(),
	}, "login successful")
}

var checkFields = map[string]repo.AccountField{
	"cpf":   repo.FieldCPF,
	"name":  repo.FieldName,
	"email": repo.FieldEmail,
	"phone": repo.FieldPhone,
}

// CheckAvailability GET /api/accounts/check/:field/:value
func (h *AccountHandler) CheckAvailability(c *gin.Context) {
	field, ok := checkFields[c.Param("field")]
	if !ok {
		response.Fail(c, http.StatusBadRequest, "unknown field", nil)
		return
	}
	exists, err := h.Svc.CheckAvailability(c.Request.Context(), field, c.Param("value"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("availability check failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to check availability", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exists": exists}, "availability")
}
