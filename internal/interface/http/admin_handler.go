package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/contalivre/cadastro-api/internal/application"
	repo "github.com/contalivre/cadastro-api/internal/domain/repository"
	"github.com/contalivre/cadastro-api/pkg/response"
	"github.com/contalivre/cadastro-api/pkg/validation"
)

type AdminHandler struct {
	Svc    *application.AccountService
	Audits repo.AuditRepository
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.AccountService, audits repo.AuditRepository, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Audits: audits, Logger: logger}
}

type adminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	token, exp, err := h.Svc.AdminLogin(c.Request.Context(), req.Username, req.Password, requestMeta(c))
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredential) {
			response.Fail(c, http.StatusUnauthorized, "wrong username or password", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).Error("admin login failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to process login", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token, "expires_at": exp}, "login successful")
}

// ListAccounts GET /api/admin/accounts
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.Svc.List(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("account listing failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to list accounts", nil)
		return
	}
	response.Success(c, http.StatusOK, toViews(accounts), "accounts")
}

// ReviewQueue GET /api/admin/accounts/review
// Pending and rejected accounts; rejected stays listed so it can be
// re-approved.
func (h *AdminHandler) ReviewQueue(c *gin.Context) {
	accounts, err := h.Svc.ReviewQueue(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("review queue listing failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to list review queue", nil)
		return
	}
	response.Success(c, http.StatusOK, toViews(accounts), "review queue")
}

func (h *AdminHandler) accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, "invalid account id", nil)
		return 0, false
	}
	return id, true
}

// Approve PATCH /api/admin/accounts/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	if err := h.Svc.Approve(c.Request.Context(), id, requestMeta(c)); err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, "account not found or not eligible", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("account_id", id).Error("approval failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to approve account", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"approved": true}, "account approved")
}

// Reject PATCH /api/admin/accounts/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	if err := h.Svc.Reject(c.Request.Context(), id, requestMeta(c)); err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, "account not found or not eligible", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("account_id", id).Error("rejection failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to reject account", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"rejected": true}, "account rejected")
}

// StatusCounts GET /api/admin/accounts/status-counts
func (h *AdminHandler) StatusCounts(c *gin.Context) {
	counts, err := h.Svc.StatusCounts(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("status counts failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to count accounts", nil)
		return
	}
	response.Success(c, http.StatusOK, counts, "status counts")
}

type auditView struct {
	ID          int64     `json:"id"`
	AccountID   *int64    `json:"account_id,omitempty"`
	AccountName string    `json:"account_name,omitempty"`
	Kind        string    `json:"kind"`
	Detail      string    `json:"detail"`
	OriginIP    string    `json:"origin_ip,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuditLog GET /api/admin/audit?limit=n
func (h *AdminHandler) AuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	records, err := h.Audits.ListWithAccountNames(c.Request.Context(), limit)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("audit listing failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to list audit records", nil)
		return
	}
	out := make([]auditView, 0, len(records))
	for _, r := range records {
		out = append(out, auditView{
			ID:          r.ID,
			AccountID:   r.AccountID,
			AccountName: r.AccountName,
			Kind:        r.Kind,
			Detail:      r.Detail,
			OriginIP:    r.OriginIP,
			UserAgent:   r.UserAgent,
			CreatedAt:   r.CreatedAt,
		})
	}
	response.Success(c, http.StatusOK, out, "audit records")
}
