package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/contalivre/cadastro-api/internal/application"
	"github.com/contalivre/cadastro-api/pkg/response"
	"github.com/contalivre/cadastro-api/pkg/validation"
)

type RecoveryHandler struct {
	Svc    *application.RecoveryService
	Logger *logrus.Logger
}

func NewRecoveryHandler(svc *application.RecoveryService, logger *logrus.Logger) *RecoveryHandler {
	return &RecoveryHandler{Svc: svc, Logger: logger}
}

type recoveryRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Request POST /api/recovery/request
// The code travels by email only; it is never echoed in the response.
func (h *RecoveryHandler) Request(c *gin.Context) {
	var req recoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	status, err := h.Svc.Issue(c.Request.Context(), req.Email, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmailNotFound):
			response.Fail(c, http.StatusNotFound, "email not found", nil)
		case errors.Is(err, application.ErrAccountNotActive):
			response.Fail(c, http.StatusConflict, "account not active", gin.H{"status": status.String()})
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).Error("recovery code issue failed")
			}
			response.Fail(c, http.StatusInternalServerError, "failed to issue recovery code", nil)
		}
		return
	}
	response.Success[any](c, http.StatusAccepted, gin.H{"sent": true}, "recovery code sent")
}

type validateRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,recoverycode"`
}

// Validate POST /api/recovery/validate
func (h *RecoveryHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.Validate(c.Request.Context(), req.Email, req.Code, requestMeta(c)); err != nil {
		h.failRecovery(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"valid": true}, "recovery code valid")
}

type redeemRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,recoverycode"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// Redeem POST /api/recovery/redeem
func (h *RecoveryHandler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.Redeem(c.Request.Context(), req.Email, req.Code, req.NewPassword, requestMeta(c)); err != nil {
		h.failRecovery(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated")
}

func (h *RecoveryHandler) failRecovery(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrNoChallenge):
		response.Fail(c, http.StatusNotFound, "no recovery code issued", nil)
	case errors.Is(err, application.ErrChallengeExpired):
		response.Fail(c, http.StatusGone, "recovery code expired", nil)
	case errors.Is(err, application.ErrChallengeMismatch):
		response.Fail(c, http.StatusBadRequest, "recovery code mismatch", nil)
	case errors.Is(err, application.ErrAccountNotFound):
		response.Fail(c, http.StatusNotFound, "account not found", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("recovery operation failed")
		}
		response.Fail(c, http.StatusInternalServerError, "failed to process recovery", nil)
	}
}
