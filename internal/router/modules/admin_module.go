package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/contalivre/cadastro-api/internal/interface/http"
	"github.com/contalivre/cadastro-api/internal/interface/middleware"
	"github.com/contalivre/cadastro-api/pkg/helpers"
)

type AdminModule struct {
	Handler *handlers.AdminHandler
	Tokens  *helpers.TokenManager
}

func NewAdminModule(h *handlers.AdminHandler, tokens *helpers.TokenManager) *AdminModule {
	return &AdminModule{Handler: h, Tokens: tokens}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	rg.POST("/admin/login", m.Handler.Login)

	// Everything else is gated on an admin-role token; a user token never
	// passes here.
	admin := rg.Group("/admin")
	admin.Use(middleware.RequireRole(m.Tokens, helpers.RoleAdmin))
	{
		admin.GET("/accounts", m.Handler.ListAccounts)
		admin.GET("/accounts/review", m.Handler.ReviewQueue)
		admin.GET("/accounts/status-counts", m.Handler.StatusCounts)
		admin.PATCH("/accounts/:id/approve", m.Handler.Approve)
		admin.PATCH("/accounts/:id/reject", m.Handler.Reject)
		admin.GET("/audit", m.Handler.AuditLog)
	}
}
