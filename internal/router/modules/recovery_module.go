package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/contalivre/cadastro-api/internal/interface/http"
)

type RecoveryModule struct {
	Handler *handlers.RecoveryHandler
}

func NewRecoveryModule(h *handlers.RecoveryHandler) *RecoveryModule {
	return &RecoveryModule{Handler: h}
}

func (m *RecoveryModule) Register(rg *gin.RouterGroup) {
	rg.POST("/recovery/request", m.Handler.Request)
	rg.POST("/recovery/validate", m.Handler.Validate)
	rg.POST("/recovery/redeem", m.Handler.Redeem)
}
