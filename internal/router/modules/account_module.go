package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/contalivre/cadastro-api/internal/interface/http"
)

type AccountModule struct {
	Handler *handlers.AccountHandler
}

func NewAccountModule(h *handlers.AccountHandler) *AccountModule {
	return &AccountModule{Handler: h}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rg.POST("/accounts", m.Handler.Register)
	rg.POST("/login", m.Handler.Login)
	rg.GET("/accounts/check/:field/:value", m.Handler.CheckAvailability)
}
