package router

import "github.com/gin-gonic/gin"

// Module is a feature unit that mounts its routes on the group it is
// handed. The registry decides which group that is.
type Module interface {
	Register(rg *gin.RouterGroup)
}
