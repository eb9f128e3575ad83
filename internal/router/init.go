package router

import (
	"github.com/contalivre/cadastro-api/internal/application"
	"github.com/contalivre/cadastro-api/internal/container"
	"github.com/contalivre/cadastro-api/internal/infrastructure/postgres"
	"github.com/contalivre/cadastro-api/internal/infrastructure/redisstore"
	handlers "github.com/contalivre/cadastro-api/internal/interface/http"
	"github.com/contalivre/cadastro-api/internal/router/modules"
)

// InitModules wires the application services from container singletons and
// registers every feature module with the router registry. Called once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	accounts := postgres.NewAccountRepository(pool)
	admins := postgres.NewAdminRepository(pool)
	audits := postgres.NewAuditRepository(pool)

	recorder := application.NewRecorder(audits, accounts, logger)
	recorder.ES = container.GetES()
	recorder.ESIndex = cfg.ESAuditIndex

	// The publisher is nil when mail sending is disabled; services treat
	// that as "do not notify".
	var pub application.Notifier
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	accountSvc := application.NewAccountService(
		accounts, admins,
		container.GetHasher(), container.GetTokens(),
		recorder, pub, logger,
	)

	var store application.ChallengeStore
	if cfg.RecoveryStore == "redis" {
		store = redisstore.NewChallengeStore(container.GetRedis())
	} else {
		store = application.NewMemoryChallengeStore()
	}
	recoverySvc := application.NewRecoveryService(
		accounts, store,
		container.GetHasher(), recorder, pub, logger,
		cfg.RecoveryCodeTTL,
	)

	r.Add(modules.NewAccountModule(handlers.NewAccountHandler(accountSvc, logger)))
	r.Add(modules.NewAdminModule(handlers.NewAdminHandler(accountSvc, audits, logger), container.GetTokens()))
	r.Add(modules.NewRecoveryModule(handlers.NewRecoveryHandler(recoverySvc, logger)))
	r.AddRoot(modules.NewHealthModule(pool))
}
