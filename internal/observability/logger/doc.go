// Package logger provides a singleton Zap logger with context-based scoping.
//
// Initialization (once, in main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
// In handlers/services (with context):
//
//	log := logger.From(ctx)
//	log.Info("login started", logger.Provider("google"))
//
// "dev" uses a colored console encoder, "prod" uses JSON. Middlewares inject
// a request-scoped logger (request_id and friends) via ToContext; From falls
// back to the singleton when no scoped logger is present.
package logger
