// Package logger provee un singleton de zap con campos estándar.
//
// Uso típico:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Auth.Login"))
//	log.Info("login ok", logger.Username(u.Username))
package logger
