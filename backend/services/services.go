package services

import (
	"coursehub/backend/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles the collaborators the controllers depend on.
type Services struct {
	Logger   *zap.Logger
	Mailer   Mailer
	Gateway  Gateway
	Catalog  CatalogCache
	Enroller *Enroller
	Payments *Payments
}

// New wires the collaborators from configuration. A missing or unreachable
// redis falls back to no catalog caching.
func New(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *Services {
	catalog := NewNoopCatalogCache()
	if cfg.RedisAddr != "" {
		c, err := NewRedisCatalogCache(cfg.RedisAddr, cfg.CatalogCacheTTL, logger)
		if err != nil {
			logger.Warn("catalog cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			catalog = c
		}
	}

	return Compose(db, cfg, logger, NewMailer(cfg, logger), NewGateway(cfg, logger), catalog)
}

// Compose builds Services around explicit collaborators.
func Compose(db *gorm.DB, cfg *config.Config, logger *zap.Logger, mailer Mailer, gateway Gateway, catalog CatalogCache) *Services {
	enroller := NewEnroller(db, mailer, logger, cfg.FrontendURL)
	return &Services{
		Logger:   logger,
		Mailer:   mailer,
		Gateway:  gateway,
		Catalog:  catalog,
		Enroller: enroller,
		Payments: &Payments{
			DB:       db,
			Gateway:  gateway,
			Enroller: enroller,
			Secret:   cfg.RazorpayKeySecret,
			Currency: cfg.PaymentCurrency,
		},
	}
}
