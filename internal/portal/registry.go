package portal

import (
	"go.uber.org/zap"

	"tender-scout/config"
)

// Registry resolves a portal config to the adapter that crawls it.
type Registry struct {
	fetcher *Fetcher
	logger  *zap.SugaredLogger
	generic *GenericAdapter
}

func NewRegistry(fetcher *Fetcher, logger *zap.SugaredLogger) *Registry {
	return &Registry{
		fetcher: fetcher,
		logger:  logger,
		generic: NewGenericAdapter(fetcher, logger),
	}
}

// ForConfig returns the fixed adapter named by cfg.Adapter when one is
// registered, and the generic adapter otherwise. An unknown adapter key is
// not an error; the generic heuristics handle any portal.
func (r *Registry) ForConfig(cfg config.PortalConfig) Adapter {
	if cfg.Adapter != "" && cfg.Adapter != "generic" {
		if fixed, ok := NewFixedAdapter(cfg.Adapter, r.fetcher, r.logger); ok {
			return fixed
		}
		r.logger.Warnw("portal_adapter_unknown",
			"portal", cfg.Name,
			"adapter", cfg.Adapter,
		)
	}
	return r.generic
}
