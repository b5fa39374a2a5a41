package tessera

import (
	"github.com/rs/zerolog"
)

// WorldOption augments how a World is created, overriding the corresponding
// environment-driven setting.
type WorldOption func(*World)

// WithNamespace sets the world's namespace. The namespace tags logs and
// metrics so that multiple worlds in one process stay distinguishable.
func WithNamespace(namespace string) WorldOption {
	return func(w *World) {
		w.namespace = namespace
	}
}

// WithLogger replaces the world's logger.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}
