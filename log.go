package tessera

import (
	"sort"

	"github.com/rs/zerolog"
)

func loadPartitionIntoArrayLogger(p *partition, arrayLogger *zerolog.Array) *zerolog.Array {
	names := p.typeNames()
	sort.Strings(names)
	for _, name := range names {
		arrayLogger = arrayLogger.Str(name)
	}
	return arrayLogger
}

func loadWorldIntoEvent(zeroLoggerEvent *zerolog.Event, w *World) *zerolog.Event {
	zeroLoggerEvent.Str("namespace", w.namespace)
	zeroLoggerEvent.Int("total_entities", w.EntityCount())
	zeroLoggerEvent.Int("total_component_types", len(w.components.tables))
	zeroLoggerEvent.Array("component_types", loadPartitionIntoArrayLogger(w.components, zerolog.Arr()))
	return zeroLoggerEvent.Array("ephemeral_types", loadPartitionIntoArrayLogger(w.ephemeral, zerolog.Arr()))
}

func loadSchedulerIntoEvent(zeroLoggerEvent *zerolog.Event, s *Scheduler) *zerolog.Event {
	zeroLoggerEvent.Int("total_systems", s.SystemCount())
	arrayLogger := zerolog.Arr()
	for _, sysName := range s.SystemNames() {
		arrayLogger = arrayLogger.Str(sysName)
	}
	return zeroLoggerEvent.Array("systems", arrayLogger)
}

// LogWorld logs a summary of the world: entity count and the component types
// seen so far in both partitions.
func LogWorld(logger *zerolog.Logger, w *World, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	loadWorldIntoEvent(zeroLoggerEvent, w).Send()
}

// LogScheduler logs the scheduler's systems in the order SystemNames reports
// them: execution order once built, insertion order before that.
func LogScheduler(logger *zerolog.Logger, s *Scheduler, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	loadSchedulerIntoEvent(zeroLoggerEvent, s).Send()
}

// CreateSystemLogger creates a sub logger with the entry {"system": systemName}.
func CreateSystemLogger(logger *zerolog.Logger, systemName string) *zerolog.Logger {
	newLogger := logger.With().Str("system", systemName).Logger()
	return &newLogger
}
