package tessera

import (
	"os"

	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	defaultNamespace = "world"
	defaultLogLevel  = "info"
)

// WorldConfig carries the environment-driven settings of a world. Fields map
// to env variables by snake-casing the field name (TESSERA_NAMESPACE, ...).
type WorldConfig struct {
	// TesseraNamespace tags the world's logs and metrics. Defaults to "world".
	TesseraNamespace string `config:"TESSERA_NAMESPACE"`

	// TesseraLogLevel is a zerolog level name. Defaults to "info".
	TesseraLogLevel string `config:"TESSERA_LOG_LEVEL"`

	// TesseraLogPretty switches the default logger to a human-readable
	// console writer.
	TesseraLogPretty bool `config:"TESSERA_LOG_PRETTY"`

	// TesseraStatsdAddress is the address of a statsd agent. Metrics are
	// disabled when empty.
	TesseraStatsdAddress string `config:"TESSERA_STATSD_ADDRESS"`
}

func loadWorldConfig() (*WorldConfig, error) {
	cfg := WorldConfig{
		TesseraNamespace: defaultNamespace,
		TesseraLogLevel:  defaultLogLevel,
	}
	if err := jlconfig.FromEnv().To(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// logger builds the world's base logger from the config.
func (cfg *WorldConfig) logger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.TesseraLogLevel)
	if err != nil {
		return zerolog.Logger{}, eris.Wrapf(err, "invalid log level %q", cfg.TesseraLogLevel)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	if cfg.TesseraLogPretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger, nil
}
