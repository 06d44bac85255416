package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/ghostsim/internal/config"
	"github.com/zeusync/ghostsim/internal/core/observability/log"
	"github.com/zeusync/ghostsim/internal/driver"
	"github.com/zeusync/ghostsim/internal/replay"
	"github.com/zeusync/ghostsim/internal/telemetry"
)

// ConfigPath is the configuration file the driver is built from.
type ConfigPath string

var DriverSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	replay.NewRunner,
	telemetry.NewHub,
	driver.New,
)

func ProvideConfig(path ConfigPath) (*config.Config, error) {
	return config.LoadFile(string(path))
}

// ProvideLogger builds the process logger at the configured level. The
// cleanup flushes it.
func ProvideLogger(cfg *config.Config) (*log.Logger, func()) {
	logger := log.New(cfg.Level())
	return logger, func() {
		_ = logger.Sync()
	}
}
