// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/gabapcia/txalert/internal/pkg/validator"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting read at startup.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"txalert" validate:"required"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	OtelEnabled bool   `envconfig:"OTEL_ENABLED" default:"false"`

	Port           int           `envconfig:"PORT" default:"4000" validate:"min=1,max=65535"`
	StaticDir      string        `envconfig:"STATIC_DIR"`
	WSWriteTimeout time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s" validate:"gt=0"`

	RPCURL     string `envconfig:"RPC_URL" default:"https://eth.llamarpc.com" validate:"required,url"`
	BtcAPIBase string `envconfig:"BTC_API_BASE" default:"https://mempool.space/api" validate:"required,url"`

	EthScanInterval    time.Duration `envconfig:"ETH_SCAN_INTERVAL" default:"5s" validate:"gt=0"`
	BtcScanInterval    time.Duration `envconfig:"BTC_SCAN_INTERVAL" default:"7s" validate:"gt=0"`
	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`
	HTTPRetryMax       int           `envconfig:"HTTP_RETRY_MAX" default:"2" validate:"gte=0"`
	FetchRetryAttempts uint          `envconfig:"FETCH_RETRY_ATTEMPTS" default:"3" validate:"gte=1"`

	InitAlerts int `envconfig:"INIT_ALERTS" default:"50" validate:"gte=0,lte=200"`
	InitTxs    int `envconfig:"INIT_TXS" default:"200" validate:"gte=0,lte=300"`
	InitBtcTxs int `envconfig:"INIT_BTC_TXS" default:"200" validate:"gte=0,lte=300"`

	// embedded so its variables keep their REDIS_ names instead of
	// picking up an extra prefix
	Redis
}

// Redis configures the optional event relay. An empty Addr disables it.
type Redis struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Username string `envconfig:"REDIS_USERNAME"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	Channel  string `envconfig:"REDIS_CHANNEL" default:"txalert:events" validate:"required"`
}

// Enabled reports whether a relay should be started.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// Load reads the given .env files (".env" when none are given) if they
// exist, then the environment. Variables already set in the environment
// win over .env entries.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
