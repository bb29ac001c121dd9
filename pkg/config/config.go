package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/quotient-project/quotient/pkg/capacity"
)

const envPrefix = "QUOTIENT"

// Config is the runtime configuration of a governor node. Values come from
// defaults, an optional config file, and QUOTIENT_* environment variables,
// in increasing order of precedence.
type Config struct {
	// NodeName identifies this node in NATS connections and logs.
	NodeName string `mapstructure:"node_name"`
	// NatsServers is the NATS servers string, e.g. "nats://127.0.0.1:4222".
	// Empty disables the transport; the governor then only serves in-process
	// callers.
	NatsServers string `mapstructure:"nats_servers"`
	// RebalanceInterval is the period of the rebalance loop.
	RebalanceInterval time.Duration `mapstructure:"rebalance_interval"`
	// StoragePath is the path probed for storage capacity and utilization.
	StoragePath string `mapstructure:"storage_path"`
	// Capacity overrides discovered capacities per resource type.
	Capacity capacity.CapacityConfig `mapstructure:"capacity"`
}

func Default() Config {
	return Config{
		NodeName:          "quotient",
		NatsServers:       "nats://127.0.0.1:4222",
		RebalanceInterval: 5 * time.Second,
	}
}

// Load builds the configuration from defaults, the optional config file and
// the environment.
func Load(configFile string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Default()
	v.SetDefault("node_name", defaults.NodeName)
	v.SetDefault("nats_servers", defaults.NatsServers)
	v.SetDefault("rebalance_interval", defaults.RebalanceInterval)
	v.SetDefault("storage_path", defaults.StoragePath)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}
	return config, nil
}
