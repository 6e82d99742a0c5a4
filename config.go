package uavledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// S3Config holds object-store settings for NewS3Store.
type S3Config struct {
	Endpoint       string `mapstructure:"endpoint"`
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// EthConfig holds registry settings for NewEthRegistry.
type EthConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ChainID         int64  `mapstructure:"chain_id"`
	PrivateKey      string `mapstructure:"private_key"`
	ContractAddress string `mapstructure:"contract_address"`
}

// Config carries every collaborator setting. It is loaded once and passed
// explicitly into constructors; nothing reads configuration ambiently.
type Config struct {
	Store      string `mapstructure:"store"`    // "s3" or "sqlite"
	Registry   string `mapstructure:"registry"` // "eth" or "mem"
	SQLitePath string `mapstructure:"sqlite_path"`
	Listen     string `mapstructure:"listen"`

	S3  S3Config  `mapstructure:"s3"`
	Eth EthConfig `mapstructure:"eth"`
}

// LoadConfig reads uavledger.yaml (or the explicit path) plus UAVLEDGER_*
// environment overrides, e.g. UAVLEDGER_S3_BUCKET or UAVLEDGER_ETH_RPC_URL.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("store", "sqlite")
	v.SetDefault("registry", "mem")
	v.SetDefault("sqlite_path", "uavledger.db")
	v.SetDefault("listen", ":8080")
	v.SetDefault("s3.region", "us-east-1")

	// every key needs a default registered for environment-only
	// overrides to reach Unmarshal
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.force_path_style", false)
	v.SetDefault("eth.rpc_url", "")
	v.SetDefault("eth.chain_id", 0)
	v.SetDefault("eth.private_key", "")
	v.SetDefault("eth.contract_address", "")

	v.SetEnvPrefix("UAVLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("uavledger")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
			// defaults + environment only
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
