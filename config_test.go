package uavledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "mem", cfg.Registry)
	assert.Equal(t, "uavledger.db", cfg.SQLitePath)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uavledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store: s3
registry: eth
listen: ":9090"
s3:
  bucket: uav-logs
  region: eu-west-1
  force_path_style: true
eth:
  rpc_url: http://localhost:8545
  chain_id: 1337
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Store)
	assert.Equal(t, "eth", cfg.Registry)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "uav-logs", cfg.S3.Bucket)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.True(t, cfg.S3.ForcePathStyle)
	assert.Equal(t, "http://localhost:8545", cfg.Eth.RPCURL)
	assert.Equal(t, int64(1337), cfg.Eth.ChainID)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.Eth.ContractAddress)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("UAVLEDGER_STORE", "s3")
	t.Setenv("UAVLEDGER_S3_BUCKET", "env-bucket")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Store)
	assert.Equal(t, "env-bucket", cfg.S3.Bucket)
}
