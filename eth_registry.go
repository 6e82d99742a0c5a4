package uavledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	gethCommon "github.com/ethereum/go-ethereum/common"
	gethTypes "github.com/ethereum/go-ethereum/core/types"
	gethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// ABI of the UavFlightRegistry contract. The contract itself is deployed out
// of band; this client only binds to an existing address.
const flightRegistryABI = `[
  {"inputs":[{"internalType":"bytes32","name":"flightId","type":"bytes32"}],"name":"registerFlight","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"bytes32","name":"flightId","type":"bytes32"},{"internalType":"uint256","name":"versionId","type":"uint256"},{"internalType":"bytes32","name":"hash","type":"bytes32"}],"name":"addCheckpoint","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"bytes32","name":"flightId","type":"bytes32"}],"name":"closeFlight","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"bytes32","name":"flightId","type":"bytes32"}],"name":"flightExists","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"bytes32","name":"flightId","type":"bytes32"}],"name":"isFlightClosed","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"bytes32","name":"flightId","type":"bytes32"}],"name":"getCheckpointCount","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"bytes32","name":"flightId","type":"bytes32"},{"internalType":"uint256","name":"index","type":"uint256"}],"name":"getCheckpoint","outputs":[{"internalType":"uint256","name":"versionId","type":"uint256"},{"internalType":"bytes32","name":"hash","type":"bytes32"},{"internalType":"uint256","name":"timestamp","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const receiptWaitMax = 2 * time.Minute

// ethRegistry implements Registry against the UavFlightRegistry contract.
// All settings come in through the constructor; there is no package-level
// client state.
type ethRegistry struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	log      zerolog.Logger
}

// NewEthRegistry dials the RPC endpoint and binds the flight registry
// contract at the configured address.
func NewEthRegistry(ctx context.Context, cfg EthConfig, log zerolog.Logger) (Registry, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}
	parsed, err := abi.JSON(strings.NewReader(flightRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}
	key, err := gethCrypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	addr := gethCommon.HexToAddress(cfg.ContractAddress)
	return &ethRegistry{
		client:   client,
		contract: bind.NewBoundContract(addr, parsed, client, client, client),
		key:      key,
		chainID:  big.NewInt(cfg.ChainID),
		log:      log,
	}, nil
}

// flightKeyHash maps a human-readable flight id to the contract's bytes32 key.
func flightKeyHash(flightID string) [32]byte {
	var key [32]byte
	copy(key[:], gethCrypto.Keccak256([]byte(flightID)))
	return key
}

func (r *ethRegistry) RegisterFlight(ctx context.Context, flightID string) (TxOutcome, error) {
	return r.transact(ctx, "registerFlight", flightKeyHash(flightID))
}

func (r *ethRegistry) AddCheckpoint(ctx context.Context, flightID string, versionID uint64, digest Digest) (TxOutcome, error) {
	return r.transact(ctx, "addCheckpoint",
		flightKeyHash(flightID), new(big.Int).SetUint64(versionID), [32]byte(digest))
}

func (r *ethRegistry) CloseFlight(ctx context.Context, flightID string) (TxOutcome, error) {
	return r.transact(ctx, "closeFlight", flightKeyHash(flightID))
}

func (r *ethRegistry) FlightExists(ctx context.Context, flightID string) (bool, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "flightExists", flightKeyHash(flightID))
	if err != nil {
		return false, fmt.Errorf("flightExists: %w", err)
	}
	return out[0].(bool), nil
}

func (r *ethRegistry) IsFlightClosed(ctx context.Context, flightID string) (bool, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "isFlightClosed", flightKeyHash(flightID))
	if err != nil {
		return false, fmt.Errorf("isFlightClosed: %w", err)
	}
	return out[0].(bool), nil
}

func (r *ethRegistry) CheckpointCount(ctx context.Context, flightID string) (uint64, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getCheckpointCount", flightKeyHash(flightID))
	if err != nil {
		return 0, fmt.Errorf("getCheckpointCount: %w", err)
	}
	return out[0].(*big.Int).Uint64(), nil
}

func (r *ethRegistry) CheckpointAt(ctx context.Context, flightID string, index uint64) (Checkpoint, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getCheckpoint",
		flightKeyHash(flightID), new(big.Int).SetUint64(index))
	if err != nil {
		return Checkpoint{}, fmt.Errorf("getCheckpoint %d: %w", index, err)
	}
	return Checkpoint{
		SeqNo:     int(index) + 1,
		VersionID: out[0].(*big.Int).Uint64(),
		Digest:    Digest(out[1].([32]byte)),
		Timestamp: out[2].(*big.Int).Int64(),
	}, nil
}

// transact signs and submits one contract call and waits for its receipt.
func (r *ethRegistry) transact(ctx context.Context, method string, args ...interface{}) (TxOutcome, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(r.key, r.chainID)
	if err != nil {
		return TxOutcome{}, err
	}
	opts.Context = ctx

	tx, err := r.contract.Transact(opts, method, args...)
	if err != nil {
		return TxOutcome{}, fmt.Errorf("%s: %w", method, err)
	}
	r.log.Debug().Str("method", method).Str("tx", tx.Hash().Hex()).Msg("submitted registry transaction")

	receipt, err := r.waitMined(ctx, tx)
	if err != nil {
		return TxOutcome{}, fmt.Errorf("%s receipt: %w", method, err)
	}
	return TxOutcome{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		Status:      receipt.Status,
	}, nil
}

// waitMined polls for the transaction receipt with exponential backoff.
// Not-yet-mined and transient RPC failures are both retried until
// receiptWaitMax elapses.
func (r *ethRegistry) waitMined(ctx context.Context, tx *gethTypes.Transaction) (*gethTypes.Receipt, error) {
	backoff, err := retry.NewExponential(500 * time.Millisecond)
	if err != nil {
		return nil, err
	}
	backoff = retry.WithCappedDuration(5*time.Second, backoff)
	backoff = retry.WithMaxDuration(receiptWaitMax, backoff)

	var receipt *gethTypes.Receipt
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		rec, err := r.client.TransactionReceipt(ctx, tx.Hash())
		if errors.Is(err, ethereum.NotFound) {
			return retry.RetryableError(err)
		}
		if err != nil {
			r.log.Warn().Err(err).Str("tx", tx.Hash().Hex()).Msg("receipt poll failed")
			return retry.RetryableError(err)
		}
		receipt = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
