// Package uavledger maintains a tamper-evident audit trail for UAV flight
// logs by anchoring cumulative log snapshots in two independent ledgers: a
// versioned object store holding the bytes and an on-chain registry holding a
// rolling digest per snapshot. Verification re-derives the digest chain from
// the stored snapshots and reconciles it position by position against the
// on-chain checkpoint sequence.
package uavledger
