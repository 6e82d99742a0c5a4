package uavledger

import (
	"context"
	"time"
)

// VersionInfo describes one stored version of a flight log without its body.
type VersionInfo struct {
	VersionID  string    `json:"version_id"`
	ObservedAt time.Time `json:"observed_at"`
	Size       int64     `json:"size"`
}

// ObjectStore abstracts the versioned object store holding snapshot bodies.
// ListVersions returns versions ascending by observation time. Version
// identifiers are opaque strings scoped to one flight.
type ObjectStore interface {
	ListFlights(ctx context.Context) ([]string, error)
	ListVersions(ctx context.Context, flightID string) ([]VersionInfo, error)
	GetVersionBody(ctx context.Context, flightID, versionID string) ([]byte, error)
	PutVersion(ctx context.Context, flightID string, body []byte) (VersionInfo, error)
}
