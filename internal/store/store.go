package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ExportStoreIface exposes export history operations.
// No handler MAY query the DB directly; all access goes through this interface.
type ExportStoreIface interface {
	Record(ctx context.Context, e ExportEvent) (*Export, error)
	GetByID(ctx context.Context, id string) (*Export, error)
	ListBySession(ctx context.Context, sessionKey string, limit int) ([]*Export, error)
	Stats(ctx context.Context, sessionKey string) (ExportStats, error)
}

var _ ExportStoreIface = (*ExportStore)(nil)
