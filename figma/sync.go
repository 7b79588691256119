// Package figma pretends to synchronize design tokens with a Figma file.
//
// No network access is performed. Sync validates its arguments, logs the
// request and hands back the catalog it was created with, which is what the
// rest of the program would receive from a real integration after mapping
// Figma variables to tokens.
package figma

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stylevars/config"
	"stylevars/tokens"
)

// ErrNoFile is returned when sync is requested without file id.
var ErrNoFile = errors.New("figma file id is not specified")

// Result describes single sync run.
type Result struct {
	ID      uuid.UUID
	FileID  string
	Started time.Time
	Elapsed time.Duration
	Tokens  tokens.Catalog
}

// Syncer produces token catalogs for Figma files.
type Syncer struct {
	catalog tokens.Catalog
	log     *zap.Logger
}

// NewSyncer returns Syncer serving catalog.
func NewSyncer(catalog tokens.Catalog, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{catalog: catalog, log: log.Named("figma")}
}

// Sync "downloads" tokens of fileID. Access token is accepted for interface
// compatibility and is never logged.
func (s *Syncer) Sync(ctx context.Context, fileID string, accessToken config.SecretString) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fileID == "" {
		return nil, ErrNoFile
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate sync id: %w", err)
	}

	res := &Result{ID: id, FileID: fileID, Started: time.Now()}

	s.log.Info("Syncing tokens from Figma file",
		zap.String("file", fileID), zap.Stringer("sync", id), zap.Bool("authorized", len(accessToken) > 0))

	res.Tokens = make(tokens.Catalog, len(s.catalog))
	copy(res.Tokens, s.catalog)
	res.Elapsed = time.Since(res.Started)

	s.log.Debug("Sync completed",
		zap.Stringer("sync", id), zap.Int("tokens", len(res.Tokens)), zap.Duration("elapsed", res.Elapsed))
	return res, nil
}
