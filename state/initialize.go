package state

import (
	"fmt"
	"time"

	"stylevars/tokens"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:   time.Now(),
		Catalog: tokens.Default(),
	}
}

// LoadCatalog replaces default token catalog with the one from configured
// path. Empty path keeps embedded catalog.
func (e *LocalEnv) LoadCatalog(path string) error {
	if len(path) == 0 {
		return nil
	}
	catalog, err := tokens.Load(path)
	if err != nil {
		return fmt.Errorf("unable to load token catalog: %w", err)
	}
	e.Catalog = catalog
	e.Rpt.Store("catalog.yaml", path)
	return nil
}
