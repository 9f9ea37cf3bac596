package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/termdex/internal/config"
	dbRedis "github.com/kailas-cloud/termdex/internal/db/redis"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/repository/memory"
	"github.com/kailas-cloud/termdex/internal/repository/rediskv"
	"github.com/kailas-cloud/termdex/internal/repository/remote"
	dictionaryuc "github.com/kailas-cloud/termdex/internal/usecase/dictionary"
	healthuc "github.com/kailas-cloud/termdex/internal/usecase/health"
)

// backend is the entry store selected by configuration. writer is nil for
// read-only drivers; pinger is nil for the in-process store.
type backend struct {
	store  dictionaryuc.Store
	writer dictionaryuc.Writer
	pinger healthuc.BackendPinger
	close  func()
}

func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	bc := cfg.Backend
	dc := cfg.Dictionary
	policy := idPolicy(dc)

	switch bc.Driver {
	case config.DriverMemory:
		s := memory.New().
			WithPagination(dc.DefaultPageSize, dc.MaxPageSize).
			WithIDPolicy(policy).
			WithLogger(logger)
		return &backend{store: s, writer: s, close: func() {}}, nil

	case config.DriverRedis, config.DriverValkey:
		// rueidis speaks to both servers; the driver name only labels logs.
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    bc.Addrs,
			Password: bc.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", bc.Driver, err)
		}
		if err := kv.WaitForReady(ctx, time.Duration(bc.ReadinessTimeout)*time.Second); err != nil {
			kv.Close()
			return nil, fmt.Errorf("%s not ready: %w", bc.Driver, err)
		}
		s := rediskv.New(kv, bc.KeyPrefix).
			WithPagination(dc.DefaultPageSize, dc.MaxPageSize).
			WithIDPolicy(policy).
			WithLogger(logger)
		return &backend{store: s, writer: s, pinger: kv, close: kv.Close}, nil

	case config.DriverRemote:
		s, err := remote.New(bc.RemoteURL)
		if err != nil {
			return nil, fmt.Errorf("create remote store: %w", err)
		}
		s.WithTimeout(time.Duration(bc.RemoteTimeoutSec) * time.Second).WithLogger(logger)
		return &backend{store: s, pinger: s, close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown backend driver %q", bc.Driver)
	}
}

func idPolicy(dc config.DictionaryConfig) entry.IDPolicy {
	if dc.IDPolicy == config.IDPolicyUUID {
		return entry.UUIDIDs{Namespace: uuid.NameSpaceOID}
	}
	return entry.PaddedIDs{Width: dc.IDWidth}
}

// loadDataFile feeds a YAML or JSON data file into a writable backend.
func loadDataFile(ctx context.Context, b *backend, path string, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	if b.writer == nil {
		logger.Warn("Data file ignored: backend is read-only", zap.String("path", path))
		return nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	data, err := entry.DecodeData(f)
	if err != nil {
		return fmt.Errorf("decode data file %s: %w", path, err)
	}
	if err := b.writer.AddDictionaryData(ctx, data); err != nil {
		return fmt.Errorf("load data file %s: %w", path, err)
	}
	logger.Info("Data file loaded",
		zap.String("path", path),
		zap.Int("dictionaries", len(data.Dictionaries)),
		zap.Int("ref_terms", len(data.RefTerms)),
	)
	return nil
}
