package source

import (
	"context"
	"fmt"

	"github.com/badno/metaops/pkg/models"
	"github.com/sirupsen/logrus"
)

// SnapshotCache is the cache consulted before fetching
type SnapshotCache interface {
	Snapshot() (*models.Snapshot, bool)
	Put(snapshot *models.Snapshot)
	Save() error
}

// Loader reads snapshots through a connector, reusing a fresh cached copy
type Loader struct {
	conn  Connector
	cache SnapshotCache
	log   logrus.FieldLogger
}

// NewLoader creates a loader; cache may be nil
func NewLoader(conn Connector, cache SnapshotCache, log logrus.FieldLogger) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{conn: conn, cache: cache, log: log.WithField("source", conn.Name())}
}

// Load returns the cached snapshot when fresh, else fetches a new one.
// refresh forces a fetch.
func (l *Loader) Load(ctx context.Context, refresh bool) (*models.Snapshot, error) {
	if !refresh && l.cache != nil {
		if snap, ok := l.cache.Snapshot(); ok {
			l.log.Debug("using cached snapshot")
			return Normalize(snap), nil
		}
	}

	if err := l.conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", l.conn.Name(), err)
	}

	snap, err := l.conn.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	Normalize(snap)

	l.log.WithFields(logrus.Fields{
		"products":    len(snap.Products),
		"pages":       len(snap.Pages),
		"collections": len(snap.Collections),
		"models":      len(snap.Models),
	}).Info("snapshot loaded")

	if l.cache != nil {
		l.cache.Put(snap)
		if err := l.cache.Save(); err != nil {
			l.log.Warnf("failed to write snapshot cache: %v", err)
		}
	}
	return snap, nil
}
