package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/warden/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketCache = []byte("cache")

// CacheStore implements domain.Store using BoltDB.
// Keys are "{region}:{key}" so a whole region is dropped by prefix deletion.
type CacheStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewCacheStore opens (or creates) the cache database for an upstream.
// An empty baseCacheDir selects memory-only mode.
func NewCacheStore(baseCacheDir, upstreamURL string) (*CacheStore, error) {
	if baseCacheDir == "" {
		return &CacheStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if upstreamURL != "" {
		dir = filepath.Join(baseCacheDir, hashURL(upstreamURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "warden.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCache)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CacheStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashURL(u string) string {
	normalized := strings.TrimRight(strings.ToLower(u), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *CacheStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func cacheKey(region domain.Region, key string) string {
	return string(region) + ":" + key
}

// === Generic helpers ===

func (s *CacheStore) get(region domain.Region, key string, dest any) bool {
	k := cacheKey(region, key)

	s.mu.RLock()
	if data, ok := s.cache[k]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCache)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(k)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[k] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *CacheStore) set(region domain.Region, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	k := cacheKey(region, key)

	s.mu.Lock()
	s.cache[k] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCache).Put([]byte(k), data)
	})
}

func (s *CacheStore) deletePrefix(prefix string) {
	s.mu.Lock()
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCache)
		if b == nil {
			return nil
		}
		// Collect first: deleting while iterating skips keys
		var keys [][]byte
		c := b.Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Invalidate drops every entry in a region
func (s *CacheStore) Invalidate(region domain.Region) {
	s.deletePrefix(string(region) + ":")
}

func (s *CacheStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketCache); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketCache)
		return err
	})
}

// === Identities ===

func (s *CacheStore) GetIdentities() ([]*domain.Identity, bool) {
	var identities []*domain.Identity
	ok := s.get(domain.RegionIdentities, "list", &identities)
	return identities, ok
}

func (s *CacheStore) SaveIdentities(identities []*domain.Identity) error {
	return s.set(domain.RegionIdentities, "list", identities)
}

// === Search (key: normalized query) ===

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func (s *CacheStore) GetSearch(query string) ([]*domain.Identity, bool) {
	var identities []*domain.Identity
	ok := s.get(domain.RegionIdentitiesSearch, normalizeQuery(query), &identities)
	return identities, ok
}

func (s *CacheStore) SaveSearch(query string, identities []*domain.Identity) error {
	return s.set(domain.RegionIdentitiesSearch, normalizeQuery(query), identities)
}

// === Sessions ===

func (s *CacheStore) GetSessions() ([]*domain.Session, bool) {
	var sessions []*domain.Session
	ok := s.get(domain.RegionSessions, "list", &sessions)
	return sessions, ok
}

func (s *CacheStore) SaveSessions(sessions []*domain.Session) error {
	return s.set(domain.RegionSessions, "list", sessions)
}

func (s *CacheStore) GetIdentitySessions(identityID string) ([]*domain.Session, bool) {
	var sessions []*domain.Session
	ok := s.get(domain.RegionIdentitySessions, identityID, &sessions)
	return sessions, ok
}

func (s *CacheStore) SaveIdentitySessions(identityID string, sessions []*domain.Session) error {
	return s.set(domain.RegionIdentitySessions, identityID, sessions)
}

// === OAuth2 clients ===

func (s *CacheStore) GetClients() ([]*domain.OAuth2Client, bool) {
	var clients []*domain.OAuth2Client
	ok := s.get(domain.RegionClients, "list", &clients)
	return clients, ok
}

func (s *CacheStore) SaveClients(clients []*domain.OAuth2Client) error {
	return s.set(domain.RegionClients, "list", clients)
}
