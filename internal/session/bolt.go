package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

// BoltStore persists sessions in a bbolt file so a restart does not lose
// in-flight dialogs. Per-conversation locks still live in process memory;
// the store is not safe to share between instances.
type BoltStore struct {
	db *bolt.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sessions bucket: %w", err)
	}

	return &BoltStore{db: db, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *BoltStore) Update(id string, fn func(*Session) error) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.load(id)
	if err != nil {
		return err
	}
	if sess == nil {
		sess = New()
	}

	sess.LastActivity = time.Now()
	if err := fn(sess); err != nil {
		return err
	}
	return s.save(id, sess)
}

// Reap removes sessions idle longer than maxIdle, along with their locks.
func (s *BoltStore) Reap(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	var stale []string
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var sess Session
			if err := json.Unmarshal(v, &sess); err != nil || sess.LastActivity.Before(cutoff) {
				stale = append(stale, string(k))
			}
		}
		for _, k := range stale {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0
	}

	s.mu.Lock()
	for _, id := range stale {
		delete(s.locks, id)
	}
	s.mu.Unlock()
	return len(stale)
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *BoltStore) load(id string) (*Session, error) {
	var sess *Session
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get([]byte(id))
		if v == nil {
			return nil
		}
		sess = &Session{}
		return json.Unmarshal(v, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return sess, nil
}

func (s *BoltStore) save(id string, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(id), data)
	})
}
