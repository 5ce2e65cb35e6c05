package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrDecode marks a stored record that could not be decoded. Reads never
// return it; it is logged and the record is treated as absent.
var ErrDecode = errors.New("undecodable record")

var ErrStoreClosed = errors.New("store closed")

// KV is the durable key-value medium. Values are opaque strings.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	usersKey   = "users"
	sessionKey = "session"
	ticketsKey = "tickets"
)

// Store is the only component that touches the KV medium. Writes replace
// whole collections; the Update helpers serialize read-modify-write cycles
// so concurrent callers cannot lose each other's changes.
type Store struct {
	kv        KV
	namespace string
	log       zerolog.Logger

	usersMu   sync.Mutex
	ticketsMu sync.Mutex

	mu     sync.RWMutex
	closed bool
}

// Open wraps kv for the given key namespace. The store takes ownership of
// kv and closes it on Close.
func Open(ctx context.Context, kv KV, namespace string, log zerolog.Logger) (*Store, error) {
	if err := kv.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping store medium: %w", err)
	}
	return &Store{
		kv:        kv,
		namespace: namespace,
		log:       log,
	}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.kv.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.kv.Ping(ctx)
}

func (s *Store) key(name string) string {
	return s.namespace + "_" + name
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// read decodes the record at name into out. Missing and undecodable
// records both report found=false; only medium failures are errors.
func (s *Store) read(ctx context.Context, name string, out any) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	raw, ok, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.log.Warn().
			Err(fmt.Errorf("%w: %v", ErrDecode, err)).
			Str("key", s.key(name)).
			Msg("discarding stored record")
		return false, nil
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, name string, value any) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.kv.Set(ctx, s.key(name), string(data))
}

// Snapshot returns the raw stored value of every collection, keyed by
// collection name. Absent records are omitted.
func (s *Store) Snapshot(ctx context.Context) (map[string]json.RawMessage, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, 3)
	for _, name := range []string{usersKey, sessionKey, ticketsKey} {
		raw, ok, err := s.kv.Get(ctx, s.key(name))
		if err != nil {
			return nil, err
		}
		if ok && json.Valid([]byte(raw)) {
			out[name] = json.RawMessage(raw)
		}
	}
	return out, nil
}
