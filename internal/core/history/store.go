package history

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/calcam/internal/core/kv"
	"github.com/hay-kot/calcam/pkg/randid"
)

const (
	// DefaultMaxEntries is the number of entries retained when no limit is configured.
	DefaultMaxEntries = 20
	// DefaultStorageKey is the key the serialized history is stored under.
	DefaultStorageKey = "calorieCamHistory"

	idSuffixLength = 7
)

// Warner surfaces a user-visible warning. printer.Printer satisfies it.
type Warner interface {
	Warnf(format string, args ...any)
}

// Listener is called with a snapshot of the entries after every mutation.
type Listener func(entries []Entry)

// Option configures a Store.
type Option func(*Store)

// WithMaxEntries sets how many entries are retained, newest first.
func WithMaxEntries(n int) Option {
	return func(s *Store) { s.maxEntries = n }
}

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithWarner sets where write failures are reported to the user.
func WithWarner(w Warner) Option {
	return func(s *Store) { s.warn = w }
}

// Store keeps the live, newest-first history and mirrors it into a kv.Store.
//
// The live entries may carry the real uploaded image; what is written to
// storage never does. Storage errors are logged and, for writes, warned
// about, but never returned: the live collection keeps serving.
type Store struct {
	storage    kv.Store
	key        string
	maxEntries int
	log        zerolog.Logger
	warn       Warner
	now        func() time.Time

	hydrate sync.Once

	mu        sync.RWMutex
	entries   []Entry
	loading   bool
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store backed by storage. Entries are not available until
// Hydrate (or Start) has run.
func NewStore(storage kv.Store, opts ...Option) *Store {
	s := &Store{
		storage:    storage,
		key:        DefaultStorageKey,
		maxEntries: DefaultMaxEntries,
		log:        zerolog.Nop(),
		warn:       nopWarner{},
		now:        time.Now,
		loading:    true,
		listeners:  make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start hydrates the store in the background.
func (s *Store) Start(ctx context.Context) {
	go s.Hydrate(ctx)
}

// Hydrate loads the persisted history. It runs once per store; later calls
// block until the first has finished. A missing or unreadable blob leaves the
// store empty.
func (s *Store) Hydrate(ctx context.Context) {
	s.hydrate.Do(func() {
		entries := s.load(ctx)

		s.mu.Lock()
		s.entries = entries
		s.loading = false
		s.mu.Unlock()

		s.notify()
	})
}

// load reads and decodes the stored blob. Failures are logged, not returned.
func (s *Store) load(ctx context.Context) (entries []Entry) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("history hydration panicked")
			entries = nil
		}
	}()

	stored, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			s.log.Debug().Str("key", s.key).Msg("no stored history")
			return nil
		}
		s.log.Error().Err(err).Str("key", s.key).Msg("failed to read history from storage")
		return nil
	}

	if stored.Value == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(stored.Value), &entries); err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("failed to parse stored history, starting empty")
		return nil
	}

	for i := range entries {
		if entries[i].UploadedImage == "" {
			entries[i].UploadedImage = Placeholder
		}
	}

	if s.maxEntries > 0 && len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}

	s.log.Debug().Int("count", len(entries)).Msg("history hydrated")
	return entries
}

// Loading reports whether hydration is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Entries returns a snapshot of the live entries, newest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Append records a new entry at the head of the history and persists the
// placeholder form of the whole collection. It waits for hydration first so
// that previously stored entries are never overwritten.
func (s *Store) Append(ctx context.Context, c Candidate) Entry {
	s.Hydrate(ctx)

	now := s.now().UTC()
	entry := Entry{
		ID:            now.Format(time.RFC3339Nano) + randid.Generate(idSuffixLength),
		Date:          now,
		UploadedImage: c.UploadedImage,
		FoodItems:     c.FoodItems,
		TotalCalories: c.TotalCalories,
	}

	s.mu.Lock()
	updated := make([]Entry, 0, len(s.entries)+1)
	updated = append(updated, entry)
	updated = append(updated, s.entries...)
	if s.maxEntries > 0 && len(updated) > s.maxEntries {
		updated = updated[:s.maxEntries]
	}
	s.entries = updated
	s.persist(ctx, updated)
	s.mu.Unlock()

	s.notify()
	return entry
}

// persist writes the placeholder form of entries. Caller holds s.mu.
func (s *Store) persist(ctx context.Context, entries []Entry) {
	data, err := json.Marshal(Persisted(entries))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode history")
		s.warn.Warnf("History could not be saved: %v", err)
		return
	}

	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		s.log.Error().Err(err).Str("key", s.key).Int("bytes", len(data)).Msg("failed to save history to storage")
		if errors.Is(err, kv.ErrQuotaExceeded) {
			s.warn.Warnf("Storage is full; this meal is kept for the current session only")
			return
		}
		s.warn.Warnf("History could not be saved: %v", err)
	}
}

// Clear empties the history and removes the stored blob.
func (s *Store) Clear(ctx context.Context) {
	s.Hydrate(ctx)

	s.mu.Lock()
	s.entries = nil
	if err := s.storage.Delete(ctx, s.key); err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		s.log.Error().Err(err).Str("key", s.key).Msg("failed to clear history from storage")
	}
	s.mu.Unlock()

	s.notify()
}

// OnChange registers l to be called after every mutation. The returned
// function removes it.
func (s *Store) OnChange(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// notify calls every listener with the current entries. Caller must not hold s.mu.
func (s *Store) notify() {
	s.mu.RLock()
	entries := s.snapshot()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(entries)
	}
}

func (s *Store) snapshot() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

type nopWarner struct{}

func (nopWarner) Warnf(string, ...any) {}
