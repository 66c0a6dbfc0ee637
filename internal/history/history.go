package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/quocvuong92/leafify/internal/constants"
	"github.com/quocvuong92/leafify/internal/logging"
	"github.com/quocvuong92/leafify/internal/storage"
)

// MaxCASAttempts bounds re-reads when another writer changes the stored
// value between our read and our write.
const MaxCASAttempts = 5

// DateLayout matches JavaScript's Date.toISOString output.
const DateLayout = "2006-01-02T15:04:05.000Z"

// ErrConflict is returned when every compare-and-swap attempt lost a race.
var ErrConflict = errors.New("history changed concurrently, giving up")

// Entry is a cached record of a past successful identification.
type Entry struct {
	PlantName   string `json:"plantName"`
	ImageBase64 string `json:"imageBase64"`
	Date        string `json:"date"`
}

// Time parses Date; the zero time is returned for unparsable values.
func (e Entry) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, e.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Cache is the sole writer of the history value in the store.
type Cache struct {
	mu       sync.Mutex
	store    storage.Store
	key      string
	limit    int
	now      func() time.Time
	logger   *logging.FieldLogger
	onChange func([]Entry)
}

// Option configures a Cache
type Option func(*Cache)

// WithClock sets the timestamp source for new entries
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *Cache) { c.logger = logger.Component("history") }
}

// WithObserver registers a callback run with the re-derived list after
// every successful write.
func WithObserver(fn func([]Entry)) Option {
	return func(c *Cache) { c.onChange = fn }
}

// NewCache creates a history cache over store under the fixed history key
func NewCache(store storage.Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		key:    constants.HistoryKey,
		limit:  constants.MaxHistoryEntries,
		now:    time.Now,
		logger: logging.Nop().Component("history"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record prepends a new entry for plantName unless one already exists.
// An existing entry is left where it is and not refreshed. The list is
// capped by dropping the oldest entries and written back as one value.
func (c *Cache) Record(plantName, imageEncoded string) (bool, error) {
	c.mu.Lock()
	written, err := c.record(plantName, imageEncoded)
	var current []Entry
	if written && c.onChange != nil {
		current = c.list()
	}
	c.mu.Unlock()

	if current != nil {
		c.onChange(current)
	}
	return written, err
}

func (c *Cache) record(plantName, imageEncoded string) (bool, error) {
	cas, canSwap := c.store.(storage.CompareAndSwapper)

	for attempt := 0; attempt < MaxCASAttempts; attempt++ {
		raw, existed, err := c.store.Get(c.key)
		if err != nil {
			return false, fmt.Errorf("read history: %w", err)
		}

		entries := c.decode(raw, existed)
		if contains(entries, plantName) {
			c.logger.Debug("plant already in history", logging.Fields{"plant": plantName})
			return false, nil
		}

		next := make([]Entry, 0, len(entries)+1)
		next = append(next, Entry{
			PlantName:   plantName,
			ImageBase64: imageEncoded,
			Date:        c.now().UTC().Format(DateLayout),
		})
		next = append(next, entries...)
		if len(next) > c.limit {
			next = next[:c.limit]
		}

		data, err := json.Marshal(next)
		if err != nil {
			return false, fmt.Errorf("encode history: %w", err)
		}

		if !canSwap {
			if err := c.store.Set(c.key, string(data)); err != nil {
				return false, fmt.Errorf("write history: %w", err)
			}
		} else {
			swapped, err := cas.CompareAndSwap(c.key, raw, existed, string(data))
			if err != nil {
				return false, fmt.Errorf("write history: %w", err)
			}
			if !swapped {
				c.logger.Debug("history changed during record, retrying", logging.Fields{"attempt": attempt + 1})
				continue
			}
		}

		c.logger.Info("recorded identification", logging.Fields{
			"plant":   plantName,
			"entries": len(next),
		})
		return true, nil
	}

	return false, ErrConflict
}

// List returns the stored entries, newest first. It never fails: a missing
// or malformed value reads as an empty history.
func (c *Cache) List() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list()
}

// Load returns the stored entries for display at startup.
func (c *Cache) Load() []Entry {
	return c.List()
}

func (c *Cache) list() []Entry {
	raw, existed, err := c.store.Get(c.key)
	if err != nil {
		c.logger.Warn("failed to read history", logging.Fields{"error": err.Error()})
		return []Entry{}
	}
	return c.decode(raw, existed)
}

func (c *Cache) decode(raw string, existed bool) []Entry {
	if !existed || raw == "" {
		return []Entry{}
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.Warn("stored history is malformed, treating as empty", logging.Fields{"error": err.Error()})
		return []Entry{}
	}
	if entries == nil {
		return []Entry{}
	}
	return entries
}

func contains(entries []Entry, plantName string) bool {
	for _, e := range entries {
		if e.PlantName == plantName {
			return true
		}
	}
	return false
}
