package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

const (
	entriesPrefix = "entries-"
	metaKey       = "meta"
)

// Entry is a remembered customer and work item pair.
type Entry struct {
	Customer string `json:"customer"`
	WorkItem string `json:"work_item"`
	LastUsed string `json:"last_used"`
}

type pair struct {
	customer, workItem string
}

type meta struct {
	LastUpdated string `json:"last_updated"`
}

// Cache holds recently used pairs per user plus one freshness timestamp
// shared by all users. It is not safe for concurrent use.
type Cache struct {
	d           *diskv.Diskv
	users       map[string][]Entry
	lastUpdated string
	now         func() time.Time
}

// New returns an empty cache that is never persisted.
func New() *Cache {
	return &Cache{users: make(map[string][]Entry), now: time.Now}
}

// Load opens the cache stored under dir. Missing or unreadable values are
// skipped, so Load only fails when dir itself cannot be created.
func Load(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	c := New()
	c.d = diskv.New(diskv.Options{
		BasePath:          dir,
		AdvancedTransform: flatTransform,
		InverseTransform:  flatInverse,
		CacheSizeMax:      1024 * 1024,
	})

	if raw, err := c.d.Read(metaKey); err == nil {
		var m meta
		if json.Unmarshal(raw, &m) == nil {
			c.lastUpdated = m.LastUpdated
		}
	}

	for key := range c.d.KeysPrefix(entriesPrefix, nil) {
		raw, err := c.d.Read(key)
		if err != nil {
			continue
		}
		var entries []Entry
		if err := json.Unmarshal(raw, &entries); err != nil {
			continue
		}
		c.users[strings.TrimPrefix(key, entriesPrefix)] = entries
	}
	return c, nil
}

func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key + ".json"}
}

func flatInverse(pk *diskv.PathKey) string {
	return strings.TrimSuffix(pk.FileName, ".json")
}

// Save writes every user's entries and the freshness timestamp.
func (c *Cache) Save() error {
	if c.d == nil {
		return nil
	}
	for user, entries := range c.users {
		if entries == nil {
			entries = []Entry{}
		}
		raw, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding cache for user %s: %w", user, err)
		}
		if err := c.d.Write(entriesPrefix+user, raw); err != nil {
			return fmt.Errorf("writing cache for user %s: %w", user, err)
		}
	}
	raw, err := json.Marshal(meta{LastUpdated: c.lastUpdated})
	if err != nil {
		return fmt.Errorf("encoding cache metadata: %w", err)
	}
	if err := c.d.Write(metaKey, raw); err != nil {
		return fmt.Errorf("writing cache metadata: %w", err)
	}
	return nil
}

// Merge folds items into the user's entries, keeping the latest date per
// pair and dropping items with an empty customer or work item. It marks
// the cache as fresh.
func (c *Cache) Merge(userID string, items []Entry) {
	c.users[userID] = combine(c.users[userID], items)
	c.lastUpdated = c.now().Format(time.RFC3339)
}

// Upsert records a single use of a pair. A date older than the stored one
// never replaces it.
func (c *Cache) Upsert(userID, customer, workItem, date string) {
	if customer == "" || workItem == "" {
		return
	}
	c.users[userID] = combine(c.users[userID], []Entry{{Customer: customer, WorkItem: workItem, LastUsed: date}})
}

func combine(existing, incoming []Entry) []Entry {
	latest := make(map[pair]string)
	add := func(e Entry) {
		if e.Customer == "" || e.WorkItem == "" {
			return
		}
		k := pair{e.Customer, e.WorkItem}
		if cur, ok := latest[k]; !ok || e.LastUsed > cur {
			latest[k] = e.LastUsed
		}
	}
	for _, e := range existing {
		add(e)
	}
	for _, e := range incoming {
		add(e)
	}

	out := make([]Entry, 0, len(latest))
	for k, d := range latest {
		out = append(out, Entry{Customer: k.customer, WorkItem: k.workItem, LastUsed: d})
	}
	sortEntries(out)
	return out
}

// sortEntries orders by date, newest first. Ties are broken by customer
// and then work item so repeated merges render identically.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.LastUsed != b.LastUsed {
			return a.LastUsed > b.LastUsed
		}
		if a.Customer != b.Customer {
			return a.Customer < b.Customer
		}
		return a.WorkItem < b.WorkItem
	})
}

// Sorted returns the user's entries, newest first. Duplicates present in
// storage are kept.
func (c *Cache) Sorted(userID string) []Entry {
	out := append([]Entry(nil), c.users[userID]...)
	sortEntries(out)
	return out
}

// Unique is Sorted with repeated pairs removed, keeping the newest.
func (c *Cache) Unique(userID string) []Entry {
	seen := make(map[pair]bool)
	var out []Entry
	for _, e := range c.Sorted(userID) {
		k := pair{e.Customer, e.WorkItem}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// IsStale reports whether the last merge is older than maxAge, or whether
// the cache has never been merged.
func (c *Cache) IsStale(maxAge time.Duration) bool {
	t, err := time.Parse(time.RFC3339, c.lastUpdated)
	if err != nil {
		return true
	}
	return c.now().Sub(t) > maxAge
}

func (c *Cache) LastUpdated() string {
	return c.lastUpdated
}

// Clear drops every entry of the user.
func (c *Cache) Clear(userID string) {
	c.users[userID] = []Entry{}
	c.lastUpdated = c.now().Format(time.RFC3339)
}

// Users lists user IDs with a cached list, in lexical order.
func (c *Cache) Users() []string {
	out := make([]string, 0, len(c.users))
	for u := range c.users {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
