package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"rentalbackend/internal/logger"
)

// Service holds the loaded catalog and serves lookups by stable ID and,
// as a legacy shim for old rental logs, by display name.
type Service struct {
	itemsByID   map[string]Item
	itemsByName map[string]Item

	lastLoaded time.Time
	mutex      sync.RWMutex
}

func NewService() *Service {
	return &Service{
		itemsByID:   make(map[string]Item),
		itemsByName: make(map[string]Item),
	}
}

// LoadFromFile reads the catalog JSON file and replaces the in-memory set.
func (s *Service) LoadFromFile(path string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	logger.LogInfo("Loading mascot catalog from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if err := s.populate(file.Mascots); err != nil {
		return err
	}
	s.lastLoaded = time.Now()

	logger.LogInfo("Successfully loaded catalog: %d mascots", len(s.itemsByID))
	return nil
}

// LoadItems replaces the catalog from an in-memory slice. Used by tests
// and by callers that source the catalog elsewhere.
func (s *Service) LoadItems(items []Item) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.populate(items); err != nil {
		return err
	}
	s.lastLoaded = time.Now()
	return nil
}

func (s *Service) populate(items []Item) error {
	byID := make(map[string]Item, len(items))
	byName := make(map[string]Item, len(items))

	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("catalog item %q has no ID", item.Name)
		}
		if item.Quantity < 0 {
			return fmt.Errorf("catalog item %q has negative quantity %d", item.Name, item.Quantity)
		}
		if _, exists := byID[item.ID]; exists {
			return fmt.Errorf("duplicate catalog item ID %q", item.ID)
		}
		if _, exists := byName[item.Name]; exists {
			return fmt.Errorf("duplicate catalog item name %q", item.Name)
		}
		byID[item.ID] = item
		byName[item.Name] = item
	}

	s.itemsByID = byID
	s.itemsByName = byName
	return nil
}

// Items returns all catalog items sorted by display name.
func (s *Service) Items() []Item {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	items := make([]Item, 0, len(s.itemsByID))
	for _, item := range s.itemsByID {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// ItemByID looks up an item by its stable identifier.
func (s *Service) ItemByID(id string) (Item, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, ok := s.itemsByID[id]
	return item, ok
}

// ItemByName looks up an item by display name. Old rental logs reference
// mascots by name only; new writes should always carry the item ID.
func (s *Service) ItemByName(name string) (Item, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, ok := s.itemsByName[name]
	return item, ok
}

// IsStale reports whether the catalog is older than maxAge.
func (s *Service) IsStale(maxAge time.Duration) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return time.Since(s.lastLoaded) > maxAge
}

// CacheAge reports how long ago the catalog was loaded.
func (s *Service) CacheAge() time.Duration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return time.Since(s.lastLoaded)
}
