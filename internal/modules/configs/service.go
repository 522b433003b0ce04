package configs

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/pagecraft/enhance/internal/config"
	"github.com/pagecraft/enhance/internal/models"
	"github.com/pagecraft/enhance/internal/pkg/secret"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const configKey = "configs"

// Service manages the persisted FullConfig. Provider API keys are
// sealed before they reach the options table.
type Service struct {
	db  *gorm.DB
	box *secret.Box
	mu  sync.RWMutex
	cfg *config.FullConfig
}

func NewService(db *gorm.DB, box *secret.Box) *Service {
	return &Service{db: db, box: box}
}

// Get returns the current config, loading from DB if not cached.
func (s *Service) Get() (*config.FullConfig, error) {
	s.mu.RLock()
	if s.cfg != nil {
		defer s.mu.RUnlock()
		return s.cfg, nil
	}
	s.mu.RUnlock()

	return s.load()
}

func (s *Service) load() (*config.FullConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var opt models.OptionModel
	err := s.db.Where("name = ?", configKey).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := config.DefaultFullConfig()
		s.cfg = &defaults
		_ = s.persist(&defaults)
		return s.cfg, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultFullConfig()
	if err := json.Unmarshal([]byte(opt.Value), &cfg); err != nil {
		return nil, err
	}
	s.cfg = &cfg
	return s.cfg, nil
}

// Patch merges the given partial JSON update into the current config and persists it.
// New key material takes effect on the next enhancement request.
func (s *Service) Patch(partial map[string]json.RawMessage) (*config.FullConfig, error) {
	current, err := s.Get()
	if err != nil {
		return nil, err
	}

	currentJSON, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	merged := map[string]interface{}{}
	if err := json.Unmarshal(currentJSON, &merged); err != nil {
		return nil, err
	}

	for k, v := range partial {
		if len(strings.TrimSpace(string(v))) == 0 {
			continue
		}
		var incoming interface{}
		if err := json.Unmarshal(v, &incoming); err != nil {
			return nil, err
		}
		if existing, ok := merged[k]; ok {
			merged[k] = deepMergeJSON(existing, incoming)
			continue
		}
		merged[k] = incoming
	}

	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}

	updated := config.DefaultFullConfig()
	if err := json.Unmarshal(mergedJSON, &updated); err != nil {
		return nil, err
	}
	restoreMaskedKeys(&updated, current)
	if err := s.sealProviderKeys(&updated); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cfg = &updated
	s.mu.Unlock()

	return &updated, s.persist(&updated)
}

// restoreMaskedKeys keeps the stored key when a client echoes back the
// redacted placeholder from a previous read.
func restoreMaskedKeys(updated, current *config.FullConfig) {
	byID := make(map[string]string, len(current.AI.Providers))
	for _, p := range current.AI.Providers {
		byID[p.ID] = p.APIKey
	}
	for i := range updated.AI.Providers {
		if updated.AI.Providers[i].APIKey == "********" {
			updated.AI.Providers[i].APIKey = byID[updated.AI.Providers[i].ID]
		}
	}
}

func (s *Service) sealProviderKeys(cfg *config.FullConfig) error {
	for i := range cfg.AI.Providers {
		sealed, err := s.box.Seal(cfg.AI.Providers[i].APIKey)
		if err != nil {
			return err
		}
		cfg.AI.Providers[i].APIKey = sealed
	}
	return nil
}

// OpenKey decrypts a stored provider API key.
func (s *Service) OpenKey(stored string) (string, error) {
	return s.box.Open(stored)
}

func (s *Service) persist(cfg *config.FullConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	opt := models.OptionModel{Name: configKey, Value: string(data)}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&opt).Error
}

// Invalidate clears the in-memory config cache, forcing a DB reload on next Get.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = nil
}

func deepMergeJSON(oldVal, newVal interface{}) interface{} {
	oldMap, oldIsMap := oldVal.(map[string]interface{})
	newMap, newIsMap := newVal.(map[string]interface{})
	if oldIsMap && newIsMap {
		out := make(map[string]interface{}, len(oldMap))
		for k, v := range oldMap {
			out[k] = v
		}
		for k, v := range newMap {
			if existing, ok := out[k]; ok {
				out[k] = deepMergeJSON(existing, v)
				continue
			}
			out[k] = v
		}
		return out
	}

	// Arrays are replaced as a whole.
	return newVal
}
