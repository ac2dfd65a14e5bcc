package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"finboard/internal/models"
	"finboard/internal/repository"
)

const (
	FeaturePerformanceSnapshots = "feature.performance_snapshots"
	FeatureFXWarmup             = "feature.fx_warmup"
)

func DefaultFeatureSwitches() map[string]bool {
	return map[string]bool{
		FeaturePerformanceSnapshots: true,
		FeatureFXWarmup:             true,
	}
}

type SystemSettingsService struct {
	Repo repository.Repository
}

// EnsureDefaultSwitches inserts missing switches. Stored values win.
func (s *SystemSettingsService) EnsureDefaultSwitches(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	now := time.Now().UTC()
	for key, enabled := range DefaultFeatureSwitches() {
		existing, err := s.Repo.GetSystemSettingByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		raw, _ := json.Marshal(enabled)
		item := &models.SystemSetting{
			Key:         key,
			Kind:        models.SettingKindSwitch,
			Value:       datatypes.JSON(raw),
			Description: "feature switch",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.UpsertSystemSetting(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSettingsService) IsEnabled(ctx context.Context, key string, fallback bool) bool {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil || item == nil || len(item.Value) == 0 {
		return fallback
	}
	var enabled bool
	if err := json.Unmarshal(item.Value, &enabled); err != nil {
		return fallback
	}
	return enabled
}

func (s *SystemSettingsService) SetEnabled(ctx context.Context, key string, enabled bool) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	raw, _ := json.Marshal(enabled)
	return s.put(ctx, key, models.SettingKindSwitch, raw, "feature switch")
}

// Set stores an arbitrary JSON value under key. Switch keys only accept
// booleans.
func (s *SystemSettingsService) Set(ctx context.Context, key string, value []byte, description string) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	kind := models.SettingKindValue
	if _, ok := DefaultFeatureSwitches()[strings.TrimSpace(key)]; ok {
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return fmt.Errorf("%w: %s expects true or false", ErrInvalidInput, key)
		}
		kind = models.SettingKindSwitch
	}
	return s.put(ctx, key, kind, value, description)
}

func (s *SystemSettingsService) put(ctx context.Context, key, kind string, value []byte, description string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidInput
	}
	if !json.Valid(value) {
		return ErrInvalidInput
	}
	now := time.Now().UTC()
	item := &models.SystemSetting{
		Key:         key,
		Kind:        kind,
		Value:       datatypes.JSON(value),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.Repo.UpsertSystemSetting(ctx, item)
}
