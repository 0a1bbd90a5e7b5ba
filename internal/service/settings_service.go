package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"empleos/internal/cache"
	"empleos/internal/models"
	"empleos/internal/moderation"
	"empleos/internal/repository"
)

// SettingsService reads and updates system settings. Reads are served from
// Redis when available.
type SettingsService struct {
	repo repository.SettingRepository
}

// NewSettingsService returns a SettingsService.
func NewSettingsService(repo repository.SettingRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// List returns every setting ordered by key.
func (s *SettingsService) List(ctx context.Context) ([]models.SystemSetting, error) {
	var settings []models.SystemSetting
	err := cache.Aside(ctx, cache.SettingsKey, &settings, cache.SettingsTTL, func() error {
		var err error
		settings, err = s.repo.List(ctx)
		return err
	})
	return settings, err
}

// Values returns settings as a key/value map, with defaults filled in for
// keys missing from storage.
func (s *SettingsService) Values(ctx context.Context) (map[string]models.JSON, error) {
	values := make(map[string]models.JSON)
	for _, d := range models.DefaultSettings() {
		values[d.Key] = d.Value
	}
	settings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range settings {
		values[st.Key] = st.Value
	}
	return values, nil
}

// Bool reads a boolean setting, falling back when unset or unreadable.
func (s *SettingsService) Bool(ctx context.Context, key string, fallback bool) bool {
	var v bool
	if !s.decode(ctx, key, &v) {
		return fallback
	}
	return v
}

// Int reads an integer setting, falling back when unset or unreadable.
func (s *SettingsService) Int(ctx context.Context, key string, fallback int) int {
	var v int
	if !s.decode(ctx, key, &v) {
		return fallback
	}
	return v
}

func (s *SettingsService) decode(ctx context.Context, key string, dst any) bool {
	values, err := s.Values(ctx)
	if err != nil {
		return false
	}
	raw, ok := values[key]
	if !ok {
		return false
	}
	return raw.Decode(dst) == nil
}

// Update validates and stores values, auditing the change as one
// update_settings entry.
func (s *SettingsService) Update(ctx context.Context, adminID uint, values map[string]json.RawMessage, ip string) ([]models.SystemSetting, error) {
	if len(values) == 0 {
		return nil, models.NewValidationError("No settings provided")
	}

	defaults := make(map[string]models.JSON)
	for _, d := range models.DefaultSettings() {
		defaults[d.Key] = d.Value
	}

	keys := make([]string, 0, len(values))
	updates := make(map[string]models.JSON, len(values))
	for key, raw := range values {
		def, ok := defaults[key]
		if !ok {
			return nil, models.NewValidationError(fmt.Sprintf("Unknown setting %q", key))
		}
		if err := validateSettingValue(key, def, raw); err != nil {
			return nil, err
		}
		keys = append(keys, key)
		updates[key] = models.JSON(raw)
	}
	sort.Strings(keys)

	audit := &models.AuditLog{
		AdminID:    adminID,
		ActionType: moderation.ActionUpdateSettings,
		EntityType: models.EntitySetting,
		Details:    models.MustJSON(map[string]any{"keys": keys, "values": values}),
		IPAddress:  ip,
	}
	updated, err := s.repo.UpdateMany(ctx, updates, adminID, audit)
	if err != nil {
		return nil, err
	}
	cache.InvalidateSettings(ctx)
	return updated, nil
}

// validateSettingValue requires raw to have the JSON kind of def, plus
// range checks for the numeric settings.
func validateSettingValue(key string, def models.JSON, raw json.RawMessage) error {
	want, got := jsonKind(def), jsonKind(models.JSON(raw))
	if want != got {
		return models.NewValidationError(fmt.Sprintf("Setting %s must be a %s", key, want))
	}

	switch key {
	case models.SettingJobsPerPage, models.SettingMaxApplicationsPerDay:
		var n float64
		_ = json.Unmarshal(raw, &n)
		if n != float64(int64(n)) {
			return models.NewValidationError(fmt.Sprintf("Setting %s must be an integer", key))
		}
		if key == models.SettingJobsPerPage && (n < 1 || n > 100) {
			return models.NewValidationError("Setting jobs_per_page must be between 1 and 100")
		}
		if key == models.SettingMaxApplicationsPerDay && n < 0 {
			return models.NewValidationError("Setting max_applications_per_day must not be negative")
		}
	case models.SettingPlatformName, models.SettingSupportEmail:
		var v string
		_ = json.Unmarshal(raw, &v)
		if v == "" {
			return models.NewValidationError(fmt.Sprintf("Setting %s must not be empty", key))
		}
	}
	return nil
}

func jsonKind(raw models.JSON) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "invalid"
	}
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	case []any:
		return "array"
	default:
		return "object"
	}
}
