package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

var settingsKey = []byte("evolution")

// EvolutionSettings holds the WhatsApp gateway (Evolution API) settings edited
// from the admin panel.
type EvolutionSettings struct {
	BaseURL      string `json:"base_url"`
	Token        string `json:"token"`
	InstanceName string `json:"instance_name"`
}

// SaveSettings overwrites the stored integration settings.
func (s *DB) SaveSettings(cfg *EvolutionSettings) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("SaveSettings: marshal: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(settingsBucket).Put(settingsKey, data)
	})
}

// LoadSettings returns the stored integration settings, or a zero value when
// none were saved yet.
func (s *DB) LoadSettings() (*EvolutionSettings, error) {
	var cfg EvolutionSettings
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(settingsBucket).Get(settingsKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("LoadSettings: %w", err)
	}
	return &cfg, nil
}
