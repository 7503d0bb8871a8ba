package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"studioadmin/models"
)

// ErrStoreUnavailable is returned when the database handle is missing or
// the store cannot be read or written.
var ErrStoreUnavailable = errors.New("settings store unavailable")

// ErrSettingsNotFound is returned by Read when no document exists yet for
// the admin identity.
var ErrSettingsNotFound = errors.New("settings not found")

// SettingsStore persists one UserSettings document per admin identity.
// It provides no transaction across concurrent writers beyond the
// atomicity of a single Write call; last write wins.
type SettingsStore struct {
	db *bbolt.DB
}

// NewSettingsStore creates a settings store over an open database handle.
// A nil handle is accepted; every operation then fails with
// ErrStoreUnavailable.
func NewSettingsStore(db *bbolt.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Read returns the stored document verbatim, or ErrSettingsNotFound.
func (s *SettingsStore) Read(adminID string) (*models.UserSettings, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	var settings *models.UserSettings
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketSettings))
		if bucket == nil {
			return ErrStoreUnavailable
		}
		data := bucket.Get([]byte(adminID))
		if data == nil {
			return ErrSettingsNotFound
		}
		settings = &models.UserSettings{}
		return json.Unmarshal(data, settings)
	})
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) || errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return settings, nil
}

// Write merges the patch into the existing document, materializing defaults
// if none exists, persists the result and returns the merged document.
// The read-merge-write happens inside one update transaction.
func (s *SettingsStore) Write(adminID string, patch *models.SettingsPatch) (*models.UserSettings, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	var merged *models.UserSettings
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketSettings))
		if bucket == nil {
			return ErrStoreUnavailable
		}

		settings := models.DefaultSettings(adminID)
		if data := bucket.Get([]byte(adminID)); data != nil {
			settings = &models.UserSettings{}
			if err := json.Unmarshal(data, settings); err != nil {
				return fmt.Errorf("failed to unmarshal settings: %v", err)
			}
		}

		settings.Apply(patch)

		data, err := json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %v", err)
		}
		if err := bucket.Put([]byte(adminID), data); err != nil {
			return err
		}
		merged = settings
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return merged, nil
}

// Restore overwrites the document with a previously captured snapshot.
func (s *SettingsStore) Restore(adminID string, snapshot *models.UserSettings) error {
	if s.db == nil {
		return ErrStoreUnavailable
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketSettings))
		if bucket == nil {
			return ErrStoreUnavailable
		}
		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %v", err)
		}
		return bucket.Put([]byte(adminID), data)
	})
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
