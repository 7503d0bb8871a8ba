package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"

	"studioadmin/models"
)

// ErrAdminNotFound is returned when no admin record matches the lookup.
var ErrAdminNotFound = errors.New("admin not found")

// AdminStore manages administrator identity records
type AdminStore struct {
	db *bbolt.DB
}

// NewAdminStore creates a new admin store instance
func NewAdminStore(db *bbolt.DB) *AdminStore {
	return &AdminStore{db: db}
}

// CreateAdmin creates a new administrator record
func (s *AdminStore) CreateAdmin(admin *models.AdminUser, password string) error {
	if s.db == nil {
		return ErrStoreUnavailable
	}

	// Generate ID if not set
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}
	admin.PasswordHash = string(hashedPassword)

	// Set timestamps
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	// Default values
	if admin.Role == "" {
		admin.Role = "admin"
	}

	return s.saveAdmin(admin)
}

// GetAdmin retrieves an administrator by ID
func (s *AdminStore) GetAdmin(adminID string) (*models.AdminUser, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	var admin *models.AdminUser
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketAdmins))
		if bucket == nil {
			return ErrStoreUnavailable
		}
		data := bucket.Get([]byte(adminID))
		if data == nil {
			return ErrAdminNotFound
		}
		admin = &models.AdminUser{}
		return json.Unmarshal(data, admin)
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// GetAdminByEmail retrieves an administrator by email
func (s *AdminStore) GetAdminByEmail(email string) (*models.AdminUser, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	var found *models.AdminUser
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketAdmins))
		if bucket == nil {
			return ErrStoreUnavailable
		}
		return bucket.ForEach(func(k, v []byte) error {
			var admin models.AdminUser
			if err := json.Unmarshal(v, &admin); err != nil {
				return nil // Skip corrupt entries
			}
			if admin.Email == email {
				found = &admin
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrAdminNotFound
	}
	return found, nil
}

// UpdateEmail changes an administrator's email and clears the verified flag
func (s *AdminStore) UpdateEmail(adminID, email string) error {
	admin, err := s.GetAdmin(adminID)
	if err != nil {
		return err
	}

	admin.Email = email
	admin.EmailVerified = false
	admin.UpdatedAt = time.Now()

	return s.saveAdmin(admin)
}

// MarkEmailVerified flags an administrator's email as verified
func (s *AdminStore) MarkEmailVerified(adminID string) error {
	admin, err := s.GetAdmin(adminID)
	if err != nil {
		return err
	}

	admin.EmailVerified = true
	admin.UpdatedAt = time.Now()

	return s.saveAdmin(admin)
}

// VerifyPassword checks a password against the stored hash and returns the
// matching administrator record
func (s *AdminStore) VerifyPassword(email, password string) (*models.AdminUser, error) {
	admin, err := s.GetAdminByEmail(email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}
	return admin, nil
}

// UpdateLastLogin updates the last login timestamp
func (s *AdminStore) UpdateLastLogin(adminID string) error {
	admin, err := s.GetAdmin(adminID)
	if err != nil {
		return err
	}

	admin.LastLoginAt = time.Now()
	admin.UpdatedAt = time.Now()

	return s.saveAdmin(admin)
}

// saveAdmin persists an administrator record
func (s *AdminStore) saveAdmin(admin *models.AdminUser) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketAdmins))
		if bucket == nil {
			return ErrStoreUnavailable
		}
		data, err := json.Marshal(admin)
		if err != nil {
			return fmt.Errorf("failed to marshal admin: %v", err)
		}
		return bucket.Put([]byte(admin.ID), data)
	})
}
