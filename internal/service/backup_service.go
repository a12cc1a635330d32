package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"cogniplay/internal/models"
	"cogniplay/internal/storage"
)

// BackupData is the complete portable dump of a deployment. It is written
// through the storage ports, so a dump taken from the SQL backend can be
// restored into the local one and vice versa.
type BackupData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Identities []IdentityBackup `json:"identities"`
}

// IdentityBackup bundles one user with everything stored about them
type IdentityBackup struct {
	User     models.User                  `json:"user"`
	Progress *models.UserProgress         `json:"progress"`
	Settings models.AccessibilitySettings `json:"settings"`
}

// BackupService exports and restores full deployments
type BackupService struct {
	store  storage.Backend
	logger *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(store storage.Backend, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{store: store, logger: logger}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}
	s.logger.Info("backup exported", zap.String("path", outputPath))
	return nil
}

// ExportToWriter writes a complete backup to a writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	users, err := s.store.AllUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Identities: []IdentityBackup{},
	}
	for _, user := range users {
		progress, err := s.store.LoadProgress(user.ID)
		if err != nil {
			return fmt.Errorf("failed to load progress for %s: %w", user.ID, err)
		}
		settings, err := s.store.LoadSettings(user.ID)
		if err != nil {
			return fmt.Errorf("failed to load settings for %s: %w", user.ID, err)
		}
		backup.Identities = append(backup.Identities, IdentityBackup{
			User:     user,
			Progress: progress,
			Settings: settings,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// Import restores a backup from a file. Identities whose email already
// exists are skipped, not overwritten.
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup from a reader
func (s *BackupService) ImportFromReader(r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	s.logger.Info("importing backup",
		zap.String("version", backup.Version),
		zap.Time("exportedAt", backup.ExportedAt),
		zap.Int("identities", len(backup.Identities)))

	imported, skipped := 0, 0
	for _, identity := range backup.Identities {
		existing, err := s.store.UserByEmail(identity.User.Email)
		if err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			s.logger.Warn("skipping identity, email already exists",
				zap.String("email", identity.User.Email))
			skipped++
			continue
		}

		user := identity.User
		progress := identity.Progress
		if progress == nil {
			progress = models.NewUserProgress()
		}
		if err := s.store.CreateIdentity(&user, progress, identity.Settings); err != nil {
			return fmt.Errorf("failed to import identity %s: %w", user.Email, err)
		}
		imported++
	}

	s.logger.Info("backup imported", zap.Int("imported", imported), zap.Int("skipped", skipped))
	return nil
}
