// Package history stores executed command lines in a SQLite database.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type HistoryManager struct {
	db         *gorm.DB
	dbFilePath string
	logger     *zap.Logger
}

type HistoryEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	Command   string
	Directory string
	// ExitCode is unset while the command is still running.
	ExitCode sql.NullInt32
}

const historySchemaVersion = 1

// NewHistoryManager opens or creates the history database at dbFilePath.
func NewHistoryManager(dbFilePath string, log *zap.Logger) (*HistoryManager, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(dbFilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbFileExists := true
	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		return nil, fmt.Errorf("failed to check history db: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	h := &HistoryManager{
		db:         db,
		dbFilePath: dbFilePath,
		logger:     log,
	}

	if h.needsMigration(dbFileExists) {
		log.Info("migrating history schema", zap.String("path", dbFilePath), zap.Int("version", historySchemaVersion))
		if err := db.AutoMigrate(&HistoryEntry{}); err != nil {
			h.Close()
			return nil, fmt.Errorf("failed to migrate history schema: %w", err)
		}
		if err := h.writeSchemaVersion(historySchemaVersion); err != nil {
			h.Close()
			return nil, fmt.Errorf("failed to write history schema version: %w", err)
		}
	}

	return h, nil
}

func (h *HistoryManager) needsMigration(dbFileExists bool) bool {
	if !dbFileExists {
		return true
	}

	if err := h.checkSchemaVersion(); err != nil {
		h.logger.Debug("history schema version check failed", zap.Error(err))
		return true
	}

	// The marker can outlive the table if the db was replaced.
	return !h.db.Migrator().HasTable(&HistoryEntry{})
}

func (h *HistoryManager) writeSchemaVersion(version int) error {
	return os.WriteFile(h.schemaVersionPath(), []byte(strconv.Itoa(version)), 0644)
}

func (h *HistoryManager) checkSchemaVersion() error {
	data, err := os.ReadFile(h.schemaVersionPath())
	if err != nil {
		return err
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return err
	}
	if version != historySchemaVersion {
		return fmt.Errorf("history schema version mismatch: got %d, want %d", version, historySchemaVersion)
	}
	return nil
}

func (h *HistoryManager) schemaVersionPath() string {
	return h.dbFilePath + ".schema_version"
}

// StartCommand records command before it runs.
func (h *HistoryManager) StartCommand(command string, directory string) (*HistoryEntry, error) {
	entry := HistoryEntry{
		Command:   command,
		Directory: directory,
	}

	if result := h.db.Create(&entry); result.Error != nil {
		return nil, result.Error
	}
	return &entry, nil
}

// FinishCommand stores the exit code of a command recorded by StartCommand.
func (h *HistoryManager) FinishCommand(entry *HistoryEntry, exitCode int) (*HistoryEntry, error) {
	entry.ExitCode = sql.NullInt32{Int32: int32(exitCode), Valid: true}

	if result := h.db.Save(entry); result.Error != nil {
		return nil, result.Error
	}
	return entry, nil
}

// GetRecentEntries returns up to limit entries, oldest first. An empty
// directory matches every directory.
func (h *HistoryManager) GetRecentEntries(directory string, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	db := h.db
	if directory != "" {
		db = db.Where("directory = ?", directory)
	}
	result := db.Order("created_at desc").Order("id desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	slices.Reverse(entries)
	return entries, nil
}

// ResetHistory deletes every entry.
func (h *HistoryManager) ResetHistory() error {
	return h.db.Exec("DELETE FROM history_entries").Error
}

func (h *HistoryManager) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
