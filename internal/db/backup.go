package db

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxBackups is the maximum number of backups to keep
	MaxBackups = 10
	// BackupDir is the backups directory, next to the database file
	BackupDir = "backups"
)

// BackupPath returns the path to the backups directory.
func (db *DB) BackupPath() string {
	return filepath.Join(filepath.Dir(db.path), BackupDir)
}

// Backup writes a consistent snapshot of the database to the backups
// directory and returns its path.
func (db *DB) Backup() (string, error) {
	backupDir := db.BackupPath()
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Millisecond timestamp plus random suffix avoids collisions
	timestamp := time.Now().Format("2006-01-02T15-04-05.000")
	randomBytes := make([]byte, 4)
	_, _ = rand.Read(randomBytes)
	backupFile := filepath.Join(backupDir, fmt.Sprintf("tsk-%s-%s.db", timestamp, hex.EncodeToString(randomBytes)))

	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(backupFile, "'", "''"))); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	slog.Info("created database backup", "path", backupFile)

	if err := pruneBackups(backupDir, MaxBackups); err != nil {
		slog.Warn("failed to prune old backups", "err", err)
	}

	return backupFile, nil
}

// ListBackups returns the backup files, newest first.
func (db *DB) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(db.BackupPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if !isBackupFile(entry) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:    filepath.Join(db.BackupPath(), entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

func isBackupFile(entry os.DirEntry) bool {
	name := entry.Name()
	return !entry.IsDir() && strings.HasPrefix(name, "tsk-") && strings.HasSuffix(name, ".db")
}

// pruneBackups removes old backups, keeping only the newest 'keep' backups.
func pruneBackups(backupDir string, keep int) error {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return err
	}

	type backupFile struct {
		name    string
		modTime time.Time
	}
	var backups []backupFile
	for _, entry := range entries {
		if !isBackupFile(entry) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backupFile{name: entry.Name(), modTime: info.ModTime()})
	}

	// Oldest first; names sort by timestamp when mod times tie
	sort.Slice(backups, func(i, j int) bool {
		if backups[i].modTime.Equal(backups[j].modTime) {
			return backups[i].name < backups[j].name
		}
		return backups[i].modTime.Before(backups[j].modTime)
	})

	for i := 0; i < len(backups)-keep; i++ {
		path := filepath.Join(backupDir, backups[i].name)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].name, err)
		}
	}
	return nil
}
