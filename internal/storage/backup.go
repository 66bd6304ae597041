package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup errors.
var (
	ErrBackupNotFound  = errors.New("backup not found")
	ErrBackupExists    = errors.New("backup already exists")
	ErrBackupCorrupted = errors.New("backup integrity check failed")
	ErrInvalidBackupID = errors.New("invalid backup id: cannot contain path separators")
)

// maxAutoBackups is how many automatic backups are retained.
const maxAutoBackups = 5

// BackupInfo describes a database snapshot.
type BackupInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Transactions  int       `json:"transactions"`
	Categories    int       `json:"categories"`
	Types         int       `json:"types"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// BackupManager snapshots the database file into a sibling backups directory.
// Each snapshot is a .db file plus a .meta.json sidecar.
type BackupManager struct {
	db         *sql.DB
	dbPath     string
	backupsDir string
}

// Backups returns a manager for snapshots of this database.
func (s *SQLiteStorage) Backups() (*BackupManager, error) {
	dbPath, err := filepath.Abs(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	backupsDir := filepath.Join(filepath.Dir(dbPath), "backups")
	if err := os.MkdirAll(backupsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	return &BackupManager{db: s.db, dbPath: dbPath, backupsDir: backupsDir}, nil
}

// Create snapshots the database under the given tag. An empty tag is
// replaced by a timestamped one.
func (bm *BackupManager) Create(ctx context.Context, tag, description string) (*BackupInfo, error) {
	return bm.create(ctx, tag, description, false)
}

// AutoBackup snapshots the database before a bulk operation and prunes old
// automatic snapshots.
func (bm *BackupManager) AutoBackup(ctx context.Context, prefix string) (*BackupInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s", prefix, time.Now().Format("2006-01-02-150405"))
	info, err := bm.create(ctx, tag, fmt.Sprintf("Automatic backup before %s", prefix), true)
	if err != nil {
		return nil, fmt.Errorf("failed to create automatic backup: %w", err)
	}

	if err := bm.pruneAuto(ctx); err != nil {
		slog.Warn("failed to prune automatic backups", "error", err)
	}
	return info, nil
}

func (bm *BackupManager) create(ctx context.Context, tag, description string, auto bool) (*BackupInfo, error) {
	if tag == "" {
		tag = fmt.Sprintf("backup-%s", time.Now().Format("2006-01-02-150405"))
	}
	if err := validateBackupID(tag); err != nil {
		return nil, err
	}

	backupPath := bm.dataPath(tag)
	if _, err := os.Stat(backupPath); err == nil {
		return nil, ErrBackupExists
	}

	info := BackupInfo{
		ID:          tag,
		CreatedAt:   time.Now().UTC(),
		Description: description,
		IsAuto:      auto,
	}

	if err := bm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&info.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	counts := []struct {
		dest  *int
		query string
	}{
		{&info.Transactions, "SELECT COUNT(*) FROM transactions"},
		{&info.Categories, "SELECT COUNT(*) FROM categories"},
		{&info.Types, "SELECT COUNT(*) FROM transaction_types"},
	}
	for _, c := range counts {
		if err := bm.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	// VACUUM INTO writes a consistent, compacted copy even with WAL enabled.
	if _, err := bm.db.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	stat, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}
	info.FileSize = stat.Size()

	if err := writeJSONAtomic(bm.metaPath(tag), info); err != nil {
		if rmErr := os.Remove(backupPath); rmErr != nil {
			slog.Error("failed to remove backup after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	slog.Info("created backup", "id", tag, "size", info.FileSize, "auto", auto)
	return &info, nil
}

// List returns every readable snapshot, newest first.
func (bm *BackupManager) List(_ context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.backupsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}

		info, err := readMeta(filepath.Join(bm.backupsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable backup metadata", "file", entry.Name(), "error", err)
			continue
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Get returns the metadata of one snapshot.
func (bm *BackupManager) Get(_ context.Context, id string) (*BackupInfo, error) {
	if err := validateBackupID(id); err != nil {
		return nil, err
	}

	info, err := readMeta(bm.metaPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBackupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load backup metadata: %w", err)
	}
	return info, nil
}

// Restore replaces the database file with a snapshot. The storage the
// manager came from is closed and must be reopened by the caller.
func (bm *BackupManager) Restore(ctx context.Context, id string) error {
	if _, err := bm.Get(ctx, id); err != nil {
		return err
	}

	backupPath := bm.dataPath(id)
	if err := verifyIntegrity(ctx, backupPath); err != nil {
		slog.Error("backup failed integrity check", "id", id, "error", err)
		return ErrBackupCorrupted
	}

	if err := bm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	safety := bm.dbPath + ".restore-backup"
	if err := copyFile(bm.dbPath, safety); err != nil {
		return fmt.Errorf("failed to save current database: %w", err)
	}

	if err := copyFile(backupPath, bm.dbPath); err != nil {
		if restoreErr := copyFile(safety, bm.dbPath); restoreErr != nil {
			slog.Error("failed to put current database back after restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore backup: %w", err)
	}

	if err := os.Remove(safety); err != nil {
		slog.Error("failed to remove restore safety copy", "error", err)
	}

	slog.Info("restored backup", "id", id)
	return nil
}

// Delete removes a snapshot and its metadata.
func (bm *BackupManager) Delete(_ context.Context, id string) error {
	if err := validateBackupID(id); err != nil {
		return err
	}

	if err := os.Remove(bm.dataPath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("failed to remove backup file: %w", err)
	}

	if err := os.Remove(bm.metaPath(id)); err != nil {
		slog.Debug("failed to remove backup metadata", "error", err, "id", id)
	}
	return nil
}

func (bm *BackupManager) pruneAuto(ctx context.Context) error {
	backups, err := bm.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, b := range backups {
		if !b.IsAuto {
			continue
		}
		kept++
		if kept > maxAutoBackups {
			if err := bm.Delete(ctx, b.ID); err != nil {
				slog.Debug("failed to delete old automatic backup", "error", err, "id", b.ID)
			}
		}
	}
	return nil
}

func (bm *BackupManager) dataPath(id string) string {
	return filepath.Join(bm.backupsDir, id+".db")
}

func (bm *BackupManager) metaPath(id string) string {
	return filepath.Join(bm.backupsDir, id+".meta.json")
}

func validateBackupID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidBackupID, id)
	}
	return nil
}

func verifyIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

func readMeta(path string) (*BackupInfo, error) {
	// #nosec G304 - path is built from a validated backup id
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// copyFile copies through a temporary file and renames it into place.
func copyFile(src, dst string) error {
	// #nosec G304 - src is the database or a validated backup path
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmp := dst + ".tmp"
	// #nosec G304 - tmp sits next to a trusted destination
	destination, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
