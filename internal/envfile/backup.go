package envfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	backupDirName   = ".env.backups"
	backupTimestamp = "20060102.15.04.05"
	backupKeepDays  = 3
)

// Backup copies the .env file into a timestamped sibling under .env.backups
// and prunes backups older than three days. A missing .env is not an error;
// Backup then returns "".
func (s *Store) Backup(now time.Time) (string, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return "", nil
	}

	backupDir := filepath.Join(s.Dir(), backupDirName)
	if err := os.MkdirAll(backupDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dst := filepath.Join(backupDir, ".env."+now.Format(backupTimestamp))
	if err := copyFile(s.path, dst); err != nil {
		return "", fmt.Errorf("failed to back up .env: %w", err)
	}

	pruneOldBackups(backupDir, now)
	return dst, nil
}

// LatestBackup returns the path of the newest backup, or "" when none
// exist. The timestamp format sorts lexicographically.
func (s *Store) LatestBackup() (string, error) {
	backupDir := filepath.Join(s.Dir(), backupDirName)
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var latest string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), ".env.") {
			continue
		}
		if e.Name() > latest {
			latest = e.Name()
		}
	}
	if latest == "" {
		return "", nil
	}
	return filepath.Join(backupDir, latest), nil
}

func pruneOldBackups(backupDir string, now time.Time) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return
	}
	threshold := now.AddDate(0, 0, -backupKeepDays)
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), ".env.") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(threshold) {
			_ = os.Remove(filepath.Join(backupDir, e.Name()))
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
