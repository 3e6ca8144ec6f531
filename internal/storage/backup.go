package storage

import (
	"fmt"
	"io"
	"os"
)

// Restore replaces the database file with the one at src. The current file
// is kept next to it with a .bak suffix so a bad restore is recoverable.
// The connection is closed for the swap and reopened afterwards; the write
// lock holds off concurrent queries and probes until the swap is done.
func (s *SQLiteStore) Restore(src string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	if _, err := os.Stat(s.dbPath); err == nil {
		if err := copyFile(s.dbPath, s.dbPath+".bak"); err != nil {
			return fmt.Errorf("back up current database: %w", err)
		}
	}

	if err := copyFile(src, s.dbPath); err != nil {
		// Reopen the old file so the store stays usable.
		if reopenErr := s.reopen(); reopenErr != nil {
			return fmt.Errorf("restore database: %w (reopen failed: %v)", err, reopenErr)
		}
		return fmt.Errorf("restore database: %w", err)
	}

	if err := s.reopen(); err != nil {
		return fmt.Errorf("reopen restored database: %w", err)
	}
	return nil
}

func (s *SQLiteStore) reopen() error {
	reopened, err := NewSQLiteStore(s.dbPath)
	if err != nil {
		return err
	}
	s.db = reopened.db
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
