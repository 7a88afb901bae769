package repositories

import (
	"errors"
	"fmt"
	"io"
)

// ErrBackupUnsupported is returned for stores that delegate backups to their
// own tooling (sqlite3 .backup, pg_dump).
var ErrBackupUnsupported = errors.New("backup is only supported for the badger store")

// Backuper is implemented by stores that can stream a full copy of their data
type Backuper interface {
	Backup(w io.Writer) error
	Restore(r io.Reader) error
}

// Backup writes a full badger backup of the post store to w
func (r *BadgerPostRepository) Backup(w io.Writer) error {
	if _, err := r.db.Backup(w, 0); err != nil {
		return fmt.Errorf("backup badger: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup. Keys present in the backup
// overwrite existing ones.
func (r *BadgerPostRepository) Restore(rd io.Reader) error {
	if err := r.db.Load(rd, 16); err != nil {
		return fmt.Errorf("restore badger: %w", err)
	}
	return nil
}

// BackupTo writes a backup of repo to w if the store supports it
func BackupTo(repo PostRepository, w io.Writer) error {
	b, ok := repo.(Backuper)
	if !ok {
		return ErrBackupUnsupported
	}
	return b.Backup(w)
}

// RestoreFrom loads a backup into repo if the store supports it
func RestoreFrom(repo PostRepository, rd io.Reader) error {
	b, ok := repo.(Backuper)
	if !ok {
		return ErrBackupUnsupported
	}
	return b.Restore(rd)
}
