package kv

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

const (
	backupsDirectoryName = "backups"
	backupDirPermissions = 0700
)

// Backup copies the database to outputDir, or to the backups directory of the
// datadir when outputDir is empty. The file is named after the finalized epoch:
// $DATADIR/backups/forkchoice_at_epoch_0000345.backup
func (s *Store) Backup(ctx context.Context, outputDir string, permissionOverride bool) error {
	ctx, span := trace.StartSpan(ctx, "BeaconDB.Backup")
	defer span.End()

	backupsDir := outputDir
	if backupsDir == "" {
		backupsDir = path.Join(s.databasePath, backupsDirectoryName)
	}
	if err := handleBackupDir(backupsDir, permissionOverride); err != nil {
		return err
	}
	finalized, err := s.FinalizedCheckpoint(ctx)
	if err != nil {
		return err
	}
	backupPath := path.Join(backupsDir, fmt.Sprintf("forkchoice_at_epoch_%07d.backup", finalized.Epoch))
	log.WithField("backup", backupPath).Info("Writing backup database")
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(backupPath, 0600)
	})
}

// handleBackupDir creates the backups directory, or checks that an existing one
// is only accessible by its owner. permissionOverride fixes a too open directory.
func handleBackupDir(dir string, permissionOverride bool) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, backupDirPermissions)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("backup path %s is not a directory", dir)
	}
	if info.Mode().Perm() == backupDirPermissions {
		return nil
	}
	if !permissionOverride {
		return fmt.Errorf("backup directory %s has permissions %o, want %o", dir, info.Mode().Perm(), backupDirPermissions)
	}
	return errors.Wrap(os.Chmod(dir, backupDirPermissions), "could not change backup directory permissions")
}
