package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blog/app/repositories"

	"github.com/spf13/cobra"
)

var (
	backupOut  string
	restoreYes bool
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Back up or restore the badger post store",
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a full backup of the post store",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := backupOut
		if out == "" {
			out = filepath.Join("data", "backups", fmt.Sprintf("backup_%d.db", time.Now().Unix()))
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
		defer f.Close()

		if err := repositories.BackupTo(store, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database backed up to %s\n", out)
		return nil
	},
}

var dbRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Load a backup into the post store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open backup file: %w", err)
		}
		defer f.Close()

		if !restoreYes {
			fmt.Fprint(cmd.OutOrStdout(), "Entries in the backup overwrite existing ones. Continue? [y/N] ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.TrimSpace(answer); a != "y" && a != "Y" {
				fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled")
				return nil
			}
		}

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := repositories.RestoreFrom(store, f); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database restored")
		return nil
	},
}

func openStore(cmd *cobra.Command) (repositories.PostRepository, error) {
	return repositories.Open(cmd.Context(), repositories.Options{
		Driver: cfg.DB.Driver,
		Path:   cfg.DB.Path,
		DSN:    cfg.DB.DSN,
	})
}

func init() {
	dbBackupCmd.Flags().StringVarP(&backupOut, "out", "o", "", "backup file (default data/backups/backup_<unix>.db)")
	dbRestoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "do not ask for confirmation")

	dbCmd.AddCommand(dbBackupCmd)
	dbCmd.AddCommand(dbRestoreCmd)
}
