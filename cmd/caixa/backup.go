package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/caixa/internal/cli"
	"github.com/Veraticus/caixa/internal/storage"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
		Long: `Create, list, restore, and delete database backups.

Backups are consistent snapshots stored in a backups directory next to
the database. The last five automatic backups taken by import are kept.`,
		Example: `  # Snapshot before a cleanup
  caixa backup create --tag before-cleanup

  # Roll back
  caixa backup restore before-cleanup`,
	}

	cmd.AddCommand(createBackupCmd())
	cmd.AddCommand(listBackupsCmd())
	cmd.AddCommand(restoreBackupCmd())
	cmd.AddCommand(deleteBackupCmd())

	return cmd
}

// withBackups runs fn with the backup manager of the configured database.
func withBackups(cmd *cobra.Command, fn func(*storage.BackupManager) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager, err := store.Backups()
	if err != nil {
		return fmt.Errorf("failed to open backups: %w", err)
	}
	return fn(manager)
}

func createBackupCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the current database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackups(cmd, func(bm *storage.BackupManager) error {
				info, err := bm.Create(cmd.Context(), tag, description)
				if err != nil {
					return fmt.Errorf("failed to create backup: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Backup %s criado", info.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "backup name (auto-generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the backup is for")

	return cmd
}

func listBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackups(cmd, func(bm *storage.BackupManager) error {
				backups, err := bm.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Nenhum backup encontrado"))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.BackupTable(backups))
				return nil
			})
		},
	}
}

func restoreBackupCmd() *cobra.Command {
	var skipSafety bool

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the database with a backup",
		Long: `Replace the database with a backup.

A backup of the current state is taken first unless --no-safety is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackups(cmd, func(bm *storage.BackupManager) error {
				if _, err := bm.Get(cmd.Context(), args[0]); err != nil {
					return err
				}
				if !skipSafety {
					info, err := bm.AutoBackup(cmd.Context(), "restore")
					if err != nil {
						return fmt.Errorf("failed to back up current state: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Estado atual salvo em %s", info.ID)))
				}
				if err := bm.Restore(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to restore backup: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Backup %s restaurado", args[0])))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipSafety, "no-safety", false, "do not back up the current state first")

	return cmd
}

func deleteBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a backup",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackups(cmd, func(bm *storage.BackupManager) error {
				if err := bm.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Backup %s removido", args[0])))
				return nil
			})
		},
	}
}
