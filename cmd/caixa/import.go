package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/caixa/internal/cli"
	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import settled transactions from OFX or QFX statements exported by your bank.

Debits become DESPESA and credits RECEITA; the amount is stored without
sign. Interest, fees and cash withdrawals are filed under JUROS, TARIFAS
and SAQUE. An automatic backup is taken before anything is written.`,
		Example: `  # Import one statement
  caixa import ~/Downloads/extrato_2024_01.ofx

  # Preview every statement in a directory
  caixa import --dry-run ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Parse and summarize without saving")
	cmd.Flags().Bool("no-backup", false, "Skip the automatic backup before importing")

	return cmd
}

func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("no files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func parseStatements(cmd *cobra.Command, files []string) []ofx.Entry {
	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var entries []ofx.Entry

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			slog.Error("failed to open file", "file", path, "error", err)
			continue
		}

		parsed, err := parser.ParseFile(cmd.Context(), f)
		_ = f.Close()
		if err != nil {
			slog.Error("failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, e := range parsed {
			key := e.AccountID + "/" + e.FITID
			if e.FITID != "" && seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, e)
			added++
		}

		slog.Info("processed file",
			"file", filepath.Base(path),
			"transactions_found", len(parsed),
			"added", added,
			"duplicates", len(parsed)-added)
	}

	return entries
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noBackup, _ := cmd.Flags().GetBool("no-backup")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	entries := parseStatements(cmd, files)
	if len(entries) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("Nenhuma transação encontrada nos arquivos"))
		return nil
	}

	if dryRun {
		preview := make([]model.Transaction, 0, len(entries))
		for i, e := range entries {
			preview = append(preview, model.Transaction{
				ID:      int64(i + 1),
				DueDate: e.Transaction.DueDate,
				Amount:  e.Transaction.Amount,
				TypeID:  e.Transaction.TypeID,
				Status:  e.Transaction.Status,
				Notes:   e.Transaction.Notes,
			})
		}
		fmt.Fprintln(out, cli.TransactionTable(preview))
		fmt.Fprintln(out, cli.RenderBox("Resumo", cli.TransactionSummary(preview)))
		fmt.Fprintln(out, cli.FormatWarning("Dry run: nada foi salvo"))
		return nil
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !noBackup {
		backups, err := a.store.Backups()
		if err != nil {
			return fmt.Errorf("failed to open backups: %w", err)
		}
		info, err := backups.AutoBackup(ctx, "import")
		if err != nil {
			return fmt.Errorf("failed to back up before import: %w", err)
		}
		slog.Info("created automatic backup", "id", info.ID)
	}

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Importando"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var stored, failed int
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		if _, err := a.transactions.Store(ctx, e.Transaction); err != nil {
			failed++
			slog.Error("failed to store transaction",
				"fitid", e.FITID,
				"account", e.AccountID,
				"error", err)
		} else {
			stored++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d transações importadas de %d arquivo(s)", stored, len(files))))
	if failed > 0 {
		fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%d transações falharam", failed)))
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("import interrupted after %d transactions: %w", stored+failed, err)
	}
	return nil
}
