package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/caixa/internal/cli"
	"github.com/Veraticus/caixa/internal/model"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"transacoes", "tx"},
		Short:   "Manage transactions",
		Example: `  # Record a paid grocery bill
  caixa transactions add --amount 120.35 --due 2020-07-10 --type despesa --category comida --status settled

  # List everything due in July 2020
  caixa transactions list --year 2020 --month 7

  # Mark a transaction as settled
  caixa transactions update 12 --status settled`,
	}

	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(getTransactionCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func addTransactionCmd() *cobra.Command {
	var (
		amount, due, typeName, category, description, status, notes string
		categoryID                                                  int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new transaction",
		Long: `Record a new transaction.

--category names a category that is found or created in the same
operation, matched by its upper-cased name and, when given, its
description.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			dueDate, err := parseDate(due)
			if err != nil {
				return err
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			typeID, err := resolveTypeID(ctx, a.store, typeName)
			if err != nil {
				return err
			}

			in := model.NewTransaction{
				Amount:  value,
				DueDate: dueDate,
				Status:  model.TransactionStatus(status),
				Notes:   notes,
				TypeID:  typeID,
			}
			if categoryID > 0 {
				in.CategoryID = &categoryID
			}
			if category != "" {
				in.Category = &model.CategoryDescriptor{Name: category}
				if description != "" {
					in.Category.Description = &description
				}
			}

			txn, err := a.transactions.Store(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Transação %d adicionada", txn.ID)))
			fmt.Fprintln(cmd.OutOrStdout(), cli.TransactionTable([]model.Transaction{*txn}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, never negative")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "transaction type id or name (receita, despesa)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name, created when missing")
	cmd.Flags().StringVar(&description, "category-description", "", "category description used when matching or creating the category")
	cmd.Flags().Int64Var(&categoryID, "category-id", 0, "existing category id")
	cmd.Flags().StringVarP(&status, "status", "s", string(model.StatusPending), "pending or settled")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("due")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var (
		year, month      int
		categoryID       int64
		typeName, status string
		summary          bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, latest due date first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if (year == 0) != (month == 0) {
				return fmt.Errorf("--year and --month must be given together")
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var query model.TransactionQuery
			if year != 0 {
				query.Year, query.Month = &year, &month
			}
			if categoryID > 0 {
				query.CategoryID = &categoryID
			}
			if typeName != "" {
				typeID, err := resolveTypeID(ctx, a.store, typeName)
				if err != nil {
					return err
				}
				query.TypeID = &typeID
			}
			if status != "" {
				s := model.TransactionStatus(status)
				query.Status = &s
			}

			txns, err := a.transactions.Index(ctx, query)
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Nenhuma transação encontrada"))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Transações (%d)", len(txns))))
			fmt.Fprintln(cmd.OutOrStdout(), cli.TransactionTable(txns))
			if summary {
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Resumo", cli.TransactionSummary(txns)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "year of the due date (with --month)")
	cmd.Flags().IntVarP(&month, "month", "m", 0, "month of the due date, 1-12 (with --year)")
	cmd.Flags().Int64Var(&categoryID, "category-id", 0, "only this category")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "only this transaction type (id or name)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "only pending or settled")
	cmd.Flags().BoolVar(&summary, "summary", false, "print income, expense and balance totals")

	return cmd
}

func getTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one transaction with its category and type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			txn, err := a.transactions.IndexByPK(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.TransactionTable([]model.Transaction{*txn}))
			return nil
		},
	}
}

func updateTransactionCmd() *cobra.Command {
	var amount, due, typeName, status, notes string
	var categoryID int64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch model.TransactionPatch
			flags := cmd.Flags()
			if flags.Changed("amount") {
				value, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				patch.Amount = &value
			}
			if flags.Changed("due") {
				d, err := parseDate(due)
				if err != nil {
					return err
				}
				patch.DueDate = &d
			}
			if flags.Changed("status") {
				s := model.TransactionStatus(status)
				patch.Status = &s
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if flags.Changed("category-id") {
				patch.CategoryID = &categoryID
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if flags.Changed("type") {
				typeID, err := resolveTypeID(ctx, a.store, typeName)
				if err != nil {
					return err
				}
				patch.TypeID = &typeID
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}

			txn, err := a.transactions.Update(ctx, id, patch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Transação %d atualizada", txn.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&due, "due", "d", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "new transaction type (id or name)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "pending or settled")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "new notes")
	cmd.Flags().Int64Var(&categoryID, "category-id", 0, "existing category id")

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.transactions.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			if removed == 0 {
				return fmt.Errorf("transaction %d not found", id)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Transação %d removida", id)))
			return nil
		},
	}
}
