package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/caixa/internal/model"
	"github.com/Veraticus/caixa/internal/storage"
)

const dateLayout = "2006-01-02"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// FormatAmount renders an amount with two decimals, colored and signed by
// the transaction type.
func FormatAmount(amount decimal.Decimal, typeID int64) string {
	switch typeID {
	case model.TypeExpenseID:
		return ExpenseStyle.Render("-" + amount.StringFixed(2))
	case model.TypeIncomeID:
		return IncomeStyle.Render("+" + amount.StringFixed(2))
	default:
		return amount.StringFixed(2)
	}
}

// TransactionTable renders transactions in the order given.
func TransactionTable(txns []model.Transaction) string {
	t := newTable("ID", "VENCIMENTO", "VALOR", "TIPO", "CATEGORIA", "SITUAÇÃO", "OBSERVAÇÃO")
	for _, txn := range txns {
		typeName := strconv.FormatInt(txn.TypeID, 10)
		if txn.Type != nil {
			typeName = txn.Type.Name
		}
		category := "-"
		if txn.Category != nil {
			category = txn.Category.Name
		} else if txn.CategoryID != nil {
			category = "#" + strconv.FormatInt(*txn.CategoryID, 10)
		}
		t.Row(
			strconv.FormatInt(txn.ID, 10),
			txn.DueDate.Format(dateLayout),
			FormatAmount(txn.Amount, txn.TypeID),
			typeName,
			category,
			string(txn.Status),
			txn.Notes,
		)
	}
	return t.Render()
}

// TransactionSummary totals income and expenses by the seeded types.
func TransactionSummary(txns []model.Transaction) string {
	income, expense := decimal.Zero, decimal.Zero
	for _, txn := range txns {
		switch txn.TypeID {
		case model.TypeIncomeID:
			income = income.Add(txn.Amount)
		case model.TypeExpenseID:
			expense = expense.Add(txn.Amount)
		}
	}
	balance := income.Sub(expense)

	balanceStyle := IncomeStyle
	if balance.IsNegative() {
		balanceStyle = ExpenseStyle
	}

	return strings.Join([]string{
		fmt.Sprintf("Receitas: %s", IncomeStyle.Render(income.StringFixed(2))),
		fmt.Sprintf("Despesas: %s", ExpenseStyle.Render(expense.StringFixed(2))),
		fmt.Sprintf("Saldo:    %s", balanceStyle.Render(balance.StringFixed(2))),
	}, "\n")
}

// CategoryTable renders categories with their linked types.
func CategoryTable(categories []model.Category) string {
	t := newTable("ID", "NOME", "DESCRIÇÃO", "TIPOS")
	for _, c := range categories {
		desc := ""
		if c.Description != nil {
			desc = *c.Description
		}
		names := make([]string, 0, len(c.Types))
		for _, tt := range c.Types {
			names = append(names, tt.Name)
		}
		t.Row(strconv.FormatInt(c.ID, 10), c.Name, desc, strings.Join(names, ", "))
	}
	return t.Render()
}

// TypeTable renders transaction types.
func TypeTable(types []model.TransactionType) string {
	t := newTable("ID", "NOME")
	for _, tt := range types {
		t.Row(strconv.FormatInt(tt.ID, 10), tt.Name)
	}
	return t.Render()
}

// BackupTable renders backups newest first.
func BackupTable(backups []storage.BackupInfo) string {
	t := newTable("ID", "CRIADO EM", "TRANSAÇÕES", "CATEGORIAS", "TAMANHO", "DESCRIÇÃO")
	for _, b := range backups {
		id := b.ID
		if b.IsAuto {
			id += " (auto)"
		}
		t.Row(
			id,
			b.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(b.Transactions),
			strconv.Itoa(b.Categories),
			formatSize(b.FileSize),
			b.Description,
		)
	}
	return t.Render()
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
