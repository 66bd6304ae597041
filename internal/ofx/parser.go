// Package ofx reads OFX/QFX bank and credit card statements into ledger
// transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/caixa/internal/model"
)

// Categories implied by an OFX transaction type.
const (
	CategoryInterest = "JUROS"
	CategoryFees     = "TARIFAS"
	CategoryCash     = "SAQUE"
)

const maxNotesLength = 500

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement line ready to be stored.
type Entry struct {
	FITID       string
	AccountID   string
	Transaction model.NewTransaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML exports sometimes drop the closing bracket of a bare tag line
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns one entry per statement line,
// in file order.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var (
		entries           []Entry
		bankStmts, ccStmts int
	)

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		entries = append(entries, p.convertList(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		entries = append(entries, p.convertList(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))...)
	}

	slog.InfoContext(ctx, "parsed OFX file",
		"total_transactions", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, accountID string) []Entry {
	entries := make([]Entry, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		entries = append(entries, Entry{
			FITID:       string(ofxTx.FiTID),
			AccountID:   accountID,
			Transaction: p.convertTransaction(ofxTx),
		})
	}
	return entries
}

// convertTransaction maps a statement line onto a settled transaction.
// OFX signs debits negative; the ledger stores the magnitude and records the
// direction as the transaction type.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) model.NewTransaction {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)

	typeID := model.TypeIncomeID
	if amount.IsNegative() {
		typeID = model.TypeExpenseID
	}

	posted := ofxTx.DtPosted.Time
	txn := model.NewTransaction{
		Amount:  amount.Abs(),
		DueDate: time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		Status:  model.StatusSettled,
		Notes:   truncate(p.extractMerchantName(ofxTx), maxNotesLength),
		TypeID:  typeID,
	}

	if name := impliedCategory(ofxTx.TrnType); name != "" {
		txn.Category = &model.CategoryDescriptor{Name: name}
	}

	return txn
}

// trnType is declared as any because ofxgo does not export its trnType type.
func impliedCategory(trnType any) string {
	switch trnType {
	case ofxgo.TrnTypeInt, ofxgo.TrnTypeDiv:
		return CategoryInterest
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
		return CategoryFees
	case ofxgo.TrnTypeATM, ofxgo.TrnTypeCash:
		return CategoryCash
	default:
		return ""
	}
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// MEMO carries better merchant info when NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
		"COMPRA CARTAO ",
		"PAGAMENTO ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " or "DD/MM " date
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
		"PIX",
		"TED",
		"DOC",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
