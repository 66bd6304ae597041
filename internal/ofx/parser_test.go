package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/caixa/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240130120000[0:GMT]
<TRNAMT>3200.00
<FITID>2024013001
<PAYEE>
<NAME>ACME LTDA
<ADDR1>RUA A 1
<CITY>SAO PAULO
<STATE>SP
<POSTALCODE>01000000
<PHONE>1130000000
</PAYEE>
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>-12.90
<FITID>2024013101
<NAME>MONTHLY FEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 5,
			expectedError: false,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
			expectedError: false,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedCount: 0,
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedCount: 0,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			reader := strings.NewReader(tt.ofxData)

			entries, err := parser.ParseFile(context.Background(), reader)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, entries, tt.expectedCount)
			}
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	parser := NewParser()

	entries, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, entries, 5)

	starbucks := entries[0]
	assert.Equal(t, "2024011501", starbucks.FITID)
	assert.Equal(t, "1234567890", starbucks.AccountID)
	assert.Equal(t, "STARBUCKS STORE #1234", starbucks.Transaction.Notes)
	assert.True(t, decimal.RequireFromString("25.50").Equal(starbucks.Transaction.Amount))
	assert.Equal(t, model.TypeExpenseID, starbucks.Transaction.TypeID)
	assert.Equal(t, model.StatusSettled, starbucks.Transaction.Status)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), starbucks.Transaction.DueDate)
	assert.Nil(t, starbucks.Transaction.Category)

	check := entries[2]
	assert.Equal(t, "CHECK #1234", check.Transaction.Notes)
	assert.True(t, decimal.NewFromInt(500).Equal(check.Transaction.Amount))

	payroll := entries[3]
	assert.Equal(t, "ACME LTDA", payroll.Transaction.Notes, "payee wins over name")
	assert.True(t, decimal.NewFromInt(3200).Equal(payroll.Transaction.Amount))
	assert.Equal(t, model.TypeIncomeID, payroll.Transaction.TypeID)

	fee := entries[4]
	require.NotNil(t, fee.Transaction.Category)
	assert.Equal(t, CategoryFees, fee.Transaction.Category.Name)
	assert.Equal(t, model.TypeExpenseID, fee.Transaction.TypeID)
}

func TestParseCreditCardTransactions(t *testing.T) {
	parser := NewParser()

	entries, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	amazon := entries[0]
	assert.Equal(t, "CC2024011001", amazon.FITID)
	assert.Equal(t, "4111111111111111", amazon.AccountID)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", amazon.Transaction.Notes)
	assert.True(t, decimal.RequireFromString("45.99").Equal(amazon.Transaction.Amount))

	netflix := entries[1]
	assert.Equal(t, "NETFLIX.COM", netflix.Transaction.Notes)
	assert.True(t, decimal.NewFromInt(15).Equal(netflix.Transaction.Amount))
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	got := parser.preprocessOFX("\n\n<SEVERITY>Info</SEVERITY>\n<BANKTRANLIST\n")
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<BANKTRANLIST>\n", got)
}

func TestExtractMerchantName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		memo     string
		expected string
	}{
		{
			name:     "remove POS prefix",
			input:    "POS PURCHASE STARBUCKS",
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			input:    "DEBIT CARD PURCHASE WHOLE FOODS",
			expected: "WHOLE FOODS",
		},
		{
			name:     "remove card purchase prefix",
			input:    "COMPRA CARTAO PADARIA REAL",
			expected: "PADARIA REAL",
		},
		{
			name:     "drop leading date",
			input:    "12/03 MERCADO LIVRE",
			expected: "MERCADO LIVRE",
		},
		{
			name:     "generic name falls back to memo",
			input:    "PIX",
			memo:     "JOAO DA SILVA",
			expected: "JOAO DA SILVA",
		},
		{
			name:     "keep clean name",
			input:    "NETFLIX.COM",
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			input:    "  AMAZON.COM  ",
			expected: "AMAZON.COM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
				Memo: ofxgo.String(tt.memo),
			}
			assert.Equal(t, tt.expected, parser.extractMerchantName(tx))
		})
	}
}

func TestImpliedCategory(t *testing.T) {
	assert.Equal(t, CategoryInterest, impliedCategory(ofxgo.TrnTypeInt))
	assert.Equal(t, CategoryFees, impliedCategory(ofxgo.TrnTypeSrvChg))
	assert.Equal(t, CategoryCash, impliedCategory(ofxgo.TrnTypeATM))
	assert.Empty(t, impliedCategory(ofxgo.TrnTypeDebit))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ção", truncate("çãoxyz", 3))
}
