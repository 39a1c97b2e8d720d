package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hirosato/trade-ledger/backend/internal/domain/ledger"
	"github.com/hirosato/trade-ledger/backend/internal/domain/party"
)

const (
	partyProfileSK   = "PROFILE"
	partiesGSI1PK    = "PARTIES"
	transactionSKTag = "TXN#"
	gsi1Index        = "GSI1"

	itemTypeParty       = "party"
	itemTypeTransaction = "transaction"
)

func partyPK(partyID string) string {
	return fmt.Sprintf("PARTY#%s", partyID)
}

func partyGSI1SK(p *party.Party) string {
	return fmt.Sprintf("%s#%s#%s", p.Kind, p.Name, p.PartyID)
}

func transactionSK(date, transactionID string) string {
	return fmt.Sprintf("%s%s#%s", transactionSKTag, date, transactionID)
}

func transactionGSI1PK(transactionID string) string {
	return fmt.Sprintf("TXN#%s", transactionID)
}

// partyItem is the stored shape of a party profile. Amounts are kept as decimal strings.
type partyItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
	Type   string `dynamodbav:"Type"`

	PartyID        string    `dynamodbav:"partyId"`
	Kind           string    `dynamodbav:"kind"`
	Name           string    `dynamodbav:"name"`
	Phone          string    `dynamodbav:"phone,omitempty"`
	VehicleNumber  string    `dynamodbav:"vehicleNumber,omitempty"`
	OpeningBalance string    `dynamodbav:"openingBalance"`
	Currency       string    `dynamodbav:"currency"`
	CreatedAt      time.Time `dynamodbav:"createdAt"`
	UpdatedAt      time.Time `dynamodbav:"updatedAt"`
}

func newPartyItem(p *party.Party) partyItem {
	return partyItem{
		PK:             partyPK(p.PartyID),
		SK:             partyProfileSK,
		GSI1PK:         partiesGSI1PK,
		GSI1SK:         partyGSI1SK(p),
		Type:           itemTypeParty,
		PartyID:        p.PartyID,
		Kind:           string(p.Kind),
		Name:           p.Name,
		Phone:          p.Phone,
		VehicleNumber:  p.VehicleNumber,
		OpeningBalance: p.OpeningBalance.String(),
		Currency:       p.Currency,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (i partyItem) toParty() (*party.Party, error) {
	opening, ok := ledger.ParseAmount(i.OpeningBalance)
	if !ok {
		return nil, fmt.Errorf("party %s has unreadable opening balance %q", i.PartyID, i.OpeningBalance)
	}
	return &party.Party{
		PartyID:        i.PartyID,
		Kind:           party.Kind(i.Kind),
		Name:           i.Name,
		Phone:          i.Phone,
		VehicleNumber:  i.VehicleNumber,
		OpeningBalance: opening,
		Currency:       i.Currency,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}, nil
}

// transactionItem is the stored shape of a ledger transaction.
// GSI1 maps a transaction ID back to its party so it can be found without its date.
type transactionItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
	Type   string `dynamodbav:"Type"`

	TransactionID string    `dynamodbav:"transactionId"`
	PartyID       string    `dynamodbav:"partyId"`
	Date          string    `dynamodbav:"date"`
	TxType        string    `dynamodbav:"type"`
	TotalAmount   string    `dynamodbav:"totalAmount"`
	PaymentCash   string    `dynamodbav:"paymentCash"`
	PaymentUpi    string    `dynamodbav:"paymentUpi"`
	Notes         string    `dynamodbav:"notes,omitempty"`
	CreatedAt     time.Time `dynamodbav:"createdAt"`
}

func newTransactionItem(tx *ledger.Transaction) transactionItem {
	return transactionItem{
		PK:            partyPK(tx.PartyID),
		SK:            transactionSK(tx.Date, tx.TransactionID),
		GSI1PK:        transactionGSI1PK(tx.TransactionID),
		GSI1SK:        partyPK(tx.PartyID),
		Type:          itemTypeTransaction,
		TransactionID: tx.TransactionID,
		PartyID:       tx.PartyID,
		Date:          tx.Date,
		TxType:        string(tx.Type),
		TotalAmount:   tx.TotalAmount.String(),
		PaymentCash:   tx.PaymentCash.String(),
		PaymentUpi:    tx.PaymentUpi.String(),
		Notes:         tx.Notes,
		CreatedAt:     tx.CreatedAt,
	}
}

// toTransaction reads amounts the same lenient way as JSON input, remembering unreadable ones
func (i transactionItem) toTransaction() ledger.Transaction {
	tx := ledger.Transaction{
		TransactionID: i.TransactionID,
		PartyID:       i.PartyID,
		Date:          i.Date,
		Type:          ledger.TransactionType(i.TxType),
		Notes:         i.Notes,
		CreatedAt:     i.CreatedAt,
	}

	amounts := []struct {
		field string
		raw   string
		dst   *decimal.Decimal
	}{
		{"totalAmount", i.TotalAmount, &tx.TotalAmount},
		{"paymentCash", i.PaymentCash, &tx.PaymentCash},
		{"paymentUpi", i.PaymentUpi, &tx.PaymentUpi},
	}
	for _, a := range amounts {
		amount, ok := ledger.ParseAmount(a.raw)
		if !ok {
			tx.MarkCoerced(a.field)
		}
		*a.dst = amount
	}
	return tx
}
