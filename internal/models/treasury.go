package models

import (
	"time"

	"github.com/google/uuid"
)

// Treasury accumulates service fees deducted from payouts. Single row.
type Treasury struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Amount    uint64    `gorm:"not null;default:0" json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Treasury) TableName() string {
	return "treasury"
}

type TreasuryTransactionType string

const (
	TreasuryTransactionTypeDeposit TreasuryTransactionType = "DEPOSIT"
	TreasuryTransactionTypePayout  TreasuryTransactionType = "PAYOUT"
	TreasuryTransactionTypeFee     TreasuryTransactionType = "FEE"
)

type TreasuryTransactionStatus string

const (
	TreasuryTransactionStatusPending   TreasuryTransactionStatus = "PENDING"
	TreasuryTransactionStatusConfirmed TreasuryTransactionStatus = "CONFIRMED"
)

// TreasuryTransaction records one value movement through the escrow vault.
// Outbound transfers are written PENDING before the funds move and flipped
// to CONFIRMED with the on-chain signature afterwards, so a record stuck in
// PENDING marks a transfer that needs operator reconciliation.
type TreasuryTransaction struct {
	ID              uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID        string                    `gorm:"size:64;not null;index" json:"market_id"`
	TransactionType TreasuryTransactionType   `gorm:"size:50;not null" json:"transaction_type"`
	Status          TreasuryTransactionStatus `gorm:"size:50;not null;default:PENDING" json:"status"`
	Wallet          string                    `gorm:"size:64" json:"wallet"`
	Amount          uint64                    `gorm:"not null" json:"amount"`
	TxSignature     *string                   `gorm:"size:255" json:"tx_signature,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

func (TreasuryTransaction) TableName() string {
	return "treasury_transactions"
}
