package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MarketStatus string

const (
	MarketStatusOpened    MarketStatus = "OPENED"
	MarketStatusClosed    MarketStatus = "CLOSED"
	MarketStatusSettled   MarketStatus = "SETTLED"
	MarketStatusConfirmed MarketStatus = "CONFIRMED"
)

type MarketType string

const (
	MarketTypeHilo       MarketType = "HILO"
	MarketTypeTokenFight MarketType = "TOKEN_FIGHT"
	MarketTypeCustom     MarketType = "CUSTOM"
)

// MaxOutcomes caps the outcome list at creation time.
const MaxOutcomes = 10

// FeeDenominator is the basis-point scale for the service fee.
const FeeDenominator = 10000

// Market represents one bettable event and its pooled stakes.
type Market struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	Title       string     `gorm:"size:500;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	ImageLink   string     `gorm:"size:500" json:"image_link"`
	MarketType  MarketType `gorm:"size:50;not null;index" json:"market_type"`

	// Oracle feed handles (e.g. "SOL/USD"). AssetB is only set for TOKEN_FIGHT.
	AssetA string `gorm:"size:50" json:"asset_a,omitempty"`
	AssetB string `gorm:"size:50" json:"asset_b,omitempty"`

	// Time window, unix seconds. OpenTime <= CloseTime <= SettleTime.
	OpenTime   uint64 `gorm:"not null" json:"open_time"`
	CloseTime  uint64 `gorm:"not null" json:"close_time"`
	SettleTime uint64 `gorm:"not null" json:"settle_time"`

	ServiceFeeBps  uint16 `gorm:"not null" json:"service_fee_bps"`
	MinBet         uint64 `gorm:"not null" json:"min_bet"`
	MaxBet         uint64 `gorm:"not null" json:"max_bet"`
	TotalMaxBet    uint64 `gorm:"not null" json:"total_max_bet"`
	TotalBetAmount uint64 `gorm:"not null;default:0" json:"total_bet_amount"`

	Outcomes          StringVec `gorm:"type:text;not null" json:"outcomes"`
	AmountsPerOutcome AmountVec `gorm:"type:text;not null" json:"amounts_per_outcome"`

	// Price snapshots captured at close/settle for oracle-backed market types.
	FinalPriceAClosed  *decimal.Decimal `gorm:"type:decimal(20,8)" json:"final_price_a_closed,omitempty"`
	FinalPriceBClosed  *decimal.Decimal `gorm:"type:decimal(20,8)" json:"final_price_b_closed,omitempty"`
	FinalPriceASettled *decimal.Decimal `gorm:"type:decimal(20,8)" json:"final_price_a_settled,omitempty"`
	FinalPriceBSettled *decimal.Decimal `gorm:"type:decimal(20,8)" json:"final_price_b_settled,omitempty"`

	WinningOutcome *uint8       `json:"winning_outcome,omitempty"`
	Status         MarketStatus `gorm:"size:50;not null;default:OPENED;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Market) TableName() string {
	return "markets"
}

// CreateMarketRequest is the admin request to open a new market.
type CreateMarketRequest struct {
	ID            string     `json:"id" binding:"required,max=64"`
	Title         string     `json:"title" binding:"required,max=500"`
	Description   string     `json:"description"`
	ImageLink     string     `json:"image_link" binding:"max=500"`
	MarketType    MarketType `json:"market_type" binding:"required,oneof=HILO TOKEN_FIGHT CUSTOM"`
	AssetA        string     `json:"asset_a"`
	AssetB        string     `json:"asset_b"`
	OpenTime      uint64     `json:"open_time" binding:"required"`
	CloseTime     uint64     `json:"close_time" binding:"required"`
	SettleTime    uint64     `json:"settle_time" binding:"required"`
	ServiceFeeBps uint16     `json:"service_fee_bps"`
	MinBet        uint64     `json:"min_bet" binding:"required"`
	MaxBet        uint64     `json:"max_bet" binding:"required"`
	TotalMaxBet   uint64     `json:"total_max_bet" binding:"required"`
	Outcomes      []string   `json:"outcomes" binding:"required,min=1"`
}

// PlaceBetRequest is a participant's stake on one outcome. The deposit is
// signed and submitted client-side; the engine verifies the transaction
// on-chain before crediting the stake.
type PlaceBetRequest struct {
	OutcomeIndex       uint8  `json:"outcome_index"`
	Amount             uint64 `json:"amount" binding:"required"`
	DepositTxSignature string `json:"deposit_tx_signature" binding:"required"`
}

// ConfirmWinnerRequest fixes the winning outcome of a settled market.
type ConfirmWinnerRequest struct {
	WinningOutcome uint8 `json:"winning_outcome"`
}
