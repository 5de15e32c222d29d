package models

import (
	"time"

	"github.com/google/uuid"
)

// Position tracks one bettor's stake split across the outcomes of one market.
// It is created lazily on the first bet and logically closed once claimed.
type Position struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID          string    `gorm:"size:64;not null;uniqueIndex:idx_market_bettor" json:"market_id"`
	Bettor            string    `gorm:"size:64;not null;uniqueIndex:idx_market_bettor;index" json:"bettor"`
	AmountsPerOutcome AmountVec `gorm:"type:text;not null" json:"amounts_per_outcome"`
	TotalBetAmount    uint64    `gorm:"not null;default:0" json:"total_bet_amount"`
	Claimed           bool      `gorm:"not null;default:false" json:"claimed"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// PositionResponse is the API view of a position.
type PositionResponse struct {
	ID                string    `json:"id"`
	MarketID          string    `json:"market_id"`
	Bettor            string    `json:"bettor"`
	AmountsPerOutcome []uint64  `json:"amounts_per_outcome"`
	TotalBetAmount    uint64    `json:"total_bet_amount"`
	Claimed           bool      `json:"claimed"`
	CreatedAt         time.Time `json:"created_at"`
}

// ToResponse converts a Position to its API response format.
func (p *Position) ToResponse() *PositionResponse {
	return &PositionResponse{
		ID:                p.ID.String(),
		MarketID:          p.MarketID,
		Bettor:            p.Bettor,
		AmountsPerOutcome: p.AmountsPerOutcome,
		TotalBetAmount:    p.TotalBetAmount,
		Claimed:           p.Claimed,
		CreatedAt:         p.CreatedAt,
	}
}
