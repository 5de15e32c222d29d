package repository

import (
	"context"
	"errors"

	"betting-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying connection for transaction scoping.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateMarket inserts a new market record
func (r *Repository) CreateMarket(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Create(market).Error
}

// GetMarketByID retrieves a market by ID
func (r *Repository) GetMarketByID(ctx context.Context, marketID string) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).Where("id = ?", marketID).First(&market).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrMarketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// GetMarketForUpdate retrieves a market inside tx with a row lock
func (r *Repository) GetMarketForUpdate(tx *gorm.DB, marketID string) (*models.Market, error) {
	var market models.Market
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", marketID).
		First(&market).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrMarketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// SaveMarket persists all fields of a market inside tx
func (r *Repository) SaveMarket(tx *gorm.DB, market *models.Market) error {
	return tx.Save(market).Error
}

// ListMarkets retrieves markets, optionally filtered by status
func (r *Repository) ListMarkets(ctx context.Context, status models.MarketStatus, limit, offset int) ([]models.Market, error) {
	var markets []models.Market
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}

// GetPosition retrieves a position by market and bettor
func (r *Repository) GetPosition(ctx context.Context, marketID, bettor string) (*models.Position, error) {
	var position models.Position
	err := r.db.WithContext(ctx).
		Where("market_id = ? AND bettor = ?", marketID, bettor).
		First(&position).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

// GetPositionForUpdate retrieves a position inside tx with a row lock.
// Returns gorm.ErrRecordNotFound if the bettor never bet on the market.
func (r *Repository) GetPositionForUpdate(tx *gorm.DB, marketID, bettor string) (*models.Position, error) {
	var position models.Position
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("market_id = ? AND bettor = ?", marketID, bettor).
		First(&position).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

// CreatePosition inserts a new position inside tx
func (r *Repository) CreatePosition(tx *gorm.DB, position *models.Position) error {
	return tx.Create(position).Error
}

// SavePosition persists all fields of a position inside tx
func (r *Repository) SavePosition(tx *gorm.DB, position *models.Position) error {
	return tx.Save(position).Error
}

// GetTreasuryForUpdate retrieves the treasury row inside tx, creating it on first use
func (r *Repository) GetTreasuryForUpdate(tx *gorm.DB) (*models.Treasury, error) {
	var treasury models.Treasury
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&treasury).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		treasury = models.Treasury{ID: 1, Amount: 0}
		if err := tx.Create(&treasury).Error; err != nil {
			return nil, err
		}
		return &treasury, nil
	}
	if err != nil {
		return nil, err
	}
	return &treasury, nil
}

// SaveTreasury persists the treasury accumulator inside tx
func (r *Repository) SaveTreasury(tx *gorm.DB, treasury *models.Treasury) error {
	return tx.Save(treasury).Error
}

// CreateTreasuryTransaction records a value movement inside tx
func (r *Repository) CreateTreasuryTransaction(tx *gorm.DB, record *models.TreasuryTransaction) error {
	return tx.Create(record).Error
}

// ConfirmTreasuryTransaction flips a pending record to confirmed once the
// on-chain transfer has gone through
func (r *Repository) ConfirmTreasuryTransaction(ctx context.Context, recordID uuid.UUID, txSignature string) error {
	return r.db.WithContext(ctx).
		Model(&models.TreasuryTransaction{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"status":       models.TreasuryTransactionStatusConfirmed,
			"tx_signature": txSignature,
		}).Error
}
