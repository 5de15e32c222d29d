package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"betting-market/internal/models"
	"betting-market/internal/oracle"
	"betting-market/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarketService governs the market lifecycle: Opened -> Closed -> Settled ->
// Confirmed, strictly in that order. Every admin transition checks the caller
// against the injected administrator wallet.
type MarketService struct {
	repo        *repository.Repository
	oracle      oracle.Reader
	locks       *MarketLocks
	adminWallet string
	now         func() time.Time
}

func NewMarketService(
	repo *repository.Repository,
	oracleReader oracle.Reader,
	locks *MarketLocks,
	adminWallet string,
) *MarketService {
	return &MarketService{
		repo:        repo,
		oracle:      oracleReader,
		locks:       locks,
		adminWallet: adminWallet,
		now:         time.Now,
	}
}

// SetClock overrides the wall-clock source, for tests.
func (ms *MarketService) SetClock(now func() time.Time) {
	ms.now = now
}

func (ms *MarketService) isAdmin(caller string) bool {
	return caller != "" && caller == ms.adminWallet
}

// CreateMarket allocates a new market in Opened status
func (ms *MarketService) CreateMarket(
	ctx context.Context,
	caller string,
	req *models.CreateMarketRequest,
) (*models.Market, error) {
	if !ms.isAdmin(caller) {
		return nil, models.ErrUnauthorized
	}

	if len(req.Outcomes) == 0 || len(req.Outcomes) > models.MaxOutcomes {
		return nil, models.ErrOutcomeLenExceeded
	}
	if !(req.OpenTime <= req.CloseTime && req.CloseTime <= req.SettleTime) {
		return nil, models.ErrInvalidTimeWindow
	}
	if req.MinBet > req.MaxBet {
		return nil, fmt.Errorf("%w: min_bet exceeds max_bet", models.ErrInvalidMarketParams)
	}
	if req.ServiceFeeBps > models.FeeDenominator {
		return nil, fmt.Errorf("%w: service fee above %d bps", models.ErrInvalidMarketParams, models.FeeDenominator)
	}

	switch req.MarketType {
	case models.MarketTypeHilo:
		if req.AssetA == "" {
			return nil, fmt.Errorf("%w: HILO market requires asset_a feed", models.ErrInvalidMarketParams)
		}
	case models.MarketTypeTokenFight:
		if req.AssetA == "" || req.AssetB == "" {
			return nil, fmt.Errorf("%w: TOKEN_FIGHT market requires both asset feeds", models.ErrInvalidMarketParams)
		}
	case models.MarketTypeCustom:
		// no oracle interaction
	default:
		return nil, fmt.Errorf("%w: unknown market type %q", models.ErrInvalidMarketParams, req.MarketType)
	}

	market := &models.Market{
		ID:                req.ID,
		Title:             req.Title,
		Description:       req.Description,
		ImageLink:         req.ImageLink,
		MarketType:        req.MarketType,
		AssetA:            req.AssetA,
		AssetB:            req.AssetB,
		OpenTime:          req.OpenTime,
		CloseTime:         req.CloseTime,
		SettleTime:        req.SettleTime,
		ServiceFeeBps:     req.ServiceFeeBps,
		MinBet:            req.MinBet,
		MaxBet:            req.MaxBet,
		TotalMaxBet:       req.TotalMaxBet,
		TotalBetAmount:    0,
		Outcomes:          req.Outcomes,
		AmountsPerOutcome: make(models.AmountVec, len(req.Outcomes)),
		WinningOutcome:    nil,
		Status:            models.MarketStatusOpened,
	}

	if _, err := ms.repo.GetMarketByID(ctx, req.ID); err == nil {
		return nil, models.ErrMarketExists
	} else if !errors.Is(err, models.ErrMarketNotFound) {
		return nil, err
	}

	if err := ms.repo.CreateMarket(ctx, market); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrMarketExists
		}
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	log.Printf("[MarketService] Market %s created (%s, %d outcomes)", market.ID, market.MarketType, len(market.Outcomes))
	return market, nil
}

// CloseMarket transitions Opened -> Closed. TOKEN_FIGHT markets capture the
// first price snapshot pair here; a feed failure aborts without a state change.
func (ms *MarketService) CloseMarket(ctx context.Context, caller, marketID string) error {
	if !ms.isAdmin(caller) {
		return models.ErrUnauthorized
	}

	unlock := ms.locks.Lock(marketID)
	defer unlock()

	return ms.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		market, err := ms.repo.GetMarketForUpdate(tx, marketID)
		if err != nil {
			return err
		}
		if market.Status != models.MarketStatusOpened {
			return models.ErrMarketNotOpen
		}

		if market.MarketType == models.MarketTypeTokenFight {
			priceA, priceB, err := ms.readPair(ctx, market.AssetA, market.AssetB)
			if err != nil {
				return err
			}
			market.FinalPriceAClosed = &priceA
			market.FinalPriceBClosed = &priceB
		}

		market.Status = models.MarketStatusClosed
		if err := ms.repo.SaveMarket(tx, market); err != nil {
			return fmt.Errorf("failed to close market: %w", err)
		}

		log.Printf("[MarketService] Market %s closed", marketID)
		return nil
	})
}

// SettleMarket transitions Closed -> Settled, capturing a second independent
// snapshot for oracle-backed market types.
func (ms *MarketService) SettleMarket(ctx context.Context, caller, marketID string) error {
	if !ms.isAdmin(caller) {
		return models.ErrUnauthorized
	}

	unlock := ms.locks.Lock(marketID)
	defer unlock()

	return ms.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		market, err := ms.repo.GetMarketForUpdate(tx, marketID)
		if err != nil {
			return err
		}
		if market.Status != models.MarketStatusClosed {
			return models.ErrMarketNotClosed
		}

		switch market.MarketType {
		case models.MarketTypeTokenFight:
			priceA, priceB, err := ms.readPair(ctx, market.AssetA, market.AssetB)
			if err != nil {
				return err
			}
			market.FinalPriceASettled = &priceA
			market.FinalPriceBSettled = &priceB
		case models.MarketTypeHilo:
			priceA, err := ms.oracle.Read(ctx, market.AssetA)
			if err != nil {
				return err
			}
			market.FinalPriceASettled = &priceA
		}

		market.Status = models.MarketStatusSettled
		if err := ms.repo.SaveMarket(tx, market); err != nil {
			return fmt.Errorf("failed to settle market: %w", err)
		}

		log.Printf("[MarketService] Market %s settled", marketID)
		return nil
	})
}

// ConfirmWinner transitions Settled -> Confirmed and fixes the winning
// outcome forever.
func (ms *MarketService) ConfirmWinner(ctx context.Context, caller, marketID string, winningOutcome uint8) error {
	if !ms.isAdmin(caller) {
		return models.ErrUnauthorized
	}

	unlock := ms.locks.Lock(marketID)
	defer unlock()

	return ms.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		market, err := ms.repo.GetMarketForUpdate(tx, marketID)
		if err != nil {
			return err
		}
		if int(winningOutcome) >= len(market.Outcomes) {
			return models.ErrInvalidOutcomeIndex
		}
		if market.Status != models.MarketStatusSettled {
			return models.ErrMarketNotSettled
		}

		w := winningOutcome
		market.WinningOutcome = &w
		market.Status = models.MarketStatusConfirmed
		if err := ms.repo.SaveMarket(tx, market); err != nil {
			return fmt.Errorf("failed to confirm winner: %w", err)
		}

		log.Printf("[MarketService] Market %s confirmed, winning outcome %d (%s)",
			marketID, winningOutcome, market.Outcomes[winningOutcome])
		return nil
	})
}

// GetMarket retrieves a market by ID
func (ms *MarketService) GetMarket(ctx context.Context, marketID string) (*models.Market, error) {
	return ms.repo.GetMarketByID(ctx, marketID)
}

// ListMarkets retrieves markets filtered by status
func (ms *MarketService) ListMarkets(ctx context.Context, status models.MarketStatus, limit, offset int) ([]models.Market, error) {
	return ms.repo.ListMarkets(ctx, status, limit, offset)
}

func (ms *MarketService) readPair(ctx context.Context, handleA, handleB string) (decimal.Decimal, decimal.Decimal, error) {
	priceA, err := ms.oracle.Read(ctx, handleA)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	priceB, err := ms.oracle.Read(ctx, handleB)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return priceA, priceB, nil
}
