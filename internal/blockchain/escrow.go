package blockchain

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
)

const lamportsPerSOL = 1_000_000_000

// EscrowVault moves value between bettor wallets and the market escrow.
// Deposits are signed and submitted client-side and verified on-chain here;
// payouts are signed and sent by the vault wallet itself.
type EscrowVault struct {
	client *SolanaClient
}

// NewEscrowVault creates a new escrow vault over a Solana client
func NewEscrowVault(client *SolanaClient) *EscrowVault {
	return &EscrowVault{client: client}
}

// Collect verifies a bettor's deposit transaction on-chain before the stake
// is credited. No value moves here; the deposit already happened client-side.
func (e *EscrowVault) Collect(ctx context.Context, from, depositTxSig string, amount uint64) (string, error) {
	if !e.client.ValidateWalletAddress(from) {
		return "", fmt.Errorf("invalid bettor wallet: %s", from)
	}
	if depositTxSig == "" {
		return "", fmt.Errorf("deposit transaction signature required")
	}

	confirmed, err := e.client.VerifyTransaction(ctx, depositTxSig)
	if err != nil {
		return "", fmt.Errorf("failed to verify deposit: %w", err)
	}
	if !confirmed {
		return "", fmt.Errorf("deposit transaction %s not confirmed", depositTxSig)
	}

	log.Printf("[EscrowVault] Deposit %s of %d lamports from %s confirmed", depositTxSig, amount, from)
	return depositTxSig, nil
}

// Disburse pays out from the vault wallet to a bettor
func (e *EscrowVault) Disburse(ctx context.Context, to string, amount uint64) (string, error) {
	balance, err := e.client.GetSOLBalance(ctx, e.client.VaultAddress())
	if err != nil {
		return "", fmt.Errorf("failed to check vault balance: %w", err)
	}

	needed := decimal.NewFromUint64(amount).Div(decimal.NewFromInt(lamportsPerSOL))
	if balance.LessThan(needed) {
		return "", fmt.Errorf("vault balance %s SOL below payout %s SOL", balance, needed)
	}

	sig, err := e.client.TransferSOL(ctx, to, amount)
	if err != nil {
		return "", fmt.Errorf("failed to release funds from vault: %w", err)
	}

	log.Printf("[EscrowVault] Disbursed %d lamports to %s: %s", amount, to, sig)
	return sig, nil
}
