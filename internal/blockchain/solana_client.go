package blockchain

import (
	"context"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// SolanaClient handles Solana blockchain interactions for the escrow vault
type SolanaClient struct {
	rpcClient   *rpc.Client
	network     string
	vaultWallet *solana.Wallet
}

// NewSolanaClient creates a new Solana client
func NewSolanaClient(network, vaultPrivateKey string) *SolanaClient {
	var rpcURL string
	switch network {
	case "mainnet-beta":
		rpcURL = "https://api.mainnet-beta.solana.com"
	case "devnet":
		rpcURL = "https://api.devnet.solana.com"
	case "testnet":
		rpcURL = "https://api.testnet.solana.com"
	default:
		rpcURL = "https://api.devnet.solana.com"
	}

	client := &SolanaClient{
		rpcClient: rpc.New(rpcURL),
		network:   network,
	}

	if vaultPrivateKey != "" {
		wallet, err := solana.WalletFromPrivateKeyBase58(vaultPrivateKey)
		if err != nil {
			log.Printf("Warning: Failed to load vault wallet: %v", err)
		} else {
			client.vaultWallet = wallet
			log.Printf("Vault wallet loaded: %s", wallet.PublicKey())
		}
	}

	return client
}

// VaultAddress returns the base58 address of the vault wallet
func (s *SolanaClient) VaultAddress() string {
	if s.vaultWallet == nil {
		return ""
	}
	return s.vaultWallet.PublicKey().String()
}

// ValidateWalletAddress validates a Solana wallet address format
func (s *SolanaClient) ValidateWalletAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

// GetSOLBalance gets the SOL balance for a wallet
func (s *SolanaClient) GetSOLBalance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	pubKey, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := s.rpcClient.GetBalance(ctx, pubKey, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, err
	}

	// Convert lamports to SOL
	return decimal.NewFromInt(int64(balance.Value)).Div(decimal.NewFromInt(1_000_000_000)), nil
}

// TransferSOL builds, signs and sends a system transfer from the vault wallet
func (s *SolanaClient) TransferSOL(ctx context.Context, toAddress string, lamports uint64) (string, error) {
	if s.vaultWallet == nil {
		return "", fmt.Errorf("vault wallet not configured")
	}

	toPubKey, err := solana.PublicKeyFromBase58(toAddress)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	recent, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(
				lamports,
				s.vaultWallet.PublicKey(),
				toPubKey,
			).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(s.vaultWallet.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.vaultWallet.PublicKey()) {
			pk := s.vaultWallet.PrivateKey
			return &pk
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := s.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}

// VerifyTransaction checks whether a transaction signature is confirmed
func (s *SolanaClient) VerifyTransaction(ctx context.Context, txHash string) (bool, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return false, err
	}

	statuses, err := s.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return false, fmt.Errorf("failed to get signature status: %w", err)
	}

	if len(statuses.Value) == 0 || statuses.Value[0] == nil {
		return false, nil
	}

	status := statuses.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("transaction failed on-chain")
	}

	return status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		status.ConfirmationStatus == rpc.ConfirmationStatusFinalized, nil
}
