package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Solana   SolanaConfig
	Oracle   OracleConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret string
	// AdminWallet is the injected administrator identity. Every admin-gated
	// operation compares the caller against this value at call time.
	AdminWallet string
}

// SolanaConfig holds escrow vault settings
type SolanaConfig struct {
	Network               string
	VaultWalletPrivateKey string
	TreasuryWalletAddress string
}

// OracleConfig holds price feed settings
type OracleConfig struct {
	// BinanceSymbols maps feed handles to Binance stream symbols,
	// e.g. "SOL/USD=solusdt,BTC/USD=btcusdt"
	BinanceSymbols string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "betting_market"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			AdminWallet: getEnv("ADMIN_WALLET", ""),
		},
		Solana: SolanaConfig{
			Network:               getEnv("SOLANA_NETWORK", "devnet"),
			VaultWalletPrivateKey: getEnv("VAULT_WALLET_PRIVATE_KEY", ""),
			TreasuryWalletAddress: getEnv("TREASURY_WALLET_ADDRESS", ""),
		},
		Oracle: OracleConfig{
			BinanceSymbols: getEnv("ORACLE_BINANCE_SYMBOLS", ""),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.App.AdminWallet == "" {
		return nil, fmt.Errorf("ADMIN_WALLET is required")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.DBName)
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
