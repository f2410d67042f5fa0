package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultAPIBaseURL    = "https://photodrop-dawn-surf-6942.fly.dev"
	defaultUnitPrice     = "100"
	defaultCurrency      = "usd"
	defaultPayPalBaseURL = "https://www.paypal.com/checkoutnow"
	defaultReceiptDB     = "photodrop_receipts.db"
	defaultRedirectAddr  = "127.0.0.1:0"
	defaultWalletDomain  = "photodrop.app"
)

// RuntimeConfig carries everything the checkout flow reads from the
// environment. Amounts are integer minor units throughout.
type RuntimeConfig struct {
	APIBaseURL         string
	UnitPriceMinor     int64
	Currency           string
	StripeSecretKey    string
	PayPalBaseURL      string
	ReceiptDB          string
	RedirectListenAddr string
	WalletDomain       string
}

func Load() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{
		APIBaseURL:         strings.TrimRight(strings.TrimSpace(getEnv("PHOTODROP_API_BASE_URL", defaultAPIBaseURL)), "/"),
		Currency:           strings.ToLower(strings.TrimSpace(getEnv("PHOTODROP_CURRENCY", defaultCurrency))),
		StripeSecretKey:    strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		PayPalBaseURL:      strings.TrimSpace(getEnv("PAYPAL_BASE_URL", defaultPayPalBaseURL)),
		ReceiptDB:          strings.TrimSpace(getEnv("RECEIPT_DB", defaultReceiptDB)),
		RedirectListenAddr: strings.TrimSpace(getEnv("REDIRECT_LISTEN_ADDR", defaultRedirectAddr)),
		WalletDomain:       strings.TrimSpace(getEnv("WALLET_DOMAIN", defaultWalletDomain)),
	}

	var err error
	cfg.UnitPriceMinor, err = parseIntEnv("PHOTODROP_UNIT_PRICE", defaultUnitPrice)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *RuntimeConfig) error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("PHOTODROP_API_BASE_URL must not be empty")
	}
	if cfg.UnitPriceMinor <= 0 {
		return fmt.Errorf("PHOTODROP_UNIT_PRICE must be > 0")
	}
	if len(cfg.Currency) != 3 {
		return fmt.Errorf("PHOTODROP_CURRENCY must be a three-letter code, got %q", cfg.Currency)
	}
	if cfg.ReceiptDB == "" {
		return fmt.Errorf("RECEIPT_DB must not be empty")
	}
	return nil
}

func parseIntEnv(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
