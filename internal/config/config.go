package config

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env               string
	Port              string
	SessionSecret     string
	DatabaseURL       string
	RedisURL          string
	AllowCrossSiteDev bool
	FrontendSuffix    string
	DevPassword       string
	HealthAdminKey    string

	// Marketplace wiring. The manager principals receive the escrow-deposit
	// capability at startup; the escrow principal's token account holds all
	// escrowed funds; the treasury receives listing fees.
	SaleManagerPrincipal    uuid.UUID
	ListingManagerPrincipal uuid.UUID
	EscrowPrincipal         uuid.UUID
	TreasuryAccount         uuid.UUID
	DefaultListingFee       int64
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	cfg := &Config{
		Env:               env,
		Port:              port,
		SessionSecret:     viper.GetString("SESSION_SECRET"),
		DatabaseURL:       dbURL,
		RedisURL:          viper.GetString("REDIS_URL"),
		AllowCrossSiteDev: strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		FrontendSuffix:    viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:       viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:    viper.GetString("HEALTH_ADMIN_KEY"),
		DefaultListingFee: viper.GetInt64("DEFAULT_LISTING_FEE"),
	}

	var err error
	cfg.SaleManagerPrincipal, err = principal("SALE_MANAGER_PRINCIPAL", "9e1f3f83-0000-4000-8000-000000000001")
	if err != nil {
		return nil, err
	}
	cfg.ListingManagerPrincipal, err = principal("LISTING_MANAGER_PRINCIPAL", "9e1f3f83-0000-4000-8000-000000000002")
	if err != nil {
		return nil, err
	}
	cfg.EscrowPrincipal, err = principal("ESCROW_PRINCIPAL", "9e1f3f83-0000-4000-8000-000000000003")
	if err != nil {
		return nil, err
	}
	cfg.TreasuryAccount, err = principal("TREASURY_ACCOUNT", "9e1f3f83-0000-4000-8000-000000000004")
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// principal reads a UUID from env, falling back to a stable development
// default so a bare checkout can boot.
func principal(key, fallback string) (uuid.UUID, error) {
	v := strings.TrimSpace(viper.GetString(key))
	if v == "" {
		v = fallback
	}
	return uuid.Parse(v)
}
