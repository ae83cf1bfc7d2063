package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var loadOnce sync.Once

func Config(key string) string {
	loadOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})

	return os.Getenv(key)
}

func ConfigDefault(key, def string) string {
	if v := Config(key); v != "" {
		return v
	}
	return def
}

func ConfigDecimal(key string, def decimal.Decimal) decimal.Decimal {
	raw := Config(key)
	if raw == "" {
		return def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("⚠️ Invalid decimal for %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}

func ConfigDuration(key string, def time.Duration) time.Duration {
	raw := Config(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ Invalid duration for %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}

// MinPayout is the smallest withdrawal a technician may request.
func MinPayout() decimal.Decimal {
	return ConfigDecimal("MIN_PAYOUT", decimal.NewFromInt(10000))
}

// CommissionRate is the platform's share of a settled payment, between 0 and 1.
func CommissionRate() decimal.Decimal {
	rate := ConfigDecimal("PLATFORM_COMMISSION_RATE", decimal.Zero)
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		log.Printf("⚠️ PLATFORM_COMMISSION_RATE %s out of range, using 0", rate)
		return decimal.Zero
	}
	return rate
}
