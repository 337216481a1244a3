package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg := LoadFrom(viper.New())

	assert.Equal(t, "AGR", cfg.Billing.NumberPrefix)
	assert.Equal(t, 6, cfg.Billing.NumberWidth)
	assert.Equal(t, 10, cfg.Billing.MaxCustomers)
	assert.Equal(t, 3, cfg.Billing.CreateAttempts)
	assert.Equal(t, "AgriShop", cfg.Invoice.CompanyName)
	assert.Equal(t, "inline", cfg.Invoice.Disposition)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 24, cfg.Idempotency.TTLHours)
	assert.Empty(t, cfg.App.BaseURL)
}

func TestLoadFromOverrides(t *testing.T) {
	v := viper.New()
	v.Set("BILL_NUMBER_PREFIX", "INV")
	v.Set("INVOICE_DISPOSITION", "attachment")
	v.Set("BASE_URL", "https://billing.example.com/")

	cfg := LoadFrom(v)

	assert.Equal(t, "INV", cfg.Billing.NumberPrefix)
	assert.Equal(t, "attachment", cfg.Invoice.Disposition)
	assert.Equal(t, "https://billing.example.com", cfg.App.BaseURL)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", Name: "agri", User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=agri port=5432 sslmode=disable TimeZone=UTC", db.DSN())
}
