package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"bulkinvoicer/internal/logger"
)

// Configuration errors surfaced during Load.
var (
	// ErrNoOutputs is returned when the config defines no output section.
	ErrNoOutputs = errors.New("at least one output configuration must be provided")

	// ErrUnknownOutputType is returned for an output type outside
	// combined, individual and clients.
	ErrUnknownOutputType = errors.New("unknown output type")
)

// Output types.
const (
	OutputCombined   = "combined"   // one PDF with every invoice and receipt
	OutputIndividual = "individual" // one PDF per invoice and per receipt
	OutputClients    = "clients"    // one statement PDF per client
)

// DateLayout is the layout used for start-date and end-date values.
const DateLayout = "2006-01-02"

// SellerConfig identifies the issuing party on every document.
type SellerConfig struct {
	Name    string `mapstructure:"name"`
	Tagline string `mapstructure:"tagline"`
}

// InvoiceConfig styles invoice documents.
type InvoiceConfig struct {
	Decimals       int32    `mapstructure:"decimals"`
	ShowSubtotal   bool     `mapstructure:"show-subtotal"`
	DateFormat     string   `mapstructure:"date-format"`
	TaxColumns     []string `mapstructure:"tax-columns"`
	DiscountColumn string   `mapstructure:"discount-column"`
	StyleColor     string   `mapstructure:"style-color"`
}

// ReceiptConfig styles receipt documents.
type ReceiptConfig struct {
	Decimals   int32  `mapstructure:"decimals"`
	DateFormat string `mapstructure:"date-format"`
	StyleColor string `mapstructure:"style-color"`
}

// SignatureConfig is the optional signature block at the end of documents.
type SignatureConfig struct {
	Prefix string `mapstructure:"prefix"`
	Text   string `mapstructure:"text"`
}

// UPIConfig configures the UPI payment QR code printed on invoices.
type UPIConfig struct {
	UPIID           string `mapstructure:"upi-id"`
	PayeeName       string `mapstructure:"payee-name"`
	IncludeAmount   bool   `mapstructure:"include-amount"`
	IncludeLink     bool   `mapstructure:"include-link"`
	TransactionNote string `mapstructure:"transaction-note"`
	BottomNote      string `mapstructure:"bottom-note"`
}

// PaymentConfig configures payment instructions on invoices.
type PaymentConfig struct {
	UPI                *UPIConfig `mapstructure:"upi"`
	Currency           string     `mapstructure:"currency"`
	PaymentMethodsText string     `mapstructure:"payment-methods-text"`
}

// FooterConfig is the page footer on every document.
type FooterConfig struct {
	Text []string `mapstructure:"text"`
}

// ExcelConfig locates the source workbook.
type ExcelConfig struct {
	Filepath string `mapstructure:"filepath"`
}

// OutputConfig is one requested output: where to write, which layout, and
// the optional reporting window.
type OutputConfig struct {
	Path           string `mapstructure:"path"`
	Type           string `mapstructure:"type"`
	IncludeSummary bool   `mapstructure:"include-summary"`
	StartDate      string `mapstructure:"start-date"`
	EndDate        string `mapstructure:"end-date"`

	// Parsed window bounds; zero when the corresponding date is absent.
	Start time.Time `mapstructure:"-"`
	End   time.Time `mapstructure:"-"`
}

// Config is the full application configuration read from a TOML file.
type Config struct {
	Seller    SellerConfig            `mapstructure:"seller"`
	Invoice   InvoiceConfig           `mapstructure:"invoice"`
	Receipt   ReceiptConfig           `mapstructure:"receipt"`
	Signature *SignatureConfig        `mapstructure:"signature"`
	Payment   PaymentConfig           `mapstructure:"payment"`
	Footer    FooterConfig            `mapstructure:"footer"`
	Excel     ExcelConfig             `mapstructure:"excel"`
	Output    map[string]OutputConfig `mapstructure:"output"`
}

// Load reads and validates a TOML configuration file.
func Load(path string) (*Config, error) {
	log := logger.WithComponent("config")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("invoice.decimals", 2)
	v.SetDefault("invoice.show-subtotal", true)
	v.SetDefault("invoice.date-format", DateLayout)
	v.SetDefault("invoice.style-color", "#FFFFFF")
	v.SetDefault("receipt.decimals", 2)
	v.SetDefault("receipt.date-format", DateLayout)
	v.SetDefault("receipt.style-color", "#FFFFFF")
	v.SetDefault("payment.currency", "INR")

	if err := v.ReadInConfig(); err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to read configuration file")
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to decode configuration")
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Debug().Str("file", path).Int("outputs", len(cfg.Output)).Msg("Configuration loaded")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Seller.Name == "" {
		return fmt.Errorf("seller.name is required")
	}
	if c.Excel.Filepath == "" {
		return fmt.Errorf("excel.filepath is required")
	}
	if len(c.Output) == 0 {
		return ErrNoOutputs
	}

	for key, out := range c.Output {
		if out.Path == "" {
			return fmt.Errorf("output %q requires a path", key)
		}
		switch out.Type {
		case OutputCombined, OutputIndividual, OutputClients:
		default:
			return fmt.Errorf("%w: output %q has type %q", ErrUnknownOutputType, key, out.Type)
		}

		var err error
		if out.Start, err = parseDate(out.StartDate); err != nil {
			return fmt.Errorf("output %q: invalid start-date: %w", key, err)
		}
		if out.End, err = parseDate(out.EndDate); err != nil {
			return fmt.Errorf("output %q: invalid end-date: %w", key, err)
		}
		c.Output[key] = out
	}

	return nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, value)
}

// LoggerConfig builds the logging configuration from the environment, so
// log behavior can be tuned without touching the report configuration.
func LoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Format:     getEnv("LOG_FORMAT", "console"),
		TimeFormat: getEnv("LOG_TIME_FORMAT", time.RFC3339),
		Output:     getEnv("LOG_OUTPUT", "stdout"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
