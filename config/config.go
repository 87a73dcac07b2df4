package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log      Logger   `mapstructure:"logger"`
	HTTP     HTTP     `mapstructure:"http"`
	Analysis Analysis `mapstructure:"analysis"`
	ZkAGI    ZkAGI    `mapstructure:"zkagi"`
	Swap     Swap     `mapstructure:"swap"`

	// Sections below are only read by the swap server.
	API      API      `mapstructure:"api"`
	Telegram Telegram `mapstructure:"telegram"`
	DB       Database `mapstructure:"database"`
	Cache    Cache    `mapstructure:"cache"`
	Wallet   Wallet   `mapstructure:"wallet"`
	Jupiter  Jupiter  `mapstructure:"jupiter"`
	Solana   Solana   `mapstructure:"solana"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type HTTP struct {
	// Zero disables the client timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

type Analysis struct {
	URL                 string `mapstructure:"url" validate:"required,url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute" validate:"gte=0"`
}

type ZkAGI struct {
	URL                 string `mapstructure:"url" validate:"required,url"`
	APIKey              string `mapstructure:"api_key" validate:"required"`
	Model               string `mapstructure:"model" validate:"required"`
	ZKProof             bool   `mapstructure:"zk_proof"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute" validate:"gte=0"`
}

type Swap struct {
	URL                 string `mapstructure:"url" validate:"required,url"`
	TelegramID          string `mapstructure:"telegram_id" validate:"required"`
	OutputMint          string `mapstructure:"output_mint" validate:"required"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute" validate:"gte=0"`
}

type API struct {
	Port int `mapstructure:"port" validate:"gte=1,lte=65535"`
}

type Telegram struct {
	BotToken    string        `mapstructure:"bot_token" validate:"required"`
	PollTimeout time.Duration `mapstructure:"poll_timeout" validate:"gt=0"`
	TOTPIssuer  string        `mapstructure:"totp_issuer" validate:"required"`
}

type Database struct {
	Host            string `mapstructure:"host" validate:"required"`
	Port            int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	User            string `mapstructure:"user" validate:"required"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name" validate:"required"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Cache struct {
	PendingSwapTTL  time.Duration `mapstructure:"pending_swap_ttl" validate:"gt=0"`
	RegistrationTTL time.Duration `mapstructure:"registration_ttl" validate:"gt=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
}

type Wallet struct {
	// Used as an AES-256 key as is, so it must be exactly 32 bytes.
	TOTPEncryptionKey string `mapstructure:"totp_encryption_key" validate:"len=32"`
}

type Jupiter struct {
	QuoteURL    string `mapstructure:"quote_url" validate:"required,url"`
	SwapURL     string `mapstructure:"swap_url" validate:"required,url"`
	InputMint   string `mapstructure:"input_mint" validate:"required"`
	Amount      uint64 `mapstructure:"amount" validate:"gt=0"`
	SlippageBps int    `mapstructure:"slippage_bps" validate:"gte=0"`
	MaxAttempts int    `mapstructure:"max_attempts" validate:"gte=1"`
}

type Solana struct {
	RPCURL              string        `mapstructure:"rpc_url" validate:"required,url"`
	ConfirmPollInterval time.Duration `mapstructure:"confirm_poll_interval" validate:"gt=0"`
}

// legacyEnv maps config keys to the environment variable names the agent
// has always been deployed with. Other keys use the automatic
// SECTION_FIELD form, e.g. LOGGER_LEVEL or HTTP_TIMEOUT.
var legacyEnv = map[string]string{
	"analysis.url":     "ANALYSIS_API_URL",
	"swap.url":         "SWAP_API_URL",
	"swap.telegram_id": "TELEGRAM_ID",
	"swap.output_mint": "OUTPUT_MINT",
	"zkagi.url":        "ZKAGI_API_URL",
	"zkagi.api_key":    "ZKAGI_API_KEY",

	"api.port":                   "PORT",
	"telegram.bot_token":         "BOT_TOKEN",
	"wallet.totp_encryption_key": "TOTP_ENCRYPTION_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("http.timeout", 0)
	v.SetDefault("zkagi.model", "mistral-large-latest")
	v.SetDefault("zkagi.zk_proof", true)
	v.SetDefault("analysis.max_request_per_minute", 0)
	v.SetDefault("zkagi.max_request_per_minute", 0)
	v.SetDefault("swap.max_request_per_minute", 0)

	// Unmarshal only sees env values for keys viper already knows about.
	for key := range legacyEnv {
		v.SetDefault(key, "")
	}

	v.SetDefault("api.port", 3000)
	v.SetDefault("telegram.poll_timeout", 10*time.Second)
	v.SetDefault("telegram.totp_issuer", "MyBot")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.time_zone", "")
	v.SetDefault("database.max_idle_conns", 0)
	v.SetDefault("database.max_open_conns", 0)
	v.SetDefault("database.conn_max_lifetime", "")
	v.SetDefault("database.log_level", "Warn")
	v.SetDefault("cache.pending_swap_ttl", 10*time.Minute)
	v.SetDefault("cache.registration_ttl", 30*time.Minute)
	v.SetDefault("cache.cleanup_interval", time.Minute)
	v.SetDefault("jupiter.quote_url", "https://quote-api.jup.ag/v6/quote")
	v.SetDefault("jupiter.swap_url", "https://quote-api.jup.ag/v6/swap")
	v.SetDefault("jupiter.input_mint", "So11111111111111111111111111111111111111112")
	v.SetDefault("jupiter.amount", 1000000)
	v.SetDefault("jupiter.slippage_bps", 50)
	v.SetDefault("jupiter.max_attempts", 2)
	v.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("solana.confirm_poll_interval", 2*time.Second)
}

// Load reads configuration from an optional YAML file, a .env file and the
// process environment. Missing values stay empty; use Validate to check them.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for key, env := range legacyEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports every missing or malformed value the agent needs. The
// agent itself runs with whatever it was given; this is for the validate
// command.
func (c *Config) Validate(validator *goValidator.Validate) []string {
	return validateSections(validator, c.Analysis, c.ZkAGI, c.Swap)
}

// ValidateSwapServer checks the sections the swap server cannot start without.
func (c *Config) ValidateSwapServer(validator *goValidator.Validate) []string {
	return validateSections(validator, c.API, c.Telegram, c.DB, c.Cache, c.Wallet, c.Jupiter, c.Solana)
}

func validateSections(validator *goValidator.Validate, sections ...interface{}) []string {
	var problems []string
	for _, section := range sections {
		err := validator.Struct(section)
		if err == nil {
			continue
		}

		var validationErrs goValidator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			problems = append(problems, err.Error())
			continue
		}
		for _, fe := range validationErrs {
			problems = append(problems, describe(fe))
		}
	}
	return problems
}

func describe(fe goValidator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got %q", field, fe.Value())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s check", field, fe.Tag())
	}
}
