package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"sambv/internal/domain/entity"
	"sambv/internal/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither a flag nor CONFIG_PATH names a config file.
const DefaultPath = "config/config.yml"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                string   `yaml:"port"`
	Mode                string   `yaml:"mode"` // gin mode: debug, release, test
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	ShutdownSeconds     int      `yaml:"shutdownSeconds"`
	AllowedOrigins      []string `yaml:"allowedOrigins"`
	Pprof               bool     `yaml:"pprof"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level       string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	Development bool   `yaml:"development"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SpecPath string `yaml:"specPath"`
}

// ZeroExConfig holds the configuration for the 0x swap API client.
type ZeroExConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"apiKey"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	SlippagePercentage   float64 `yaml:"slippagePercentage"`
}

// DEXScreenerConfig holds the configuration for the DEX Screener client.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RequestsPerMinute    int    `yaml:"requestsPerMinute"`
	Burst                int    `yaml:"burst"`
}

// LogoCacheConfig controls how long resolved logo URLs are reused.
type LogoCacheConfig struct {
	TTLMinutes             int    `yaml:"ttlMinutes"`
	CleanupIntervalMinutes int    `yaml:"cleanupIntervalMinutes"`
	NativeLogoURL          string `yaml:"nativeLogoURL"`
}

// QuoteConfig controls the swap quote watcher.
type QuoteConfig struct {
	DebounceMillis int64 `yaml:"debounceMillis"`
}

// PanelsConfig holds the simulated latencies of panel actions.
type PanelsConfig struct {
	SwapConfirmMillis  int64 `yaml:"swapConfirmMillis"`
	LimitOrderMillis   int64 `yaml:"limitOrderMillis"`
	DepositMillis      int64 `yaml:"depositMillis"`
	LaunchMillis       int64 `yaml:"launchMillis"`
	NotificationMillis int64 `yaml:"notificationMillis"`
	ToastDismissMillis int64 `yaml:"toastDismissMillis"`
}

// SessionsConfig controls session lifetime.
type SessionsConfig struct {
	IdleTTLMinutes         int `yaml:"idleTTLMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// HostFrameConfig selects the host frame implementation.
type HostFrameConfig struct {
	Mode        string `yaml:"mode"` // "detached" or "simulated"
	FID         int64  `yaml:"fid"`
	Username    string `yaml:"username"`
	DisplayName string `yaml:"displayName"`
	PfpURL      string `yaml:"pfpURL"`
}

// FlagStoreConfig selects where per-device flags live.
type FlagStoreConfig struct {
	Backend       string `yaml:"backend"` // "file" or "redis"
	FilePath      string `yaml:"filePath"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	KeyPrefix     string `yaml:"keyPrefix"`
}

// ChainConfig names the chain the mini-app runs on and an optional RPC endpoint for live balances.
type ChainConfig struct {
	Identifier       string `yaml:"identifier"`
	RPCURL           string `yaml:"rpcURL"`
	RPCTimeoutMillis int64  `yaml:"rpcTimeoutMillis"`
	MaxConcurrency   int    `yaml:"maxConcurrency"`
}

// PricesConfig controls live market prices for portfolio holdings.
type PricesConfig struct {
	Enabled        bool `yaml:"enabled"`
	TTLSeconds     int  `yaml:"ttlSeconds"`
	MaxConcurrency int  `yaml:"maxConcurrency"`
}

// LeaderboardConfig seeds the leaderboard overlay.
type LeaderboardConfig struct {
	CurrentUsername string                   `yaml:"currentUsername"`
	BaseXP          uint64                   `yaml:"baseXP"`
	CurrentAvatar   entity.Avatar            `yaml:"currentAvatar"`
	Entries         []entity.LeaderboardUser `yaml:"entries"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Swagger     SwaggerConfig     `yaml:"swagger"`
	ZeroEx      ZeroExConfig      `yaml:"zeroEx"`
	DEXScreener DEXScreenerConfig `yaml:"dexScreener"`
	LogoCache   LogoCacheConfig   `yaml:"logoCache"`
	Quote       QuoteConfig       `yaml:"quote"`
	Panels      PanelsConfig      `yaml:"panels"`
	Sessions    SessionsConfig    `yaml:"sessions"`
	HostFrame   HostFrameConfig   `yaml:"hostFrame"`
	FlagStore   FlagStoreConfig   `yaml:"flagStore"`
	Chain       ChainConfig       `yaml:"chain"`
	Prices      PricesConfig      `yaml:"prices"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Vaults      []entity.Vault    `yaml:"vaults"`
	Holdings    []entity.Holding  `yaml:"holdings"`
	TokensFile  string            `yaml:"tokensFile"`
}

// Load reads the YAML configuration at path, overlays environment variables (a .env
// file next to the working directory is honoured) and fills in defaults.
// A missing file is not an error: the defaults describe a complete local setup.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("Failed to read .env file: %v", err)
	}

	if path == "" {
		path = utils.GetEnv("CONFIG_PATH", DefaultPath)
	}
	logrus.Infof("Loading configuration from path: %s", path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults", path)
	case err != nil:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = utils.GetEnv("PORT", cfg.Server.Port)
	cfg.Logging.Level = utils.GetEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.ZeroEx.APIKey = utils.GetEnv("ZEROEX_API_KEY", cfg.ZeroEx.APIKey)
	cfg.Chain.RPCURL = utils.GetEnv("RPC_URL", cfg.Chain.RPCURL)
	cfg.FlagStore.Backend = utils.GetEnv("FLAG_STORE_BACKEND", cfg.FlagStore.Backend)
	cfg.FlagStore.RedisAddr = utils.GetEnv("REDIS_ADDR", cfg.FlagStore.RedisAddr)
	cfg.FlagStore.RedisPassword = utils.GetEnv("REDIS_PASSWORD", cfg.FlagStore.RedisPassword)
	if db, err := strconv.Atoi(utils.GetEnv("REDIS_DB", "")); err == nil {
		cfg.FlagStore.RedisDB = db
	}
	cfg.HostFrame.Mode = utils.GetEnv("HOST_FRAME_MODE", cfg.HostFrame.Mode)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 15
	}
	if cfg.Server.ShutdownSeconds <= 0 {
		cfg.Server.ShutdownSeconds = 5
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
		logrus.Infof("Server.AllowedOrigins not set, allowing all origins")
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Swagger.SpecPath == "" {
		cfg.Swagger.SpecPath = "./docs/swagger.yaml"
	}

	if cfg.ZeroEx.BaseURL == "" {
		cfg.ZeroEx.BaseURL = "https://base.api.0x.org/swap/v1"
		logrus.Infof("ZeroEx.BaseURL not set, defaulting to %s", cfg.ZeroEx.BaseURL)
	}
	if cfg.ZeroEx.RequestTimeoutMillis <= 0 {
		cfg.ZeroEx.RequestTimeoutMillis = 10000
		logrus.Infof("ZeroEx.RequestTimeoutMillis not set, defaulting to %d ms", cfg.ZeroEx.RequestTimeoutMillis)
	}
	if cfg.ZeroEx.SlippagePercentage <= 0 {
		cfg.ZeroEx.SlippagePercentage = 0.01
		logrus.Infof("ZeroEx.SlippagePercentage not set, defaulting to %.2f", cfg.ZeroEx.SlippagePercentage)
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
		logrus.Infof("DEXScreener.BaseURL not set, defaulting to %s", cfg.DEXScreener.BaseURL)
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
		logrus.Infof("DEXScreener.RequestTimeoutMillis not set, defaulting to %d ms", cfg.DEXScreener.RequestTimeoutMillis)
	}
	if cfg.DEXScreener.RequestsPerMinute <= 0 {
		cfg.DEXScreener.RequestsPerMinute = 300 // published limit of the token endpoints
		logrus.Infof("DEXScreener.RequestsPerMinute not set, defaulting to %d", cfg.DEXScreener.RequestsPerMinute)
	}
	if cfg.DEXScreener.Burst <= 0 {
		cfg.DEXScreener.Burst = 10
	}

	if cfg.LogoCache.TTLMinutes <= 0 {
		cfg.LogoCache.TTLMinutes = 60
		logrus.Infof("LogoCache.TTLMinutes not set, defaulting to %d minutes", cfg.LogoCache.TTLMinutes)
	}
	if cfg.LogoCache.CleanupIntervalMinutes <= 0 {
		cfg.LogoCache.CleanupIntervalMinutes = 10
	}
	if cfg.LogoCache.NativeLogoURL == "" {
		cfg.LogoCache.NativeLogoURL = "https://assets.coingecko.com/coins/images/279/large/ethereum.png"
	}

	if cfg.Quote.DebounceMillis <= 0 {
		cfg.Quote.DebounceMillis = 500
		logrus.Infof("Quote.DebounceMillis not set, defaulting to %d ms", cfg.Quote.DebounceMillis)
	}

	if cfg.Panels.SwapConfirmMillis <= 0 {
		cfg.Panels.SwapConfirmMillis = 4000
	}
	if cfg.Panels.LimitOrderMillis <= 0 {
		cfg.Panels.LimitOrderMillis = 1500
	}
	if cfg.Panels.DepositMillis <= 0 {
		cfg.Panels.DepositMillis = 2000
	}
	if cfg.Panels.LaunchMillis <= 0 {
		cfg.Panels.LaunchMillis = 2000
	}
	if cfg.Panels.NotificationMillis <= 0 {
		cfg.Panels.NotificationMillis = 1500
	}
	if cfg.Panels.ToastDismissMillis <= 0 {
		cfg.Panels.ToastDismissMillis = 2500
	}

	if cfg.Sessions.IdleTTLMinutes <= 0 {
		cfg.Sessions.IdleTTLMinutes = 30
		logrus.Infof("Sessions.IdleTTLMinutes not set, defaulting to %d minutes", cfg.Sessions.IdleTTLMinutes)
	}
	if cfg.Sessions.CleanupIntervalMinutes <= 0 {
		cfg.Sessions.CleanupIntervalMinutes = 1
	}

	cfg.HostFrame.Mode = strings.ToLower(cfg.HostFrame.Mode)
	if cfg.HostFrame.Mode == "" {
		cfg.HostFrame.Mode = "detached"
		logrus.Infof("HostFrame.Mode not set, defaulting to %s", cfg.HostFrame.Mode)
	}

	cfg.FlagStore.Backend = strings.ToLower(cfg.FlagStore.Backend)
	if cfg.FlagStore.Backend == "" {
		cfg.FlagStore.Backend = "file"
	}
	if cfg.FlagStore.FilePath == "" {
		cfg.FlagStore.FilePath = "data/flags.yml"
	}
	if cfg.FlagStore.KeyPrefix == "" {
		cfg.FlagStore.KeyPrefix = "sambv"
	}

	if cfg.Chain.Identifier == "" {
		cfg.Chain.Identifier = "base"
	}
	if cfg.Chain.RPCTimeoutMillis <= 0 {
		cfg.Chain.RPCTimeoutMillis = 10000
	}
	if cfg.Chain.MaxConcurrency <= 0 {
		cfg.Chain.MaxConcurrency = 4
	}

	if cfg.Prices.TTLSeconds <= 0 {
		cfg.Prices.TTLSeconds = 60
	}
	if cfg.Prices.MaxConcurrency <= 0 {
		cfg.Prices.MaxConcurrency = 4
	}

	if cfg.Leaderboard.CurrentUsername == "" {
		cfg.Leaderboard.CurrentUsername = "you"
	}
	if cfg.Leaderboard.BaseXP == 0 {
		cfg.Leaderboard.BaseXP = 2750
	}
	if cfg.Leaderboard.CurrentAvatar.Value == "" {
		cfg.Leaderboard.CurrentAvatar = entity.Avatar{Kind: entity.AvatarEmoji, Value: "🦊"}
	}
	if len(cfg.Leaderboard.Entries) == 0 {
		cfg.Leaderboard.Entries = defaultLeaderboard()
		logrus.Infof("Leaderboard.Entries not set, using %d seed rows", len(cfg.Leaderboard.Entries))
	}
	if len(cfg.Vaults) == 0 {
		cfg.Vaults = defaultVaults()
	}
	if len(cfg.Holdings) == 0 {
		cfg.Holdings = defaultHoldings()
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.HostFrame.Mode {
	case "detached", "simulated":
	default:
		return fmt.Errorf("invalid hostFrame.mode %q: want detached or simulated", c.HostFrame.Mode)
	}
	switch c.FlagStore.Backend {
	case "file":
	case "redis":
		if c.FlagStore.RedisAddr == "" {
			return fmt.Errorf("flagStore.redisAddr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid flagStore.backend %q: want file or redis", c.FlagStore.Backend)
	}
	return nil
}

// Millis converts a millisecond setting to a duration.
func Millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func defaultLeaderboard() []entity.LeaderboardUser {
	return []entity.LeaderboardUser{
		{Username: "jesse.base.eth", XP: 15400, Avatar: entity.Avatar{Kind: entity.AvatarEmoji, Value: "🔵"}},
		{Username: "dwr.eth", XP: 12200, Avatar: entity.Avatar{Kind: entity.AvatarEmoji, Value: "🟣"}},
		{Username: "based_brett", XP: 9800, Avatar: entity.Avatar{Kind: entity.AvatarEmoji, Value: "🧢"}},
		{Username: "degen_chad", XP: 4300, Avatar: entity.Avatar{Kind: entity.AvatarEmoji, Value: "🎩"}},
		{Username: "onchain_anon", XP: 1900, Avatar: entity.Avatar{Kind: entity.AvatarEmoji, Value: "👽"}},
	}
}

func defaultVaults() []entity.Vault {
	return []entity.Vault{
		{ID: "1", Name: "Morpho Blue / USDC", APY: 8.4, TVL: "$45.2M", Utilization: 92, UserPosition: 1000},
		{ID: "2", Name: "Compound / ETH", APY: 3.2, TVL: "$120.5M", Utilization: 65, UserPosition: 0},
		{ID: "3", Name: "Aave / DEGEN", APY: 14.5, TVL: "$8.9M", Utilization: 88, UserPosition: 500},
	}
}

func defaultHoldings() []entity.Holding {
	return []entity.Holding{
		{Symbol: "ETH", Name: "Ethereum", Address: entity.NativeTokenAddress, Decimals: 18, Balance: 1.45, Price: 3250.00, Change24h: 2.5, Icon: "🔷"},
		{Symbol: "USDC", Name: "USD Coin", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6, Balance: 5430.00, Price: 1.00, Change24h: 0.01, Icon: "💵"},
		{Symbol: "DEGEN", Name: "Degen", Address: "0x4ed4e862860bed51a9570b96d89af5e1b0efefed", Decimals: 18, Balance: 450000, Price: 0.024, Change24h: -5.4, Icon: "🎩"},
		{Symbol: "BRETT", Name: "Brett", Address: "0x532f27101965dd16442e59d40670faf5ebb142e4", Decimals: 18, Balance: 12000, Price: 0.08, Change24h: 12.5, Icon: "🧢"},
	}
}
