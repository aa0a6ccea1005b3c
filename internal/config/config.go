package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/siakng/monopoly-server-go/internal/game"
	"github.com/spf13/viper"
)

// Config is the root configuration of the server process.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// ServerConfig groups the transport listeners.
type ServerConfig struct {
	WebSocket       WebSocketConfig `mapstructure:"websocket"`
	GRPC            GRPCConfig      `mapstructure:"grpc"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
}

// WebSocketConfig configures the websocket hub listener.
type WebSocketConfig struct {
	Address         string   `mapstructure:"address"`
	ReadBufferSize  int      `mapstructure:"read_buffer_size"`
	WriteBufferSize int      `mapstructure:"write_buffer_size"`
	SendBufferSize  int      `mapstructure:"send_buffer_size"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// GRPCConfig configures the gRPC health listener.
type GRPCConfig struct {
	Address              string `mapstructure:"address"`
	MaxConcurrentStreams int    `mapstructure:"max_concurrent_streams"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig holds the rule constants new games are created with.
type GameConfig struct {
	StartingCash   int   `mapstructure:"starting_cash"`
	PassStartBonus int   `mapstructure:"pass_start_bonus"`
	BailAmount     int   `mapstructure:"bail_amount"`
	JailTurnLimit  int   `mapstructure:"jail_turn_limit"`
	MaxDoubles     int   `mapstructure:"max_doubles"`
	Houses         int   `mapstructure:"houses"`
	Hotels         int   `mapstructure:"hotels"`
	MinPlayers     int   `mapstructure:"min_players"`
	AutoBankruptcy bool  `mapstructure:"auto_bankruptcy"`
	Seed           int64 `mapstructure:"seed"`
}

// ReplayConfig controls what happens to a game's replay when it ends.
type ReplayConfig struct {
	// Dir receives verified replays of finished games. Empty verifies only.
	Dir string `mapstructure:"dir"`
}

const envPrefix = "MONOPOLY"

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist. MONOPOLY_* environment variables override both,
// e.g. MONOPOLY_SERVER_WEBSOCKET_ADDRESS.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := game.DefaultOptions()

	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 1024)
	v.SetDefault("server.websocket.send_buffer_size", 256)
	v.SetDefault("server.websocket.allowed_origins", []string{})
	v.SetDefault("server.grpc.address", ":17171")
	v.SetDefault("server.grpc.max_concurrent_streams", 100)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.starting_cash", defaults.StartingCash)
	v.SetDefault("game.pass_start_bonus", defaults.PassStartBonus)
	v.SetDefault("game.bail_amount", defaults.BailAmount)
	v.SetDefault("game.jail_turn_limit", defaults.JailTurnLimit)
	v.SetDefault("game.max_doubles", defaults.MaxDoubles)
	v.SetDefault("game.houses", defaults.Houses)
	v.SetDefault("game.hotels", defaults.Hotels)
	v.SetDefault("game.min_players", defaults.MinPlayers)
	v.SetDefault("game.auto_bankruptcy", defaults.AutoBankruptcy)
	v.SetDefault("game.seed", 0)

	v.SetDefault("replay.dir", "")
}

// Validate checks the listeners and the game rules.
func (c *Config) Validate() error {
	if c.Server.WebSocket.Address == "" {
		return errors.New("server.websocket.address is required")
	}
	if c.Server.GRPC.Address == "" {
		return errors.New("server.grpc.address is required")
	}
	if c.Server.WebSocket.SendBufferSize < 1 {
		return fmt.Errorf("server.websocket.send_buffer_size must be positive, got %d", c.Server.WebSocket.SendBufferSize)
	}
	if c.Server.GRPC.MaxConcurrentStreams < 1 {
		return fmt.Errorf("server.grpc.max_concurrent_streams must be positive, got %d", c.Server.GRPC.MaxConcurrentStreams)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	if err := c.GameOptions().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}

// GameOptions converts the game section into engine options.
func (c *Config) GameOptions() game.Options {
	return game.Options{
		StartingCash:   c.Game.StartingCash,
		PassStartBonus: c.Game.PassStartBonus,
		BailAmount:     c.Game.BailAmount,
		JailTurnLimit:  c.Game.JailTurnLimit,
		MaxDoubles:     c.Game.MaxDoubles,
		Houses:         c.Game.Houses,
		Hotels:         c.Game.Hotels,
		MinPlayers:     c.Game.MinPlayers,
		AutoBankruptcy: c.Game.AutoBankruptcy,
		Seed:           c.Game.Seed,
	}
}
