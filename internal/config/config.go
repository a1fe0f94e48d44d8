package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/padel-club/internal/draw"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type OAuthConfig struct {
	Key         string
	Secret      string
	CallbackURL string
}

// DrawConfig holds the draw defaults used when a request leaves them out.
type DrawConfig struct {
	DefaultSeeding     string `yaml:"default_seeding"`
	GroupSize          int    `yaml:"group_size"`
	QualifiersPerGroup int    `yaml:"qualifiers_per_group"`
}

type Config struct {
	Port            string
	DBPath          string
	MigrationsDir   string
	SessionLifetime time.Duration
	AllowedOrigins  []string
	AllowGuestLogin bool
	Discord         OAuthConfig
	Google          OAuthConfig
	Draw            DrawConfig
}

type fileConfig struct {
	Draw DrawConfig `yaml:"draw"`
}

// Load reads configuration from environment variables and .env file. The
// YAML file named by PADEL_CONFIG_FILE, when set, overlays the draw defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment variables")
	}

	lifetime, err := time.ParseDuration(getEnv("SESSION_LIFETIME", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SESSION_LIFETIME: %w", err)
	}

	defaults := draw.DefaultOptions()
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "padel.db"),
		MigrationsDir:   getEnv("MIGRATIONS_DIR", "./migrations"),
		SessionLifetime: lifetime,
		AllowedOrigins:  splitList(os.Getenv("ALLOWED_ORIGINS")),
		AllowGuestLogin: getEnvAsBool("ALLOW_GUEST_LOGIN", false),
		Discord: OAuthConfig{
			Key:         os.Getenv("DISCORD_KEY"),
			Secret:      os.Getenv("DISCORD_SECRET"),
			CallbackURL: os.Getenv("DISCORD_CALLBACK_URL"),
		},
		Google: OAuthConfig{
			Key:         os.Getenv("GOOGLE_KEY"),
			Secret:      os.Getenv("GOOGLE_SECRET"),
			CallbackURL: os.Getenv("GOOGLE_CALLBACK_URL"),
		},
		Draw: DrawConfig{
			DefaultSeeding:     string(defaults.Seeding),
			GroupSize:          defaults.GroupSize,
			QualifiersPerGroup: defaults.QualifiersPerGroup,
		},
	}

	if path := os.Getenv("PADEL_CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}

	if _, err := cfg.DrawOptions(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if fc.Draw.DefaultSeeding != "" {
		c.Draw.DefaultSeeding = fc.Draw.DefaultSeeding
	}
	if fc.Draw.GroupSize != 0 {
		c.Draw.GroupSize = fc.Draw.GroupSize
	}
	if fc.Draw.QualifiersPerGroup != 0 {
		c.Draw.QualifiersPerGroup = fc.Draw.QualifiersPerGroup
	}
	return nil
}

// DrawOptions converts the draw defaults for the generators.
func (c *Config) DrawOptions() (draw.Options, error) {
	seeding, err := draw.ParseSeeding(c.Draw.DefaultSeeding)
	if err != nil {
		return draw.Options{}, fmt.Errorf("invalid draw.default_seeding: %w", err)
	}
	if c.Draw.GroupSize < 2 {
		return draw.Options{}, fmt.Errorf("invalid draw.group_size %d: must be at least 2", c.Draw.GroupSize)
	}
	if c.Draw.QualifiersPerGroup < 1 {
		return draw.Options{}, fmt.Errorf("invalid draw.qualifiers_per_group %d: must be at least 1", c.Draw.QualifiersPerGroup)
	}
	return draw.Options{
		Seeding:            seeding,
		GroupSize:          c.Draw.GroupSize,
		QualifiersPerGroup: c.Draw.QualifiersPerGroup,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
