package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is read when no config path is given and the file exists.
const DefaultPath = "config/default.toml"

// MaxTickCount is the largest accepted chart tick_count.
const MaxTickCount = 20

type Config struct {
	Chart ChartConfig
	Data  DataConfig
	API   APIConfig
	Log   LogConfig
}

type ChartConfig struct {
	MarginTop     float64
	MarginRight   float64
	MarginBottom  float64
	MarginLeft    float64
	TickCount     int
	DateLayout    string
	DefaultWidth  float64
	DefaultHeight float64
}

type DataConfig struct {
	Path               string
	ReloadIntervalSecs int
	DefaultSeries      string
}

type APIConfig struct {
	BindAddress        string
	CORSOrigins        []string
	RateLimitPerSecond int
	MaxWidth           float64
	MaxHeight          float64
}

type LogConfig struct {
	Level  string
	Format string
}

// fileConfig mirrors config/default.toml. Pointer fields distinguish keys that
// are absent from keys set to their zero value.
type fileConfig struct {
	Chart struct {
		MarginTop     *float64 `toml:"margin_top"`
		MarginRight   *float64 `toml:"margin_right"`
		MarginBottom  *float64 `toml:"margin_bottom"`
		MarginLeft    *float64 `toml:"margin_left"`
		TickCount     *int     `toml:"tick_count"`
		DateLayout    *string  `toml:"date_layout"`
		DefaultWidth  *float64 `toml:"default_width"`
		DefaultHeight *float64 `toml:"default_height"`
	} `toml:"chart"`
	Data struct {
		Path               *string `toml:"path"`
		ReloadIntervalSecs *int    `toml:"reload_interval_secs"`
		DefaultSeries      *string `toml:"default_series"`
	} `toml:"data"`
	API struct {
		BindAddress        *string   `toml:"bind_address"`
		CORSOrigins        *[]string `toml:"cors_origins"`
		RateLimitPerSecond *int      `toml:"rate_limit_per_second"`
		MaxWidth           *float64  `toml:"max_width"`
		MaxHeight          *float64  `toml:"max_height"`
	} `toml:"api"`
	Log struct {
		Level  *string `toml:"level"`
		Format *string `toml:"format"`
	} `toml:"log"`
}

// Load builds the configuration from environment variables (MATCHCHART__SECTION__KEY)
// and then applies the TOML file at path, if it exists. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Chart: ChartConfig{
			MarginTop:     getEnvFloat("MATCHCHART__CHART__MARGIN_TOP", 10),
			MarginRight:   getEnvFloat("MATCHCHART__CHART__MARGIN_RIGHT", 10),
			MarginBottom:  getEnvFloat("MATCHCHART__CHART__MARGIN_BOTTOM", 20),
			MarginLeft:    getEnvFloat("MATCHCHART__CHART__MARGIN_LEFT", 10),
			TickCount:     getEnvInt("MATCHCHART__CHART__TICK_COUNT", 4),
			DateLayout:    getEnv("MATCHCHART__CHART__DATE_LAYOUT", "02 Jan"),
			DefaultWidth:  getEnvFloat("MATCHCHART__CHART__DEFAULT_WIDTH", 640),
			DefaultHeight: getEnvFloat("MATCHCHART__CHART__DEFAULT_HEIGHT", 320),
		},
		Data: DataConfig{
			Path:               getEnv("MATCHCHART__DATA__PATH", ""),
			ReloadIntervalSecs: getEnvInt("MATCHCHART__DATA__RELOAD_INTERVAL_SECS", 5),
			DefaultSeries:      getEnv("MATCHCHART__DATA__DEFAULT_SERIES", "man-city"),
		},
		API: APIConfig{
			BindAddress:        getEnv("MATCHCHART__API__BIND_ADDRESS", "0.0.0.0:8080"),
			CORSOrigins:        getEnvSlice("MATCHCHART__API__CORS_ORIGINS", []string{"http://localhost:3000"}),
			RateLimitPerSecond: getEnvInt("MATCHCHART__API__RATE_LIMIT_PER_SECOND", 20),
			MaxWidth:           getEnvFloat("MATCHCHART__API__MAX_WIDTH", 4096),
			MaxHeight:          getEnvFloat("MATCHCHART__API__MAX_HEIGHT", 4096),
		},
		Log: LogConfig{
			Level:  getEnv("MATCHCHART__LOG__LEVEL", "info"),
			Format: getEnv("MATCHCHART__LOG__FORMAT", "auto"),
		},
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.applyTOML(data); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyTOML(data []byte) error {
	var f fileConfig
	if err := toml.Unmarshal(data, &f); err != nil {
		return err
	}

	setFloat(&c.Chart.MarginTop, f.Chart.MarginTop)
	setFloat(&c.Chart.MarginRight, f.Chart.MarginRight)
	setFloat(&c.Chart.MarginBottom, f.Chart.MarginBottom)
	setFloat(&c.Chart.MarginLeft, f.Chart.MarginLeft)
	setInt(&c.Chart.TickCount, f.Chart.TickCount)
	setString(&c.Chart.DateLayout, f.Chart.DateLayout)
	setFloat(&c.Chart.DefaultWidth, f.Chart.DefaultWidth)
	setFloat(&c.Chart.DefaultHeight, f.Chart.DefaultHeight)

	setString(&c.Data.Path, f.Data.Path)
	setInt(&c.Data.ReloadIntervalSecs, f.Data.ReloadIntervalSecs)
	setString(&c.Data.DefaultSeries, f.Data.DefaultSeries)

	setString(&c.API.BindAddress, f.API.BindAddress)
	if f.API.CORSOrigins != nil {
		c.API.CORSOrigins = *f.API.CORSOrigins
	}
	setInt(&c.API.RateLimitPerSecond, f.API.RateLimitPerSecond)
	setFloat(&c.API.MaxWidth, f.API.MaxWidth)
	setFloat(&c.API.MaxHeight, f.API.MaxHeight)

	setString(&c.Log.Level, f.Log.Level)
	setString(&c.Log.Format, f.Log.Format)
	return nil
}

// Validate rejects settings the chart cannot be drawn with.
func (c *Config) Validate() error {
	if c.Chart.MarginTop < 0 || c.Chart.MarginRight < 0 || c.Chart.MarginBottom < 0 || c.Chart.MarginLeft < 0 {
		return errors.New("chart margins must not be negative")
	}
	if c.Chart.TickCount <= 0 || c.Chart.TickCount > MaxTickCount {
		return fmt.Errorf("chart tick_count must be between 1 and %d, got %d", MaxTickCount, c.Chart.TickCount)
	}
	if c.Chart.DefaultWidth < 0 || c.Chart.DefaultHeight < 0 {
		return errors.New("chart default size must not be negative")
	}
	if c.API.BindAddress == "" {
		return errors.New("api bind_address is required")
	}
	if c.API.MaxWidth <= 0 || c.API.MaxHeight <= 0 {
		return errors.New("api max_width and max_height must be positive")
	}
	if c.Data.ReloadIntervalSecs < 0 {
		return errors.New("data reload_interval_secs must not be negative")
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
