// Package config holds the explicit configuration of a documentation run.
//
// Values come from, in increasing priority: built-in defaults, an optional
// .repodoc.yaml in the working directory, REPODOC_* environment variables (a
// .env file is loaded into the environment first) and command line flags.
// Keys use the flag spelling; the environment form upper-cases the key and
// replaces dashes with underscores, e.g. chunk-size becomes REPODOC_CHUNK_SIZE.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dshills/repodoc/internal/discovery"
	"github.com/dshills/repodoc/internal/report"
	"github.com/dshills/repodoc/internal/summarizer"
)

// Configuration keys
const (
	KeyChunkSize      = "chunk-size"
	KeyTimeout        = "timeout"
	KeyPacing         = "pacing"
	KeyEndpoint       = "endpoint"
	KeyModel          = "model"
	KeyProvider       = "provider"
	KeyExcludeDirs    = "exclude-dirs"
	KeyExtensions     = "extensions"
	KeyFollowSymlinks = "follow-symlinks"
	KeySkipCombine    = "skip-combine-single"
	KeyCacheSize      = "cache-size"
	KeyDBPath         = "db"
	KeyKeep           = "keep"
	KeyTempDir        = "tmp"
	KeyOutput         = "out"
	KeyDebug          = "debug"
	KeyS3Endpoint     = "s3-endpoint"
	KeyS3Region       = "s3-region"
	KeyS3AccessKey    = "s3-access-key"
	KeyS3SecretKey    = "s3-secret-key"
	KeyS3UseSSL       = "s3-use-ssl"
	KeyGeminiAPIKey   = "gemini-api-key"
)

const (
	EnvPrefix      = "REPODOC"
	ConfigFileName = ".repodoc"

	DefaultOutput    = "documentation.md"
	DefaultTempDir   = "./Code_Repository"
	DefaultChunkSize = 8000
	DefaultS3Region  = "us-east-1"
)

// Validation errors
var (
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
	ErrInvalidTimeout   = errors.New("call timeout must be positive")
	ErrInvalidPacing    = errors.New("pacing delay cannot be negative")
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrInvalidCacheSize = errors.New("cache size cannot be negative")
)

// S3Config addresses an S3-compatible object store for s3:// outputs
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Config is the full configuration of a documentation run
type Config struct {
	// Chunking and backend
	ChunkSize       int
	CallTimeout     time.Duration
	PacingDelay     time.Duration
	BackendEndpoint string
	Model           string
	Provider        string
	GeminiAPIKey    string
	CacheSize       int
	Debug           bool

	// Discovery
	ExcludeDirs    []string
	Extensions     []string
	FollowSymlinks bool

	// Aggregation
	SkipCombineForSingleChunk bool

	// Run history; empty disables recording
	DBPath string

	// Acquisition and output
	Keep    bool
	TempDir string
	Output  string
	S3      S3Config
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		ChunkSize:       DefaultChunkSize,
		CallTimeout:     summarizer.DefaultCallTimeout,
		PacingDelay:     summarizer.DefaultPacingDelay,
		BackendEndpoint: summarizer.DefaultOllamaEndpoint,
		Model:           summarizer.DefaultOllamaModel,
		Provider:        summarizer.ProviderOllama,
		CacheSize:       summarizer.DefaultCacheSize,
		ExcludeDirs:     append([]string(nil), discovery.DefaultExcludeDirs...),
		Extensions:      append([]string(nil), discovery.DefaultExtensions...),
		TempDir:         DefaultTempDir,
		Output:          DefaultOutput,
		S3:              S3Config{Region: DefaultS3Region, UseSSL: true},
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChunkSize, c.ChunkSize)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.CallTimeout)
	}
	if c.PacingDelay < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPacing, c.PacingDelay)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.CacheSize)
	}
	if !summarizer.KnownProvider(c.Provider) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	return nil
}

// DiscoveryOptions returns the discovery settings of the configuration
func (c Config) DiscoveryOptions() discovery.Options {
	return discovery.Options{
		ExcludeDirs:    c.ExcludeDirs,
		Extensions:     c.Extensions,
		FollowSymlinks: c.FollowSymlinks,
	}
}

// ClientConfig returns the per-call policies of the summarization client
func (c Config) ClientConfig() summarizer.ClientConfig {
	cc := summarizer.DefaultClientConfig()
	cc.CallTimeout = c.CallTimeout
	cc.PacingDelay = c.PacingDelay
	cc.CacheSize = c.CacheSize
	cc.Debug = c.Debug
	return cc
}

// ProviderConfig returns the provider selection of the configuration
func (c Config) ProviderConfig() summarizer.Config {
	return summarizer.Config{
		Provider: c.Provider,
		Endpoint: c.BackendEndpoint,
		Model:    c.Model,
		APIKey:   c.GeminiAPIKey,
	}
}

// ObjectStore returns the S3 settings used by object store sinks
func (c Config) ObjectStore() report.S3Config {
	return report.S3Config{
		Endpoint:  c.S3.Endpoint,
		Region:    c.S3.Region,
		AccessKey: c.S3.AccessKey,
		SecretKey: c.S3.SecretKey,
		UseSSL:    c.S3.UseSSL,
	}
}

// NewViper returns a viper instance wired for environment variables and the
// optional config file, with defaults registered
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyGeminiAPIKey, EnvPrefix+"_GEMINI_API_KEY", summarizer.EnvGeminiAPIKey)
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	return v
}

// SetDefaults registers the defaults of Default under their keys
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyChunkSize, d.ChunkSize)
	v.SetDefault(KeyTimeout, d.CallTimeout)
	v.SetDefault(KeyPacing, d.PacingDelay)
	v.SetDefault(KeyEndpoint, d.BackendEndpoint)
	v.SetDefault(KeyProvider, d.Provider)
	v.SetDefault(KeyCacheSize, d.CacheSize)
	v.SetDefault(KeyExcludeDirs, d.ExcludeDirs)
	v.SetDefault(KeyExtensions, d.Extensions)
	v.SetDefault(KeyTempDir, d.TempDir)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyDBPath, d.DBPath)
	v.SetDefault(KeyS3Region, d.S3.Region)
	v.SetDefault(KeyS3UseSSL, d.S3.UseSSL)
}

// LoadDotEnv loads a .env file from the working directory when present
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads the configuration from v. A missing config file is not an error;
// a malformed one is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		ChunkSize:                 v.GetInt(KeyChunkSize),
		CallTimeout:               v.GetDuration(KeyTimeout),
		PacingDelay:               v.GetDuration(KeyPacing),
		BackendEndpoint:           v.GetString(KeyEndpoint),
		Model:                     v.GetString(KeyModel),
		Provider:                  strings.ToLower(v.GetString(KeyProvider)),
		GeminiAPIKey:              v.GetString(KeyGeminiAPIKey),
		CacheSize:                 v.GetInt(KeyCacheSize),
		Debug:                     v.GetBool(KeyDebug),
		ExcludeDirs:               splitList(v.GetStringSlice(KeyExcludeDirs)),
		Extensions:                splitList(v.GetStringSlice(KeyExtensions)),
		FollowSymlinks:            v.GetBool(KeyFollowSymlinks),
		SkipCombineForSingleChunk: v.GetBool(KeySkipCombine),
		DBPath:                    v.GetString(KeyDBPath),
		Keep:                      v.GetBool(KeyKeep),
		TempDir:                   v.GetString(KeyTempDir),
		Output:                    v.GetString(KeyOutput),
		S3: S3Config{
			Endpoint:  v.GetString(KeyS3Endpoint),
			Region:    v.GetString(KeyS3Region),
			AccessKey: v.GetString(KeyS3AccessKey),
			SecretKey: v.GetString(KeyS3SecretKey),
			UseSSL:    v.GetBool(KeyS3UseSSL),
		},
	}
	if cfg.Model == "" {
		cfg.Model = summarizer.DefaultModel(cfg.Provider)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitList flattens comma separated entries and drops blanks
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
