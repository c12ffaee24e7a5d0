package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server       ServerSettings       `json:"server"`
	Metadata     MetadataSettings     `json:"metadata"`
	Cache        CacheSettings        `json:"cache"`
	Availability AvailabilitySettings `json:"availability"`
	Transfer     TransferSettings     `json:"transfer"`
	Log          LogConfig            `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// MetadataProvider selects which remote metadata API backs the catalog.
type MetadataProvider string

const (
	MetadataProviderTMDB MetadataProvider = "tmdb"
	MetadataProviderOMDb MetadataProvider = "omdb"
)

// FallbackMode controls what the trending listing shows when the provider is unavailable.
type FallbackMode string

const (
	FallbackAuto   FallbackMode = "auto"   // sample set for omdb, empty for tmdb
	FallbackSample FallbackMode = "sample" // always the curated sample set
	FallbackEmpty  FallbackMode = "empty"  // always an empty listing
)

type MetadataSettings struct {
	Provider              MetadataProvider `json:"provider"`
	APIKey                string           `json:"apiKey"`
	BaseURL               string           `json:"baseUrl"`
	ImageBaseURL          string           `json:"imageBaseUrl,omitempty"` // tmdb only
	Language              string           `json:"language"`
	RequestTimeoutSeconds int              `json:"requestTimeoutSeconds"`
	MaxAttempts           int              `json:"maxAttempts"`   // 1 = fail fast
	HydrateSearch         bool             `json:"hydrateSearch"` // fetch full details for every search hit
	TrendingSeeds         []string         `json:"trendingSeeds"` // used when the provider has no trending feed
	Fallback              FallbackMode     `json:"fallback"`
}

type CacheSettings struct {
	DefaultTTLSeconds  int  `json:"defaultTtlSeconds"`
	TrendingTTLSeconds int  `json:"trendingTtlSeconds"`
	SearchTTLSeconds   int  `json:"searchTtlSeconds"`
	DetailsTTLSeconds  int  `json:"detailsTtlSeconds"`
	MaxEntries         int  `json:"maxEntries"`
	SingleFlight       bool `json:"singleFlight"` // collapse concurrent misses on the same key
}

// AvailabilitySettings points at an optional JSON file replacing the built-in table.
type AvailabilitySettings struct {
	File string `json:"file"`
}

type TransferSettings struct {
	ProxyTimeoutSeconds int `json:"proxyTimeoutSeconds"` // 0 = no limit
}

// LogConfig represents logging configuration
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

const (
	defaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL = "https://image.tmdb.org/t/p"
	defaultOMDbBaseURL      = "https://www.omdbapi.com/"
)

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 3000},
		Metadata: MetadataSettings{
			Provider:              MetadataProviderTMDB,
			APIKey:                "",
			BaseURL:               defaultTMDBBaseURL,
			ImageBaseURL:          defaultTMDBImageBaseURL,
			Language:              "en-US",
			RequestTimeoutSeconds: 10,
			MaxAttempts:           1,
			TrendingSeeds:         []string{"avengers", "batman", "superman", "spiderman", "iron man"},
			Fallback:              FallbackAuto,
		},
		Cache: CacheSettings{
			DefaultTTLSeconds:  600,
			TrendingTTLSeconds: 600,
			SearchTTLSeconds:   600,
			DetailsTTLSeconds:  3600,
			MaxEntries:         1024,
		},
		Log: LogConfig{
			File:       "cache/logs/moviesbox.log",
			Level:      "info",
			MaxSize:    50, // 50 MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

// applyDefaults fills zero values left behind by older or hand-written config files.
func applyDefaults(s *Settings) {
	d := DefaultSettings()

	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.Port <= 0 {
		s.Server.Port = d.Server.Port
	}

	s.Metadata.Provider = MetadataProvider(strings.ToLower(strings.TrimSpace(string(s.Metadata.Provider))))
	if s.Metadata.Provider == "" {
		s.Metadata.Provider = d.Metadata.Provider
	}
	s.Metadata.APIKey = strings.TrimSpace(s.Metadata.APIKey)
	if strings.TrimSpace(s.Metadata.BaseURL) == "" {
		if s.Metadata.Provider == MetadataProviderOMDb {
			s.Metadata.BaseURL = defaultOMDbBaseURL
		} else {
			s.Metadata.BaseURL = defaultTMDBBaseURL
		}
	}
	if s.Metadata.Provider == MetadataProviderTMDB && strings.TrimSpace(s.Metadata.ImageBaseURL) == "" {
		s.Metadata.ImageBaseURL = d.Metadata.ImageBaseURL
	}
	if strings.TrimSpace(s.Metadata.Language) == "" {
		s.Metadata.Language = d.Metadata.Language
	}
	if s.Metadata.RequestTimeoutSeconds <= 0 {
		s.Metadata.RequestTimeoutSeconds = d.Metadata.RequestTimeoutSeconds
	}
	if s.Metadata.MaxAttempts <= 0 {
		s.Metadata.MaxAttempts = d.Metadata.MaxAttempts
	}
	if len(s.Metadata.TrendingSeeds) == 0 {
		s.Metadata.TrendingSeeds = d.Metadata.TrendingSeeds
	}
	if s.Metadata.Fallback == "" {
		s.Metadata.Fallback = d.Metadata.Fallback
	}

	if s.Cache.DefaultTTLSeconds <= 0 {
		s.Cache.DefaultTTLSeconds = d.Cache.DefaultTTLSeconds
	}
	if s.Cache.TrendingTTLSeconds <= 0 {
		s.Cache.TrendingTTLSeconds = s.Cache.DefaultTTLSeconds
	}
	if s.Cache.SearchTTLSeconds <= 0 {
		s.Cache.SearchTTLSeconds = s.Cache.DefaultTTLSeconds
	}
	if s.Cache.DetailsTTLSeconds <= 0 {
		s.Cache.DetailsTTLSeconds = s.Cache.DefaultTTLSeconds
	}
	if s.Cache.MaxEntries <= 0 {
		s.Cache.MaxEntries = d.Cache.MaxEntries
	}

	if s.Log.Level == "" {
		s.Log.Level = d.Log.Level
	}
}

// Validate reports settings the service cannot start with.
func (s Settings) Validate() error {
	switch s.Metadata.Provider {
	case MetadataProviderTMDB, MetadataProviderOMDb:
	default:
		return errors.New("metadata.provider must be \"tmdb\" or \"omdb\"")
	}
	switch s.Metadata.Fallback {
	case FallbackAuto, FallbackSample, FallbackEmpty:
	default:
		return errors.New("metadata.fallback must be \"auto\", \"sample\" or \"empty\"")
	}
	return nil
}

// TTL helpers convert the configured seconds into durations.

func (c CacheSettings) TrendingTTL() time.Duration {
	return time.Duration(c.TrendingTTLSeconds) * time.Second
}

func (c CacheSettings) SearchTTL() time.Duration {
	return time.Duration(c.SearchTTLSeconds) * time.Second
}

func (c CacheSettings) DetailsTTL() time.Duration {
	return time.Duration(c.DetailsTTLSeconds) * time.Second
}

func (m MetadataSettings) RequestTimeout() time.Duration {
	return time.Duration(m.RequestTimeoutSeconds) * time.Second
}

// ApplyEnv overlays environment overrides on top of the loaded settings.
func ApplyEnv(s *Settings, getenv func(string) string) {
	if key := strings.TrimSpace(getenv("MOVIESBOX_API_KEY")); key != "" {
		s.Metadata.APIKey = key
	}
	if provider := strings.TrimSpace(getenv("MOVIESBOX_PROVIDER")); provider != "" {
		previous := s.Metadata.Provider
		s.Metadata.Provider = MetadataProvider(strings.ToLower(provider))
		if previous != s.Metadata.Provider {
			// The base URL belongs to the previous provider.
			s.Metadata.BaseURL = ""
			s.Metadata.ImageBaseURL = ""
			applyDefaults(s)
		}
	}
	if port, err := strconv.Atoi(strings.TrimSpace(getenv("PORT"))); err == nil && port > 0 {
		s.Server.Port = port
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	fs   afero.Fs
	path string
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), configPath)
}

// NewManagerWithFs is NewManager over an arbitrary filesystem.
func NewManagerWithFs(fsys afero.Fs, configPath string) *Manager {
	return &Manager{fs: fsys, path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads the settings file from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := m.fs.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := m.fs.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}
	applyDefaults(&s)
	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}

// ResolvePath picks the config path from the flag value, the environment, or the default.
func ResolvePath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("MOVIESBOX_CONFIG")); p != "" {
		return p
	}
	return filepath.Join("cache", "settings.json")
}
