package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Fetcher FetcherConfig `yaml:"fetcher"`
	Images  ImagesConfig  `yaml:"images"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FetcherConfig holds the non-secret tuning knobs of the ingestion pipeline.
// Secrets (MONGO_URI, GEMINI_API_KEY, PEXELS_API_KEY, R2_*, JWT_SECRET) come
// from the environment only.
type FetcherConfig struct {
	// GeminiModel is the model name used for AI summarization.
	GeminiModel string `yaml:"gemini_model"`

	// MaxLinksPerSource caps how many candidate links one source may yield per run.
	MaxLinksPerSource int `yaml:"max_links_per_source"`

	// MinArticleChars rejects extracted bodies shorter than this (quality gate).
	MinArticleChars int `yaml:"min_article_chars"`

	// RequestTimeoutSeconds bounds every outbound HTTP request of a run.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// EnableRendering turns on headless-browser rendering for articles whose
	// static HTML carries no usable body.
	EnableRendering bool `yaml:"enable_rendering"`
}

type ImagesConfig struct {
	// MaxWidth is the width every stored image is downscaled to if wider.
	MaxWidth int `yaml:"max_width"`

	// StaticDir is where images land when object storage is not configured.
	StaticDir string `yaml:"static_dir"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	c.applyDefaults()
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func (c *AppConfig) applyDefaults() {
	if c.Fetcher.GeminiModel == "" {
		c.Fetcher.GeminiModel = "gemini-1.5-flash"
	}
	if c.Fetcher.MaxLinksPerSource <= 0 {
		c.Fetcher.MaxLinksPerSource = 10
	}
	if c.Fetcher.MinArticleChars <= 0 {
		c.Fetcher.MinArticleChars = 250
	}
	if c.Fetcher.RequestTimeoutSeconds <= 0 {
		c.Fetcher.RequestTimeoutSeconds = 20
	}
	if c.Images.MaxWidth <= 0 {
		c.Images.MaxWidth = 1200
	}
	if c.Images.StaticDir == "" {
		c.Images.StaticDir = filepath.Join("static", "images", "posts")
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
