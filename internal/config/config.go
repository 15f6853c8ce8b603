package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds tool paths and defaults that rarely change per invocation.
// Values come from an optional YAML file, overridden by environment
// variables; command-line flags override both.
type Config struct {
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Whisper WhisperConfig `yaml:"whisper"`
	OCR     OCRConfig     `yaml:"ocr"`
	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
}

type OCRConfig struct {
	EasyOCRPath string   `yaml:"easyocr_path"`
	Languages   []string `yaml:"languages"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type WatchConfig struct {
	Extensions []string `yaml:"extensions"`
}

// Load reads the YAML config at path when it exists, then applies
// environment overrides and defaults. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.FFmpeg.FFmpegPath, "VIDSPECT_FFMPEG")
	setFromEnv(&c.FFmpeg.FFprobePath, "VIDSPECT_FFPROBE")
	setFromEnv(&c.Whisper.BinaryPath, "VIDSPECT_WHISPER_BIN")
	setFromEnv(&c.Whisper.ModelPath, "VIDSPECT_WHISPER_MODEL")
	setFromEnv(&c.OCR.EasyOCRPath, "VIDSPECT_EASYOCR")
	setFromEnv(&c.Logging.Level, "VIDSPECT_LOG_LEVEL")
}

func (c *Config) applyDefaults() {
	if c.FFmpeg.FFmpegPath == "" {
		c.FFmpeg.FFmpegPath = "ffmpeg"
	}
	if c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = "ffprobe"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = ".cache/bin/whisper.cpp"
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = ".cache/models/ggml-base.bin"
	}
	if c.OCR.EasyOCRPath == "" {
		c.OCR.EasyOCRPath = "easyocr"
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = []string{"en"}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = []string{".mp4", ".mov", ".mkv", ".webm", ".avi"}
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
