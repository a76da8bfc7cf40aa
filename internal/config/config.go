// Package config loads process settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds process-level settings. Interaction tunables live in the
// store instead.
type Config struct {
	Addr        string
	DataDir     string
	LogFile     string
	Environment string
	CameraID    int // negative disables the camera
	FrameRate   int
	Objects     int
	ModelPath   string
	Tray        bool
	WebDir      string
	Width       float64
	Height      float64
}

// Production reports whether MUDRA_ENV is production.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// DBPath is the SQLite file inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// Load reads the given .env files, or ./.env when none are given, and
// then the environment. Missing files are not an error.
func Load(files ...string) *Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	dataDir := getEnv("MUDRA_DATA_DIR", defaultDataDir())
	width, height := getEnvAsSize("MUDRA_VIEWPORT", 1920, 1080)

	return &Config{
		Addr:        getEnv("MUDRA_ADDR", ":8080"),
		DataDir:     dataDir,
		LogFile:     getEnv("MUDRA_LOG_FILE", filepath.Join(dataDir, "mudra.log")),
		Environment: getEnv("MUDRA_ENV", "development"),
		CameraID:    getEnvAsInt("MUDRA_CAMERA", 0),
		FrameRate:   getEnvAsInt("MUDRA_FPS", 60),
		Objects:     getEnvAsInt("MUDRA_OBJECTS", 5),
		ModelPath:   getEnv("MUDRA_MODEL", ""),
		Tray:        getEnvAsBool("MUDRA_TRAY", false),
		WebDir:      getEnv("MUDRA_WEB_DIR", ""),
		Width:       width,
		Height:      height,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsSize parses "WIDTHxHEIGHT".
func getEnvAsSize(key string, w, h float64) (float64, float64) {
	ws, hs, ok := strings.Cut(getEnv(key, ""), "x")
	if !ok {
		return w, h
	}
	width, err1 := strconv.ParseFloat(ws, 64)
	height, err2 := strconv.ParseFloat(hs, 64)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return w, h
	}
	return width, height
}
