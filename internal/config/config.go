package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
	"github.com/joho/godotenv"
)

const (
	defaultDocumentsPath   = "../public"
	defaultCommitDays      = 30
	defaultRefreshInterval = 24 * time.Hour
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultServerPort      = ":8081"
)

type Config struct {
	DocumentsPath       string
	Users               []string
	CommitDays          int
	GitHubToken         string
	PersonalGitHubToken string
	GitHubOrg           string
	DBURL               string
	RabbitMQURL         string
	RefreshInterval     time.Duration
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	ServerPort          string
	Debug               bool
}

// * LoadConfiguration reads the .env file when present, then the process environment
func LoadConfiguration() (*Config, error) {
	cfg := &Config{
		DocumentsPath:       DocumentsPath(),
		Users:               ParseUsers(os.Getenv("GITHUB_USERS")),
		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		PersonalGitHubToken: os.Getenv("PERSONAL_GITHUB_TOKEN"),
		GitHubOrg:           os.Getenv("GITHUB_ORG"),
		DBURL:               os.Getenv("DB_PATH"),
		RabbitMQURL:         os.Getenv("RABBITMQ_URL"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:         os.Getenv("OPENAI_MODEL"),
		ServerPort:          os.Getenv("SERVER_PORT"),
		Debug:               os.Getenv("DEBUG") == "true",
	}

	if cfg.DBURL == "" {
		return nil, errors.New("DB_PATH is required")
	}

	cfg.CommitDays = defaultCommitDays
	if raw := os.Getenv("COMMIT_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("COMMIT_DAYS must be a positive integer, got %q", raw)
		}
		cfg.CommitDays = days
	}

	cfg.RefreshInterval = defaultRefreshInterval
	if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("REFRESH_INTERVAL must be a positive duration, got %q", raw)
		}
		cfg.RefreshInterval = interval
	}

	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = defaultOpenAIModel
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = defaultServerPort
	}

	if cfg.GitHubToken == "" && cfg.PersonalGitHubToken == "" {
		logger.Warn("no GitHub token configured, activity documents will be empty")
	}

	logger.Info("✅ env content loaded successfully 🎉")
	return cfg, nil
}

// * DocumentsPath resolves the team notes root on its own, for commands that need no database
func DocumentsPath() string {
	_ = godotenv.Load(".env")

	if path := os.Getenv("DOCUMENTS_PATH"); path != "" {
		return path
	}
	return defaultDocumentsPath
}

// * ParseUsers splits a comma separated list of GitHub logins, dropping blanks
func ParseUsers(raw string) []string {
	users := []string{}
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	return users
}
