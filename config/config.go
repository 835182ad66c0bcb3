package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"moderation-bot/model"
)

// Load loads the configuration from environment variables and the optional
// data/config.yaml tuning file.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	v := viper.New()
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "data/config.yaml"
	}
	v.SetConfigFile(configPath)
	v.SetDefault("action_db_path", "data/actions.db")
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.initial_interval", 2*time.Second)
	v.SetDefault("retry.max_interval", time.Minute)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Printf("Info: %s not found, using defaults", configPath)
		} else {
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	}

	var servers []model.ServerConfig
	if err := v.UnmarshalKey("servers", &servers); err != nil {
		return nil, fmt.Errorf("failed to parse server configs: %w", err)
	}
	serverConfigs := make(map[string]model.ServerConfig, len(servers))
	for _, server := range servers {
		serverConfigs[server.GuildID] = server
	}

	cfg := &model.Config{
		BotToken:     token,
		AppID:        appID,
		ActionDBPath: v.GetString("action_db_path"),
		Retry: model.RetryConfig{
			MaxAttempts:     v.GetUint64("retry.max_attempts"),
			InitialInterval: v.GetDuration("retry.initial_interval"),
			MaxInterval:     v.GetDuration("retry.max_interval"),
		},
		ServerConfigs: serverConfigs,
	}

	return cfg, nil
}
