package model

import "time"

// ServerConfig holds per-guild settings.
type ServerConfig struct {
	Name             string   `mapstructure:"name"`
	GuildID          string   `mapstructure:"guild_id"`
	MutedRoleID      string   `mapstructure:"muted_role_id"`
	ModeratorRoleIDs []string `mapstructure:"moderator_role_ids"`
	Enable           bool     `mapstructure:"enable"`
}

// RetryConfig bounds the revert retry loop for recoverable failures.
type RetryConfig struct {
	MaxAttempts     uint64        `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

// Config stores the application configuration.
type Config struct {
	BotToken      string
	AppID         string
	ActionDBPath  string
	Retry         RetryConfig
	ServerConfigs map[string]ServerConfig
}
