package configuration

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultMaxImageBytes is the canonical image size policy when the config
// file does not set one.
const DefaultMaxImageBytes = 10 << 20 // 10 MiB

type MongoConfig struct {
	Uri                     string `json:"uri"`
	Database                string `json:"database"`
	MessagesCollection      string `json:"messagesCollection"`
	ConversationsCollection string `json:"conversationsCollection"`
	InvitesCollection       string `json:"invitesCollection"`
	UsersCollection         string `json:"usersCollection"`
	SocketRoute             string `json:"socketRoute"`
}

type ServerConfig struct {
	AppPort    int `json:"app_port"`
	SocketPort int `json:"socket_port"`
}

type CloudinaryConfig struct {
	CloudName string `json:"cloud_name"`
	ApiKey    string `json:"api_key"`
	ApiSecret string `json:"api_secret"`
	Folder    string `json:"folder"`
}

type LimitsConfig struct {
	MaxImageBytes int64 `json:"maxImageBytes"`
}

type Config struct {
	ChatDatabase MongoConfig      `json:"mongo"`
	Server       ServerConfig     `json:"server"`
	Cloudinary   CloudinaryConfig `json:"cloudinary"`
	Limits       LimitsConfig     `json:"limits"`
}

func LoadConfig(config_path string) (*Config, error) {
	// .env is optional; secrets may come from the environment directly
	_ = godotenv.Load()

	file, err := os.ReadFile(config_path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = json.Unmarshal(file, &config)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(&config)

	if config.Limits.MaxImageBytes <= 0 {
		config.Limits.MaxImageBytes = DefaultMaxImageBytes
	}

	return &config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MONGO_URI"); v != "" {
		config.ChatDatabase.Uri = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Server.AppPort = p
		}
	}
	if v := os.Getenv("SOCKET_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Server.SocketPort = p
		}
	}
	if v := os.Getenv("CLOUD_NAME"); v != "" {
		config.Cloudinary.CloudName = v
	}
	if v := os.Getenv("CLOUD_API_KEY"); v != "" {
		config.Cloudinary.ApiKey = v
	}
	if v := os.Getenv("CLOUD_API_SECRET"); v != "" {
		config.Cloudinary.ApiSecret = v
	}
}
