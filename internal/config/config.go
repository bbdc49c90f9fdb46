// Package config reads the bot configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	Host      string `env:"HOST"`
	Port      int    `env:"PORT,default=3000" validate:"min=1,max=65535"`
	LogLevel  string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFormat string `env:"LOG_FORMAT,default=text" validate:"oneof=text json"`

	CommandPrefix string `env:"COMMAND_PREFIX,default=/" validate:"required,max=3"`

	// Session store for whatsmeow: postgres when DatabaseURL is set (URL or
	// key=value DSN, as lib/pq accepts), otherwise a sqlite file at
	// SessionPath.
	DatabaseURL string `env:"DATABASE_URL"`
	SessionPath string `env:"SESSION_PATH,default=session.db" validate:"required"`
	PairPhone   string `env:"PAIR_PHONE" validate:"omitempty,e164|number,min=7,max=16"`

	MuteBackend     string `env:"MUTE_BACKEND,default=file" validate:"oneof=file redis mongo memory"`
	MuteFile        string `env:"MUTE_FILE,default=muted.json" validate:"required_if=MuteBackend file"`
	RedisURL        string `env:"REDIS_URL,default=redis://localhost:6379/0" validate:"required_if=MuteBackend redis"`
	RedisKey        string `env:"REDIS_KEY,default=groupguard:muted"`
	MongoURI        string `env:"MONGO_URI,default=mongodb://localhost:27017" validate:"required_if=MuteBackend mongo"`
	MongoDatabase   string `env:"MONGO_DATABASE,default=groupguard" validate:"required_if=MuteBackend mongo"`
	MongoCollection string `env:"MONGO_COLLECTION,default=moderation" validate:"required_if=MuteBackend mongo"`
}

// Load reads an optional dotenv file, then the process environment.
// Variables already set in the environment win over the file.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return FromEnvSet(es)
}

func FromEnvSet(es env.EnvSet) (Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
