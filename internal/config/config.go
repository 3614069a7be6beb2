package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config - все настройки бота, читаются из окружения (.env подхватывается,
// если лежит рядом)
type Config struct {
	Token       string `env:"TWITCH_TOKEN,required"`
	Nick        string `env:"TWITCH_NICK,required"`
	Channel     string `env:"TWITCH_CHANNEL,required"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	LogFile    string `env:"LOG_FILE" envDefault:"casket.log"`
	ArchiveDir string `env:"ARCHIVE_DIR" envDefault:"logging"`

	// Боты, чьи сообщения никогда не считаются ставками
	IgnoredUsers []string `env:"IGNORED_USERS" envDefault:"nightbot,lehrulesbot"`

	// Локальные выгрузки эмоутов; если заданы URL - ходим в API
	BTTVFile string `env:"BTTV_FILE" envDefault:"bttv.json"`
	FFZFile  string `env:"FFZ_FILE" envDefault:"ffz.json"`
	BTTVURL  string `env:"BTTV_URL"`
	FFZURL   string `env:"FFZ_URL"`
}

// Load - .env плюс переменные окружения
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
