package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
)

// Config хранит все настройки конвейера. Заполняется один раз при старте
// из JSON-файла и переменных окружения; дальше передаётся по ссылке.
type Config struct {
	// FeedsCSVURL — адрес опубликованного CSV со списком RSS-лент.
	FeedsCSVURL string `json:"feeds_csv_url"`

	// SpreadsheetID и WorksheetName задают лист со статьями.
	SpreadsheetID   string `json:"spreadsheet_id"`
	WorksheetName   string `json:"worksheet_name"`
	CredentialsFile string `json:"credentials_file"`

	// DatabaseURL — строка подключения к PostgreSQL.
	DatabaseURL string `json:"database_url"`

	// ExportBasePath — корневой каталог для markdown-файлов.
	ExportBasePath string `json:"export_base_path"`

	// DBReadLimit — сколько последних записей читать из БД для дедупликации.
	DBReadLimit int `json:"db_read_limit"`

	// PollInterval — период запуска конвейера в минутах; 0 означает один запуск.
	PollInterval int `json:"poll_interval"`

	// HTTPAddr — адрес health/metrics-сервера в режиме периодического запуска.
	HTTPAddr string `json:"http_addr"`
}

// LoadConfig читает JSON-файл по пути path, накладывает переменные окружения
// и значения по умолчанию, затем валидирует результат.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}

	mergeEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные настройки. Ошибки конфигурации фатальны
// и должны всплывать до начала какой-либо работы.
func (cfg *Config) Validate() error {
	if cfg.FeedsCSVURL == "" {
		return errors.New("feeds_csv_url is required")
	}
	if _, err := url.ParseRequestURI(cfg.FeedsCSVURL); err != nil {
		return fmt.Errorf("invalid feeds_csv_url: %s", cfg.FeedsCSVURL)
	}
	if cfg.SpreadsheetID == "" {
		return errors.New("spreadsheet_id is required")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return fmt.Errorf("credentials file not found: %s", cfg.CredentialsFile)
		}
	}
	if cfg.DBReadLimit < 0 {
		return errors.New("db_read_limit must be ≥ 0")
	}
	if cfg.PollInterval < 0 {
		return errors.New("poll_interval must be ≥ 0")
	}
	return nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SHEETS_CREDENTIALS_FILE"); v != "" {
		cfg.CredentialsFile = v
	}
	if v := os.Getenv("FEEDS_CSV_URL"); v != "" {
		cfg.FeedsCSVURL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.WorksheetName == "" {
		cfg.WorksheetName = "Articles"
	}
	if cfg.ExportBasePath == "" {
		cfg.ExportBasePath = "data"
	}
	if cfg.DBReadLimit == 0 {
		cfg.DBReadLimit = 1000
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
}
