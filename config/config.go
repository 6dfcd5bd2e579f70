package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del settler.
type Config struct {
	Settler SettlerConfig `yaml:"settler"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// SettlerConfig controla el comportamiento del pipeline.
type SettlerConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	FetchWorkers    int    `yaml:"fetch_workers"`
	UserAddress     string `yaml:"user_address"`
}

// LedgerConfig apunta al contrato PredictionMarketplace en Polygon.
type LedgerConfig struct {
	RPCURL          string `yaml:"rpc_url"`
	ContractAddress string `yaml:"contract_address"`
}

// StorageConfig controla dónde se persiste el histórico de ciclos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:" o vacío para desactivar
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// RefreshInterval devuelve el intervalo de refresco como time.Duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Settler.IntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYGON_RPC_URL"); v != "" {
		cfg.Ledger.RPCURL = v
	}
	if v := os.Getenv("PREDICTION_MARKET_ADDRESS"); v != "" {
		cfg.Ledger.ContractAddress = v
	}
	if v := os.Getenv("SYN_USER_ADDRESS"); v != "" {
		cfg.Settler.UserAddress = v
	}
}

// setDefaults aplica los valores por defecto a los campos vacíos.
func setDefaults(cfg *Config) {
	if cfg.Settler.IntervalSeconds <= 0 {
		cfg.Settler.IntervalSeconds = 30 // el intervalo del frontend original
	}
	if cfg.Settler.FetchWorkers <= 0 {
		cfg.Settler.FetchWorkers = 8
	}
	if cfg.Ledger.RPCURL == "" {
		cfg.Ledger.RPCURL = "https://polygon-rpc.com"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
