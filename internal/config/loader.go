package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends accepted by LEDGER_STORAGE.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

const envPrefix = "LEDGER_"

// Config captures configuration values for the ledger service and its CLI.
type Config struct {
	HTTPPort    int
	Storage     string
	DataFile    string
	SQLiteDSN   string
	PostgresDSN string
	SessionTTL  time.Duration
	Location    *time.Location
	LogLevel    string
	LogFormat   string
	Backup      Backup
}

// Backup holds the object storage settings used for document snapshots.
type Backup struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// Enabled reports whether an object storage endpoint was configured.
func (b Backup) Enabled() bool {
	return b.Endpoint != ""
}

// Load resolves configuration from, in increasing precedence: defaults, the
// YAML file named by LEDGER_CONFIG_FILE, the dotenv file named by
// LEDGER_ENV_FILE (".env" when unset) and the process environment.
//
// Missing and invalid values are reported together with localized messages.
func Load() (Config, error) {
	values, err := collect()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:   8080,
		Storage:    StorageFile,
		DataFile:   "ledger.json",
		SQLiteDSN:  "file:ledger.db",
		SessionTTL: 12 * time.Hour,
		Location:   time.Local,
		LogLevel:   "info",
		LogFormat:  "json",
		Backup:     Backup{Prefix: "ledger", UseSSL: true},
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)
	get := func(key string) string {
		return strings.TrimSpace(values[envPrefix+key])
	}

	if portValue := get("HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, envPrefix+"HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if storage := strings.ToLower(get("STORAGE")); storage != "" {
		switch storage {
		case StorageMemory, StorageFile, StorageSQLite, StoragePostgres:
			cfg.Storage = storage
		default:
			invalid = append(invalid, envPrefix+"STORAGE")
		}
	}

	if path := get("DATA_FILE"); path != "" {
		cfg.DataFile = path
	}
	if dsn := get("SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	cfg.PostgresDSN = get("POSTGRES_DSN")
	if cfg.Storage == StoragePostgres && cfg.PostgresDSN == "" {
		missing = append(missing, envPrefix+"POSTGRES_DSN")
	}

	if ttlValue := get("SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, envPrefix+"SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if zone := get("TIMEZONE"); zone != "" && zone != "Local" {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			invalid = append(invalid, envPrefix+"TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	if level := strings.ToLower(get("LOG_LEVEL")); level != "" {
		switch level {
		case "debug", "info", "warn", "warning", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, envPrefix+"LOG_LEVEL")
		}
	}
	if format := strings.ToLower(get("LOG_FORMAT")); format != "" {
		if format != "json" && format != "text" {
			invalid = append(invalid, envPrefix+"LOG_FORMAT")
		} else {
			cfg.LogFormat = format
		}
	}

	cfg.Backup.Endpoint = get("BACKUP_ENDPOINT")
	cfg.Backup.AccessKey = get("BACKUP_ACCESS_KEY")
	cfg.Backup.SecretKey = get("BACKUP_SECRET_KEY")
	cfg.Backup.Bucket = get("BACKUP_BUCKET")
	cfg.Backup.Region = get("BACKUP_REGION")
	if prefix := strings.Trim(get("BACKUP_PREFIX"), "/"); prefix != "" {
		cfg.Backup.Prefix = prefix
	}
	if sslValue := get("BACKUP_USE_SSL"); sslValue != "" {
		useSSL, err := strconv.ParseBool(sslValue)
		if err != nil {
			invalid = append(invalid, envPrefix+"BACKUP_USE_SSL")
		} else {
			cfg.Backup.UseSSL = useSSL
		}
	}
	if cfg.Backup.Enabled() {
		for key, value := range map[string]string{
			"BACKUP_ACCESS_KEY": cfg.Backup.AccessKey,
			"BACKUP_SECRET_KEY": cfg.Backup.SecretKey,
			"BACKUP_BUCKET":     cfg.Backup.Bucket,
		} {
			if value == "" {
				missing = append(missing, envPrefix+key)
			}
		}
	}

	slices.Sort(missing)
	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("variáveis de configuração obrigatórias ausentes: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("valores de configuração inválidos: %s", strings.Join(invalid, ", ")))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

// collect merges the YAML file, the dotenv file and the environment into one
// map keyed by environment variable name.
func collect() (map[string]string, error) {
	values := make(map[string]string)

	if path := strings.TrimSpace(os.Getenv(envPrefix + "CONFIG_FILE")); path != "" {
		fileValues, err := readYAML(path)
		if err != nil {
			return nil, err
		}
		for key, value := range fileValues {
			values[key] = value
		}
	}

	envFile := strings.TrimSpace(os.Getenv(envPrefix + "ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	switch {
	case err == nil:
		for key, value := range dotenv {
			values[key] = value
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("não foi possível ler %s: %w", envFile, err)
	}

	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if ok && strings.HasPrefix(key, envPrefix) {
			values[key] = value
		}
	}
	return values, nil
}

// readYAML reads a flat mapping such as "http_port: 9090" and returns it keyed
// as LEDGER_HTTP_PORT.
func readYAML(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("não foi possível ler o arquivo de configuração %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("arquivo de configuração inválido %s: %w", path, err)
	}

	values := make(map[string]string, len(doc))
	for key, value := range doc {
		if value == nil {
			continue
		}
		name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(key), "-", "_"))
		values[envPrefix+name] = fmt.Sprint(value)
	}
	return values, nil
}
