package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"

	LedgerStore    = "store"
	LedgerPostgres = "postgres"
)

type Config struct {
	HTTP         HTTP   `yaml:"http"`
	Store        Store  `yaml:"store"`
	Ledger       Ledger `yaml:"ledger"`
	Search       Search `yaml:"search"`
	SeedDemoData bool   `yaml:"seedDemoData"`
	LogDebug     bool   `yaml:"logDebug"`
}

type HTTP struct {
	Host              string        `yaml:"host" validate:"required"`
	Port              string        `yaml:"port" validate:"required,numeric"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout" validate:"gt=0"`
	LivenessEndpoint  string        `yaml:"livenessEndpoint" validate:"required,startswith=/"`
}

// Store selects where properties, sites and hosts are read from.
type Store struct {
	Driver         string        `yaml:"driver" validate:"oneof=memory mongo"`
	MongoURI       string        `yaml:"mongoUri" validate:"required_if=Driver mongo"`
	MongoDatabase  string        `yaml:"mongoDatabase" validate:"required_if=Driver mongo"`
	ConnectTimeout time.Duration `yaml:"connectTimeout" validate:"gte=0"`
	EnsureIndexes  bool          `yaml:"ensureIndexes"`
}

// Ledger selects where bookings are read from. "store" reuses Store.
type Ledger struct {
	Driver      string `yaml:"driver" validate:"oneof=store postgres"`
	DatabaseURL string `yaml:"databaseUrl" validate:"required_if=Driver postgres"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

type Search struct {
	DefaultLimit        int  `yaml:"defaultLimit" validate:"gte=1"`
	MaxLimit            int  `yaml:"maxLimit" validate:"gtefield=DefaultLimit"`
	ConcurrentResolvers bool `yaml:"concurrentResolvers"`
	EnrichmentWorkers   int  `yaml:"enrichmentWorkers" validate:"gte=1"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTP{
			Host:              "localhost",
			Port:              "8092",
			ReadHeaderTimeout: 20 * time.Second, //nolint:gomnd
			ShutdownTimeout:   4 * time.Second,  //nolint:gomnd
			LivenessEndpoint:  "/liveness",
		},
		Store: Store{
			Driver:         StoreMemory,
			MongoDatabase:  "campsites",
			ConnectTimeout: 10 * time.Second, //nolint:gomnd
		},
		Ledger: Ledger{
			Driver: LedgerStore,
		},
		Search: Search{
			DefaultLimit:        10,  //nolint:gomnd
			MaxLimit:            100, //nolint:gomnd
			EnrichmentWorkers:   8,   //nolint:gomnd
			ConcurrentResolvers: true,
		},
		SeedDemoData: true,
	}
}

// Load builds the config from defaults, an optional YAML file and the
// environment, in that order. A .env file in the working directory is loaded
// into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	conf := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := conf.applyEnv(); err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) applyEnv() error {
	var invalid []string

	setString(&c.HTTP.Host, "HTTP_HOST")
	setString(&c.HTTP.Port, "HTTP_PORT")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.MongoURI, "MONGO_URI")
	setString(&c.Store.MongoDatabase, "MONGO_DATABASE")
	setString(&c.Ledger.Driver, "LEDGER_DRIVER")
	setString(&c.Ledger.DatabaseURL, "DATABASE_URL")

	invalid = setInt(&c.Search.DefaultLimit, "SEARCH_DEFAULT_LIMIT", invalid)
	invalid = setInt(&c.Search.MaxLimit, "SEARCH_MAX_LIMIT", invalid)
	invalid = setBool(&c.Search.ConcurrentResolvers, "SEARCH_CONCURRENT_RESOLVERS", invalid)
	invalid = setBool(&c.SeedDemoData, "SEED_DEMO_DATA", invalid)
	invalid = setBool(&c.LogDebug, "LOG_DEBUG", invalid)

	if len(invalid) > 0 {
		return fmt.Errorf("%w: malformed environment variables %s", ErrInvalid, strings.Join(invalid, ", "))
	}

	return nil
}

func env(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))

	return value, value != ""
}

func setString(dst *string, key string) {
	if value, ok := env(key); ok {
		*dst = value
	}
}

func setInt(dst *int, key string, invalid []string) []string {
	value, ok := env(key)
	if !ok {
		return invalid
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return append(invalid, key)
	}

	*dst = n

	return invalid
}

func setBool(dst *bool, key string, invalid []string) []string {
	value, ok := env(key)
	if !ok {
		return invalid
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return append(invalid, key)
	}

	*dst = b

	return invalid
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	return v
}

// Validate reports every invalid key in a single error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	keys := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		_, key, _ := strings.Cut(fe.Namespace(), ".")
		keys = append(keys, fmt.Sprintf("%s (%s)", key, fe.Tag()))
	}

	sort.Strings(keys)

	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(keys, ", "))
}
