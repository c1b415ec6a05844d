package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	AuthStatic = "static"
	AuthToken  = "token"
)

type Config struct {
	Env         string `yaml:"env" env:"OEE_ENV" env-default:"prod"`
	DBDriver    string `yaml:"db_driver" env:"OEE_DB_DRIVER" env-default:"mysql"`
	StoragePath string `yaml:"storage_path" env:"OEE_STORAGE_PATH" env-default:"./oee.db"`
	HTTPServer  `yaml:"http_server"`
	DBUser      string `yaml:"db_user" env:"OEE_DB_USER"`
	DBPassword  string `yaml:"db_password" env:"OEE_DB_PASSWORD"`
	DBHost      string `yaml:"db_host" env:"OEE_DB_HOST" env-default:"localhost"`
	DBPort      int    `yaml:"db_port" env:"OEE_DB_PORT" env-default:"3306"`
	DBName      string `yaml:"db_name" env:"OEE_DB_NAME" env-default:"oee"`
	ParseTime   bool   `yaml:"parse_time" env-default:"true"`

	AdminLogin string `yaml:"admin_login" env:"OEE_ADMIN_LOGIN" env-default:"admin@oee.local"`
	AdminPass  string `yaml:"admin_pass" env:"OEE_ADMIN_PASS"`

	Auth        Auth     `yaml:"auth"`
	CORSOrigins []string `yaml:"cors_origins" env:"OEE_CORS_ORIGINS" env-default:"http://localhost:5173"`
	FrontendDir string   `yaml:"frontend_dir" env:"OEE_FRONTEND_DIR" env-default:"./frontend-dist"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"OEE_ADDRESS" env-default:"localhost:8000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Auth selects between the fixed admin identity and signed bearer tokens.
type Auth struct {
	Mode      string        `yaml:"mode" env:"OEE_AUTH_MODE" env-default:"token"`
	JWTSecret string        `yaml:"jwt_secret" env:"OEE_JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"OEE_TOKEN_TTL" env-default:"12h"`
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/local.yaml"
	}

	var cfg Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from env: %s", err)
		}
	} else if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	if cfg.Auth.Mode == AuthToken && cfg.Auth.JWTSecret == "" {
		log.Fatalf("auth.jwt_secret is required in %q auth mode", AuthToken)
	}

	return &cfg
}

// Client is the oeectl configuration, read from the environment only.
type Client struct {
	APIURL    string        `env:"OEE_API_URL" env-default:"http://localhost:8000"`
	AuthMode  string        `env:"OEE_AUTH_MODE" env-default:"token"`
	TokenFile string        `env:"OEE_TOKEN_FILE"`
	Timeout   time.Duration `env:"OEE_TIMEOUT" env-default:"15s"`
}

func ReadClient() (*Client, error) {
	var cfg Client
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
