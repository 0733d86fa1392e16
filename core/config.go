package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		AppName          string
		SecretKey        string
		DefaultFromEmail string
		SecurityEmail    string // ops recipient for gateway security alerts

		Server   ServerConfig
		Gateway  GatewayConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Sendgrid SendgridConfig
		Rollbar  RollbarConfig
	}

	ServerConfig struct {
		Host               string
		Port               string
		JWTExpirationDelta time.Duration
	}

	// GatewayConfig externalizes all request-governance knobs; the gateway package
	// consumes these at construction time, never this struct directly.
	GatewayConfig struct {
		Window            time.Duration
		LoginLimit        int64
		RegistrationLimit int64
		SubmissionLimit   int64
		APILimit          int64
		DefaultLimit      int64
		CadenceThreshold  time.Duration
		SuspicionTTL      time.Duration
		TrustedOrigins    []string
	}

	DatabaseConfig struct {
		Engine     string
		Name       string
		User       string
		Password   string
		Host       string
		Port       string
		DisableTLS bool
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	SendgridConfig struct {
		APIKey string
	}

	RollbarConfig struct {
		Token string
	}
)

func (c ServerConfig) Address() string   { return net.JoinHostPort(c.Host, c.Port) }
func (c DatabaseConfig) Address() string { return net.JoinHostPort(c.Host, c.Port) }

var Conf *Config

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Mtihani")
	v.SetDefault("secretKey", "w3ak-d3v-k3y-$(ch4ng3-m3-1n-pr0d)")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("securityEmail", "security@localhost")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("gateway.window", time.Minute)
	v.SetDefault("gateway.loginLimit", 5)
	v.SetDefault("gateway.registrationLimit", 3)
	v.SetDefault("gateway.submissionLimit", 10)
	v.SetDefault("gateway.apiLimit", 60)
	v.SetDefault("gateway.defaultLimit", 100)
	v.SetDefault("gateway.cadenceThreshold", time.Second)
	v.SetDefault("gateway.suspicionTTL", 5*time.Minute)
	v.SetDefault("gateway.trustedOrigins", []string{"127.0.0.1", "::1", "localhost"})

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "mtihani")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("sendgrid.apiKey", "")
	v.SetDefault("rollbar.token", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{Env: env}
	if err := v.Unmarshal(Conf); err != nil {
		log.Fatalf("config.viper.Unmarshal: %v", err)
	}
}
