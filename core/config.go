package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Build    string
		Env      string // DEV (local; default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		WorkDir  string

		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		AdminEmail       mail.Address

		PasswordResetTimeoutDelta time.Duration

		RollbarToken   string
		SendgridApiKey string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
	}

	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		DisableReqLogs            bool
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		URI            string
		Name           string
		ConnectTimeout time.Duration
	}

	// StorageConfig configures where uploaded files are kept.
	// LocalDir is used instead of the bucket when Bucket is empty.
	StorageConfig struct {
		Bucket    string
		Region    string
		Endpoint  string
		AccessKey string
		SecretKey string
		PublicURL string
		LocalDir  string
	}
)

// NewConfig loads the configuration of the current ENV from defaults, an optional
// config/.env.<env> file and the environment (prefixed with the ENV name, e.g. PROD_SECRETKEY).
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	workDir := Getwd()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Shule")
	v.SetDefault("secretKey", "k3x$9q!zv2w+a8=hy&n@0t^r5o(c)u#m1lbj7g-e4dfps*")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Shule <noreply@localhost>")
	v.SetDefault("adminEmail", "Shule Admin <admin@localhost>")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("serverDisableReqLogs", false)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("databaseURI", "mongodb://localhost:27017")
	v.SetDefault("databaseName", "shule")
	v.SetDefault("databaseConnectTimeout", 10*time.Second)

	v.SetDefault("storageBucket", "")
	v.SetDefault("storageRegion", "auto")
	v.SetDefault("storageEndpoint", "")
	v.SetDefault("storageAccessKey", "")
	v.SetDefault("storageSecretKey", "")
	v.SetDefault("storagePublicURL", "http://localhost:8000/media")
	v.SetDefault("storageLocalDir", filepath.Join(workDir, "media"))

	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Build:    v.GetString("build"),
		Env:      env,
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		WorkDir:  workDir,

		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: parseAddress(v.GetString("defaultFromEmail")),
		AdminEmail:       parseAddress(v.GetString("adminEmail")),

		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		RollbarToken:   v.GetString("rollbarToken"),
		SendgridApiKey: v.GetString("sendgridApiKey"),

		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			DisableReqLogs:            v.GetBool("serverDisableReqLogs"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			URI:            v.GetString("databaseURI"),
			Name:           v.GetString("databaseName"),
			ConnectTimeout: v.GetDuration("databaseConnectTimeout"),
		},
		Storage: StorageConfig{
			Bucket:    v.GetString("storageBucket"),
			Region:    v.GetString("storageRegion"),
			Endpoint:  v.GetString("storageEndpoint"),
			AccessKey: v.GetString("storageAccessKey"),
			SecretKey: v.GetString("storageSecretKey"),
			PublicURL: strings.TrimRight(v.GetString("storagePublicURL"), "/"),
			LocalDir:  v.GetString("storageLocalDir"),
		},
	}
}

func parseAddress(s string) mail.Address {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return mail.Address{Address: s}
	}
	return *addr
}
