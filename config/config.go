package config

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/redis/go-redis/v9"
)

// Config - Global variable to export
var Config AppConfig

// AppConfig defines the relay backend configuration.
type AppConfig struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Cache      CacheConfig      `koanf:"cache"`
	Minio      MinioConfig      `koanf:"minio"`
	Telegram   TelegramConfig   `koanf:"telegram"`
	Backend    BackendConfig    `koanf:"backend"`
	Transcoder TranscoderConfig `koanf:"transcoder"`
	OAuth      OAuthConfig      `koanf:"oauth"`
}

// ServerConfig defines HTTP server configurations
type ServerConfig struct {
	Port  int  `koanf:"port"`
	Debug bool `koanf:"debug"`
	// PipelineTimeout bounds one webhook invocation end to end.
	PipelineTimeout time.Duration `koanf:"pipelinetimeout"`
}

// DatabaseConfig related to database
type DatabaseConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	TimeZone string `koanf:"timezone"`
	Pool     struct {
		IdleConnections int           `koanf:"idleconnections"`
		MaxConnections  int           `koanf:"maxconnections"`
		ConnLifeTime    time.Duration `koanf:"connlifetime"`
	}
}

// CacheConfig related to Redis
type CacheConfig struct {
	Redis struct {
		RedisOptions redis.Options `koanf:"redisoptions"`
	}
	// ProfileTTL is how long a user profile stays cached after a lookup.
	ProfileTTL time.Duration `koanf:"profilettl"`
}

// MinioConfig is the blob store configuration.
type MinioConfig struct {
	Host       string `koanf:"host"`
	Port       string `koanf:"port"`
	RootUser   string `koanf:"rootuser"`
	RootPwd    string `koanf:"rootpwd"`
	BucketName string `koanf:"bucketname"`
	Secure     bool   `koanf:"secure"`
	// LinkExpiration bounds the lifetime of issued download links.
	LinkExpiration time.Duration `koanf:"linkexpiration"`
}

// TelegramConfig holds the bot-scoped credentials and endpoints of the chat
// platform.
type TelegramConfig struct {
	BotToken string `koanf:"bottoken"`
	APIHost  string `koanf:"apihost" validate:"url"`
	FileHost string `koanf:"filehost" validate:"url"`
}

// BackendConfig points at the voice-assistant skill backend.
type BackendConfig struct {
	URL     string        `koanf:"url" validate:"url"`
	APIKey  string        `koanf:"apikey"`
	Timeout time.Duration `koanf:"timeout"`
}

// TranscoderConfig configures the external audio codec process.
type TranscoderConfig struct {
	// BundledPath is probed before falling back to the search path.
	BundledPath string `koanf:"bundledpath"`
	Binary      string `koanf:"binary"`
}

// OAuthConfig builds the account-linking authorize URL for unregistered
// users.
type OAuthConfig struct {
	Domain      string `koanf:"domain"`
	ClientID    string `koanf:"clientid"`
	RedirectURI string `koanf:"redirecturi"`
}

// Init - Assign global config to decoded config struct
func Init(filePath string) error {
	k := koanf.New(".")
	parser := yaml.Parser()

	if err := k.Load(confmap.Provider(map[string]any{
		"server.port":            8080,
		"server.pipelinetimeout": "120s",
		"cache.profilettl":       "5m",
		"minio.linkexpiration":   "300s",
		"backend.timeout":        "10s",
		"transcoder.bundledpath": "./ffmpeg",
		"transcoder.binary":      "ffmpeg",
		"telegram.apihost":       "https://api.telegram.org",
		"telegram.filehost":      "https://api.telegram.org/file",
	}, "."), nil); err != nil {
		log.Fatal(err.Error())
	}

	if err := k.Load(file.Provider(filePath), parser); err != nil {
		log.Fatal(err.Error())
	}

	if err := k.Load(env.ProviderWithValue("CFG_", ".", func(s string, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CFG_")), "_", ".")
		if strings.Contains(v, ",") {
			return key, strings.Split(strings.TrimSpace(v), ",")
		}
		return key, v
	}), nil); err != nil {
		return err
	}

	if err := k.Unmarshal("", &Config); err != nil {
		return err
	}

	return ValidateConfig(&Config)
}

// ValidateConfig is for custom validation rules for the configuration
func ValidateConfig(cfg *AppConfig) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return nil
}

var defaultConfigPath = "config/config.yaml"

// ParseConfigFlag allows clients to specify the relative path to the file from
// which the configuration will be loaded.
func ParseConfigFlag() string {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("file", defaultConfigPath, "configuration file")
	flag.Parse()

	return *configPath
}
