package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine        string // postgres | sqlite | memory
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
		SQLitePath    string
	}

	ServerConfig struct {
		Host            string
		Port            string
		DebugHost       string
		ShutdownTimeout time.Duration
		PlanRateLimit   float64 // plan generations per second, per client IP
		DraftTTL        time.Duration
		AdminTokenTTL   time.Duration
	}

	AIConfig struct {
		ChatProvider        string // openai | gemini | anthropic | mock
		EmbedProvider       string // openai | gemini | mock
		OpenAIEndpoint      string
		OpenAIKey           string
		GeminiKey           string
		AnthropicKey        string
		ChatModel           string
		EmbeddingModel      string
		EmbeddingDimensions int
		Temperature         float64
		MaxTokens           int
		Timeout             time.Duration
	}

	RetrievalConfig struct {
		Threshold       float64
		Count           int
		SearchThreshold float64
		SearchCount     int
		GalleryLimit    int
	}

	// SimulatorConfig drives `admin simulate`.
	SimulatorConfig struct {
		Interval time.Duration // between scheduled inserts
		Delay    time.Duration // between burst inserts
	}

	Config struct {
		AppName          string
		Build            string
		Env              string
		Debug            bool
		TestMode         bool
		WorkDir          string
		SecretKey        string
		FrontendBaseURL  string
		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string

		Database  DatabaseConfig
		Server    ServerConfig
		AI        AIConfig
		Retrieval RetrievalConfig
		Simulator SimulatorConfig
	}
)

// NewConfig loads the configuration of the current ENV (DEV by default)
// from defaults, `config/.env.<env>` and the environment.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Atlas")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "h7x$2k@atlas-dev-only-9w!q4p&zr8m1v#c6n0b3e5")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Agente de Inovação <meajuda@oinstituto.cc>")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "atlas")
	v.SetDefault("database.password", "atlas")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.name", "atlas")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.sqlitePath", "atlas.db")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.planRateLimit", 0.2)
	v.SetDefault("server.draftTTL", time.Hour)
	v.SetDefault("server.adminTokenTTL", 24*time.Hour)

	v.SetDefault("ai.chatProvider", "openai")
	v.SetDefault("ai.embedProvider", "openai")
	v.SetDefault("ai.openAIEndpoint", "https://api.openai.com")
	v.SetDefault("ai.openAIKey", "")
	v.SetDefault("ai.geminiKey", "")
	v.SetDefault("ai.anthropicKey", "")
	v.SetDefault("ai.chatModel", "")      // provider default when empty
	v.SetDefault("ai.embeddingModel", "") // provider default when empty
	v.SetDefault("ai.embeddingDimensions", 1536)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.maxTokens", 3000)
	v.SetDefault("ai.timeout", 2*time.Minute)

	v.SetDefault("retrieval.threshold", 0.5)
	v.SetDefault("retrieval.count", 3)
	v.SetDefault("retrieval.searchThreshold", 0.1)
	v.SetDefault("retrieval.searchCount", 10)
	v.SetDefault("retrieval.galleryLimit", 100)

	v.SetDefault("simulator.interval", 3*time.Second)
	v.SetDefault("simulator.delay", 100*time.Millisecond)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := Getwd()

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
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		WorkDir:          workDir,
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			SQLitePath:    v.GetString("database.sqlitePath"),
		},
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetString("server.port"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			PlanRateLimit:   v.GetFloat64("server.planRateLimit"),
			DraftTTL:        v.GetDuration("server.draftTTL"),
			AdminTokenTTL:   v.GetDuration("server.adminTokenTTL"),
		},
		AI: AIConfig{
			ChatProvider:        v.GetString("ai.chatProvider"),
			EmbedProvider:       v.GetString("ai.embedProvider"),
			OpenAIEndpoint:      v.GetString("ai.openAIEndpoint"),
			OpenAIKey:           v.GetString("ai.openAIKey"),
			GeminiKey:           v.GetString("ai.geminiKey"),
			AnthropicKey:        v.GetString("ai.anthropicKey"),
			ChatModel:           v.GetString("ai.chatModel"),
			EmbeddingModel:      v.GetString("ai.embeddingModel"),
			EmbeddingDimensions: v.GetInt("ai.embeddingDimensions"),
			Temperature:         v.GetFloat64("ai.temperature"),
			MaxTokens:           v.GetInt("ai.maxTokens"),
			Timeout:             v.GetDuration("ai.timeout"),
		},
		Retrieval: RetrievalConfig{
			Threshold:       v.GetFloat64("retrieval.threshold"),
			Count:           v.GetInt("retrieval.count"),
			SearchThreshold: v.GetFloat64("retrieval.searchThreshold"),
			SearchCount:     v.GetInt("retrieval.searchCount"),
			GalleryLimit:    v.GetInt("retrieval.galleryLimit"),
		},
		Simulator: SimulatorConfig{
			Interval: v.GetDuration("simulator.interval"),
			Delay:    v.GetDuration("simulator.delay"),
		},
	}
}

// DefaultFromEmail parses the configured sender, falling back to the raw address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Address: c.defaultFromEmail}
	}
	return *addr
}

// SetDefaultFromEmail is used by tests and tools that build a Config by hand.
func (c *Config) SetDefaultFromEmail(from string) {
	c.defaultFromEmail = from
}

func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, dc.Port)
}

func (sc ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", sc.Host, sc.Port)
}
