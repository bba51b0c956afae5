package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/arcflow/arcflow-backend/pkg/apihelpers"
	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/arcflow/arcflow-backend/pkg/briefing/drafts"
	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"github.com/arcflow/arcflow-backend/pkg/db"
	"github.com/arcflow/arcflow-backend/pkg/notifications"
	smtp_client "github.com/arcflow/arcflow-backend/pkg/smtp-client"
	"github.com/arcflow/arcflow-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	briefingsDB "github.com/arcflow/arcflow-backend/pkg/db/briefings"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_BRIEFING_DB_USERNAME       = "BRIEFING_DB_USERNAME"
	ENV_BRIEFING_DB_PASSWORD       = "BRIEFING_DB_PASSWORD"
	ENV_OFFICE_USER_JWT_SIGN_KEY   = "OFFICE_USER_JWT_SIGN_KEY"
	ENV_DRAFT_STORE_REDIS_PASSWORD = "DRAFT_STORE_REDIS_PASSWORD"
)

const (
	DRAFT_STORE_REDIS  = "redis"
	DRAFT_STORE_MEMORY = "memory"
)

type ServiceUser struct {
	Name   string `json:"name" yaml:"name"`
	APIKey string `json:"api_key" yaml:"api_key"`
}

type BriefingApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode     bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins  []string `json:"allow_origins" yaml:"allow_origins"`
		Port          string   `json:"port" yaml:"port"`
		MaxSchemaSize int64    `json:"max_schema_size" yaml:"max_schema_size"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	OfficeUserJWTConfig struct {
		SignKey string `json:"sign_key" yaml:"sign_key"`
	} `json:"office_user_jwt_config" yaml:"office_user_jwt_config"`

	// API keys for service users, overridable with SERVICE_API_KEY_FOR_{NAME}
	ServiceUsers []ServiceUser `json:"service_users" yaml:"service_users"`

	AllowedOfficeIDs []string `json:"allowed_office_ids" yaml:"allowed_office_ids"`

	// DB configs
	DBConfigs struct {
		BriefingDB db.DBConfigYaml `json:"briefing_db" yaml:"briefing_db"`
	} `json:"db_configs" yaml:"db_configs"`

	DraftStore struct {
		Type  string             `json:"type" yaml:"type"` // redis or memory
		Redis drafts.RedisConfig `json:"redis" yaml:"redis"`
	} `json:"draft_store" yaml:"draft_store"`

	Schemas struct {
		Dir              string `json:"dir" yaml:"dir"`
		DisableCatalog   bool   `json:"disable_catalog" yaml:"disable_catalog"`
		UseDBDefinitions bool   `json:"use_db_definitions" yaml:"use_db_definitions"`
		CacheSize        int    `json:"cache_size" yaml:"cache_size"`
	} `json:"schemas" yaml:"schemas"`

	Export struct {
		ListSeparator string `json:"list_separator" yaml:"list_separator"`
	} `json:"export" yaml:"export"`

	Notifications struct {
		notifications.NotificationConfig `yaml:",inline"`
		SmtpServerConfigPath             string `json:"smtp_server_config_path" yaml:"smtp_server_config_path"`
	} `json:"notifications" yaml:"notifications"`
}

var (
	briefingDBService *briefingsDB.BriefingDBService
	schemaRegistry    *schema.Registry
	draftStore        drafts.Store
	smtpClients       *smtp_client.SmtpClients
	notifier          *notifications.Notifier
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	utils.InitLogger(conf.Logging)

	// Override secrets from environment variables
	secretsOverride()

	if conf.OfficeUserJWTConfig.SignKey == "" {
		slog.Error("office user JWT sign key not set")
		panic("office user JWT sign key not set")
	}

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	initSchemaRegistry()
	initDraftStore()
	initNotifications()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_BRIEFING_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.BriefingDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_BRIEFING_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.BriefingDB.Password = dbPassword
	}

	if signKey := os.Getenv(ENV_OFFICE_USER_JWT_SIGN_KEY); signKey != "" {
		conf.OfficeUserJWTConfig.SignKey = signKey
	}

	if redisPassword := os.Getenv(ENV_DRAFT_STORE_REDIS_PASSWORD); redisPassword != "" {
		conf.DraftStore.Redis.Password = redisPassword
	}

	for i := range conf.ServiceUsers {
		user := &conf.ServiceUsers[i]
		if user.Name == "" {
			continue
		}
		if apiKey := os.Getenv(utils.GenerateServiceAPIKeyEnvVarName(user.Name)); apiKey != "" {
			user.APIKey = apiKey
		}
	}
}

func serviceAPIKeys() []string {
	keys := []string{}
	for _, u := range conf.ServiceUsers {
		if u.APIKey != "" {
			keys = append(keys, u.APIKey)
		}
	}
	return keys
}

func initDBs() {
	var err error
	briefingDBService, err = briefingsDB.NewBriefingDBService(db.DBConfigFromYamlObj(conf.DBConfigs.BriefingDB, conf.AllowedOfficeIDs))
	if err != nil {
		slog.Error("Error connecting to Briefing DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func initSchemaRegistry() {
	var err error
	schemaRegistry, err = schema.NewRegistry(catalog.NewCheckRegistry(), conf.Schemas.CacheSize)
	if err != nil {
		panic(err)
	}

	if !conf.Schemas.DisableCatalog {
		if err := catalog.Register(schemaRegistry); err != nil {
			slog.Error("failed to register catalog schemas", slog.String("error", err.Error()))
			panic(err)
		}
	}

	if conf.Schemas.Dir != "" {
		count, err := schemaRegistry.LoadDir(conf.Schemas.Dir)
		if err != nil {
			slog.Error("failed to load schema directory", slog.String("dir", conf.Schemas.Dir), slog.String("error", err.Error()))
			panic(err)
		}
		slog.Info("schemas loaded from directory", slog.String("dir", conf.Schemas.Dir), slog.Int("count", count))
	}

	if conf.Schemas.UseDBDefinitions {
		schemaRegistry.UseDefinitions(briefingDBService.DefinitionLookup())
	}
}

func initDraftStore() {
	switch conf.DraftStore.Type {
	case DRAFT_STORE_MEMORY:
		slog.Warn("drafts are kept in memory and lost on restart")
		draftStore = drafts.NewMemoryStore()
	case DRAFT_STORE_REDIS, "":
		ttl := time.Duration(0)
		if conf.DraftStore.Redis.TTL != "" {
			var err error
			ttl, err = utils.ParseDurationString(conf.DraftStore.Redis.TTL)
			if err != nil {
				slog.Error("invalid draft ttl", slog.String("error", err.Error()))
				panic(err)
			}
		}
		client := drafts.NewRedisClient(conf.DraftStore.Redis)
		draftStore = drafts.NewRedisStore(client, conf.DraftStore.Redis.KeyPrefix, ttl)
	default:
		slog.Error("unknown draft store type", slog.String("type", conf.DraftStore.Type))
		panic("unknown draft store type")
	}
}

func initNotifications() {
	if !conf.Notifications.Enabled {
		return
	}

	serverList := smtp_client.SmtpServerList{}
	if err := serverList.ReadFromFile(conf.Notifications.SmtpServerConfigPath); err != nil {
		slog.Error("failed to read smtp server config", slog.String("error", err.Error()))
		panic(err)
	}
	if n := serverList.ApplyPasswordOverrides(os.Getenv); n > 0 {
		slog.Debug("smtp passwords taken from environment", slog.Int("servers", n))
	}

	var err error
	smtpClients, err = smtp_client.NewSmtpClients(serverList)
	if err != nil {
		slog.Error("failed to init smtp clients", slog.String("error", err.Error()))
		panic(err)
	}

	var tmpl *notifications.MessageTemplate
	if conf.Notifications.TemplateFile != "" {
		tmpl, err = notifications.LoadTemplateFromFile(conf.Notifications.TemplateFile)
		if err != nil {
			slog.Error("failed to load notification template", slog.String("error", err.Error()))
			panic(err)
		}
	}

	notifier, err = notifications.NewNotifier(smtpClients, conf.Notifications.NotificationConfig, tmpl)
	if err != nil {
		slog.Error("failed to init notifier", slog.String("error", err.Error()))
		panic(err)
	}
}

func listSeparator() string {
	if conf.Export.ListSeparator == "" {
		return exporter.DEFAULT_LIST_SEPARATOR
	}
	return conf.Export.ListSeparator
}
