package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/arcflow/arcflow-backend/pkg/briefing/catalog"
	"github.com/arcflow/arcflow-backend/pkg/briefing/exporter"
	"github.com/arcflow/arcflow-backend/pkg/briefing/schema"
	"github.com/arcflow/arcflow-backend/pkg/db"
	"github.com/arcflow/arcflow-backend/pkg/utils"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	briefingsDB "github.com/arcflow/arcflow-backend/pkg/db/briefings"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_BRIEFING_DB_USERNAME = "BRIEFING_DB_USERNAME"
	ENV_BRIEFING_DB_PASSWORD = "BRIEFING_DB_PASSWORD"
)

type BriefingExportTask struct {
	OfficeID      string   `json:"office_id" yaml:"office_id"`
	SchemaKey     string   `json:"schema_key" yaml:"schema_key"`
	ExportFormats []string `json:"export_formats" yaml:"export_formats"` // wide, long, json
}

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		BriefingDB db.DBConfigYaml `json:"briefing_db" yaml:"briefing_db"`
	} `json:"db_configs" yaml:"db_configs"`

	ExportPath string `json:"export_path" yaml:"export_path"`

	Schemas struct {
		Dir              string `json:"dir" yaml:"dir"`
		DisableCatalog   bool   `json:"disable_catalog" yaml:"disable_catalog"`
		UseDBDefinitions bool   `json:"use_db_definitions" yaml:"use_db_definitions"`
	} `json:"schemas" yaml:"schemas"`

	BriefingExports struct {
		// number of past days to export, 1 means yesterday only
		LookbackDays  int                  `json:"lookback_days" yaml:"lookback_days"`
		OverrideOld   bool                 `json:"override_old" yaml:"override_old"`
		ListSeparator string               `json:"list_separator" yaml:"list_separator"`
		ExportTasks   []BriefingExportTask `json:"export_tasks" yaml:"export_tasks"`
	} `json:"briefing_exports" yaml:"briefing_exports"`
}

var conf config

var (
	briefingDBService *briefingsDB.BriefingDBService
	schemaRegistry    *schema.Registry
)

// setup reads the config and connects to the database. It panics on errors.
func setup() {
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

	if err := checkConfig(); err != nil {
		slog.Error("Error reading config", slog.String("error", err.Error()))
		panic(err)
	}

	// init db
	initDBs()

	initSchemaRegistry()

	if _, err := os.Stat(conf.ExportPath); os.IsNotExist(err) {
		// create folder
		err = os.MkdirAll(conf.ExportPath, os.ModePerm)
		if err != nil {
			slog.Error("Error creating export path", slog.String("error", err.Error()))
			panic(err)
		}
		slog.Info("Created export path", slog.String("path", conf.ExportPath))
	}
}

func checkConfig() error {
	if conf.ExportPath == "" {
		return fmt.Errorf("export path must be set to define where to store the export files")
	}
	if conf.BriefingExports.LookbackDays < 1 {
		conf.BriefingExports.LookbackDays = 1
	}
	if conf.BriefingExports.ListSeparator == "" {
		conf.BriefingExports.ListSeparator = exporter.DEFAULT_LIST_SEPARATOR
	}
	for i, task := range conf.BriefingExports.ExportTasks {
		if !utils.IsURLSafe(task.OfficeID) || !utils.IsURLSafe(task.SchemaKey) {
			return fmt.Errorf("export task %d: office_id and schema_key must be set and url safe", i)
		}
		if len(task.ExportFormats) == 0 {
			return fmt.Errorf("export task %d: no export format", i)
		}
		for _, f := range task.ExportFormats {
			if !exporter.IsValidFormat(f) {
				return fmt.Errorf("export task %d: unknown export format %s", i, f)
			}
		}
	}
	return nil
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_BRIEFING_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.BriefingDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_BRIEFING_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.BriefingDB.Password = dbPassword
	}
}

func initDBs() {
	var err error
	briefingDBService, err = briefingsDB.NewBriefingDBService(db.DBConfigFromYamlObj(conf.DBConfigs.BriefingDB, getOfficeIDs()))
	if err != nil {
		slog.Error("Error connecting to Briefing DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func initSchemaRegistry() {
	var err error
	schemaRegistry, err = schema.NewRegistry(catalog.NewCheckRegistry(), 0)
	if err != nil {
		panic(err)
	}
	if !conf.Schemas.DisableCatalog {
		if err := catalog.Register(schemaRegistry); err != nil {
			panic(err)
		}
	}
	if conf.Schemas.Dir != "" {
		if _, err := schemaRegistry.LoadDir(conf.Schemas.Dir); err != nil {
			slog.Error("failed to load schema directory", slog.String("dir", conf.Schemas.Dir), slog.String("error", err.Error()))
			panic(err)
		}
	}
	if conf.Schemas.UseDBDefinitions {
		schemaRegistry.UseDefinitions(briefingDBService.DefinitionLookup())
	}
}

func getOfficeIDs() []string {
	officeIDs := []string{}
	seen := map[string]bool{}
	for _, task := range conf.BriefingExports.ExportTasks {
		if !seen[task.OfficeID] {
			seen[task.OfficeID] = true
			officeIDs = append(officeIDs, task.OfficeID)
		}
	}
	return officeIDs
}
