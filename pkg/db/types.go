package db

import "time"

// DBConfig holds resolved connection settings shared by the per-office
// database services.
type DBConfig struct {
	URI              string
	DBNamePrefix     string
	Timeout          time.Duration
	IdleConnTimeout  time.Duration
	MaxPoolSize      uint64
	NoCursorTimeout  bool
	OfficeIDs        []string
	RunIndexCreation bool
}

// DBConfigYaml is the "db_configs" entry of a service config file. Timeouts
// are in seconds.
type DBConfigYaml struct {
	ConnectionStr      string `yaml:"connection_str"`
	ConnectionPrefix   string `yaml:"connection_prefix"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	DBNamePrefix       string `yaml:"db_name_prefix"`
	Timeout            int    `yaml:"timeout"`
	IdleConnTimeout    int    `yaml:"idle_conn_timeout"`
	MaxPoolSize        int    `yaml:"max_pool_size"`
	UseNoCursorTimeout bool   `yaml:"use_no_cursor_timeout"`
	RunIndexCreation   bool   `yaml:"run_index_creation"`
}
