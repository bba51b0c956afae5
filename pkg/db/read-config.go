package db

import (
	"fmt"
	"time"
)

const (
	DEFAULT_TIMEOUT_SECONDS = 30
	DEFAULT_MAX_POOL_SIZE   = 8
)

// DBConfigFromYamlObj builds the connection settings for the given offices.
// Credentials are optional for local deployments without authentication.
func DBConfigFromYamlObj(yamlObj DBConfigYaml, officeIDs []string) DBConfig {
	uri := fmt.Sprintf(`mongodb%s://%s`, yamlObj.ConnectionPrefix, yamlObj.ConnectionStr)
	if yamlObj.Username != "" {
		uri = fmt.Sprintf(`mongodb%s://%s:%s@%s`, yamlObj.ConnectionPrefix, yamlObj.Username, yamlObj.Password, yamlObj.ConnectionStr)
	}

	timeout := yamlObj.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT_SECONDS
	}
	maxPoolSize := yamlObj.MaxPoolSize
	if maxPoolSize <= 0 {
		maxPoolSize = DEFAULT_MAX_POOL_SIZE
	}

	return DBConfig{
		URI:              uri,
		Timeout:          time.Duration(timeout) * time.Second,
		IdleConnTimeout:  time.Duration(yamlObj.IdleConnTimeout) * time.Second,
		MaxPoolSize:      uint64(maxPoolSize),
		NoCursorTimeout:  yamlObj.UseNoCursorTimeout,
		DBNamePrefix:     yamlObj.DBNamePrefix,
		OfficeIDs:        officeIDs,
		RunIndexCreation: yamlObj.RunIndexCreation,
	}
}
