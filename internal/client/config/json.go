package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/aquidolado/aqui/internal/flagx"
	"github.com/aquidolado/aqui/internal/timex"
)

// JsonConfig is the JSON-file shape of the client configuration. It uses
// timex.Duration for the timeout so both "15s" and integer nanoseconds
// parse.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	StorageFile    string         `json:"storage_file"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c / -config flags; when
// neither is set, no JSON file is loaded.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.ServerURL = c.ServerURL
	config.StorageFile = c.StorageFile
	config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
}
