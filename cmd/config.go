// Package cmd implements the command-line interface for logshape.
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/logshape/logshape/decode"
)

// loadConfig builds the decoder configuration from the optional YAML file
// and the command-line flags. Flags take precedence over file values.
func loadConfig() (decode.ConfigMap, error) {
	cfg := decode.ConfigMap{}

	if configFlag != "" {
		fileCfg, err := readConfigFile(configFlag)
		if err != nil {
			return nil, err
		}
		for k, v := range fileCfg {
			cfg[k] = v
		}
	}

	setIfNonEmpty(cfg, "type", typeFlag)
	setIfNonEmpty(cfg, "tz", tzFlag)
	setIfNonEmpty(cfg, "truncate_bytes", truncateFlag)
	setIfNonEmpty(cfg, "field_delimiter", delimiterFlag)
	setIfNonEmpty(cfg, "field_names", fieldsFlag)
	setIfNonEmpty(cfg, "timestamp_field_index", timeIndexFlag)
	setIfNonEmpty(cfg, "timestamp_format", timeFormatFlag)
	if rootCmd.PersistentFlags().Changed("log-query-start") {
		cfg["log_query_start"] = strconv.FormatBool(logStartFlag)
	}

	if _, ok := cfg["type"]; !ok {
		cfg["type"] = formatFlag
	}

	return cfg, nil
}

// readConfigFile parses a flat YAML mapping of decoder options.
// Scalar values of any YAML type are accepted and stringified.
func readConfigFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg := make(map[string]string, len(raw))
	for k, v := range raw {
		cfg[k] = fmt.Sprintf("%v", v)
	}
	return cfg, nil
}

func setIfNonEmpty(cfg decode.ConfigMap, key, value string) {
	if value != "" {
		cfg[key] = value
	}
}
