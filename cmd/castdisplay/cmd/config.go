// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/remotedisplay/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configDumpDefaults bool

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the effective configuration",
	Long: `Dump the effective configuration in YAML format.

Redirect the output to create a configuration template:

  castdisplay config dump --defaults > ~/.castdisplay.yaml

Environment variables use the CASTDISPLAY_ prefix and underscores for nesting.
Example: server.addr -> CASTDISPLAY_SERVER_ADDR`,
	RunE: runConfigDump,
}

func init() {
	configDumpCmd.Flags().BoolVar(&configDumpDefaults, "defaults", false, "dump built-in defaults only")
	configCmd.AddCommand(configDumpCmd)
	rootCmd.AddCommand(configCmd)
}

// toMap converts a config struct to a map keyed by mapstructure tags,
// printing durations in their string form.
func toMap(v any) map[string]any {
	result := make(map[string]any)
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		key := typ.Field(i).Tag.Get("mapstructure")
		if key == "" {
			key = typ.Field(i).Name
		}

		switch fv := field.Interface().(type) {
		case time.Duration:
			result[key] = fv.String()
		default:
			if field.Kind() == reflect.Struct {
				result[key] = toMap(fv)
			} else {
				result[key] = fv
			}
		}
	}
	return result
}

func runConfigDump(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if !configDumpDefaults {
		var err error
		if cfg, err = loadConfig(); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(toMap(cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
