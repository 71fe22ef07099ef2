// Package commands implements the netsync CLI commands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/netvista-io/netsync/pkg/netsync"
	"github.com/netvista-io/netsync/pkg/nvclient"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// apexLogger adapts apex/log to the client's logging contract.
type apexLogger struct{}

func (l *apexLogger) Debug(msg string, fields map[string]interface{}) {
	log.WithFields(log.Fields(fields)).Debug(msg)
}

func (l *apexLogger) Info(msg string, fields map[string]interface{}) {
	log.WithFields(log.Fields(fields)).Info(msg)
}

func (l *apexLogger) Warn(msg string, fields map[string]interface{}) {
	log.WithFields(log.Fields(fields)).Warn(msg)
}

func (l *apexLogger) Error(msg string, fields map[string]interface{}) {
	log.WithFields(log.Fields(fields)).Error(msg)
}

// CreateClient builds a client from the effective viper configuration.
func CreateClient() (netsync.Client, error) {
	api := viper.GetString("api")
	if api == "" {
		return nil, netsync.ErrBaseURLRequired
	}

	if level, err := log.ParseLevel(viper.GetString("log-level")); err == nil {
		log.SetLevel(level)
	}

	config := &netsync.Config{
		BaseURL:   api,
		NATSURL:   viper.GetString("nats-url"),
		Logger:    &apexLogger{},
		UserAgent: "netsync-cli",
		Debug:     viper.GetBool("verbose"),
	}

	if token := viper.GetString("token"); token != "" {
		config.TokenProvider = netsync.TokenProviderFunc(func(context.Context) (string, error) {
			return token, nil
		})
	}

	if user := viper.GetString("username"); user != "" {
		config.BasicAuthUser = user
		config.BasicAuthPass = viper.GetString("password")
	}

	return nvclient.New(context.Background(), config)
}

// renderStructured writes data as JSON or YAML, returning false when the
// configured format is tabular.
func renderStructured(data interface{}) (bool, error) {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(data)
		if err != nil {
			return true, fmt.Errorf("encoding to JSON: %w", err)
		}

		return true, nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(data)
		if err != nil {
			return true, fmt.Errorf("encoding to YAML: %w", err)
		}

		return true, nil
	default:
		return false, nil
	}
}

// sortedModules returns cache map keys in stable order.
func sortedModules(caches map[netsync.Module]netsync.CacheStats) []netsync.Module {
	modules := make([]netsync.Module, 0, len(caches))

	for _, module := range netsync.KnownModules() {
		if _, ok := caches[module]; ok {
			modules = append(modules, module)
		}
	}

	return modules
}

// boolLabel renders a boolean as yes/no.
func boolLabel(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}
