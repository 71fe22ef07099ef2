package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// NewLoginCommand creates the login command, persisting credentials to
// the config file.
func NewLoginCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store credentials for the API endpoint",
		Long:  "Prompt for a password and persist the endpoint and credentials to the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := viper.GetString("api")
			if api == "" {
				return fmt.Errorf("an API endpoint is required (use --api)")
			}

			if username == "" {
				_, _ = os.Stdout.WriteString("Username: ")
				_, _ = fmt.Scanln(&username)
			}

			_, _ = os.Stdout.WriteString("Password: ")

			password, err := term.ReadPassword(syscall.Stdin)
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}

			_, _ = os.Stdout.WriteString("\n")

			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("finding home directory: %w", err)
			}

			configDir := filepath.Join(home, ".netsync")

			err = os.MkdirAll(configDir, 0700)
			if err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}

			settings := map[string]string{
				"api":      api,
				"username": username,
				"password": string(password),
			}

			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}

			configPath := filepath.Join(configDir, "config.yml")

			err = os.WriteFile(configPath, data, 0600)
			if err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Credentials saved to %s\n", configPath)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")

	return cmd
}
