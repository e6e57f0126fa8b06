package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hpkotak/aichat/internal/provider"
)

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configured provider, credential, and model",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pcfg := cfg.ToProviderConfig()
	if !provider.ValidateProviderConfig(pcfg) {
		return fmt.Errorf(
			"configuration is not valid for provider %q (supported: %s)",
			cfg.Provider,
			strings.Join(provider.SupportedProviders(), ", "),
		)
	}

	_, _ = fmt.Fprintf(ioOut, "Configuration is valid for provider %q (model %s).\n", cfg.Provider, cfg.Model)
	return nil
}
