package commands

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aki/chatsweep/internal/cli/ui"
	"github.com/aki/chatsweep/internal/core/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage chatsweep configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing configuration")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	mgr, err := config.NewManager(flagConfigPath)
	if err != nil {
		return err
	}

	if _, err := mgr.Init(cmd.Context(), configInitForce); err != nil {
		return err
	}

	ui.Success("Configuration written to %s", mgr.GetConfigPath())
	ui.Info("Set %s to your API token, in the environment or a .env file", config.DefaultTokenEnv)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	mgr, err := config.NewManager(flagConfigPath)
	if err != nil {
		return err
	}

	cfg, err := mgr.Load()
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if !mgr.IsInitialized() {
		ui.Info("No configuration file at %s, showing defaults", mgr.GetConfigPath())
	}
	return ui.GlobalFormatter.Output(string(data))
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	mgr, err := config.NewManager(flagConfigPath)
	if err != nil {
		return err
	}

	if err := mgr.Validate(); err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(map[string]interface{}{
			"path":  mgr.GetConfigPath(),
			"valid": true,
		})
	}
	ui.Success("Configuration is valid: %s", mgr.GetConfigPath())
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	mgr, err := config.NewManager(flagConfigPath)
	if err != nil {
		return err
	}
	ui.OutputLine("%s", mgr.GetConfigPath())
	return nil
}
