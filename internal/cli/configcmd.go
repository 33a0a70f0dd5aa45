package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lucidpack/internal/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		// The file usually does not exist yet, so it is not loaded.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.ConfigPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return fmt.Errorf("config path: %w", err)
				}
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			printSuccess("Wrote default configuration")
			printFile(path)
			printNextStep("Set your OAuth client, then log in", appName+" login")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file and LUCIDPACK_*
environment variables have been applied. Secrets are masked unless
--reveal is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(c.v, !reveal)
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			if used := c.v.ConfigFileUsed(); used != "" {
				printDetail("# %s", used)
			}
			fmt.Print(string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "show secrets")
	return cmd
}
