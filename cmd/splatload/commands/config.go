package commands

import (
	"fmt"

	"github.com/kecho/splatastic/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the resolved configuration",
	Long: `Display the configuration splatload would use: the config file,
with SPLATLOAD_* environment variables overriding the keys it sets, and
defaults for everything else. Command-line flags are not applied here.`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
