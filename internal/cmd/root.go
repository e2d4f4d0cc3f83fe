// Package cmd implements the appcanvas command line interface.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/appcanvas/internal/config"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "appcanvas",
		Short: "Turn an app idea into a structured plan",
		Long: `App Canvas turns a one-line app idea into a structured plan: modules,
features, user actions, pages, database schema, feature details, backend
logic and a design system. Each step is generated by a language model after
it asks you one clarifying question.

Run 'appcanvas start' for the interactive wizard or 'appcanvas run' to
generate a plan without the TUI.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/appcanvas/config.yaml)")
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(
		newStartCmd(),
		newRunCmd(),
		newSessionsCmd(),
		newExportCmd(),
		newTreeCmd(),
		newStepsCmd(),
		newCacheCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APPCANVAS")
	// e.g. APPCANVAS_AI_BACKEND for ai.backend
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
