package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/uniq/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "uniq",
	Short: "Research-driven variant generator for your project",
	Long: `uniq reads your project, searches the research literature for techniques
that fit what you want to improve, builds one variant of your code per chosen
technique, and benchmarks the variants against each other.

Running uniq without a subcommand is the same as 'uniq run'.`,
	Args:          cobra.NoArgs,
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/uniq/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	addRunFlags(rootCmd)
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
	viper.SetEnvPrefix("UNIQ")
	// e.g. UNIQ_SEARCH_MAX_PAPERS for search.max_papers
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.BindEnv()

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
