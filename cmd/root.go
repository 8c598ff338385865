package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "outreach-crafter"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "outreach-crafter turns a resume and a job description into a cold email, LinkedIn message or referral request",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindEnv("base-url", "OUTREACH_BASE_URL")
	bindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE")

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is outreach-crafter.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("provider", "", "service provider: backend or gemini")
	rootCmd.PersistentFlags().String("base-url", "", "backend api base url, e.g. http://localhost:8000/api")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url"))
}

func bindEnv(key, env string) {
	if err := viper.BindEnv(key, env); err != nil {
		log.Fatalf("binding %s environment variable: %v", env, err)
	}
}

func setDefaults() {
	viper.SetDefault("provider", providerBackend)
	viper.SetDefault("backend.timeout", defaultBackendTimeout)
	viper.SetDefault("gemini.model", defaultGeminiModel)
	viper.SetDefault("gemini.max-log-length", defaultMaxLogLength)
}

func initConfig() {
	// version needs no configuration
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Environment variables and flags are enough without a config file,
	// but an explicit or broken one must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}
