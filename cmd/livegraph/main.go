package main

import (
	"encoding/json"
	"fmt"
	"os"

	lg "github.com/livegraph/livegraph/pkg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	var configPath string
	var config lg.Config
	var args SubCommandArgs

	// flag values, applied over the loaded config when set
	var bind, port, interval string
	var noGrowth bool

	// define root command
	rootCmd := &cobra.Command{
		Use:           "livegraph",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
			os.Exit(0)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("webapi-bind") {
				c.WebAPI.Bind = bind
			}
			if flags.Changed("webapi-port") {
				c.WebAPI.Port = port
			}
			if flags.Changed("growth-interval") {
				c.Growth.Interval = interval
			}
			if flags.Changed("no-growth") {
				c.Growth.Disabled = noGrowth
			}
			config = c
			return config.Validate()
		},
	}

	// Add flags for configuration options
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: search for config.toml)")
	rootCmd.PersistentFlags().StringVar(&bind, "webapi-bind", "", "Web API bind")
	rootCmd.PersistentFlags().StringVar(&port, "webapi-port", "", "Web API port")
	rootCmd.PersistentFlags().StringVar(&interval, "growth-interval", "", "Interval between growth steps, eg. 10s")
	rootCmd.PersistentFlags().BoolVar(&noGrowth, "no-growth", false, "Disable background growth")
	rootCmd.PersistentFlags().StringVar(&args.Remote, "remote", "", "Base URL of a running livegraph (default: from config)")

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the livegraph server",
		Run: func(cmd *cobra.Command, _ []string) {
			Server(config)
		},
	}

	configCmd := &cobra.Command{
		Use:   "showconf",
		Short: "Print the config state and exit",
		Run: func(cmd *cobra.Command, _ []string) {
			o, _ := json.MarshalIndent(config, ">", " ")
			fmt.Println(string(o))
			os.Exit(0)
		},
	}

	nodeCmd := &cobra.Command{
		Use:   "node",
		Short: "Operate on nodes of a running livegraph",
	}
	nodeCmd.AddCommand(&cobra.Command{
		Use:   "add <node>",
		Short: "Add a node; JSON values (1, true, \"x\") keep their type, anything else is a string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, a []string) error {
			return AddNode(a[0], config, args)
		},
	})

	edgeCmd := &cobra.Command{
		Use:   "edge",
		Short: "Operate on edges of a running livegraph",
	}
	edgeCmd.AddCommand(&cobra.Command{
		Use:   "add <from> <to>",
		Short: "Add a directed edge, creating missing nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, a []string) error {
			return AddEdge(a[0], a[1], config, args)
		},
	})

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the graph with an empty one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Reset(config, args)
		},
	}

	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the current graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return PrintGraph(config, args)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Subscribe to the event stream and print events as they arrive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Watch(config, args)
		},
	}

	rootCmd.AddCommand(serverCmd, configCmd, nodeCmd, edgeCmd, resetCmd, graphCmd, watchCmd)

	// Execute the Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// LoadConfig finds the config file (an explicit path, or config.toml, or
// $LIVEGRAPH_ENV.toml on the search path) and loads it. Without a file the
// defaults are used.
func LoadConfig(configPath string) (lg.Config, error) {
	if configPath != "" {
		return lg.LoadConfig(configPath)
	}

	configFileName, set := os.LookupEnv("LIVEGRAPH_ENV")
	if set {
		viper.SetConfigName(configFileName)
	} else {
		viper.SetConfigName("config")
	}

	// Set config file name and search paths
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/livegraph/")
	viper.AddConfigPath("$HOME/.livegraph")

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return lg.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		return lg.LoadConfig()
	}
	return lg.LoadConfig(viper.ConfigFileUsed())
}
