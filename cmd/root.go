package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Exit codes: 0 = at least one match, 1 = no match, 2 = fatal error.
const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2
)

// RootCmd is the zwerg command itself: there are no subcommands, the
// tool is grep-shaped.
var RootCmd = &cobra.Command{
	Use:   "zwerg [flags] [EXPR] FILE...",
	Short: "Query DWARF debugging information",
	Long: `Zwerg evaluates stack-language queries against the DWARF trees of one
or more object files and prints every value that satisfies the query.

The first positional argument is the query unless -e is given; the
remaining arguments name the files to search.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := run(args)
		exitCode = code
		return err
	},
}

// exitCode carries the run outcome out of cobra's error plumbing.
var exitCode = exitNoMatch

var flags struct {
	expr         string
	count        bool
	withFilename bool
	noFilename   bool
	quiet        bool
	noMessages   bool
	color        string
}

// Execute runs the root command and exits with the grep-style code.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zwerg: %v\n", err)
		os.Exit(exitError)
	}
	os.Exit(exitCode)
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.zwergrc.yaml)")

	RootCmd.Flags().StringVarP(&flags.expr, "expr", "e", "", "query expression")
	RootCmd.Flags().BoolVarP(&flags.count, "count", "c", false, "print a count of matches per file")
	RootCmd.Flags().BoolVarP(&flags.withFilename, "with-filename", "H", false, "print the file name for each match")
	RootCmd.Flags().BoolVarP(&flags.noFilename, "no-filename", "h", false, "suppress the file name prefix on output")
	RootCmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress all normal output; exit 0 on first match")
	RootCmd.Flags().BoolVar(&flags.quiet, "silent", false, "same as --quiet")
	RootCmd.Flags().BoolVarP(&flags.noMessages, "no-messages", "s", false, "suppress error messages")
	RootCmd.Flags().StringVar(&flags.color, "color", "auto", "colorize output: auto, always or never")

	// -h is taken by --no-filename; help stays reachable as --help.
	RootCmd.Flags().Bool("help", false, "help for zwerg")
	_ = RootCmd.Flags().MarkHidden("silent")
}

// initConfig reads in the config file and matching environment
// variables, supplying defaults for the flags the user did not pass.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".zwergrc")
	}

	viper.SetEnvPrefix("zwerg")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		applyConfigDefaults()
	}
}

// applyConfigDefaults backfills flag values from the config file for
// flags the command line left untouched.
func applyConfigDefaults() {
	f := RootCmd.Flags()
	for _, key := range []string{"count", "with-filename", "no-filename", "quiet", "no-messages", "color"} {
		if viper.IsSet(key) && !f.Changed(key) {
			_ = f.Set(key, viper.GetString(key))
		}
	}
}
