package main

import (
	"github.com/spf13/cobra"

	"github.com/pranavathiyani/predict3Di/cmd/util"
	"github.com/pranavathiyani/predict3Di/config"
	"github.com/pranavathiyani/predict3Di/threedi"
)

var (
	// settings is every setting from the config file, the environment and
	// the persistent flags.
	settings = config.New()

	// conf is settings decoded. It's available to every command's Run.
	conf config.Config

	flagConfig string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "predict3di",
	Short: "Encode protein structures with a structural alphabet",
	Long: `Encode protein structures with a structural alphabet

Every residue of a protein chain is described by its backbone torsion angles
and the geometry of its nearest neighbors in space, and is assigned the state
of the closest centroid of a codebook. The states of a chain are written out
as a string with one letter per residue, in residue order. Residues that
can't be described (e.g., a missing alpha carbon) get the letter X.

Structures can be read in PDB or PDBx/mmCIF format, optionally gzipped, from
local files or downloaded by PDB identifier.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		util.Fatalf("%v", err)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "",
		"A YAML, TOML or JSON file with settings.")
	flags.String("codebook", "",
		"A codebook written by 'predict3di train'. The built in codebook is "+
			"used by default.")
	flags.IntP("workers", "p", 0,
		"The number of files and chains encoded at once. 0 uses every CPU.")
	flags.BoolP("verbose", "v", false,
		"Show progress and residues that could not be encoded.")

	for _, name := range []string{"codebook", "workers", "verbose"} {
		util.Assert(settings.BindPFlag(name, flags.Lookup(name)))
	}
}

// initConfig reads the config file, if one was given, and decodes every
// setting into conf.
func initConfig() {
	if len(flagConfig) > 0 {
		settings.SetConfigFile(flagConfig)
		util.Assert(settings.ReadInConfig(),
			"Could not read config file '%s'", flagConfig)
	}

	var err error
	conf, err = config.Load(settings)
	util.Assert(err, "Invalid settings")
	util.FlagVerbose = conf.Verbose
}

// bindFlag makes a command's flag override the setting with the name given.
func bindFlag(cmd *cobra.Command, setting, flag string) {
	util.Assert(settings.BindPFlag(setting, cmd.Flags().Lookup(flag)))
}

// encoder returns an encoder using the configured codebook.
func encoder() *threedi.Encoder {
	return threedi.NewEncoder(util.Codebook(conf), conf.Workers)
}
