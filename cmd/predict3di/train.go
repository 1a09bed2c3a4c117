package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranavathiyani/predict3Di/cmd/util"
	"github.com/pranavathiyani/predict3Di/codebook"
	"github.com/pranavathiyani/predict3Di/geom"
	"github.com/pranavathiyani/predict3Di/source"
)

var (
	flagTrainName    string
	flagTrainMaxIter int
)

var trainCmd = &cobra.Command{
	Use:   "train out-codebook structure-file [structure-file ...]",
	Short: "Refine a codebook against a set of structures",
	Long: `Refine a codebook against a set of structures

The configured codebook (or the built in one) is used as a seed. Every
residue of every chain with a complete description is assigned to its
nearest state, and every state moves to the mean of its residues, until no
assignment changes. The result keeps the symbols of the seed and can be used
with --codebook.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, paths := args[0], args[1:]
		seed := util.Codebook(conf)
		extract := geom.NewExtractor(seed.K())

		var descriptors []geom.Descriptor
		progress := util.NewProgress(len(paths))
		for _, path := range paths {
			entry, err := source.ReadFile(path)
			if err != nil {
				progress.JobDone(err)
				continue
			}
			for _, chain := range entry.Chains {
				descriptors = append(descriptors, extract.Chain(chain)...)
			}
			progress.JobDone(nil)
		}
		progress.Close()

		cb, stats, err := codebook.Train(seed, descriptors, codebook.TrainOptions{
			Name:    flagTrainName,
			MaxIter: flagTrainMaxIter,
		})
		if err != nil {
			return err
		}
		if !stats.Converged {
			util.Warnf("Stopped after %d rounds without converging.",
				stats.Iterations)
		}
		util.Verbosef("Trained on %d of %d residues in %d rounds.",
			stats.Used, len(descriptors), stats.Iterations)
		for i, count := range stats.Counts {
			if count == 0 {
				util.Warnf("State %c was not assigned any residues.",
					cb.Symbol(i))
			}
		}
		util.CodebookWrite(out, cb)
		fmt.Printf("%s\n", cb)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVar(&flagTrainName, "name", "",
		"The name of the new codebook. Defaults to the seed's name.")
	trainCmd.Flags().IntVar(&flagTrainMaxIter, "max-iter", 0,
		"The most refinement rounds to run. 0 means 50.")
}
