package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pranavathiyani/predict3Di/cmd/util"
	"github.com/pranavathiyani/predict3Di/codebook"
	"github.com/pranavathiyani/predict3Di/threedi"
)

var codebookCmd = &cobra.Command{
	Use:   "codebook",
	Short: "Show the states of the codebook in use",
	Long: `Show the states of the codebook in use

For every state, its symbol and the backbone torsion angles, mean neighbor
distance and mean orientation of its centroid are shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cb := util.Codebook(conf)
		fmt.Printf("%s\nalphabet: %s\n\n", cb, threedi.Alphabet(cb))
		return writeStates(os.Stdout, cb)
	},
}

func init() {
	rootCmd.AddCommand(codebookCmd)
}

func writeStates(w io.Writer, cb *codebook.Codebook) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "state\tsymbol\tphi\tpsi\tdistance\torientation")
	for i := 0; i < cb.Size(); i++ {
		c := cb.Centroid(i)
		phi := math.Atan2(c[0], c[1]) * 180 / math.Pi
		psi := math.Atan2(c[2], c[3]) * 180 / math.Pi

		var dist, orient float64
		for m := 0; m < cb.K(); m++ {
			dist += c[4+3*m]
			orient += c[4+3*m+1]
		}
		if cb.K() > 0 {
			dist /= float64(cb.K())
			orient /= float64(cb.K())
		}
		fmt.Fprintf(tw, "%d\t%c\t%0.1f\t%0.1f\t%0.2f\t%0.2f\n",
			i, cb.Symbol(i), phi, psi, dist, orient)
	}
	return tw.Flush()
}
