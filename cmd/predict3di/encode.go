package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pranavathiyani/predict3Di/cmd/util"
	"github.com/pranavathiyani/predict3Di/threedi"
)

var (
	flagChains []string
	flagFormat string
	flagSplit  string
	flagOutput string
)

var encodeCmd = &cobra.Command{
	Use:   "encode structure-file [structure-file ...]",
	Short: "Encode local PDB or mmCIF files",
	Long: `Encode local PDB or mmCIF files

Every chain of every file given is encoded and written to stdout (or the file
given by --output) as FASTA, TSV or JSON. Files may be gzipped. Files that
can't be read are reported and skipped; the rest are still written, in the
order given on the command line.

With --split, every chain is also written to its own file,
<dir>/<id>/chain_<chain>_3di.txt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(flagFormat); err != nil {
			return err
		}
		recs, failed := encodeFiles(encoder(), args)
		if err := emit(recs); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files could not be read", failed,
				len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	addOutputFlags(encodeCmd)
}

// addOutputFlags adds the flags shared by every command that writes encoded
// chains.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&flagChains, "chain", "c", nil,
		"Only write the chains with these identifiers.")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", formatFasta,
		"The output format: fasta, tsv or json.")
	cmd.Flags().StringVar(&flagSplit, "split", "",
		"Also write one file per chain to this directory.")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "-",
		"Where to write the encoded chains.")
}

// encodeFiles encodes every file in parallel. The records are in the same
// order as paths, without the files that could not be read.
func encodeFiles(enc *threedi.Encoder, paths []string) ([]record, int) {
	workers := conf.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := newEncodeWorkers(enc, workers)
	go func() {
		for i, path := range paths {
			p.enqueue(i, path)
		}
		p.done()
	}()

	progress := util.NewProgress(len(paths))
	ordered := make([]*record, len(paths))
	for r := range p.results {
		if r.err != nil {
			progress.JobDone(fmt.Errorf("%s: %s", paths[r.index], r.err))
			continue
		}
		rec := r.rec
		ordered[r.index] = &rec
		progress.JobDone(nil)
	}
	progress.Close()

	recs := make([]record, 0, len(paths))
	for _, rec := range ordered {
		if rec != nil {
			recs = append(recs, *rec)
		}
	}
	return recs, len(paths) - len(recs)
}

// emit filters, reports and writes encoded records per the output flags.
func emit(recs []record) error {
	for i := range recs {
		recs[i].filterChains(flagChains)
		reportDegraded(recs[i])
	}

	out := util.CreateFile(flagOutput)
	if err := writeRecords(out, flagFormat, recs); err != nil {
		out.Close()
		return fmt.Errorf("could not write '%s': %w", flagOutput, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if len(flagSplit) > 0 {
		util.AssertDir(flagSplit)
		if err := writeSplit(flagSplit, recs); err != nil {
			return err
		}
	}
	return nil
}

// reportDegraded logs, at verbose level, every residue given the fallback
// symbol.
func reportDegraded(rec record) {
	for _, c := range rec.Chains {
		if len(c.Degraded) == 0 {
			continue
		}
		util.Verbosef("%s: %d of %d residues could not be encoded: %v",
			chainHeader(rec.ID, c.ID), len(c.Degraded), c.Len(), c.Degraded)
	}
}
