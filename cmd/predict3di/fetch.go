package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pranavathiyani/predict3Di/cmd/util"
)

var flagSave string

var fetchCmd = &cobra.Command{
	Use:   "fetch pdb-id [pdb-id ...]",
	Short: "Download entries from the PDB and encode them",
	Long: `Download entries from the PDB and encode them

Each identifier is a four character PDB identifier, e.g., 1ctf. The mirrors
in the "fetch.mirrors" setting are tried in order and the first file found
is used. Identifiers may also be read from a file, one per line, with
--ids. Output is the same as "predict3di encode".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(flagFormat); err != nil {
			return err
		}
		ids := args
		if len(flagIDs) > 0 {
			f := util.OpenFile(flagIDs)
			ids = append(ids, util.ReadLines(f)...)
			f.Close()
		}
		if len(ids) == 0 {
			return fmt.Errorf("no PDB identifiers given")
		}
		if len(flagSave) > 0 {
			util.AssertDir(flagSave)
		}

		enc := encoder()
		fetcher := conf.Fetcher()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var recs []record
		failed := 0
		progress := util.NewProgress(len(ids))
		for _, id := range ids {
			entry, dl, err := fetcher.FetchEntry(ctx, id)
			if err != nil {
				failed++
				progress.JobDone(err)
				continue
			}
			util.Verbosef("\rdownloaded %s from %s\n", dl.ID, dl.URL)
			if len(flagSave) > 0 {
				fpath := filepath.Join(flagSave, dl.Name)
				util.Warning(os.WriteFile(fpath, dl.Data, 0644),
					"Could not save '%s'", fpath)
			}
			recs = append(recs, encodeEntry(enc, entry))
			progress.JobDone(nil)
		}
		progress.Close()

		if err := emit(recs); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d entries could not be fetched",
				failed, len(ids))
		}
		return nil
	},
}

var flagIDs string

func init() {
	rootCmd.AddCommand(fetchCmd)
	addOutputFlags(fetchCmd)
	fetchCmd.Flags().StringVar(&flagSave, "save", "",
		"Keep every downloaded file in this directory.")
	fetchCmd.Flags().StringVar(&flagIDs, "ids", "",
		"A file with PDB identifiers, one per line. '-' is stdin.")
	fetchCmd.Flags().Duration("timeout", 0,
		"How long to wait on each mirror.")
	bindFlag(fetchCmd, "fetch.timeout", "timeout")
}
