package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"

	"github.com/pranavathiyani/predict3Di/server"
	"github.com/pranavathiyani/predict3Di/threedi"
)

// Output formats accepted by --format.
const (
	formatFasta = "fasta"
	formatTSV   = "tsv"
	formatJSON  = "json"
)

var formats = []string{formatFasta, formatTSV, formatJSON}

// record is every encoded chain of one structure.
type record struct {
	ID     string
	Path   string
	Chains []threedi.Chain
}

// filterChains keeps the chains with one of the identifiers given. No
// identifiers keeps every chain.
func (r *record) filterChains(idents []string) {
	if len(idents) == 0 {
		return
	}
	kept := r.Chains[:0]
	for _, c := range r.Chains {
		for _, ident := range idents {
			if c.ID == ident {
				kept = append(kept, c)
				break
			}
		}
	}
	r.Chains = kept
}

// chainHeader is the name of an encoded chain in FASTA and TSV output.
func chainHeader(id, chain string) string {
	return fmt.Sprintf("%s_%s", id, chain)
}

func checkFormat(format string) error {
	for _, f := range formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown output format '%s' (use one of %s)",
		format, strings.Join(formats, ", "))
}

// writeRecords writes every chain of every record in the format given.
func writeRecords(w io.Writer, format string, recs []record) error {
	switch format {
	case formatFasta:
		return writeFasta(w, recs)
	case formatTSV:
		return writeTSV(w, recs)
	case formatJSON:
		return writeJSON(w, recs)
	}
	return checkFormat(format)
}

func writeFasta(w io.Writer, recs []record) error {
	var seqs []seq.Sequence
	for _, rec := range recs {
		for _, c := range rec.Chains {
			seqs = append(seqs, c.Seq(chainHeader(rec.ID, c.ID)))
		}
	}
	fw := fasta.NewWriter(w)
	fw.Columns = 0
	return fw.WriteAll(seqs)
}

func writeTSV(w io.Writer, recs []record) error {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'
	tw.Write([]string{"id", "chain", "length", "degraded", "sequence"})
	for _, rec := range recs {
		for _, c := range rec.Chains {
			tw.Write([]string{
				rec.ID,
				c.ID,
				strconv.Itoa(c.Len()),
				strconv.Itoa(len(c.Degraded)),
				c.Sequence,
			})
		}
	}
	tw.Flush()
	return tw.Error()
}

type jsonRecord struct {
	ID     string               `json:"id"`
	Path   string               `json:"path,omitempty"`
	Chains []server.ChainResult `json:"chains"`
}

func writeJSON(w io.Writer, recs []record) error {
	out := make([]jsonRecord, len(recs))
	for i, rec := range recs {
		out[i] = jsonRecord{rec.ID, rec.Path, server.Chains(rec.Chains)}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeSplit writes every chain to its own file, dir/<id>/chain_<chain>_3di.txt.
func writeSplit(dir string, recs []record) error {
	for _, rec := range recs {
		entryDir := filepath.Join(dir, rec.ID)
		if err := os.MkdirAll(entryDir, 0755); err != nil {
			return err
		}
		for _, c := range rec.Chains {
			fpath := filepath.Join(entryDir, server.DownloadName(c.ID))
			err := os.WriteFile(fpath, []byte(c.Sequence+"\n"), 0644)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
