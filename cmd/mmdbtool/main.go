// Command mmdbtool builds an MMDB database from a CSV file of
// prefix,JSON-value rows. It exists to exercise the mmdbwriter library
// end to end; reading the resulting database back is out of scope, per
// spec.md §1.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bartdb/mmdbwriter"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		ipVersion    int
		recordSize   int
		databaseType string
		description  string
		languages    []string
		compat       bool
		output       string
	)

	cmd := &cobra.Command{
		Use:   "mmdbtool <input.csv>",
		Short: "Build an MMDB database from a CSV of prefix,JSON-value rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return build(buildConfig{
				inputPath:    args[0],
				outputPath:   output,
				ipVersion:    ipVersion,
				recordSize:   recordSize,
				databaseType: databaseType,
				description:  description,
				languages:    languages,
				compat:       compat,
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&ipVersion, "ip-version", 6, "database IP version (4 or 6)")
	flags.IntVar(&recordSize, "record-size", 28, "node record size in bits (24, 28, or 32)")
	flags.StringVar(&databaseType, "database-type", "Custom", "database_type metadata value")
	flags.StringVar(&description, "description", "Built with mmdbtool", "English description metadata value")
	flags.StringSliceVar(&languages, "languages", []string{"en"}, "comma-separated locale codes")
	flags.BoolVar(&compat, "compat", true, "use the ::0.0.0.0/128 IPv4-in-IPv6 embedding instead of ::ffff:0:0/96")
	flags.StringVarP(&output, "output", "o", "out.mmdb", "output file path")

	return cmd
}

type buildConfig struct {
	inputPath, outputPath  string
	ipVersion, recordSize  int
	databaseType           string
	description            string
	languages              []string
	compat                 bool
}

func build(cfg buildConfig) error {
	w, err := mmdbwriter.New(mmdbwriter.Options{
		IPVersion:    cfg.ipVersion,
		RecordSize:   cfg.recordSize,
		DatabaseType: cfg.databaseType,
		Description:  map[string]string{"en": cfg.description},
		Languages:    cfg.languages,
		Compat:       cfg.compat,
	})
	if err != nil {
		return errors.Wrap(err, "configuring writer")
	}

	f, err := os.Open(cfg.inputPath)
	if err != nil {
		return errors.Wrapf(err, "opening %s", cfg.inputPath)
	}
	defer f.Close()

	if err := insertAll(w, f); err != nil {
		return err
	}

	if err := w.WriteFile(cfg.outputPath); err != nil {
		return errors.Wrapf(err, "writing %s", cfg.outputPath)
	}

	fmt.Fprintf(os.Stdout, "wrote %s\n", cfg.outputPath)
	return nil
}

// insertAll reads prefix,JSON rows from r and inserts each into w.
func insertAll(w *mmdbwriter.Writer, r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	row := 0
	for {
		row++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "row %d", row)
		}

		prefix, rawValue := record[0], record[1]

		var decoded any
		if err := json.Unmarshal([]byte(rawValue), &decoded); err != nil {
			return errors.Wrapf(err, "row %d: decoding JSON value", row)
		}

		offset, err := w.InsertData(decoded)
		if err != nil {
			return errors.Wrapf(err, "row %d: inserting data", row)
		}

		if err := w.InsertNetwork(prefix, offset, false); err != nil {
			return errors.Wrapf(err, "row %d: inserting network %s", row, prefix)
		}
	}
}
