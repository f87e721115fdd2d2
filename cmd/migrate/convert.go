package main

import (
	"os"

	"github.com/dmitrijs2005/photoshare/internal/migrate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConvertCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert exported photo records into a batch-write document",
		Long: `Reads [{"id","filename","description","user_id"}] and writes
{"<table>": [{"PutRequest": {"Item": {...}}}]}. Ids are written as numbers
unless --string-ids is given; empty descriptions become "N/A".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(v.GetString("in"))
			if err != nil {
				return err
			}
			defer in.Close()

			recs, err := migrate.ReadPhotoRecords(in)
			if err != nil {
				return err
			}
			reqs, err := migrate.ConvertPhotos(recs, v.GetBool("string-ids"))
			if err != nil {
				return err
			}

			out, err := os.Create(v.GetString("out"))
			if err != nil {
				return err
			}
			if err := migrate.WriteDocument(out, migrate.Document{v.GetString("table"): reqs}); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}

			cmd.Printf("wrote %d items to %s\n", len(reqs), v.GetString("out"))
			return nil
		},
	}

	cmd.Flags().String("in", "records.json", "exported photo records (- for stdin)")
	cmd.Flags().String("out", "images_dynamodb.json", "batch-write document to create")
	cmd.Flags().String("table", "Images", "target table name")
	cmd.Flags().Bool("string-ids", false, "write id and user_id as strings")
	return cmd
}
