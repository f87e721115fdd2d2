package main

import (
	"github.com/dmitrijs2005/photoshare/internal/migrate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newUploadCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a batch-write document in chunks of 25",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(v.GetString("in"))
			if err != nil {
				return err
			}
			defer in.Close()

			doc, err := migrate.ReadDocument(in)
			if err != nil {
				return err
			}
			table, reqs, err := doc.Table()
			if err != nil {
				return err
			}
			if t := v.GetString("table"); t != "" {
				table = t
			}

			return upload(cmd, v, table, reqs)
		},
	}

	cmd.Flags().String("in", "images_dynamodb.json", "batch-write document (- for stdin)")
	cmd.Flags().String("table", "", "override the table named in the document")
	return cmd
}
