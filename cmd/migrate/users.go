package main

import (
	"github.com/dmitrijs2005/photoshare/internal/migrate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newUsersCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: `Upload exported users ({"Users": [...]}) in chunks of 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(v.GetString("in"))
			if err != nil {
				return err
			}
			defer in.Close()

			recs, err := migrate.ReadUserRecords(in)
			if err != nil {
				return err
			}
			reqs, err := migrate.ConvertUsers(recs)
			if err != nil {
				return err
			}

			return upload(cmd, v, v.GetString("table"), reqs)
		},
	}

	cmd.Flags().String("in", "users.json", "exported users (- for stdin)")
	cmd.Flags().String("table", "Users", "target table name")
	return cmd
}
