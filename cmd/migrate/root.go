// Command migrate converts exported photo and user records into DynamoDB
// batch-write documents and uploads them in chunks of at most 25 items.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrijs2005/photoshare/internal/dynamox"
	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/dmitrijs2005/photoshare/internal/migrate"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newBatchWriter is swapped in tests.
var newBatchWriter = func(ctx context.Context, opts dynamox.Options) (migrate.BatchWriter, error) {
	return dynamox.NewClient(ctx, opts)
}

var newLogger = func() logging.Logger {
	return logging.NewJSONLogger(os.Stderr, slog.LevelInfo)
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PHOTOSHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Bulk-load photo and user records into DynamoDB",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			return v.BindPFlags(cmd.Flags())
		},
	}

	root.PersistentFlags().String("region", "", "AWS region (default from the AWS environment)")
	root.PersistentFlags().String("endpoint", "", "DynamoDB endpoint override, e.g. http://localhost:8000")
	root.PersistentFlags().String("access-key", "", "AWS access key id (default from the AWS credential chain)")
	root.PersistentFlags().String("secret-key", "", "AWS secret access key")

	root.AddCommand(newConvertCmd(v), newUploadCmd(v), newUsersCmd(v))
	return root
}

func awsOptions(v *viper.Viper) dynamox.Options {
	return dynamox.Options{
		Region:          v.GetString("region"),
		Endpoint:        v.GetString("endpoint"),
		AccessKeyID:     v.GetString("access-key"),
		SecretAccessKey: v.GetString("secret-key"),
	}
}

// upload sends reqs and fails when any chunk was rejected.
func upload(cmd *cobra.Command, v *viper.Viper, table string, reqs []migrate.WriteRequest) error {
	ctx := cmd.Context()
	api, err := newBatchWriter(ctx, awsOptions(v))
	if err != nil {
		return err
	}

	logger := newLogger()
	rep, err := migrate.NewWriter(api, logger).Write(ctx, table, reqs)
	if err != nil {
		return err
	}

	logger.Info(ctx, "upload finished",
		"table", table,
		"chunks", rep.Chunks,
		"failed_chunks", rep.FailedChunks,
		"written", rep.Written,
		"unprocessed", rep.Unprocessed,
	)
	cmd.Printf("%s: %d written, %d unprocessed, %d of %d chunks failed\n",
		table, rep.Written, rep.Unprocessed, rep.FailedChunks, rep.Chunks)
	return rep.Err()
}

func openInput(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}
