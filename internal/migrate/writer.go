package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dmitrijs2005/photoshare/internal/dynamox"
	"github.com/dmitrijs2005/photoshare/internal/logging"
)

// BatchWriter is the DynamoDB call the Writer needs.
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Report summarizes one Write.
type Report struct {
	Chunks       int
	FailedChunks int
	Written      int
	Unprocessed  int
	Errors       []error
}

// Err joins the per-chunk errors, nil when every chunk was accepted.
func (r Report) Err() error {
	return errors.Join(r.Errors...)
}

// Chunk splits items into consecutive groups of at most size.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

type Writer struct {
	api    BatchWriter
	logger logging.Logger
}

func NewWriter(api BatchWriter, logger logging.Logger) *Writer {
	return &Writer{api: api, logger: logger.With("module", "migrate")}
}

// Write submits reqs to table in chunks of dynamox.MaxBatchWriteItems, one
// call after another. A failed chunk is logged and recorded in the report
// and the remaining chunks are still sent. Unprocessed items are counted,
// not retried. Only an invalid request or a cancelled ctx returns an error.
func (w *Writer) Write(ctx context.Context, table string, reqs []WriteRequest) (Report, error) {
	sdkReqs := make([]types.WriteRequest, 0, len(reqs))
	for i, r := range reqs {
		wr, err := r.toSDK()
		if err != nil {
			return Report{}, fmt.Errorf("request %d: %w", i, err)
		}
		sdkReqs = append(sdkReqs, wr)
	}

	var rep Report
	for i, chunk := range Chunk(sdkReqs, dynamox.MaxBatchWriteItems) {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Chunks++

		out, err := w.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{table: chunk},
		})
		if err != nil {
			rep.FailedChunks++
			rep.Errors = append(rep.Errors, fmt.Errorf("chunk %d: %w", i+1, err))
			w.logger.Error(ctx, "batch write failed", "table", table, "chunk", i+1, "items", len(chunk), "error", err)
			continue
		}

		unprocessed := 0
		if out != nil {
			unprocessed = len(out.UnprocessedItems[table])
		}
		rep.Written += len(chunk) - unprocessed
		rep.Unprocessed += unprocessed

		if unprocessed > 0 {
			w.logger.Warn(ctx, "batch partially processed", "table", table, "chunk", i+1, "unprocessed", unprocessed)
		} else {
			w.logger.Info(ctx, "batch written", "table", table, "chunk", i+1, "items", len(chunk))
		}
	}

	return rep, nil
}
