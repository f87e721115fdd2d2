package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/pressly/goose/v3"
)

// gooseLogger routes goose's printf-style output into the structured logger.
type gooseLogger struct {
	ctx    context.Context
	logger logging.Logger
}

var _ goose.Logger = (*gooseLogger)(nil)

func newGooseLogger(ctx context.Context, l logging.Logger) *gooseLogger {
	return &gooseLogger{ctx: ctx, logger: l.With("module", "goose")}
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.logger.Info(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf panics rather than exiting the process.
func (g *gooseLogger) Fatalf(format string, v ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	g.logger.Error(g.ctx, msg)
	panic(msg)
}
