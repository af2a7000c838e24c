package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/starford/lumen/internal/mcpserver"
	"github.com/starford/lumen/internal/models"
)

// RunMCP loads the collection once and serves it to an MCP client over
// stdin/stdout. Logs must not go to stdout here; the caller is expected to
// pass WithLogOutput(os.Stderr).
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()
	slog.SetDefault(logger)

	c, err := newCore(cfg, logger)
	if err != nil {
		return err
	}
	if _, err := c.syncer.Sync(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	srv := mcpserver.New(c.notes, app.version)
	logger.Info("MCP server ready", slog.Int("notes", c.repo.Len()))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gCtx, os.Stdin, os.Stdout)
	})
	if c.watchEnabled(cfg) {
		g.Go(func() error {
			return c.syncer.Watch(gCtx, c.vault.Root(), cfg.Sync.Debounce)
		})
	}
	return g.Wait()
}

// searchOutput is what `lumen search` prints.
type searchOutput struct {
	Query   string                `json:"query"`
	Total   int                   `json:"total"`
	Results []models.SearchResult `json:"results"`
}

// Search syncs once and writes the ranked local results for query to out
// as indented JSON.
func Search(ctx context.Context, out io.Writer, query string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	c, err := newCore(app.config, logger)
	if err != nil {
		return err
	}
	if _, err := c.syncer.Sync(ctx); err != nil {
		return fmt.Errorf("load notes: %w", err)
	}

	results := c.notes.Search(ctx, query)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(searchOutput{Query: query, Total: len(results), Results: results})
}
