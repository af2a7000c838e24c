package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/lumen/internal/noteservice"
	"github.com/starford/lumen/internal/remote"
	"github.com/starford/lumen/internal/repository"
	"github.com/starford/lumen/internal/search"
	"github.com/starford/lumen/internal/storage"
	"github.com/starford/lumen/internal/syncer"
)

// core is the part of the application every command needs: the note
// collection, the syncer that fills it and the query service over it.
type core struct {
	repo   *repository.Repository
	notes  *noteservice.Service
	syncer *syncer.Syncer
	client *remote.Client
	// vault is nil when notes come from the remote drive.
	vault *syncer.VaultSource
}

func newCore(cfg *Config, logger *slog.Logger, syncOpts ...syncer.Option) (*core, error) {
	c := &core{repo: repository.New()}

	var delegate *search.Remote
	if cfg.Remote.Enabled() {
		c.client = remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIToken, cfg.Remote.Timeout)
		delegate = search.NewRemote(c.client)
	}

	var src syncer.Source
	switch cfg.Sync.Source {
	case SourceRemote:
		if c.client == nil {
			return nil, fmt.Errorf("remote source requires remote.base_url")
		}
		src = syncer.NewDriveSource(c.client, cfg.Sync.PollInterval)
	default:
		if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create vault dir: %w", err)
		}
		store, err := storage.NewFS(cfg.Vault.Path)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		c.vault = syncer.NewVaultSource(store)
		src = c.vault
	}

	c.syncer = syncer.New(src, c.repo, logger, syncOpts...)
	c.notes = noteservice.NewService(c.repo, delegate)
	return c, nil
}

// watchEnabled reports whether local file changes should trigger syncs.
func (c *core) watchEnabled(cfg *Config) bool {
	return c.vault != nil && cfg.Sync.Watch
}
