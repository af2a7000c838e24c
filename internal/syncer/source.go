package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/lumen/internal/checksum"
	"github.com/starford/lumen/internal/ingest"
	"github.com/starford/lumen/internal/remote"
	"github.com/starford/lumen/internal/storage"
)

// Source yields the full current file listing of an origin.
type Source interface {
	Fetch(ctx context.Context) ([]ingest.DriveFile, error)
}

// VaultSource reads every markdown file of a local vault folder.
type VaultSource struct {
	store *storage.FS
}

// NewVaultSource wraps a vault provider.
func NewVaultSource(store *storage.FS) *VaultSource {
	return &VaultSource{store: store}
}

// Root returns the vault directory.
func (v *VaultSource) Root() string {
	return v.store.Root()
}

// Fetch lists and reads the vault. Files carry no source id, so parsed
// notes get path-derived ids.
func (v *VaultSource) Fetch(ctx context.Context) ([]ingest.DriveFile, error) {
	metas, err := v.store.List("")
	if err != nil {
		return nil, fmt.Errorf("syncer: vault list: %w", err)
	}
	files := make([]ingest.DriveFile, 0, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := v.store.Read(m.Path)
		if err != nil {
			return nil, fmt.Errorf("syncer: vault read: %w", err)
		}
		content := string(data)
		files = append(files, ingest.DriveFile{
			Name:         m.Path,
			Content:      &content,
			ModifiedTime: ingest.Timestamp{Time: m.ModTime.UTC()},
		})
	}
	return files, nil
}

// Fingerprint summarizes the vault listing; it changes whenever any
// markdown file is added, removed or edited.
func (v *VaultSource) Fingerprint() (string, error) {
	metas, err := v.store.List("")
	if err != nil {
		return "", fmt.Errorf("syncer: vault fingerprint: %w", err)
	}
	entries := make(map[string]string, len(metas))
	for _, m := range metas {
		entries[m.Path] = m.Checksum
	}
	return checksum.Combine(entries), nil
}

// Drive is the backend surface a DriveSource needs.
type Drive interface {
	SyncStatus(ctx context.Context) (remote.StatusReport, error)
	DriveFiles(ctx context.Context) ([]ingest.DriveFile, error)
}

// DriveSource waits for the backend's own drive sync to settle before
// taking the file listing.
type DriveSource struct {
	drive Drive
	poll  time.Duration
}

// NewDriveSource wraps a backend client. poll <= 0 uses the PollStatus
// default.
func NewDriveSource(d Drive, poll time.Duration) *DriveSource {
	return &DriveSource{drive: d, poll: poll}
}

// Fetch polls the backend sync status and then lists the drive files. A
// backend reporting error fails the fetch with its message.
func (d *DriveSource) Fetch(ctx context.Context) ([]ingest.DriveFile, error) {
	rep, err := PollStatus(ctx, d.drive.SyncStatus, d.poll)
	if err != nil {
		return nil, err
	}
	if Status(rep.Status) == StatusError {
		return nil, fmt.Errorf("syncer: backend sync failed: %s", rep.Message)
	}
	files, err := d.drive.DriveFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("syncer: drive files: %w", err)
	}
	return files, nil
}
