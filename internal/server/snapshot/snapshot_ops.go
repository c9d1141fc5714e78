package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/storage"
)

const (
	snapshotPrefix   = "adminhub-snapshot-"
	snapshotSuffix   = ".json"
	manifestSuffix   = ".manifest"
	snapshotPageSize = 200

	// exportConcurrency bounds how many lists are read from the store at
	// once during an export.
	exportConcurrency = 4
)

// Snapshot serializes every registered list into one archive. Items come out
// in creation order so two exports of the same content are identical.
func (svc *SnapshotService) Snapshot(ctx context.Context) ([]byte, error) {
	lists := svc.registry.Lists()
	archives := make([]*SnapshotList, len(lists))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(exportConcurrency)

	for i, list := range lists {
		group.Go(func() error {
			archive, err := svc.snapshotList(groupCtx, list.Key)
			if err != nil {
				return fmt.Errorf("failed to snapshot list %s: %w", list.Key, err)
			}

			archives[i] = archive

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	data := &SnapshotData{
		Version:   SnapshotVersion,
		Timestamp: time.Now(),
		Lists:     archives,
	}

	return json.MarshalIndent(data, "", "  ")
}

func (svc *SnapshotService) snapshotList(ctx context.Context, listKey string) (*SnapshotList, error) {
	archive := &SnapshotList{Key: listKey, Items: []*SnapshotItem{}}

	after := ""

	for {
		page, err := svc.store.List(ctx, storage.Query{
			ListKey: listKey,
			Limit:   snapshotPageSize,
			After:   after,
			Order:   storage.OrderAsc,
		})
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			archive.Items = append(archive.Items, &SnapshotItem{
				ID:        item.ID,
				Data:      item.Data,
				CreatedAt: item.CreatedAt,
				UpdatedAt: item.UpdatedAt,
			})
		}

		if page.Next == "" {
			break
		}

		after = page.Next
	}

	return archive, nil
}

// WriteSnapshot exports the store into a timestamped archive in the snapshot
// directory, with a checksum manifest beside it. It returns the manifest so
// callers can report what was written.
func (svc *SnapshotService) WriteSnapshot(ctx context.Context) (*Manifest, error) {
	data, err := svc.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}

	if err := svc.fs.MkdirAll(svc.config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s%s%s", snapshotPrefix, timestamp, snapshotSuffix)

	if err := afero.WriteFile(svc.fs, filepath.Join(svc.config.Dir, filename), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot file: %w", err)
	}

	manifest, err := svc.writeManifest(filename, data)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "Snapshot written",
		log.String("file", filename),
		log.Int("size", len(data)),
		log.String("checksum", manifest.Checksum),
	)

	return manifest, nil
}

func (svc *SnapshotService) writeManifest(filename string, data []byte) (*Manifest, error) {
	manifest := &Manifest{
		File:      filename,
		Checksum:  fmt.Sprintf("%016x", xxhash.Sum64(data)),
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}

	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(svc.config.Dir, filename+manifestSuffix)
	if err := afero.WriteFile(svc.fs, path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write manifest file: %w", err)
	}

	return manifest, nil
}

// LoadSnapshot reads an archive from the snapshot directory and verifies it
// against its manifest before handing the bytes back.
func (svc *SnapshotService) LoadSnapshot(ctx context.Context, filename string) ([]byte, error) {
	if filepath.Base(filename) != filename {
		return nil, fmt.Errorf("invalid snapshot file name: %s", filename)
	}

	data, err := afero.ReadFile(svc.fs, filepath.Join(svc.config.Dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	raw, err := afero.ReadFile(svc.fs, filepath.Join(svc.config.Dir, filename+manifestSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot manifest: %w", err)
	}

	checksum := fmt.Sprintf("%016x", xxhash.Sum64(data))
	if checksum != manifest.Checksum {
		log.Error(ctx, "Snapshot checksum mismatch",
			log.String("file", filename),
			log.String("expected", manifest.Checksum),
			log.String("got", checksum),
		)

		return nil, fmt.Errorf("snapshot checksum mismatch for %s", filename)
	}

	return data, nil
}

// ListSnapshots reports the archives currently in the snapshot directory,
// oldest first.
func (svc *SnapshotService) ListSnapshots(ctx context.Context) ([]*Manifest, error) {
	files, err := afero.ReadDir(svc.fs, svc.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	manifests := make([]*Manifest, 0, len(files))

	for _, f := range files {
		if !isSnapshotFile(f.Name()) {
			continue
		}

		manifests = append(manifests, &Manifest{
			File:      f.Name(),
			Size:      f.Size(),
			CreatedAt: f.ModTime(),
		})
	}

	return manifests, nil
}
