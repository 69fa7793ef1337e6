// Package importer bulk-loads a directory of Alpha Progression CSV exports.
package importer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsParsed     int
	WorkoutsInserted   int
	WorkoutsDuplicated int
	SetsInserted       int64
	RecordsSet         int
}

// Ingester stores one export for a user.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// Importer reads export files from a directory tree and ingests each one.
type Importer struct {
	ingester Ingester
	log      *slog.Logger
	loc      *time.Location
	userID   int
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. In dry-run mode files are only parsed.
func New(ing Ingester, log *slog.Logger, loc *time.Location, userID int, dryRun bool) *Importer {
	if loc == nil {
		loc = time.UTC
	}
	return &Importer{ingester: ing, log: log, loc: loc, userID: userID, dryRun: dryRun}
}

// IsExport reports whether a file name looks like a CSV export.
func IsExport(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".csv.gz")
}

// Import processes every export under dir in lexical path order. A file
// that fails to parse or store is counted and skipped; the walk continues.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !IsExport(d.Name()) {
			imp.stats.FilesSkipped++
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return &imp.stats, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, f); err != nil {
			imp.log.Warn("import failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		imp.stats.FilesProcessed++
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	r, err := OpenExport(path)
	if err != nil {
		return err
	}
	defer r.Close()

	if imp.dryRun {
		sessions, err := alpha.Parse(r, imp.loc)
		if err != nil {
			return err
		}
		imp.stats.SessionsParsed += len(sessions)
		imp.log.Info("parsed export", "file", path, "sessions", len(sessions))
		return nil
	}

	res, err := imp.ingester.Ingest(ctx, r, imp.userID)
	if err != nil {
		return err
	}
	imp.stats.SessionsParsed += res.WorkoutsReceived
	imp.stats.WorkoutsInserted += res.WorkoutsInserted
	imp.stats.WorkoutsDuplicated += res.WorkoutsSkipped
	imp.stats.SetsInserted += res.SetsInserted
	imp.stats.RecordsSet += len(res.NewRecords)
	imp.log.Info("imported export", "file", path,
		"workouts_inserted", res.WorkoutsInserted, "records", len(res.NewRecords))
	return nil
}
