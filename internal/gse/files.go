package gse

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/linuxmatters/temblor/internal/waveform"
)

// ProgressFunc receives the number of files scanned so far
type ProgressFunc func(done, total int, last *Catalog)

// ScanFiles scans independent files with up to workers goroutines and
// returns one catalog per path, in path order. A file that cannot be read
// yields a catalog holding that failure as its only problem. The error is
// non-nil only when ctx is cancelled.
func (s *Scanner) ScanFiles(ctx context.Context, paths []string, workers int, progress ProgressFunc) ([]*Catalog, error) {
	if workers <= 0 {
		workers = 1
	}

	catalogs := make([]*Catalog, len(paths))
	var (
		mu   sync.Mutex
		done int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			cat, err := s.ScanFile(path)
			if err != nil {
				if cat == nil {
					cat = &Catalog{File: path}
				}
				cat.Problems = append(cat.Problems, err)
			}
			catalogs[i] = cat

			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(paths), cat)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return catalogs, nil
}

// Descriptors flattens catalogs in order
func Descriptors(catalogs []*Catalog) []*waveform.Descriptor {
	var out []*waveform.Descriptor
	for _, c := range catalogs {
		if c != nil {
			out = append(out, c.Descriptors...)
		}
	}
	return out
}
