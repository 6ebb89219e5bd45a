package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"mirror-warp/internal/export"
	"mirror-warp/internal/logging"
	"mirror-warp/internal/warpmap"
)

// Config holds the settings shared by every job in a batch run.
type Config struct {
	OutputDir   string
	Decode      warpmap.Options
	Format      string // export extension, ".png" when empty
	PreviewSize int    // 0 disables previews
	Workers     int
	Progress    time.Duration // 0 disables progress lines
}

// Job is one encoded map to decode.
type Job struct {
	Name  string
	Input string
}

// JobsFromPaths names each job after its file stem.
func JobsFromPaths(paths []string) []Job {
	jobs := make([]Job, len(paths))
	for i, p := range paths {
		jobs[i] = Job{
			Name:  strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
			Input: p,
		}
	}
	return jobs
}

// Result holds the outcome of processing one job.
type Result struct {
	Name    string         `json:"name"`
	Input   string         `json:"input"`
	Output  string         `json:"output,omitempty"`
	Preview string         `json:"preview,omitempty"`
	Width   int            `json:"width,omitempty"`
	Height  int            `json:"height,omitempty"`
	Stats   *warpmap.Stats `json:"stats,omitempty"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
}

// Run decodes and exports all jobs using a worker pool. Results are in job order.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						fmt.Printf("  [%d/%d] %.1f maps/sec\n", p, total, float64(p)/elapsed)
					}
				}
			}
		}()
	}

	workers := max(cfg.Workers, 1)
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	logging.Logger().Info("batch finished", "maps", total, "elapsed", time.Since(start))
	return results
}

func processJob(cfg Config, job Job) Result {
	res := Result{Name: job.Name, Input: job.Input}

	img, err := warpmap.Load(job.Input)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	m, err := warpmap.Decode(img, cfg.Decode)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	stats := m.Stats()
	res.Width, res.Height, res.Stats = m.Width, m.Height, &stats

	format := cfg.Format
	if format == "" {
		format = ".png"
	}
	res.Output = filepath.Join(cfg.OutputDir, job.Name+format)
	if err := export.Write(res.Output, m); err != nil {
		res.Error = err.Error()
		return res
	}

	if cfg.PreviewSize > 0 {
		res.Preview = filepath.Join(cfg.OutputDir, "preview", job.Name+".webp")
		if err := writePreview(res.Preview, m, cfg.PreviewSize); err != nil {
			res.Error = err.Error()
			return res
		}
	}

	res.Success = true
	return res
}

func writePreview(path string, m *warpmap.DecodedMap, size int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("batch: mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("batch: create %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, export.Preview(export.ToImage(m), size), nil); err != nil {
		return fmt.Errorf("batch: webp encode %s: %w", path, err)
	}
	return nil
}
