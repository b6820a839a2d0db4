package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/linuxmatters/temblor/internal/assembly"
	"github.com/linuxmatters/temblor/internal/cli"
	"github.com/linuxmatters/temblor/internal/export"
	"github.com/linuxmatters/temblor/internal/gse"
	"github.com/linuxmatters/temblor/internal/series"
	"github.com/linuxmatters/temblor/internal/source"
	"github.com/linuxmatters/temblor/internal/spectrum"
	"github.com/linuxmatters/temblor/internal/ui"
	"github.com/linuxmatters/temblor/internal/waveform"
)

// ScanCmd lists the traces in a set of files
type ScanCmd struct {
	Files []string `arg:"" help:"GSE files, plain or gzip/zstd compressed" type:"existingfile"`

	SelectFlags `embed:""`
}

func (c *ScanCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	descs, err := scan(ctx, g, c.Files)
	if err != nil {
		return err
	}
	if err := c.SelectFlags.apply(descs); err != nil {
		return err
	}

	rows := make([][]string, 0, len(descs))
	for _, d := range descs {
		if !d.Selected {
			continue
		}
		rows = append(rows, []string{
			d.Station,
			d.Channel,
			waveform.FormatTime(d.Start),
			cli.FormatSeconds(d.Duration()),
			strconv.Itoa(d.NSamples),
			strconv.FormatFloat(d.SampleRate, 'g', -1, 64),
			d.Compression,
			fmt.Sprintf("%s:%d", filepath.Base(d.File), d.Offset),
		})
	}
	if len(rows) == 0 {
		cli.PrintWarning("no traces found")
		return nil
	}
	cli.PrintTable([]string{"Station", "Channel", "Start", "Length", "Samples", "Rate", "Format", "Location"}, rows)
	return nil
}

// PlanCmd prints the read requests for a set of files
type PlanCmd struct {
	Files []string `arg:"" help:"GSE files, plain or gzip/zstd compressed" type:"existingfile"`

	SelectFlags   `embed:""`
	OriginFlags   `embed:""`
	AssemblyFlags `embed:""`
}

func (c *PlanCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reqs, err := plan(ctx, g, c.Files, &c.SelectFlags, &c.OriginFlags, &c.AssemblyFlags)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		cli.PrintWarning("nothing to read with this configuration")
		return nil
	}

	rows := make([][]string, len(reqs))
	for i, r := range reqs {
		d := r.Descriptors[0]
		rows[i] = []string{
			strconv.Itoa(i + 1),
			d.Station,
			d.Channel,
			waveform.FormatTime(r.Start),
			waveform.FormatTime(r.End),
			cli.FormatSeconds(r.Duration()),
			strconv.Itoa(len(r.Descriptors)),
			waveform.FormatTime(r.Alignment),
		}
	}
	cli.PrintTable([]string{"#", "Station", "Channel", "Start", "End", "Length", "Traces", "Alignment"}, rows)

	s := assembly.Summary(reqs)
	summary := &cli.Summary{Title: "Plan"}
	summary.Add("Channels", strconv.Itoa(s.Channels))
	summary.Add("Requests", strconv.Itoa(s.Requests))
	summary.Add("Traces", strconv.Itoa(s.Descriptors))
	summary.Add("Data", cli.FormatSeconds(s.Seconds))
	cli.PrintSummary(summary)
	return nil
}

// ReadCmd assembles series and reports or exports them
type ReadCmd struct {
	Files []string `arg:"" help:"GSE files, plain or gzip/zstd compressed" type:"existingfile"`

	SelectFlags   `embed:""`
	OriginFlags   `embed:""`
	AssemblyFlags `embed:""`

	Decimate int     `help:"Keep every n-th sample" default:"${decimation}" env:"TEMBLOR_DECIMATE"`
	WAVDir   string  `name:"wav-dir" help:"Write each series as a WAV file into this directory" env:"TEMBLOR_WAV_DIR" placeholder:"DIR"`
	Speedup  float64 `help:"Playback speedup for WAV export" default:"1" env:"TEMBLOR_SPEEDUP"`
	BitDepth int     `help:"WAV bit depth: 8, 16, 24 or 32" default:"${bitdepth}" enum:"8,16,24,32" env:"TEMBLOR_BIT_DEPTH"`
	Spectrum bool    `help:"Report the dominant frequencies of each series" env:"TEMBLOR_SPECTRUM"`
	FFTSize  int     `name:"fft-size" help:"FFT window length in samples" default:"${fftsize}" env:"TEMBLOR_FFT_SIZE"`
	Peaks    int     `help:"Dominant frequencies reported per series" default:"${peaks}" env:"TEMBLOR_PEAKS"`
	Mmap     bool    `help:"Memory-map plain files when reading payloads" env:"TEMBLOR_MMAP"`
}

func (c *ReadCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reqs, err := plan(ctx, g, c.Files, &c.SelectFlags, &c.OriginFlags, &c.AssemblyFlags)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		cli.PrintWarning("nothing to read with this configuration")
		return nil
	}
	if c.WAVDir != "" {
		if err := os.MkdirAll(c.WAVDir, 0o755); err != nil {
			return fmt.Errorf("creating WAV directory: %w", err)
		}
	}

	reader := gse.NewReader()
	if c.Mmap {
		reader.Opener = source.Mapped
	}
	asm := series.NewAssembler(reader)
	asm.Decimation = c.Decimate
	asm.Log = g.log

	var (
		out     []*waveform.TimeSeries
		skipped []string
	)
	err = runTask(ctx, g, "Reading series", func(ctx context.Context, report func(ui.Progress)) ([][2]string, error) {
		for i, req := range reqs {
			d := req.Descriptors[0]
			name := fmt.Sprintf("%s/%s %s", d.Station, d.Channel, waveform.FormatTime(req.Start))

			ts, err := asm.Assemble(ctx, req)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				skipped = append(skipped, fmt.Sprintf("%s: %v", name, err))
				report(ui.Progress{Done: i + 1, Total: len(reqs), Item: name, Detail: "skipped", Failed: true})
				continue
			}
			out = append(out, ts)
			report(ui.Progress{Done: i + 1, Total: len(reqs), Item: name, Detail: fmt.Sprintf("%d samples", ts.Len())})
		}
		return [][2]string{
			{"Series", strconv.Itoa(len(out))},
			{"Skipped", strconv.Itoa(len(skipped))},
		}, nil
	})
	if err != nil {
		return err
	}

	for _, s := range skipped {
		cli.PrintWarning(s)
	}
	return c.report(out)
}

// report prints one row per series, writing WAV files and spectra as asked
func (c *ReadCmd) report(out []*waveform.TimeSeries) error {
	rows := make([][]string, 0, len(out))
	var spectra []string

	for _, ts := range out {
		row := []string{
			ts.Station,
			ts.Channel,
			waveform.FormatTime(ts.Start()),
			cli.FormatSeconds(ts.Duration()),
			strconv.Itoa(ts.Len()),
			strconv.Itoa(len(ts.Segments)),
			strconv.Itoa(ts.Gaps()),
			strconv.Itoa(len(ts.Warnings) + segmentWarnings(ts)),
		}

		if c.Spectrum {
			sp, err := spectrum.Series(ts, c.FFTSize)
			if err != nil {
				row = append(row, "-")
			} else {
				var freqs []string
				for _, p := range sp.Peaks(c.Peaks) {
					freqs = append(freqs, fmt.Sprintf("%.2f Hz", p.Frequency))
				}
				row = append(row, strings.Join(freqs, ", "))
				spectra = append(spectra, fmt.Sprintf("%-12s %s", ts.Station+"/"+ts.Channel, ui.Sparkline(sp.Amplitudes, 60)))
			}
		}

		if c.WAVDir != "" {
			name := fmt.Sprintf("%s.%s.%s.wav", ts.Station, ts.Channel, strings.ReplaceAll(waveform.FormatTime(ts.Start()), ":", ""))
			path := filepath.Join(c.WAVDir, name)
			if err := export.WriteWAV(path, ts, export.WAVOptions{Speedup: c.Speedup, BitDepth: c.BitDepth}); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			row = append(row, name)
		}
		rows = append(rows, row)
	}

	headers := []string{"Station", "Channel", "Start", "Length", "Samples", "Segments", "Gaps", "Warnings"}
	if c.Spectrum {
		headers = append(headers, "Peaks")
	}
	if c.WAVDir != "" {
		headers = append(headers, "WAV")
	}
	cli.PrintTable(headers, rows)

	if len(spectra) > 0 {
		cli.PrintSection("Amplitude spectra")
		for _, s := range spectra {
			fmt.Fprintln(cli.Stdout, s)
		}
	}
	return nil
}

func segmentWarnings(ts *waveform.TimeSeries) int {
	n := 0
	for _, s := range ts.Segments {
		n += len(s.Warnings)
	}
	return n
}

// scan reads the headers of every file, reporting per-file problems as warnings
func scan(ctx context.Context, g *Globals, files []string) ([]*waveform.Descriptor, error) {
	scanner := gse.NewScanner()
	var catalogs []*gse.Catalog

	err := runTask(ctx, g, "Scanning files", func(ctx context.Context, report func(ui.Progress)) ([][2]string, error) {
		var err error
		catalogs, err = scanner.ScanFiles(ctx, files, g.Workers, func(done, total int, last *gse.Catalog) {
			report(ui.Progress{
				Done:   done,
				Total:  total,
				Item:   last.File,
				Detail: fmt.Sprintf("%d traces", len(last.Descriptors)),
				Failed: len(last.Problems) > 0,
			})
		})
		if err != nil {
			return nil, err
		}

		traces, problems := 0, 0
		for _, c := range catalogs {
			traces += len(c.Descriptors)
			problems += len(c.Problems)
		}
		return [][2]string{
			{"Files", strconv.Itoa(len(catalogs))},
			{"Traces", strconv.Itoa(traces)},
			{"Problems", strconv.Itoa(problems)},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range catalogs {
		for _, p := range c.Problems {
			g.log.Warnf("%v", p)
			cli.PrintWarning(p.Error())
		}
	}
	return gse.Descriptors(catalogs), nil
}

// plan scans files and turns the selected traces into read requests
func plan(ctx context.Context, g *Globals, files []string, sel *SelectFlags, origin *OriginFlags, af *AssemblyFlags) ([]*waveform.ReadRequest, error) {
	cfg, err := af.Config()
	if err != nil {
		return nil, err
	}

	descs, err := scan(ctx, g, files)
	if err != nil {
		return nil, err
	}
	if err := sel.apply(descs); err != nil {
		return nil, err
	}
	if err := origin.apply(descs); err != nil {
		return nil, err
	}

	reqs := assembly.Plan(descs, cfg)
	g.log.Infof("planned %d requests from %d traces", len(reqs), len(descs))
	return reqs, nil
}
