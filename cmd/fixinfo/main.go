// Command fixinfo exercises the fixture de-embedding strategies on a
// synthetic fixture-DUT-fixture setup and prints the residual error of
// each method against the known device.
//
// Usage:
//
//	fixinfo [flags] [strategy-name ...]
//
// Without arguments it runs all strategies.
//
// Examples:
//
//	fixinfo open-short
//	fixinfo -points 512 -fixture-samples 8 nzc zc
//	fixinfo -v zc
//	fixinfo -list
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/lmittmann/tint"

	"github.com/TH1622EE/scikit-rf/deembed"
	"github.com/TH1622EE/scikit-rf/internal/testutil"
	"github.com/TH1622EE/scikit-rf/rf"
)

// scene holds the synthetic measurement set every strategy is judged
// against.
type scene struct {
	freq     rf.Frequency
	dut      *rf.Network
	fixture  *rf.Network
	thru2x   *rf.Network
	embedded *rf.Network

	open     *rf.Network
	short    *rf.Network
	openMeas *rf.Network
	osMeas   *rf.Network
	soMeas   *rf.Network
	piThru   *rf.Network
	teeThru  *rf.Network
}

type strategyEntry struct {
	name  string
	build func(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error)
}

// Each entry returns the strategy, the measurement it applies to and
// the device it should recover.
var registry = []strategyEntry{
	{"open", buildOpen},
	{"short", buildShort},
	{"open-short", buildOpenShort},
	{"short-open", buildShortOpen},
	{"split-pi", buildSplitPi},
	{"split-tee", buildSplitTee},
	{"admittance-cancel", buildAdmittanceCancel},
	{"impedance-cancel", buildImpedanceCancel},
	{"nzc", buildNZC},
	{"zc", buildZC},
}

func main() {
	points := flag.Int("points", 256, "frequency points in the synthetic grid")
	fmax := flag.Float64("fmax", 20e9, "top frequency in Hz")
	fixSamples := flag.Int("fixture-samples", 4, "fixture delay per side in time-domain samples")
	all := flag.Bool("all", false, "run all strategies")
	list := flag.Bool("list", false, "list available strategy names")
	verbose := flag.Bool("v", false, "log construction diagnostics")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fixinfo [flags] [strategy-name ...]\n\n")
		fmt.Fprintf(os.Stderr, "Runs fixture de-embedding strategies on a synthetic setup.\n")
		fmt.Fprintf(os.Stderr, "Without arguments or with -all, runs every strategy.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fixinfo open-short split-pi\n")
		fmt.Fprintf(os.Stderr, "  fixinfo -points 512 -fixture-samples 8 nzc zc\n")
		fmt.Fprintf(os.Stderr, "  fixinfo -list\n")
	}
	flag.Parse()

	if *list {
		printList()
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))

	names := flag.Args()
	if len(names) == 0 || *all {
		names = nil
		for _, e := range registry {
			names = append(names, e.name)
		}
	}
	entries := resolveEntries(names)
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "error: no matching strategies\n")
		os.Exit(1)
	}

	sc, err := buildScene(*points, *fmax, *fixSamples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: building scene: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("scene ready",
		"points", *points,
		"fmax", *fmax,
		"fixture_samples", *fixSamples)

	printReport(entries, sc, logger)
}

func printList() {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.name
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
}

func resolveEntries(names []string) []strategyEntry {
	byName := make(map[string]strategyEntry, len(registry))
	for _, e := range registry {
		byName[e.name] = e
	}
	var result []strategyEntry
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		e, ok := byName[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: unknown strategy %q (use -list to see available)\n", name)
			continue
		}
		result = append(result, e)
	}
	return result
}

// buildScene synthesizes the measurement set: a matched-line fixture
// whose delay is an integer number of time-domain samples, a mildly
// reflective line as the DUT, parasitic dummies for the algebraic
// family and pi/tee thrus for the split family.
func buildScene(points int, fmax float64, fixSamples int) (*scene, error) {
	df := fmax / float64(points)
	freq := testutil.LinearFrequency(df, fmax, points)
	dt := 1 / (float64(2*points+1) * df)
	tau := float64(fixSamples) * dt

	sc := &scene{freq: freq}
	sc.fixture = testutil.MatchedLine(freq, tau, 0)
	sc.dut = testutil.MatchedLine(freq, 2*dt, 1.5)

	var err error
	if sc.thru2x, err = sc.fixture.Cascade(sc.fixture); err != nil {
		return nil, err
	}
	if sc.embedded, err = cascade3(sc.fixture, sc.dut, sc.fixture); err != nil {
		return nil, err
	}

	// Additive parasitics for the open/short family.
	if sc.open, err = testutil.ShuntAdmittance(freq, 20e-15, testutil.OmegaScale(freq)); err != nil {
		return nil, err
	}
	if sc.short, err = testutil.SeriesImpedance(freq, 200e-12, testutil.OmegaScale(freq)); err != nil {
		return nil, err
	}
	if sc.openMeas, err = addY(sc.dut, sc.open); err != nil {
		return nil, err
	}
	inner, err := addZ(sc.dut, sc.short)
	if err != nil {
		return nil, err
	}
	if sc.osMeas, err = addY(inner, sc.open); err != nil {
		return nil, err
	}
	if sc.soMeas, err = addZ(sc.openMeas, sc.short); err != nil {
		return nil, err
	}

	if sc.piThru, err = testutil.PiThru(freq, 1e-4, 0.05, nil); err != nil {
		return nil, err
	}
	if sc.teeThru, err = testutil.TeeThru(freq, 4, 2000, nil); err != nil {
		return nil, err
	}
	return sc, nil
}

func buildOpen(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	s, err := deembed.NewOpen(sc.open, "open")
	return s, sc.openMeas, sc.dut, err
}

func buildShort(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	s, err := deembed.NewShort(sc.short, "short")
	meas, merr := addZ(sc.dut, sc.short)
	if merr != nil {
		return nil, nil, nil, merr
	}
	return s, meas, sc.dut, err
}

func buildOpenShort(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	s, err := deembed.NewOpenShort(sc.open, sc.short, "open-short")
	return s, sc.osMeas, sc.dut, err
}

func buildShortOpen(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	s, err := deembed.NewShortOpen(sc.short, sc.open, "short-open")
	return s, sc.soMeas, sc.dut, err
}

func buildSplitPi(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	s, err := deembed.NewSplitPi(sc.piThru, "split-pi")
	return s, sc.piThru, rf.Thru(sc.freq), err
}

func buildSplitTee(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	s, err := deembed.NewSplitTee(sc.teeThru, "split-tee")
	return s, sc.teeThru, rf.Thru(sc.freq), err
}

func buildAdmittanceCancel(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	s, err := deembed.NewAdmittanceCancel(sc.thru2x, "admittance-cancel")
	return s, sc.embedded, sc.dut, err
}

func buildImpedanceCancel(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	s, err := deembed.NewImpedanceCancel(sc.thru2x, "impedance-cancel")
	return s, sc.embedded, sc.dut, err
}

func buildNZC(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	s, err := deembed.NewNZC2xThru(sc.thru2x, "nzc")
	return s, sc.embedded, sc.dut, err
}

func buildZC(sc *scene) (deembed.Strategy, *rf.Network, *rf.Network, error) {
	cfg := deembed.DefaultConfig()
	cfg.NRPEnabled = false
	cfg.LeadIn = 0
	s, err := deembed.NewZC2xThru(sc.thru2x, sc.embedded, cfg, "zc")
	return s, sc.embedded, sc.dut, err
}

func printReport(entries []strategyEntry, sc *scene, logger *slog.Logger) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Strategy\tMax |dS|\tWorst dB\tDiagnostics\n")
	fmt.Fprintf(tw, "--------\t--------\t--------\t-----------\n")

	for _, e := range entries {
		s, meas, want, err := e.build(sc)
		if err != nil {
			logger.Error("construction failed", "strategy", e.name, "err", err)
			fmt.Fprintf(tw, "%s\terror\t\t%v\n", e.name, err)
			continue
		}
		for _, d := range s.Diagnostics() {
			logger.Debug("diagnostic", "strategy", e.name, "code", d.Code, "msg", d.Message)
		}
		got, err := s.Deembed(meas)
		if err != nil {
			logger.Error("deembed failed", "strategy", e.name, "err", err)
			fmt.Fprintf(tw, "%s\terror\t\t%v\n", e.name, err)
			continue
		}
		d, err := testutil.MaxSDiff(got, want)
		if err != nil {
			fmt.Fprintf(tw, "%s\terror\t\t%v\n", e.name, err)
			continue
		}
		db := math.Inf(-1)
		if d > 0 {
			db = 20 * math.Log10(d)
		}
		fmt.Fprintf(tw, "%s\t%.3e\t%.1f\t%d\n", e.name, d, db, len(s.Diagnostics()))
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func cascade3(a, b, c *rf.Network) (*rf.Network, error) {
	ab, err := a.Cascade(b)
	if err != nil {
		return nil, err
	}
	return ab.Cascade(c)
}

func addY(a, b *rf.Network) (*rf.Network, error) {
	ya, err := a.Y()
	if err != nil {
		return nil, err
	}
	yb, err := b.Y()
	if err != nil {
		return nil, err
	}
	out := a.Clone()
	sum := make([][]complex128, len(ya))
	for k := range ya {
		row := make([]complex128, len(ya[k]))
		for i := range row {
			row[i] = ya[k][i] + yb[k][i]
		}
		sum[k] = row
	}
	if err := out.SetY(sum); err != nil {
		return nil, err
	}
	return out, nil
}

func addZ(a, b *rf.Network) (*rf.Network, error) {
	za, err := a.Z()
	if err != nil {
		return nil, err
	}
	zb, err := b.Z()
	if err != nil {
		return nil, err
	}
	out := a.Clone()
	sum := make([][]complex128, len(za))
	for k := range za {
		row := make([]complex128, len(za[k]))
		for i := range row {
			row[i] = za[k][i] + zb[k][i]
		}
		sum[k] = row
	}
	if err := out.SetZ(sum); err != nil {
		return nil, err
	}
	return out, nil
}
