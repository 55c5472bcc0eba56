// Command analysis drives a kfilter bloom filter from the command line.
//
// With positional words it inserts them, searches every -query word and
// logs whether each is present and with what false positive probability:
//
//	analysis -m 10 -k 2 -query hello -query bye hello
//
// With -n it inserts n generated keys, probes -probes keys that were never
// inserted and compares the empirical false positive rate to the estimate,
// for one strategy or for all of them:
//
//	analysis -items 10000 -fp 0.01 -n 10000 -probes 100000 -strategy all
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jcalabro/kfilter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type config struct {
	buckets  uint64
	hashes   uint
	items    uint64
	fpRate   float64
	strategy string
	n        int
	probes   int
	queries  stringList
	inserts  []string
	json     bool
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("analysis", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Uint64Var(&cfg.buckets, "m", 0, "number of buckets; with -k overrides -items/-fp sizing")
	fs.UintVar(&cfg.hashes, "k", 0, "number of hash functions (1-10)")
	fs.Uint64Var(&cfg.items, "items", 1000, "expected number of items, used when -m/-k are unset")
	fs.Float64Var(&cfg.fpRate, "fp", 0.01, "target false positive rate, used when -m/-k are unset")
	fs.StringVar(&cfg.strategy, "strategy", kfilter.SeededMurmur3.String(), "hash strategy: murmur3, xxh3, digests or all")
	fs.IntVar(&cfg.n, "n", 0, "number of generated keys to insert for analysis")
	fs.IntVar(&cfg.probes, "probes", 10000, "number of never-inserted keys to probe during analysis")
	fs.Var(&cfg.queries, "query", "word to search for (repeatable)")
	fs.BoolVar(&cfg.json, "json", false, "log JSON instead of console output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.inserts = fs.Args()
	return cfg, nil
}

func newLogger(w io.Writer, json bool) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	enc := zapcore.NewConsoleEncoder(encCfg)
	if json {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zap.InfoLevel))
}

// strategies resolves the -strategy flag.
func (c *config) strategies() ([]kfilter.Strategy, error) {
	if strings.EqualFold(c.strategy, "all") {
		return kfilter.Strategies(), nil
	}
	s, err := kfilter.ParseStrategy(c.strategy)
	if err != nil {
		return nil, err
	}
	return []kfilter.Strategy{s}, nil
}

// newFilter builds a filter with explicit -m/-k when either is set, or
// sized from -items/-fp otherwise.
func (c *config) newFilter(s kfilter.Strategy) (*kfilter.Filter, error) {
	if c.buckets != 0 || c.hashes != 0 {
		if c.hashes > kfilter.MaxHashes {
			return nil, fmt.Errorf("%w: number of hashes %d exceeds maximum %d", kfilter.ErrConfiguration, c.hashes, kfilter.MaxHashes)
		}
		return kfilter.NewWithParams(c.buckets, uint32(c.hashes), kfilter.WithStrategy(s))
	}
	return kfilter.New(c.items, c.fpRate, kfilter.WithStrategy(s)), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	log := newLogger(stdout, cfg.json)
	defer log.Sync() //nolint:errcheck

	if err := execute(log, cfg); err != nil {
		log.Error("analysis failed", zap.Error(err))
		if errors.Is(err, kfilter.ErrConfiguration) {
			return exitConfig
		}
		return exitFailed
	}
	return exitOK
}

func execute(log *zap.Logger, cfg *config) error {
	strategies, err := cfg.strategies()
	if err != nil {
		return err
	}

	if cfg.n > 0 {
		for _, s := range strategies {
			f, err := cfg.newFilter(s)
			if err != nil {
				return err
			}
			res := analyze(f, cfg.n, cfg.probes)
			log.Info("false positive analysis",
				zap.Stringer("strategy", s),
				zap.Strings("hashes", f.HashNames()),
				zap.Uint64("buckets", f.NumBuckets()),
				zap.Uint32("k", f.K()),
				zap.Uint64("inserted", f.Count()),
				zap.Int("probes", res.probes),
				zap.Int("false_positives", res.falsePositives),
				zap.Float64("empirical_rate", res.empirical()),
				zap.Float64("estimated_rate", res.estimated),
				zap.Float64("fill_ratio", f.EstimatedFillRatio()),
			)
		}
		return nil
	}

	if len(cfg.inserts) == 0 && len(cfg.queries) == 0 {
		return fmt.Errorf("nothing to do: pass words to insert, -query words, or -n")
	}

	for _, s := range strategies {
		f, err := cfg.newFilter(s)
		if err != nil {
			return err
		}
		demo(log.With(zap.Stringer("strategy", s)), f, cfg.inserts, cfg.queries)
	}
	return nil
}

// demo inserts words into f and reports every query.
func demo(log *zap.Logger, f *kfilter.Filter, inserts, queries []string) {
	for _, w := range inserts {
		f.InsertString(w)
	}
	log.Info("inserted words",
		zap.Int("count", len(inserts)),
		zap.Uint64("buckets", f.NumBuckets()),
		zap.Uint32("k", f.K()),
	)

	for _, q := range queries {
		present, p := f.SearchString(q)
		if !present {
			log.Info("word is not present in the bloom filter", zap.String("word", q))
			continue
		}
		log.Info("word is present in the bloom filter",
			zap.String("word", q),
			zap.Float64("false_positive_probability", p),
		)
	}
}

type analysis struct {
	probes         int
	falsePositives int
	estimated      float64
}

func (a analysis) empirical() float64 {
	if a.probes == 0 {
		return 0
	}
	return float64(a.falsePositives) / float64(a.probes)
}

// analyze inserts n generated keys into f and counts how many of probes
// never-inserted keys it reports present.
func analyze(f *kfilter.Filter, n, probes int) analysis {
	for i := range n {
		f.Insert(fmt.Appendf(nil, "item-%d", i))
	}

	res := analysis{probes: probes, estimated: f.FalsePositiveProbability()}
	for i := range probes {
		if ok, _ := f.Search(fmt.Appendf(nil, "absent-%d", i)); ok {
			res.falsePositives++
		}
	}
	return res
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
