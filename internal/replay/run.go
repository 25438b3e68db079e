package replay

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rendercache/internal/cache"
)

// Config configures a replay.
type Config struct {
	Capacity          int64
	ReclaimOverwrites bool
	Logger            *log.Logger
}

// Eviction is an entry disposed while an operation ran.
type Eviction struct {
	Token cache.Token
	Owner string
	Key   string
	Value string
}

// Result is the outcome of one operation.
type Result struct {
	Op Op

	// Hit and Value are set for get operations.
	Hit   bool
	Value string

	Evicted []Eviction
	Err     error
}

// Report is the outcome of a replay.
type Report struct {
	Results []Result
	Stats   cache.Stats
}

// owner gives each owner name in a trace its own identity.
type owner struct{ name string }

// Run replays ops against a fresh cache. Operation failures are recorded on
// their Result; Run itself only fails for a bad Config.
func Run(ops []Op, cfg Config) (*Report, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("replay")
	}

	var evicted []Eviction
	c, err := cache.New(cache.Config[*owner, string, string]{
		Capacity:          cfg.Capacity,
		ReclaimOverwrites: cfg.ReclaimOverwrites,
		Logger:            logger,
		OnEvict: func(token cache.Token, e cache.Entry[*owner, string, string]) {
			evicted = append(evicted, Eviction{
				Token: token,
				Owner: e.Owner.name,
				Key:   e.Key,
				Value: e.Value,
			})
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create cache: %w", err)
	}

	owners := make(map[string]*owner)
	ownerFor := func(name string) *owner {
		o, ok := owners[name]
		if !ok {
			o = &owner{name: name}
			owners[name] = o
		}
		return o
	}

	report := &Report{Results: make([]Result, 0, len(ops))}
	for _, op := range ops {
		res := Result{Op: op}
		switch op.Kind {
		case Set:
			res.Err = c.Set(ownerFor(op.Owner), op.Key, op.Value)
		case Get:
			res.Value, res.Hit = c.Get(ownerFor(op.Owner), op.Key)
		case Resize:
			res.Err = c.Resize(op.Capacity)
		default:
			res.Err = fmt.Errorf("%w: unknown operation %s", ErrSyntax, op.Kind)
		}

		res.Evicted, evicted = evicted, nil
		if res.Err != nil {
			logger.Warn("operation failed", "line", op.Line, "op", op.Kind, "err", res.Err)
		}
		report.Results = append(report.Results, res)
	}

	report.Stats = c.Stats()
	return report, nil
}
