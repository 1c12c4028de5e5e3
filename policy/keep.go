package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/seedkeeper/pathutil"
	"github.com/s0up4200/seedkeeper/qbittorrent"
)

// KeepEnv is the environment a keep expression is evaluated against
type KeepEnv struct {
	Name       string   `expr:"Name"`
	Hash       string   `expr:"Hash"`
	Label      string   `expr:"Label"`
	Tags       []string `expr:"Tags"`
	Ratio      float64  `expr:"Ratio"`
	Progress   float64  `expr:"Progress"`
	Size       int64    `expr:"Size"`
	Uploaded   int64    `expr:"Uploaded"`
	Downloaded int64    `expr:"Downloaded"`
	Tracker    string   `expr:"Tracker"`
	State      string   `expr:"State"`
	SavePath   string   `expr:"SavePath"`

	now          time.Time `expr:"-"`
	completionOn int64     `expr:"-"`
}

// HasTag reports whether the torrent carries the tag, ignoring case
func (e KeepEnv) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// TrackerName returns the second level domain of the tracker
func (e KeepEnv) TrackerName() string {
	return pathutil.SecondLevelDomain(e.Tracker)
}

// SeedingDays returns the days since completion, or -1 if the torrent never completed
func (e KeepEnv) SeedingDays() int {
	if e.completionOn <= 0 {
		return -1
	}
	return DaysSince(e.completionOn, e.now)
}

// NewKeepEnv builds the evaluation environment for a torrent
func NewKeepEnv(t qbittorrent.Torrent, now time.Time) KeepEnv {
	return KeepEnv{
		Name:         t.Name,
		Hash:         t.Hash,
		Label:        t.Label,
		Tags:         t.Tags,
		Ratio:        t.Ratio,
		Progress:     t.Progress,
		Size:         t.Size,
		Uploaded:     t.Uploaded,
		Downloaded:   t.Downloaded,
		Tracker:      t.Tracker,
		State:        t.State,
		SavePath:     t.SavePath,
		now:          now,
		completionOn: t.CompletionOn,
	}
}

// KeepFilter is a compiled keep expression. Torrents it matches are never removed.
type KeepFilter struct {
	program *vm.Program
	expr    string
}

// CompileKeep compiles a keep expression. An empty expression yields a nil filter,
// which matches nothing.
func CompileKeep(expression string) (*KeepFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(KeepEnv{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile keep expression: %w", err)
	}

	return &KeepFilter{
		program: program,
		expr:    expression,
	}, nil
}

// Match reports whether the torrent should be kept. Runtime errors count as a
// match so a broken expression never causes a removal.
func (f *KeepFilter) Match(t qbittorrent.Torrent, now time.Time) (bool, error) {
	if f == nil {
		return false, nil
	}

	result, err := expr.Run(f.program, NewKeepEnv(t, now))
	if err != nil {
		return true, fmt.Errorf("failed to evaluate keep expression: %w", err)
	}

	keep, ok := result.(bool)
	if !ok {
		return true, fmt.Errorf("keep expression returned %T, expected bool", result)
	}
	return keep, nil
}

// String returns the source expression
func (f *KeepFilter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}
