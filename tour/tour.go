// Package tour holds the per-tour configuration: stage definitions,
// penalty windows, the handicap table and race-event detection. The
// configuration is an explicit value passed into every computation, not
// shared state.
package tour

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigError marks a fatal configuration problem. Runs must abort on it
// rather than fall back to defaults, because a silently wrong handicap or
// window would corrupt standings.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tour config: %s: %s", e.Field, e.Msg)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Matches the standalone token "race"; "Watopia Trace" must not match.
var raceToken = regexp.MustCompile(`(?i)\brace\b`)

// IsRaceEvent reports whether an event name denotes a race rather than a
// group ride.
func IsRaceEvent(name string) bool {
	return raceToken.MatchString(name)
}

// PenaltyWindow is a recurring weekly time slot whose events carry an
// extra penalty. From/To are UTC clock times ("17:00"), inclusive.
type PenaltyWindow struct {
	Weekday        string `yaml:"weekday"`
	From           string `yaml:"from"`
	To             string `yaml:"to"`
	PenaltySeconds int    `yaml:"penalty_seconds"`
	Reason         string `yaml:"reason"`
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

func parseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", v)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", v)
	}
	return h*60 + m, nil
}

func (w *PenaltyWindow) validate(field string) error {
	if _, ok := weekdays[strings.ToLower(w.Weekday)]; !ok {
		return configErrorf(field, "unknown weekday %q", w.Weekday)
	}
	from, err := parseClock(w.From)
	if err != nil {
		return configErrorf(field, "%v", err)
	}
	to, err := parseClock(w.To)
	if err != nil {
		return configErrorf(field, "%v", err)
	}
	if to < from {
		return configErrorf(field, "window end %q before start %q", w.To, w.From)
	}
	if w.PenaltySeconds < 0 {
		return configErrorf(field, "negative penalty %d", w.PenaltySeconds)
	}
	return nil
}

// Contains reports whether a UTC instant falls inside the window. Only
// call on a validated window.
func (w *PenaltyWindow) Contains(t time.Time) bool {
	t = t.UTC()
	if weekdays[strings.ToLower(w.Weekday)] != t.Weekday() {
		return false
	}
	from, _ := parseClock(w.From)
	to, _ := parseClock(w.To)
	minute := t.Hour()*60 + t.Minute()
	return minute >= from && minute <= to
}

// Stage is one dated leg of the tour.
type Stage struct {
	Number             int             `yaml:"number"`
	Name               string          `yaml:"name"`
	Route              string          `yaml:"route"`
	Start              time.Time       `yaml:"start"`
	End                time.Time       `yaml:"end"`
	AllowRaces         bool            `yaml:"allow_races"`
	RacePenaltySeconds int             `yaml:"race_penalty_seconds"`
	PenaltyWindows     []PenaltyWindow `yaml:"penalty_windows"`
}

// Active reports whether the stage window contains now.
func (s *Stage) Active(now time.Time) bool {
	return !now.Before(s.Start) && !now.After(s.End)
}

// Complete reports whether the stage window has ended.
func (s *Stage) Complete(now time.Time) bool {
	return now.After(s.End)
}

// Config is the full tour definition.
type Config struct {
	TourID    string         `yaml:"tour_id"`
	Name      string         `yaml:"name"`
	Phrase    string         `yaml:"phrase"`
	Handicaps map[string]int `yaml:"handicaps"`
	Stages    []Stage        `yaml:"stages"`
}

// Load reads and validates a tour config YAML file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tour config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse tour config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the whole config. Any problem is a ConfigError.
func (c *Config) Validate() error {
	if len(c.Stages) == 0 {
		return configErrorf("stages", "no stages defined")
	}
	seen := map[int]bool{}
	for i := range c.Stages {
		st := &c.Stages[i]
		field := fmt.Sprintf("stages[%d]", i)
		if st.Number < 1 {
			return configErrorf(field, "invalid stage number %d", st.Number)
		}
		if seen[st.Number] {
			return configErrorf(field, "duplicate stage number %d", st.Number)
		}
		seen[st.Number] = true
		if st.End.Before(st.Start) {
			return configErrorf(field, "stage ends before it starts")
		}
		if st.RacePenaltySeconds < 0 {
			return configErrorf(field, "negative race penalty")
		}
		for j := range st.PenaltyWindows {
			wf := fmt.Sprintf("%s.penalty_windows[%d]", field, j)
			if err := st.PenaltyWindows[j].validate(wf); err != nil {
				return err
			}
		}
	}
	for group, secs := range c.Handicaps {
		if secs < 0 {
			return configErrorf("handicaps", "negative handicap for group %s", group)
		}
	}
	return nil
}

// Stage returns the stage with the given number.
func (c *Config) Stage(number int) (*Stage, error) {
	for i := range c.Stages {
		if c.Stages[i].Number == number {
			return &c.Stages[i], nil
		}
	}
	return nil, configErrorf("stages", "stage %d not defined", number)
}

// StageNumbers returns all stage numbers in ascending order.
func (c *Config) StageNumbers() []int {
	nums := make([]int, 0, len(c.Stages))
	for i := range c.Stages {
		nums = append(nums, c.Stages[i].Number)
	}
	sort.Ints(nums)
	return nums
}

// CompletedStageNumbers returns the numbers of stages whose window has
// ended, ascending.
func (c *Config) CompletedStageNumbers(now time.Time) []int {
	var nums []int
	for i := range c.Stages {
		if c.Stages[i].Complete(now) {
			nums = append(nums, c.Stages[i].Number)
		}
	}
	sort.Ints(nums)
	return nums
}

// Handicap returns the seconds credit for a handicap group. A group
// missing from the table is a ConfigError, never a silent zero.
func (c *Config) Handicap(group string) (int, error) {
	secs, ok := c.Handicaps[group]
	if !ok {
		return 0, configErrorf("handicaps", "unknown handicap group %q", group)
	}
	return secs, nil
}
