// Package models defines the core data structures used throughout the box-office site.
package models

// SeasonStat is one row of the release-season table.
type SeasonStat struct {
	ReleaseSeason string  `json:"release_season"` // e.g., "Summer"
	Mean          float64 `json:"mean"`           // sample mean of the outcome metric
	SEM           float64 `json:"sem"`            // standard error of the mean, >= 0
}

// Upper returns the top of the error interval (mean + sem).
func (s SeasonStat) Upper() float64 { return s.Mean + s.SEM }

// Lower returns the bottom of the error interval (mean - sem).
func (s SeasonStat) Lower() float64 { return s.Mean - s.SEM }

// Dataset is a loaded table, ordered as in the source file.
type Dataset struct {
	Source string       `json:"source"`
	Stats  []SeasonStat `json:"stats"`
}

// Categories returns the release seasons in first-seen order.
func (d *Dataset) Categories() []string {
	out := make([]string, len(d.Stats))
	for i, s := range d.Stats {
		out[i] = s.ReleaseSeason
	}
	return out
}

// MaxUpper returns max(mean + sem) across all rows, or 0 for an empty dataset.
func (d *Dataset) MaxUpper() float64 {
	var m float64
	for i, s := range d.Stats {
		if i == 0 || s.Upper() > m {
			m = s.Upper()
		}
	}
	return m
}

// Lookup finds the row for a release season.
func (d *Dataset) Lookup(season string) (SeasonStat, bool) {
	for _, s := range d.Stats {
		if s.ReleaseSeason == season {
			return s, true
		}
	}
	return SeasonStat{}, false
}
