package models

import "testing"

func sampleDataset() *Dataset {
	return &Dataset{
		Source: "chart_release_season.csv",
		Stats: []SeasonStat{
			{ReleaseSeason: "Summer", Mean: 80, SEM: 7},
			{ReleaseSeason: "Winter", Mean: 42, SEM: 3.5},
			{ReleaseSeason: "Spring", Mean: 55, SEM: 4},
		},
	}
}

func TestSeasonStatInterval(t *testing.T) {
	s := SeasonStat{ReleaseSeason: "Winter", Mean: 42, SEM: 3.5}
	if s.Upper() != 45.5 {
		t.Errorf("Upper: got %f, want 45.5", s.Upper())
	}
	if s.Lower() != 38.5 {
		t.Errorf("Lower: got %f, want 38.5", s.Lower())
	}
}

func TestDatasetCategoriesKeepOrder(t *testing.T) {
	got := sampleDataset().Categories()
	want := []string{"Summer", "Winter", "Spring"}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDatasetMaxUpper(t *testing.T) {
	if got := sampleDataset().MaxUpper(); got != 87 {
		t.Errorf("MaxUpper: got %f, want 87", got)
	}
	empty := &Dataset{}
	if got := empty.MaxUpper(); got != 0 {
		t.Errorf("empty MaxUpper: got %f, want 0", got)
	}
	negative := &Dataset{Stats: []SeasonStat{{ReleaseSeason: "Fall", Mean: -5, SEM: 1}}}
	if got := negative.MaxUpper(); got != -4 {
		t.Errorf("negative MaxUpper: got %f, want -4", got)
	}
}

func TestDatasetLookup(t *testing.T) {
	ds := sampleDataset()
	s, ok := ds.Lookup("Winter")
	if !ok || s.Mean != 42 {
		t.Errorf("Lookup(Winter): got %+v, %v", s, ok)
	}
	if _, ok := ds.Lookup("Autumn"); ok {
		t.Error("Lookup(Autumn) should miss")
	}
}
