package media

import "testing"

func TestProfileAdmits(t *testing.T) {
	record := Record{
		ID:           496243,
		Title:        "Parasite",
		ReleaseYear:  2019,
		CriticRating: 8.5,
	}

	tests := []struct {
		name    string
		profile Profile
		want    bool
	}{
		{"no constraints", Profile{}, true},
		{"inside year window", Profile{MinYear: 2015, MaxYear: 2020}, true},
		{"before min year", Profile{MinYear: 2021}, false},
		{"after max year", Profile{MaxYear: 2018}, false},
		{"meets min rating", Profile{MinCriticRating: 8.0}, true},
		{"below min rating", Profile{MinCriticRating: 9.0}, false},
		{"all constraints met", Profile{MinYear: 2019, MaxYear: 2019, MinCriticRating: 8.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.Admits(record); got != tt.want {
				t.Errorf("Admits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfileAdmitsMissingDataNotExcluded(t *testing.T) {
	profile := Profile{MinYear: 2000, MaxYear: 2020, MinCriticRating: 8.0}

	noYear := Record{ID: 1, Title: "Unknown Year", CriticRating: 8.5}
	if !profile.Admits(noYear) {
		t.Error("a record without a release year should pass the year window")
	}

	noRating := Record{ID: 2, Title: "Unrated", ReleaseYear: 2010}
	if !profile.Admits(noRating) {
		t.Error("a record without a critic rating should pass the rating floor")
	}
}
