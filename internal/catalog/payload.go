package catalog

import (
	"strconv"
	"strings"

	"marquee/internal/media"
)

type searchPayload struct {
	Page         int            `json:"page"`
	Results      []searchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

type searchResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	MediaType    string  `json:"media_type"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

func (r searchResult) title() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

func (r searchResult) kind() media.Kind {
	switch strings.ToLower(strings.TrimSpace(r.MediaType)) {
	case "tv":
		return media.KindSeries
	case "movie":
		return media.KindMovie
	}
	if r.FirstAirDate != "" {
		return media.KindSeries
	}
	return media.KindMovie
}

func (r searchResult) year() int {
	return yearOf(r.ReleaseDate, r.FirstAirDate)
}

type detailsPayload struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	OriginalTitle    string  `json:"original_title"`
	OriginalName     string  `json:"original_name"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Budget           int64   `json:"budget"`
	Revenue          int64   `json:"revenue"`
	Genres           []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

func (p detailsPayload) record(id int64, kind media.Kind) media.Record {
	title := p.Title
	if title == "" {
		title = p.Name
	}
	originalTitle := p.OriginalTitle
	if originalTitle == "" {
		originalTitle = p.OriginalName
	}
	genres := make([]string, 0, len(p.Genres))
	for _, genre := range p.Genres {
		if name := strings.TrimSpace(genre.Name); name != "" {
			genres = append(genres, name)
		}
	}
	recordID := p.ID
	if recordID == 0 {
		recordID = id
	}
	if kind == media.KindUnknown {
		if p.FirstAirDate != "" {
			kind = media.KindSeries
		} else {
			kind = media.KindMovie
		}
	}
	return media.Record{
		ID:               recordID,
		Kind:             kind,
		Title:            strings.TrimSpace(title),
		OriginalTitle:    strings.TrimSpace(originalTitle),
		Overview:         strings.TrimSpace(p.Overview),
		PosterRef:        strings.TrimSpace(p.PosterPath),
		ReleaseYear:      yearOf(p.ReleaseDate, p.FirstAirDate),
		OriginalLanguage: strings.TrimSpace(p.OriginalLanguage),
		Genres:           genres,
		Popularity:       p.Popularity,
		VoteAverage:      p.VoteAverage,
		VoteCount:        p.VoteCount,
		Budget:           p.Budget,
		BoxOffice:        p.Revenue,
	}
}

func yearOf(dates ...string) int {
	for _, date := range dates {
		date = strings.TrimSpace(date)
		if len(date) < 4 {
			continue
		}
		if year, err := strconv.Atoi(date[:4]); err == nil && year > 0 {
			return year
		}
	}
	return 0
}
