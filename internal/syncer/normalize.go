package syncer

import (
	"github.com/JakeFAU/watchrec/internal/catalog"
	"github.com/JakeFAU/watchrec/internal/tmdb"
)

const (
	maxCast      = 5
	directorRole = "Director"
)

// Normalize flattens a detail response into a movie row. The caller must
// check Details.Usable first.
func Normalize(d tmdb.Details) catalog.Movie {
	movie := catalog.Movie{
		Poster: d.PosterPath,
	}
	if d.ID != nil {
		movie.CatalogID = *d.ID
	}
	switch {
	case d.Title != nil && *d.Title != "":
		movie.Title = *d.Title
	case d.Name != nil:
		movie.Title = *d.Name
	}
	if d.Overview != nil {
		movie.Overview = *d.Overview
	}
	if d.Popularity != nil {
		movie.Popularity = *d.Popularity
	}

	for _, g := range d.Genres {
		movie.Genres = append(movie.Genres, g.Name)
	}
	for i, c := range d.Credits.Cast {
		if i == maxCast {
			break
		}
		movie.Cast = append(movie.Cast, c.Name)
	}
	for _, c := range d.Credits.Crew {
		if c.Job == directorRole {
			movie.Directors = append(movie.Directors, c.Name)
		}
	}
	for _, k := range d.Keywords.Keywords {
		movie.Keywords = append(movie.Keywords, k.Name)
	}
	return movie
}
