package tmdb

// Named is a genre or keyword entry.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is one credited cast entry, in billing order.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember is one crew entry.
type CrewMember struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits wraps cast and crew arrays.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Keywords is the embedded keywords block of a movie.
type Keywords struct {
	Keywords []Named `json:"keywords"`
}

// Details is the response of GET /movie/{id} with credits and keywords appended.
// Optional scalars are pointers so absence can be told apart from zero values.
type Details struct {
	ID         *int64   `json:"id"`
	Title      *string  `json:"title"`
	Name       *string  `json:"name"`
	Overview   *string  `json:"overview"`
	Popularity *float64 `json:"popularity"`
	PosterPath *string  `json:"poster_path"`
	Genres     []Named  `json:"genres"`
	Credits    Credits  `json:"credits"`
	Keywords   Keywords `json:"keywords"`
}

// Usable reports whether the response identifies a title at all.
func (d Details) Usable() bool {
	return d.ID != nil
}
