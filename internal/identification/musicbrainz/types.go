package musicbrainz

// Release is the normalized subset of a MusicBrainz release.
type Release struct {
	ID     string
	Title  string
	Artist string
	Date   string
	Tracks []string
}

type discResponse struct {
	ID       string       `json:"id"`
	Releases []rawRelease `json:"releases"`
}

type searchResponse struct {
	Count    int          `json:"count"`
	Releases []rawRelease `json:"releases"`
}

type rawRelease struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Date               string         `json:"date"`
	ArtistCredit       []artistCredit `json:"artist-credit"`
	ArtistCreditPhrase string         `json:"artist-credit-phrase"`
	Media              []medium       `json:"media"`
}

type artistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
	Artist     struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

type medium struct {
	Position int     `json:"position"`
	Format   string  `json:"format"`
	Tracks   []track `json:"tracks"`
}

type track struct {
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Recording struct {
		Title string `json:"title"`
	} `json:"recording"`
}
