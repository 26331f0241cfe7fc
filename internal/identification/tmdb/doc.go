// Package tmdb is the movie metadata adapter. It searches The Movie Database
// by title and fetches the details, certification, and cast used to build a
// movie label. Every request runs through the shared retry runner.
package tmdb
