package recommend

import "errors"

var (
	ErrMovieNotFound   = errors.New("movie not found")
	ErrNoMetadata      = errors.New("no metadata available for this movie to compute similarity")
	ErrProfileNotFound = errors.New("user profile not found")
	ErrNoPreferences   = errors.New("no preferences found for user")
)
