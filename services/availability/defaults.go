package availability

import "github.com/Bizimana-jeanluc/moviesBox/models"

const sampleVideoBase = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/"

// tmdbCatalog is keyed by TMDB movie id. Stream and download references point at
// the synthetic transfer routes.
var tmdbCatalog = []models.AvailabilityDescriptor{
	tmdbEntry("299534", "Avengers: Endgame", "avengers", "1.8GB", "3h 1m"),
	tmdbEntry("181808", "Star Wars: The Last Jedi", "starwars", "2.1GB", "2h 32m"),
	tmdbEntry("284054", "Black Panther", "blackpanther", "1.9GB", "2h 14m"),
	tmdbEntry("283995", "Guardians of the Galaxy Vol 2", "guardians", "2.0GB", "2h 17m"),
	tmdbEntry("335983", "Venom", "venom", "1.7GB", "1h 52m"),
	tmdbEntry("297762", "Wonder Woman", "wonderwoman", "1.8GB", "2h 21m"),
	tmdbEntry("353081", "Mission Impossible Fallout", "mission", "2.2GB", "2h 28m"),
	tmdbEntry("383498", "Deadpool 2", "deadpool", "1.9GB", "1h 59m"),
}

// omdbCatalog is keyed by IMDb id. Public sample videos stand in for the
// actual files and are proxied by the download route.
var omdbCatalog = []models.AvailabilityDescriptor{
	omdbEntry("tt0109830", "Forrest Gump", "BigBuckBunny.mp4", "Forrest_Gump_1994.mp4", "720p", "125MB"),
	omdbEntry("tt0111161", "The Shawshank Redemption", "ElephantsDream.mp4", "Shawshank_Redemption_1994.mp4", "720p", "98MB"),
	omdbEntry("tt0068646", "The Godfather", "ForBiggerBlazes.mp4", "The_Godfather_1972.mp4", "720p", "156MB"),
	omdbEntry("tt0468569", "The Dark Knight", "ForBiggerEscapes.mp4", "The_Dark_Knight_2008.mp4", "1080p", "210MB"),
	omdbEntry("tt0050083", "12 Angry Men", "ForBiggerFun.mp4", "12_Angry_Men_1957.mp4", "480p", "87MB"),
}

func tmdbEntry(id, title, slug, size, duration string) models.AvailabilityDescriptor {
	return models.AvailabilityDescriptor{
		ID:          id,
		Title:       title,
		Slug:        slug,
		StreamURL:   "/api/stream/" + slug,
		DownloadURL: "/api/download/" + slug,
		MediaKind:   "mp4",
		Quality:     "1080p",
		Size:        size,
		Duration:    duration,
	}
}

func omdbEntry(id, title, sample, filename, quality, size string) models.AvailabilityDescriptor {
	return models.AvailabilityDescriptor{
		ID:          id,
		Title:       title,
		StreamURL:   sampleVideoBase + sample,
		DownloadURL: "/download/" + id,
		SourceURL:   sampleVideoBase + sample,
		Filename:    filename,
		MediaKind:   "mp4",
		Quality:     quality,
		Size:        size,
	}
}

// Defaults returns a copy of the built-in catalog for the given provider
// ("tmdb" or "omdb"). Unknown providers get an empty catalog.
func Defaults(provider string) []models.AvailabilityDescriptor {
	var src []models.AvailabilityDescriptor
	switch provider {
	case "tmdb":
		src = tmdbCatalog
	case "omdb":
		src = omdbCatalog
	}
	out := make([]models.AvailabilityDescriptor, len(src))
	copy(out, src)
	return out
}
