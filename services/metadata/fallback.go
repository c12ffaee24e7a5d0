package metadata

import "github.com/Bizimana-jeanluc/moviesBox/models"

// sampleTrending is served when the provider cannot be reached and the sample
// fallback is selected. Ids are IMDb ids so they line up with the omdb catalog.
var sampleTrending = []models.MetadataRecord{
	{
		ID:        "tt0109830",
		Title:     "Forrest Gump",
		Year:      "1994",
		MediaType: "movie",
		Poster:    "https://m.media-amazon.com/images/M/MV5BNWIwODRlZTUtY2U3ZS00Yzg1LWJhNzYtMmZiYmEyNmU1NjMzXkEyXkFqcGdeQXVyMTQxNzMzNDI@._V1_SX300.jpg",
		Overview:  "The presidencies of Kennedy and Johnson, the Vietnam War, the Watergate scandal and other historical events unfold from the perspective of an Alabama man with an IQ of 75, whose only desire is to be reunited with his childhood sweetheart.",
	},
}

// SampleTrending returns a copy of the built-in sample listing.
func SampleTrending() []models.MetadataRecord {
	return copyRecords(sampleTrending)
}

func copyRecords(items []models.MetadataRecord) []models.MetadataRecord {
	cloned := make([]models.MetadataRecord, len(items))
	copy(cloned, items)
	return cloned
}
