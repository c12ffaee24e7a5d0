package metadata

import "github.com/Bizimana-jeanluc/moviesBox/models"

// SelectFeatured picks the hero title for a listing: the first playable record,
// else the first record. Others is the listing without the featured id, in
// order. An empty listing has no featured record.
func SelectFeatured(records []models.EnrichedRecord) (*models.EnrichedRecord, []models.EnrichedRecord) {
	if len(records) == 0 {
		return nil, []models.EnrichedRecord{}
	}

	idx := 0
	for i := range records {
		if records[i].CanPlay {
			idx = i
			break
		}
	}
	featured := records[idx]

	others := make([]models.EnrichedRecord, 0, len(records)-1)
	for _, r := range records {
		if r.ID == featured.ID {
			continue
		}
		others = append(others, r)
	}
	return &featured, others
}
