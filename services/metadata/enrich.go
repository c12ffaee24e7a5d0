package metadata

import "github.com/Bizimana-jeanluc/moviesBox/models"

// AvailabilityTable is the read-only overlay the engine joins against.
type AvailabilityTable interface {
	Lookup(id string) (models.AvailabilityDescriptor, bool)
	Len() int
}

// Enrich joins a provider record with the availability overlay. It is pure:
// the same record and table always produce the same result.
//
// CanDownload is set whenever a descriptor exists, even one without a download
// reference. CanPlay additionally requires a stream reference.
func Enrich(record models.MetadataRecord, table AvailabilityTable) models.EnrichedRecord {
	enriched := models.EnrichedRecord{MetadataRecord: record}
	if table == nil {
		return enriched
	}
	desc, ok := table.Lookup(record.ID)
	if !ok {
		return enriched
	}
	enriched.CanPlay = desc.StreamURL != ""
	enriched.CanDownload = true
	enriched.Availability = &desc
	return enriched
}

// EnrichAll applies Enrich to every record, preserving order.
func EnrichAll(records []models.MetadataRecord, table AvailabilityTable) []models.EnrichedRecord {
	out := make([]models.EnrichedRecord, len(records))
	for i, r := range records {
		out[i] = Enrich(r, table)
	}
	return out
}
