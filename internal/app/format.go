package app

import "placefinder/internal/domain"

// FormatResults collapses the raw candidate list into one FormattedResult
// per distinct place ID, preserving first-occurrence order. Entries without
// a place ID are skipped; missing optional fields stay absent except
// review_count, which defaults to 0. photoURL mints the key-bound photo
// fetch URL from a photo reference.
func FormatResults(in []domain.RawCandidate, photoURL func(string) string) []domain.FormattedResult {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.FormattedResult, 0, len(in))

	for _, r := range in {
		if r.PlaceID == "" {
			continue
		}
		if _, dup := seen[r.PlaceID]; dup {
			continue
		}
		seen[r.PlaceID] = struct{}{}

		addr := r.FormattedAddress
		if addr == "" {
			addr = r.Vicinity
		}

		var photo string
		if len(r.Photos) > 0 && r.Photos[0].PhotoReference != "" {
			photo = photoURL(r.Photos[0].PhotoReference)
		}

		reviews := 0
		if r.UserRatingsTotal != nil {
			reviews = *r.UserRatingsTotal
		}

		out = append(out, domain.FormattedResult{
			Name:             r.Name,
			FormattedAddress: addr,
			PlaceID:          r.PlaceID,
			PhotoURL:         photo,
			Website:          r.Website,
			ReviewCount:      reviews,
		})
	}
	return out
}
