package domain

// RawCandidate is one unnormalized record as returned by any of the places
// strategies. Everything but PlaceID is optional; the same place may appear
// several times across strategies with different subsets populated.
type RawCandidate struct {
	PlaceID          string    `json:"place_id"`
	Name             string    `json:"name"`
	FormattedAddress string    `json:"formatted_address,omitempty"`
	Vicinity         string    `json:"vicinity,omitempty"`
	Photos           []Photo   `json:"photos,omitempty"`
	Website          string    `json:"website,omitempty"`
	UserRatingsTotal *int      `json:"user_ratings_total,omitempty"`
	Geometry         *Geometry `json:"geometry,omitempty"`
}

type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
}

type Geometry struct {
	Location Location `json:"location"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FormattedResult is the public output record, one per distinct place ID.
type FormattedResult struct {
	Name             string      `json:"name"`
	FormattedAddress string      `json:"formatted_address"`
	PlaceID          string      `json:"place_id"`
	PhotoURL         string      `json:"photo_url,omitempty"`
	Website          string      `json:"website,omitempty"`
	ReviewCount      int         `json:"review_count"`
	Vendor           *VendorInfo `json:"vendor,omitempty"`
}

// VendorInfo names the platform a result's website is built on.
type VendorInfo struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
	URL  string `json:"url"`
}
