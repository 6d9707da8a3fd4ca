package model

// Location is a geotag attached to users, flood reports, SOS requests and
// shelters.  All three fields are required wherever a location is required;
// on the user profile the whole location is optional.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}
