package domain

type Location struct {
	CountryCode string `json:"countryCode"`
	Country     string `json:"country"`
	City        string `json:"city"`
}

var UnknownLocation = Location{
	CountryCode: UnknownCountryCode,
	Country:     UnknownPlace,
	City:        UnknownPlace,
}

// Known reports whether the location carries a real country.
func (l Location) Known() bool {
	return l.CountryCode != "" && l.CountryCode != UnknownCountryCode
}
