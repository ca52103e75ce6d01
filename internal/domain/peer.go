package domain

import (
	"cmp"

	"github.com/goccy/go-json"
)

const (
	UnknownCountryCode = "??"
	UnknownPlace       = "Unknown"
)

// PeerRecord is one participant of a room as published to the pub/sub room.
type PeerRecord struct {
	ID          string `json:"id"`
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Visible     bool   `json:"visible"`
	TimeJoined  int64  `json:"time_joined,omitempty"`

	// Self marks the local participant's own copy. Never sent over the wire.
	Self bool `json:"-"`
}

type peerRecordWire struct {
	ID          string `json:"id"`
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Visible     *bool  `json:"visible"`
	TimeJoined  int64  `json:"time_joined"`
}

// UnmarshalJSON treats a missing "visible" key as visible: legacy peers never sent it.
func (p *PeerRecord) UnmarshalJSON(b []byte) error {
	var w peerRecordWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = PeerRecord{
		ID:          w.ID,
		CountryCode: w.CountryCode,
		Country:     w.Country,
		City:        w.City,
		Visible:     w.Visible == nil || *w.Visible,
		TimeJoined:  w.TimeJoined,
	}
	return nil
}

// WithDefaults fills empty location fields with the unknown sentinels.
func (p PeerRecord) WithDefaults() PeerRecord {
	if p.CountryCode == "" {
		p.CountryCode = UnknownCountryCode
	}
	if p.Country == "" {
		p.Country = UnknownPlace
	}
	if p.City == "" {
		p.City = UnknownPlace
	}
	return p
}

// Location returns the geographic part of the record.
func (p PeerRecord) Location() Location {
	return Location{CountryCode: p.CountryCode, Country: p.Country, City: p.City}
}

// WithLocation returns a copy of p located at loc.
func (p PeerRecord) WithLocation(loc Location) PeerRecord {
	p.CountryCode = loc.CountryCode
	p.Country = loc.Country
	p.City = loc.City
	return p
}

// Compare orders peers by (TimeJoined, CountryCode, ID).
func Compare(a, b PeerRecord) int {
	if c := cmp.Compare(a.TimeJoined, b.TimeJoined); c != 0 {
		return c
	}
	if c := cmp.Compare(a.CountryCode, b.CountryCode); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
