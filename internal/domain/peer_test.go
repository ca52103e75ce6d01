package domain

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_OrdersByTimeJoinedThenCountryThenID(t *testing.T) {
	a := PeerRecord{ID: "a", CountryCode: "US", TimeJoined: 100}
	b := PeerRecord{ID: "b", CountryCode: "DE", TimeJoined: 50}
	c := PeerRecord{ID: "c", CountryCode: "FR", TimeJoined: 75}

	assert.True(t, Compare(b, c) < 0)
	assert.True(t, Compare(c, a) < 0)
	assert.Equal(t, 0, Compare(a, a))

	de := PeerRecord{ID: "z", CountryCode: "DE", TimeJoined: 10}
	us := PeerRecord{ID: "a", CountryCode: "US", TimeJoined: 10}
	assert.True(t, Compare(de, us) < 0, "same join time falls back to country code")

	x1 := PeerRecord{ID: "x1", CountryCode: "DE"}
	x2 := PeerRecord{ID: "x2", CountryCode: "DE"}
	assert.True(t, Compare(x1, x2) < 0, "id breaks the tie")
}

func TestCompare_LegacyPeersSortFirst(t *testing.T) {
	legacy := PeerRecord{ID: "old", CountryCode: "ZZ"}
	fresh := PeerRecord{ID: "new", CountryCode: "AA", TimeJoined: 1}
	assert.True(t, Compare(legacy, fresh) < 0)
}

func TestPeerRecord_UnmarshalDefaultsVisible(t *testing.T) {
	var p PeerRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","country_code":"NL"}`), &p))
	assert.True(t, p.Visible)
	assert.Equal(t, int64(0), p.TimeJoined)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"b","visible":false,"time_joined":42}`), &p))
	assert.False(t, p.Visible)
	assert.Equal(t, int64(42), p.TimeJoined)
	assert.Empty(t, p.CountryCode)
}

func TestPeerRecord_MarshalOmitsSelf(t *testing.T) {
	b, err := json.Marshal(PeerRecord{ID: "a", Visible: true, Self: true})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "self")
	assert.Contains(t, string(b), `"visible":true`)
}

func TestPeerRecord_WithDefaults(t *testing.T) {
	p := PeerRecord{ID: "a"}.WithDefaults()
	assert.Equal(t, "??", p.CountryCode)
	assert.Equal(t, "Unknown", p.Country)
	assert.Equal(t, "Unknown", p.City)

	q := PeerRecord{ID: "b", CountryCode: "JP", Country: "Japan", City: "Tokyo"}.WithDefaults()
	assert.Equal(t, "JP", q.CountryCode)
	assert.Equal(t, "Tokyo", q.City)
}

func TestPeerRecord_WithLocation(t *testing.T) {
	p := PeerRecord{ID: "a", Visible: true}.WithLocation(UnknownLocation)
	assert.Equal(t, "??", p.CountryCode)
	assert.True(t, p.Visible)
	assert.False(t, UnknownLocation.Known())
	assert.True(t, Location{CountryCode: "DE"}.Known())

	loc := Location{CountryCode: "DE", Country: "Germany", City: "Berlin"}
	assert.Equal(t, loc, PeerRecord{ID: "a"}.WithLocation(loc).Location())
}
