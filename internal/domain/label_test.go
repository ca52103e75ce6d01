package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnimalFor_Deterministic(t *testing.T) {
	assert.Equal(t, "Dog", AnimalFor("0").Name)
	assert.Equal(t, "Cat", AnimalFor("1").Name)
	assert.Equal(t, "Penguin", AnimalFor("10").Name)

	id := "3f2a9c1e-7b44-4d0e-9a8b-1c2d3e4f5a6b"
	assert.Equal(t, AnimalFor(id), AnimalFor(id))
}

func TestFlagEmoji(t *testing.T) {
	flag, ok := FlagEmoji("us")
	assert.True(t, ok)
	assert.Equal(t, "🇺🇸", flag)

	for _, code := range []string{"", "??", "USA", "1A"} {
		_, ok := FlagEmoji(code)
		assert.False(t, ok, code)
	}
}

func TestTitle(t *testing.T) {
	p := PeerRecord{ID: "10abcdef99", CountryCode: "DE", Country: "Germany", City: "Berlin"}
	assert.Equal(t, "Anonymous "+AnimalFor(p.ID).Name+" from Berlin, Germany (10abcdef)", Title(p))

	unknown := PeerRecord{ID: "1", CountryCode: "??"}
	assert.Equal(t, "Anonymous Cat (1)", Title(unknown))
}

func TestClampCoord(t *testing.T) {
	assert.Equal(t, 10000, ClampCoord(12000))
	assert.Equal(t, 0, ClampCoord(-5))
	assert.Equal(t, 4321, ClampCoord(4321))
}

func TestDetectPlatform(t *testing.T) {
	p, ok := DetectPlatform("darwin")
	assert.True(t, ok)
	assert.Equal(t, PlatformMac, p)

	p, ok = DetectPlatform("linux")
	assert.True(t, ok)
	assert.Equal(t, PlatformLinux, p)

	_, ok = DetectPlatform("android")
	assert.False(t, ok)
}
