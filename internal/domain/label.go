package domain

import (
	"fmt"
	"strings"
)

type Animal struct {
	Emoji string
	Name  string
}

var animals = []Animal{
	{"🐶", "Dog"}, {"🐱", "Cat"}, {"🐭", "Mouse"}, {"🐹", "Hamster"}, {"🐰", "Rabbit"}, {"🦊", "Fox"}, {"🐻", "Bear"},
	{"🐼", "Panda"}, {"🐨", "Koala"}, {"🐯", "Tiger"}, {"🦁", "Lion"}, {"🐮", "Cow"}, {"🐷", "Pig"}, {"🐸", "Frog"},
	{"🐵", "Monkey"}, {"🐔", "Chicken"}, {"🐧", "Penguin"}, {"🐦", "Bird"}, {"🐤", "Chick"}, {"🦆", "Duck"}, {"🦅", "Eagle"},
	{"🦉", "Owl"}, {"🦇", "Bat"}, {"🐺", "Wolf"}, {"🐗", "Boar"}, {"🐴", "Horse"}, {"🦄", "Unicorn"}, {"🐝", "Bee"},
	{"🐛", "Bug"}, {"🦋", "Butterfly"}, {"🐌", "Snail"}, {"🐞", "Lady Beetle"}, {"🐜", "Ant"}, {"🦟", "Mosquito"},
	{"🦗", "Cricket"}, {"🕷️", "Spider"}, {"🦂", "Scorpion"}, {"🐢", "Turtle"}, {"🐍", "Snake"}, {"🦎", "Lizard"},
	{"🦖", "T-Rex"}, {"🦕", "Sauropod"}, {"🐙", "Octopus"}, {"🦑", "Squid"}, {"🦐", "Shrimp"}, {"🦞", "Lobster"},
	{"🦀", "Crab"}, {"🐡", "Blowfish"}, {"🐠", "Tropical Fish"}, {"🐟", "Fish"}, {"🐬", "Dolphin"}, {"🐳", "Whale"},
	{"🐋", "Humpback Whale"}, {"🦈", "Shark"}, {"🐊", "Crocodile"}, {"🐅", "Leopard"}, {"🦓", "Zebra"}, {"🦍", "Gorilla"},
	{"🦧", "Orangutan"}, {"🐘", "Elephant"}, {"🦛", "Hippopotamus"}, {"🦏", "Rhinoceros"}, {"🐪", "Camel"},
	{"🐫", "Two-Hump Camel"}, {"🦒", "Giraffe"}, {"🦘", "Kangaroo"}, {"🐃", "Water Buffalo"}, {"🐂", "Ox"}, {"🐄", "Dairy Cow"},
	{"🐎", "Racehorse"}, {"🐖", "Pig Face"}, {"🐏", "Ram"}, {"🐑", "Ewe"}, {"🦙", "Llama"}, {"🐐", "Goat"}, {"🦌", "Deer"},
	{"🐕", "Guide Dog"}, {"🐩", "Poodle"}, {"🦮", "Service Dog"}, {"🐕‍🦺", "Safety Vest Dog"}, {"🐈", "Black Cat"},
	{"🐈‍⬛", "Tomcat"}, {"🐓", "Rooster"}, {"🦃", "Turkey"}, {"🦚", "Peacock"}, {"🦜", "Parrot"}, {"🦢", "Swan"},
	{"🦩", "Flamingo"}, {"🕊️", "Dove"}, {"🐇", "White Rabbit"}, {"🦝", "Raccoon"}, {"🦨", "Skunk"}, {"🦡", "Badger"},
	{"🦦", "Otter"}, {"🦥", "Sloth"}, {"🐁", "White Mouse"}, {"🐀", "Rat"}, {"🐿️", "Chipmunk"}, {"🦔", "Hedgehog"},
}

// AnimalFor deterministically picks the animal shown for a peer id. Hex digits
// contribute their numeric value, every other rune its code point.
func AnimalFor(id string) Animal {
	var hash int32
	for _, r := range id {
		var v int32
		switch {
		case r >= '0' && r <= '9':
			v = r - '0'
		case r >= 'a' && r <= 'f':
			v = r - 'a' + 10
		case r >= 'A' && r <= 'F':
			v = r - 'A' + 10
		default:
			v = r
		}
		hash = hash<<4 + v
	}

	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return animals[h%int64(len(animals))]
}

// FlagEmoji converts a two letter country code into its regional indicator pair.
func FlagEmoji(code string) (string, bool) {
	if len(code) != 2 || code == UnknownCountryCode {
		return "", false
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(code) {
		if c < 'A' || c > 'Z' {
			return "", false
		}
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String(), true
}

// Title is the hover text of a roster entry.
func Title(p PeerRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Anonymous %s", AnimalFor(p.ID).Name)
	if p.Location().Known() {
		fmt.Fprintf(&b, " from %s, %s", p.City, p.Country)
	}
	short := p.ID
	if len(short) > 8 {
		short = short[:8]
	}
	fmt.Fprintf(&b, " (%s)", short)
	return b.String()
}
