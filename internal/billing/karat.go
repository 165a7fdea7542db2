package billing

import (
	"regexp"
	"strings"
)

// Karat is a purity grade label such as "22K", or the distinguished "SILVER" grade.
type Karat string

const (
	Karat24 Karat = "24K"
	Karat22 Karat = "22K"
	Karat21 Karat = "21K"
	Karat20 Karat = "20K"
	Karat19 Karat = "19K"
	Karat18 Karat = "18K"
	Karat17 Karat = "17K"
	Karat16 Karat = "16K"
	Karat15 Karat = "15K"
	Karat14 Karat = "14K"
	Silver  Karat = "SILVER"
)

// Karats lists every supported grade, gold first from purest down, then silver.
var Karats = []Karat{
	Karat24, Karat22, Karat21, Karat20, Karat19,
	Karat18, Karat17, Karat16, Karat15, Karat14,
	Silver,
}

var karatPattern = regexp.MustCompile(`^(\d{2})\s*(?:K|KT|KARAT|CARAT)?$`)

// Valid reports whether k is one of the supported grades.
func (k Karat) Valid() bool {
	for _, known := range Karats {
		if k == known {
			return true
		}
	}
	return false
}

// IsGold is true for every valid grade except silver.
func (k Karat) IsGold() bool {
	return k != Silver && k.Valid()
}

func (k Karat) String() string { return string(k) }

// ParseKarat normalises user input like "22k", "22 karat" or "silver" into a Karat.
func ParseKarat(raw string) (Karat, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	if s == string(Silver) {
		return Silver, true
	}
	m := karatPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	k := Karat(m[1] + "K")
	if !k.Valid() {
		return "", false
	}
	return k, true
}
