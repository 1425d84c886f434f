// Package entities contains domain entities used across the application.
package entities

import (
	"bytes"
	"encoding/json"
	"time"
)

// PointsPerBoulder is the fixed value of every completed boulder.
const PointsPerBoulder = 100

// Color is the difficulty color of a boulder.
type Color string

const (
	ColorVerdes    Color = "verdes"
	ColorAmarillos Color = "amarillos"
	ColorRojos     Color = "rojos"
	ColorLilas     Color = "lilas"
	ColorNegros    Color = "negros"
)

// Colors lists every boulder color from the easiest to the hardest.
var Colors = []Color{ColorVerdes, ColorAmarillos, ColorRojos, ColorLilas, ColorNegros}

// Zone is the wall area a boulder belongs to.
type Zone string

const (
	ZoneProa     Zone = "proa"
	ZonePopa     Zone = "popa"
	ZoneBabor    Zone = "babor"
	ZoneEstribor Zone = "estribor"
	ZoneDesplome Zone = "desplome-de-los-loros"
	ZoneAmazonia Zone = "amazonia"
)

// Zones lists every wall zone in display order.
var Zones = []Zone{ZoneProa, ZonePopa, ZoneBabor, ZoneEstribor, ZoneDesplome, ZoneAmazonia}

// Valid reports whether c is one of the known colors.
func (c Color) Valid() bool {
	return c.Rank() >= 0
}

// Rank returns the position of the color in Colors, or -1 if unknown.
func (c Color) Rank() int {
	for i, known := range Colors {
		if c == known {
			return i
		}
	}
	return -1
}

// Label returns the human-readable color name.
func (c Color) Label() string {
	switch c {
	case ColorVerdes:
		return "Verdes"
	case ColorAmarillos:
		return "Amarillos"
	case ColorRojos:
		return "Rojos"
	case ColorLilas:
		return "Lilas"
	case ColorNegros:
		return "Negros"
	default:
		return string(c)
	}
}

// Valid reports whether z is one of the known zones.
func (z Zone) Valid() bool {
	return z.Rank() >= 0
}

// Rank returns the position of the zone in Zones, or -1 if unknown.
func (z Zone) Rank() int {
	for i, known := range Zones {
		if z == known {
			return i
		}
	}
	return -1
}

// Label returns the human-readable zone name.
func (z Zone) Label() string {
	switch z {
	case ZoneProa:
		return "Proa"
	case ZonePopa:
		return "Popa"
	case ZoneBabor:
		return "Babor"
	case ZoneEstribor:
		return "Estribor"
	case ZoneDesplome:
		return "Desplome de los Loros"
	case ZoneAmazonia:
		return "Amazonía"
	default:
		return string(z)
	}
}

// Boulder is an immutable catalog entry identified by color and zone.
type Boulder struct {
	ID        string    `json:"id"`
	Color     Color     `json:"color"`
	Zone      Zone      `json:"zone"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// DecodeBoulderRef normalizes the joined boulder payload of a progress row.
//
// The join may carry a single object, a one-element list or nothing at all.
// Anything that cannot be turned into a boulder with a known color yields nil:
// a broken reference must never break the ledger.
func DecodeBoulderRef(raw []byte) *Boulder {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var b Boulder
	switch raw[0] {
	case '{':
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil
		}
	case '[':
		var list []Boulder
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return nil
		}
		b = list[0]
	default:
		return nil
	}

	if !b.Color.Valid() {
		return nil
	}

	return &b
}
