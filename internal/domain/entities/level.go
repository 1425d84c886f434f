package entities

import (
	"fmt"
	"strings"
)

// Rank is a named achievement level.
type Rank int

const (
	RankBeginner Rank = iota
	RankIntermediate
	RankAdvanced
	RankExpert
	RankMaster
)

const (
	levelBand    = 1000 // points per level and per star
	masterPoints = 4000
	maxStars     = 5
)

// String returns the stable identifier of the rank.
func (r Rank) String() string {
	switch r {
	case RankBeginner:
		return "beginner"
	case RankIntermediate:
		return "intermediate"
	case RankAdvanced:
		return "advanced"
	case RankExpert:
		return "expert"
	case RankMaster:
		return "master"
	default:
		return fmt.Sprintf("rank(%d)", int(r))
	}
}

// Title returns the display title shown to climbers.
func (r Rank) Title() string {
	switch r {
	case RankIntermediate:
		return "Escalador Intermedio"
	case RankAdvanced:
		return "Escalador Avanzado"
	case RankExpert:
		return "Escalador Experto"
	case RankMaster:
		return "Maestro Escalador"
	default:
		return "Escalador Principiante"
	}
}

// MarshalText encodes the rank by its identifier.
func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Level is the score derived from a point total.
type Level struct {
	Points       int64   `json:"points"`
	Rank         Rank    `json:"rank"`
	Title        string  `json:"title"`
	Stars        int     `json:"stars"`
	PointsToNext int64   `json:"pointsToNext"`
	MaxReached   bool    `json:"maxReached"`
	BandProgress float64 `json:"bandProgress"`
}

// LevelFor maps a point total to its level. Negative totals count as zero.
func LevelFor(points int64) Level {
	points = max(0, points)

	lvl := Level{
		Points:       points,
		BandProgress: min(100, float64(points%levelBand)/10),
	}

	switch {
	case points >= masterPoints:
		lvl.Rank = RankMaster
		lvl.Stars = int(min(maxStars, (points-masterPoints)/levelBand))
	case points >= 3000:
		lvl.Rank = RankExpert
	case points >= 2000:
		lvl.Rank = RankAdvanced
	case points >= 1000:
		lvl.Rank = RankIntermediate
	default:
		lvl.Rank = RankBeginner
	}

	if lvl.Stars >= maxStars {
		lvl.MaxReached = true
	} else {
		lvl.PointsToNext = levelBand - points%levelBand
	}

	lvl.Title = lvl.Rank.Title()
	if lvl.Stars > 0 {
		lvl.Title += " " + strings.Repeat("⭐", lvl.Stars)
	}

	return lvl
}

// Summary renders the next-milestone line.
func (l Level) Summary() string {
	switch {
	case l.MaxReached:
		return fmt.Sprintf("maximum level reached (%d ⭐)", maxStars)
	case l.Rank == RankMaster:
		return fmt.Sprintf("next ⭐: %d points", l.PointsToNext)
	default:
		return fmt.Sprintf("next level: %d points", l.PointsToNext)
	}
}
