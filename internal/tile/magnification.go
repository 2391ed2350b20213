// Package tile implements the discrete magnification ladder and Web
// Mercator slippy-tile addressing used by the map data files.
package tile

import "math/bits"

// MagnificationLevel is a discrete zoom level.
type MagnificationLevel uint32

// Named magnification levels. Not every integer level carries a name.
const (
	LevelWorld     MagnificationLevel = 0
	LevelContinent MagnificationLevel = 4
	LevelState     MagnificationLevel = 5
	LevelStateOver MagnificationLevel = 6
	LevelCounty    MagnificationLevel = 7
	LevelRegion    MagnificationLevel = 8
	LevelProximity MagnificationLevel = 9
	LevelCityOver  MagnificationLevel = 10
	LevelCity      MagnificationLevel = 11
	LevelSuburb    MagnificationLevel = 12
	LevelDetail    MagnificationLevel = 13
	LevelClose     MagnificationLevel = 14
	LevelCloser    MagnificationLevel = 15
	LevelVeryClose MagnificationLevel = 16
	LevelBlock     MagnificationLevel = 18
	LevelStreet    MagnificationLevel = 19
	LevelHouse     MagnificationLevel = 20
)

var levelNames = map[string]MagnificationLevel{
	"world":     LevelWorld,
	"continent": LevelContinent,
	"state":     LevelState,
	"stateOver": LevelStateOver,
	"county":    LevelCounty,
	"region":    LevelRegion,
	"proximity": LevelProximity,
	"cityOver":  LevelCityOver,
	"city":      LevelCity,
	"suburb":    LevelSuburb,
	"detail":    LevelDetail,
	"close":     LevelClose,
	"closer":    LevelCloser,
	"veryClose": LevelVeryClose,
	"block":     LevelBlock,
	"street":    LevelStreet,
	"house":     LevelHouse,
}

var nameForLevel = func() map[MagnificationLevel]string {
	names := make(map[MagnificationLevel]string, len(levelNames))
	for name, level := range levelNames {
		names[level] = name
	}
	return names
}()

// Magnification couples a zoom level with its linear scale factor 2^level.
// The factor is derived from the level, so the two can never fall out of
// sync and the zero value is the world magnification.
type Magnification struct {
	level uint32
}

// NewMagnification creates a magnification for the given level.
func NewMagnification(level MagnificationLevel) Magnification {
	var m Magnification
	m.SetLevel(level)
	return m
}

// Level returns the zoom level.
func (m Magnification) Level() uint32 { return m.level }

// Value returns the linear scale factor 2^level.
func (m Magnification) Value() uint32 { return 1 << m.level }

// SetLevel sets the zoom level.
func (m *Magnification) SetLevel(level MagnificationLevel) {
	m.level = uint32(level)
}

// SetValue sets the scale factor. Values that are not a power of two are
// snapped down to the nearest one.
func (m *Magnification) SetValue(value uint32) {
	if value == 0 {
		value = 1
	}
	m.level = uint32(bits.Len32(value) - 1)
}

// Inc advances to the next level.
func (m *Magnification) Inc() {
	m.level++
}

// ConvertNameToMag resolves a named level ("world".."house") to its
// magnification. It reports false for unknown names.
func ConvertNameToMag(name string) (Magnification, bool) {
	level, ok := levelNames[name]
	if !ok {
		return Magnification{}, false
	}
	return NewMagnification(level), true
}

// ConvertLevelToName returns the name of the given level, or false when the
// level carries no name.
func ConvertLevelToName(level MagnificationLevel) (string, bool) {
	name, ok := nameForLevel[level]
	return name, ok
}
