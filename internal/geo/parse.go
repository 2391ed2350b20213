package geo

import "strings"

// Textual coordinate parsing. Accepted latitude/longitude forms:
//
//	[N|S|+|-] D[.DDD] [N|S]
//	[N|S|+|-] D° [M' [S"]] [N|S]
//
// followed by the longitude with E/W hemispheres, optionally separated by a
// comma. The degree sign is accepted as the Latin-1 bytes 0xB0/0xBA and as
// the UTF-8 encodings of U+00B0 and U+00BA.

type coordScanner struct {
	text string
	pos  int
}

func (s *coordScanner) atEnd() bool {
	return s.pos >= len(s.text)
}

func (s *coordScanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.text[s.pos]
}

func (s *coordScanner) skipSpace() {
	for !s.atEnd() && (s.text[s.pos] == ' ' || s.text[s.pos] == '\t') {
		s.pos++
	}
}

// consumeDegreeSign eats one degree sign in any accepted encoding.
func (s *coordScanner) consumeDegreeSign() bool {
	if s.atEnd() {
		return false
	}
	c := s.text[s.pos]
	if c == 0xb0 || c == 0xba {
		s.pos++
		return true
	}
	if c == 0xc2 && s.pos+1 < len(s.text) {
		next := s.text[s.pos+1]
		if next == 0xb0 || next == 0xba {
			s.pos += 2
			return true
		}
	}
	return false
}

// parseNumber reads an unsigned decimal number D[.DDD].
func (s *coordScanner) parseNumber() (float64, bool) {
	start := s.pos
	value := 0.0
	for !s.atEnd() && s.text[s.pos] >= '0' && s.text[s.pos] <= '9' {
		value = value*10 + float64(s.text[s.pos]-'0')
		s.pos++
	}
	if s.pos == start {
		return 0, false
	}
	if !s.atEnd() && s.text[s.pos] == '.' {
		s.pos++
		digitStart := s.pos
		scale := 0.1
		for !s.atEnd() && s.text[s.pos] >= '0' && s.text[s.pos] <= '9' {
			value += float64(s.text[s.pos]-'0') * scale
			scale /= 10
			s.pos++
		}
		if s.pos == digitStart {
			return 0, false
		}
	}
	return value, true
}

// parseHemisphere eats a hemisphere letter and returns its sign, or 0 when
// the next character is neither of the two given letters.
func (s *coordScanner) parseHemisphere(positive, negative byte) float64 {
	c := s.peek()
	upper := c &^ 0x20
	switch upper {
	case positive:
		s.pos++
		return 1
	case negative:
		s.pos++
		return -1
	}
	return 0
}

// parseCoordinate reads one full latitude or longitude value.
func (s *coordScanner) parseCoordinate(limit float64, positive, negative byte) (float64, bool) {
	s.skipSpace()

	sign := 0.0
	switch s.peek() {
	case '+':
		sign = 1
		s.pos++
	case '-':
		sign = -1
		s.pos++
	default:
		sign = s.parseHemisphere(positive, negative)
	}
	s.skipSpace()

	value, ok := s.parseNumber()
	if !ok {
		return 0, false
	}

	// Optional minutes and seconds after a degree sign.
	if s.consumeDegreeSign() {
		s.skipSpace()
		if minutes, ok := s.parseNumber(); ok {
			if !s.atEnd() && s.text[s.pos] == '\'' {
				s.pos++
			}
			value += minutes / 60.0
			s.skipSpace()
			if seconds, ok := s.parseNumber(); ok {
				if !s.atEnd() && s.text[s.pos] == '"' {
					s.pos++
				}
				value += seconds / 3600.0
			}
		}
	}
	s.skipSpace()

	// Hemisphere suffix, only when no explicit prefix was given.
	if sign == 0 {
		sign = s.parseHemisphere(positive, negative)
	}
	if sign == 0 {
		sign = 1
	}

	value *= sign
	if value < -limit || value > limit {
		return 0, false
	}
	return value, true
}

// ParseGeoPoint parses a textual coordinate pair. It returns false for any
// input that does not form a complete, in-range coordinate.
func ParseGeoPoint(text string) (GeoPoint, bool) {
	s := &coordScanner{text: strings.TrimSpace(text)}

	lat, ok := s.parseCoordinate(90, 'N', 'S')
	if !ok {
		return GeoPoint{}, false
	}

	s.skipSpace()
	if s.peek() == ',' {
		s.pos++
	}

	lon, ok := s.parseCoordinate(180, 'E', 'W')
	if !ok {
		return GeoPoint{}, false
	}

	s.skipSpace()
	if !s.atEnd() {
		return GeoPoint{}, false
	}

	return GeoPoint{Lat: lat, Lon: lon}, true
}
