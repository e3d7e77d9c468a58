package normalize

import (
	"errors"
	"strings"
)

// Open Location Code constants.
const (
	olcAlphabet     = "23456789CFGHJMPQRVWX"
	olcSeparator    = '+'
	olcSeparatorPos = 8
	olcPadding      = '0'
	olcPairLength   = 10
	olcMaxLength    = 15
	olcGridRows     = 5
	olcGridCols     = 4
)

var olcPairResolutions = [...]float64{20.0, 1.0, 0.05, 0.0025, 0.000125}

// ErrInvalidPlusCode is returned for short codes and malformed input.
var ErrInvalidPlusCode = errors.New("invalid full plus code")

// DecodePlusCode decodes a full Open Location Code (e.g. "6GCRPR5C+5Q") to
// the centre of its area. Short codes need a reference location and are
// rejected.
func DecodePlusCode(code string) (lat, lon float64, err error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !validFullPlusCode(code) {
		return 0, 0, ErrInvalidPlusCode
	}

	digits := strings.Map(func(r rune) rune {
		if r == olcSeparator || r == olcPadding {
			return -1
		}
		return r
	}, code)
	if len(digits) > olcMaxLength {
		digits = digits[:olcMaxLength]
	}

	lat, lon = -90.0, -180.0
	var latRes, lonRes float64
	for i := 0; i < len(digits) && i < olcPairLength; i += 2 {
		res := olcPairResolutions[i/2]
		lat += float64(strings.IndexByte(olcAlphabet, digits[i])) * res
		lon += float64(strings.IndexByte(olcAlphabet, digits[i+1])) * res
		latRes, lonRes = res, res
	}
	if len(digits) > olcPairLength {
		latPlace := olcPairResolutions[len(olcPairResolutions)-1]
		lonPlace := latPlace
		for i := olcPairLength; i < len(digits); i++ {
			v := strings.IndexByte(olcAlphabet, digits[i])
			latPlace /= olcGridRows
			lonPlace /= olcGridCols
			lat += float64(v/olcGridCols) * latPlace
			lon += float64(v%olcGridCols) * lonPlace
		}
		latRes, lonRes = latPlace, lonPlace
	}

	lat = min(lat+latRes/2, 90)
	lon = min(lon+lonRes/2, 180)
	return lat, lon, nil
}

func validFullPlusCode(code string) bool {
	sep := strings.IndexByte(code, olcSeparator)
	if sep != olcSeparatorPos || strings.Count(code, string(olcSeparator)) != 1 {
		return false
	}
	if len(code)-sep-1 == 1 {
		return false
	}

	if pad := strings.IndexByte(code, olcPadding); pad >= 0 {
		if pad == 0 || pad%2 == 1 || sep != len(code)-1 {
			return false
		}
		if strings.Trim(code[pad:sep], string(olcPadding)) != "" {
			return false
		}
		code = code[:pad] + code[sep:]
	}

	for i := 0; i < len(code); i++ {
		if code[i] == olcSeparator {
			continue
		}
		if strings.IndexByte(olcAlphabet, code[i]) < 0 {
			return false
		}
	}

	// The first pair must stay inside the latitude and longitude ranges.
	if strings.IndexByte(olcAlphabet, code[0])*20 >= 180 {
		return false
	}
	if strings.IndexByte(olcAlphabet, code[1])*20 >= 360 {
		return false
	}
	return true
}
