package internal

// MarkerKind selects the conversion applied to a parameter
type MarkerKind int

// Marker kinds
const (
	MarkerGeneric MarkerKind = iota
	MarkerInt
	MarkerFloat
	MarkerList
	MarkerIdent
)

// String returns the marker as it is written in a template
func (k MarkerKind) String() string {
	switch k {
	case MarkerGeneric:
		return StrMarkerGeneric
	case MarkerInt:
		return StrMarkerInt
	case MarkerFloat:
		return StrMarkerFloat
	case MarkerList:
		return StrMarkerList
	case MarkerIdent:
		return StrMarkerIdent
	default:
		return ErrMsgUnknownMarkerKind
	}
}

// markerTable is the fixed marker alphabet. It is never mutated after init.
var markerTable = map[string]MarkerKind{
	StrMarkerInt:     MarkerInt,
	StrMarkerFloat:   MarkerFloat,
	StrMarkerList:    MarkerList,
	StrMarkerIdent:   MarkerIdent,
	StrMarkerGeneric: MarkerGeneric,
}

// ResolveMarker selects the marker at the start of rest, longest match first.
// It returns the kind and the number of bytes the marker occupies.
func ResolveMarker(rest string) (MarkerKind, int, bool) {
	if len(rest) >= LenMarkerLong {
		if kind, ok := markerTable[rest[:LenMarkerLong]]; ok {
			return kind, LenMarkerLong, true
		}
	}
	if len(rest) >= LenMarkerShort {
		if kind, ok := markerTable[rest[:LenMarkerShort]]; ok {
			return kind, LenMarkerShort, true
		}
	}
	return MarkerGeneric, 0, false
}
