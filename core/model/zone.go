package model

// Zone identifies a geographic delivery service zone. The set of zones is a
// closed enumeration; configuration supplies keywords and factory defaults per
// zone but cannot introduce new zones at runtime.
type Zone string

const (
	ZoneNorth        Zone = "north"
	ZoneSouth        Zone = "south"
	ZoneEast         Zone = "east"
	ZoneCentralLeft  Zone = "central-left"
	ZoneCentralRight Zone = "central-right"
)

// Zones returns all service zones in a stable order.
func Zones() []Zone {
	return []Zone{ZoneNorth, ZoneSouth, ZoneEast, ZoneCentralLeft, ZoneCentralRight}
}

// Valid reports whether z is one of the known zones.
func (z Zone) Valid() bool {
	switch z {
	case ZoneNorth, ZoneSouth, ZoneEast, ZoneCentralLeft, ZoneCentralRight:
		return true
	}
	return false
}

func (z Zone) String() string { return string(z) }
