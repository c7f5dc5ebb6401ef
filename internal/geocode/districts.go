package geocode

// districtTable maps the ten Trujillo districts to their representative
// coordinate pairs. Values match the dispatch operation's reference sheet.
var districtTable = map[string]Point{
	"Trujillo Centro":   {Lat: -8.1092, Lon: -79.0215},
	"La Esperanza":      {Lat: -8.0878, Lon: -79.0401},
	"El Porvenir":       {Lat: -8.0775, Lon: -79.0169},
	"Florencia de Mora": {Lat: -8.0731, Lon: -79.0264},
	"Huanchaco":         {Lat: -8.0833, Lon: -79.1167},
	"Victor Larco":      {Lat: -8.1167, Lon: -79.0333},
	"Moche":             {Lat: -8.1667, Lon: -79.0333},
	"Laredo":            {Lat: -8.0833, Lon: -78.9667},
	"Salaverry":         {Lat: -8.2167, Lon: -78.9833},
	"Poroto":            {Lat: -8.0083, Lon: -78.6417},
}

// DistrictPoint returns the fixed coordinates of a known district.
func DistrictPoint(district string) (Point, bool) {
	p, ok := districtTable[district]
	return p, ok
}

// Districts lists the known district names. Order is unspecified.
func Districts() []string {
	names := make([]string, 0, len(districtTable))
	for name := range districtTable {
		names = append(names, name)
	}
	return names
}
