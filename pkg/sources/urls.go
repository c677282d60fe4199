package sources

const (
	// CountryBordersURL is Natural Earth's 1:110m admin-0 countries as GeoJSON.
	CountryBordersURL = "https://raw.githubusercontent.com/vasturiano/three-globe/master/example/datasets/ne_110m_admin_0_countries.geojson"
)
