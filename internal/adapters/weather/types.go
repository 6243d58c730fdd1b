package weather

// DTOs mínimos de Bing Maps Locations.
type locationsDTO struct {
	ResourceSets []struct {
		EstimatedTotal int `json:"estimatedTotal"`
		Resources      []struct {
			Address struct {
				Locality         string `json:"locality"`
				FormattedAddress string `json:"formattedAddress"`
				AdminDistrict    string `json:"adminDistrict"`
				AdminDistrict2   string `json:"adminDistrict2"`
				CountryRegion    string `json:"countryRegion"`
			} `json:"address"`
			Point struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"point"`
		} `json:"resources"`
	} `json:"resourceSets"`
}

type Location struct {
	City       string
	Department string // adminDistrict2 de Bing (ej: "Gironde")
	Region     string
	Country    string
	Lat        float64
	Lon        float64
}

// DataPoint: campos de DarkSky que mostramos (units=ca: °C y km/h).
type DataPoint struct {
	Time                int64   `json:"time"`
	Summary             string  `json:"summary"`
	Icon                string  `json:"icon"`
	Temperature         float64 `json:"temperature"`
	ApparentTemperature float64 `json:"apparentTemperature"`
	TemperatureMin      float64 `json:"temperatureMin"`
	TemperatureMax      float64 `json:"temperatureMax"`
	Humidity            float64 `json:"humidity"`
	Pressure            float64 `json:"pressure"`
	WindSpeed           float64 `json:"windSpeed"`
	WindBearing         float64 `json:"windBearing"`
	CloudCover          float64 `json:"cloudCover"`
	UVIndex             float64 `json:"uvIndex"`
	MoonPhase           float64 `json:"moonPhase"`
	SunriseTime         int64   `json:"sunriseTime"`
	SunsetTime          int64   `json:"sunsetTime"`
}

type Forecast struct {
	Timezone  string    `json:"timezone"`
	Currently DataPoint `json:"currently"`
	Daily     struct {
		Data []DataPoint `json:"data"`
	} `json:"daily"`
}

// vigilanceDTO: archivo vigilance.json de Météo-France.
type vigilanceDTO struct {
	Data []struct {
		Department string `json:"department"`
		Level      int    `json:"level"`
		Risk       []int  `json:"risk"`
	} `json:"data"`
}

// Vigilance de un departamento. Level y Risk van de 1 (verde) a 4 (rojo);
// Risk está indexado como RiskTypes.
type Vigilance struct {
	Department string
	Level      int
	Risk       []int
}
