package domain

// NotAvailable is substituted for optional upstream fields that are absent.
const NotAvailable = "Not Available"

// CountryProfile represents the simplified country data we serve
type CountryProfile struct {
	Name       string `json:"name"`
	Capital    string `json:"capital"`
	Population string `json:"population"`
	Area       string `json:"area"`
	Languages  string `json:"languages"`
	Currencies string `json:"currencies"`
	Region     string `json:"region"`
	Subregion  string `json:"subregion"`
	Flag       string `json:"flag"`
}

// ContinentListing groups the countries of one region
type ContinentListing struct {
	Continent         string           `json:"continent"`
	NumberOfCountries int              `json:"numberOfCountries"`
	Countries         []CountryProfile `json:"countries"`
}
