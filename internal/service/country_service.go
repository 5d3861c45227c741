package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/worldinfo/backend/internal/domain"
	"github.com/worldinfo/backend/pkg/utils"
)

// catalogFields limits the bulk /all download to what profiles use
const catalogFields = "name,capital,population,area,languages,currencies,region,subregion,flags"

// CountryService looks up country metadata from REST Countries
type CountryService struct {
	baseURL string
	client  JSONGetter
}

// NewCountryService creates a new country service
func NewCountryService(baseURL string, client JSONGetter) *CountryService {
	return &CountryService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// RestCountry is one entry of a REST Countries v3.1 response
type RestCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital    []string          `json:"capital"`
	Population int64             `json:"population"`
	Area       *float64          `json:"area"`
	Languages  map[string]string `json:"languages"`
	Currencies map[string]struct {
		Name string `json:"name"`
	} `json:"currencies"`
	Region    string `json:"region"`
	Subregion string `json:"subregion"`
	Flags     struct {
		PNG string `json:"png"`
	} `json:"flags"`
}

// GetCountryInfo returns the profile of the best name match, as ranked upstream
func (s *CountryService) GetCountryInfo(ctx context.Context, name string) (domain.CountryProfile, error) {
	endpoint := s.baseURL + "/name/" + url.PathEscape(name)

	var matches []RestCountry
	if err := s.client.GetJSON(ctx, endpoint, &matches); err != nil {
		return domain.CountryProfile{}, fmt.Errorf("countries: failed to look up %q: %w", name, err)
	}
	if len(matches) == 0 {
		return domain.CountryProfile{}, fmt.Errorf("countries: %w", s.client.Malformed("no match for %q", name))
	}

	return toProfile(matches[0]), nil
}

// GetCountriesByContinent filters the full catalog by region, ignoring case.
// Upstream order is preserved and an empty match is not an error.
func (s *CountryService) GetCountriesByContinent(ctx context.Context, continent string) (domain.ContinentListing, error) {
	endpoint := s.baseURL + "/all?fields=" + catalogFields

	var catalog []RestCountry
	if err := s.client.GetJSON(ctx, endpoint, &catalog); err != nil {
		return domain.ContinentListing{}, fmt.Errorf("countries: failed to fetch catalog: %w", err)
	}

	countries := make([]domain.CountryProfile, 0)
	for _, c := range catalog {
		if strings.EqualFold(c.Region, continent) {
			countries = append(countries, toProfile(c))
		}
	}

	return domain.ContinentListing{
		Continent:         utils.TitleCase(continent),
		NumberOfCountries: len(countries),
		Countries:         countries,
	}, nil
}

func toProfile(c RestCountry) domain.CountryProfile {
	profile := domain.CountryProfile{
		Name:       c.Name.Common,
		Capital:    domain.NotAvailable,
		Population: utils.GroupDigits(float64(c.Population)),
		Area:       domain.NotAvailable,
		Languages:  orNotAvailable(utils.JoinByKey(c.Languages, ", ")),
		Region:     c.Region,
		Subregion:  orNotAvailable(c.Subregion),
		Flag:       orNotAvailable(c.Flags.PNG),
	}

	if len(c.Capital) > 0 && c.Capital[0] != "" {
		profile.Capital = c.Capital[0]
	}
	if c.Area != nil {
		profile.Area = utils.GroupDigits(*c.Area) + " km²"
	}

	names := make(map[string]string, len(c.Currencies))
	for code, cur := range c.Currencies {
		names[code] = cur.Name
	}
	profile.Currencies = orNotAvailable(utils.JoinByKey(names, ", "))

	return profile
}

func orNotAvailable(s string) string {
	if s == "" {
		return domain.NotAvailable
	}
	return s
}
