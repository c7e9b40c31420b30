// Package theater holds the registry of scrapeable theaters: the upstream
// code and page slug each one is fetched by, and the zone its showtimes
// live in.  The built-in list can be replaced wholesale from a YAML file.
package theater

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Theater is one scrape target.
type Theater struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
	Slug string `yaml:"slug"`
	TZ   string `yaml:"tz"`
}

// Location resolves the theater's IANA zone.
func (t Theater) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(t.TZ)
	if err != nil {
		return nil, fmt.Errorf("theater %q: bad timezone %q: %w", t.Name, t.TZ, err)
	}
	return loc, nil
}

// Defaults is the built-in theater list.
func Defaults() []Theater {
	return []Theater{
		{Name: "AMC Methuen", Code: "aaoze", Slug: "amc-methuen-20-aaoze", TZ: "America/New_York"},
		{Name: "AMC Tyngsboro", Code: "aadxs", Slug: "amc-tyngsboro-12-aadxs", TZ: "America/New_York"},
		{Name: "AMC Boston Common", Code: "aapnv", Slug: "amc-boston-common-19-aapnv", TZ: "America/New_York"},
		{Name: "AMC Causeway", Code: "aayqs", Slug: "amc-causeway-13-aayqs", TZ: "America/New_York"},
		{Name: "Apple Hooksett", Code: "aauoc", Slug: "apple-cinemas-hooksett-imax-aauoc", TZ: "America/New_York"},
		{Name: "Apple Merrimack", Code: "aatgl", Slug: "apple-cinemas-merrimack-aatgl", TZ: "America/New_York"},
		{Name: "Showcase Randolph", Code: "aaeea", Slug: "showcase-cinemas-de-lux-randolph-aaeea", TZ: "America/New_York"},
		{Name: "O'Neil Epping", Code: "aawvb", Slug: "oneil-cinemas-at-brickyard-square-aawvb", TZ: "America/New_York"},
		{Name: "O'Neil Londonderry", Code: "aakgu", Slug: "oneil-cinemas-londonderry-aakgu", TZ: "America/New_York"},
	}
}

// Registry answers theater lookups by display name.
type Registry struct {
	byName map[string]Theater
	names  []string
}

// NewRegistry builds a registry over the given theaters.
func NewRegistry(theaters []Theater) *Registry {
	r := &Registry{byName: make(map[string]Theater, len(theaters))}
	for _, t := range theaters {
		if _, ok := r.byName[t.Name]; ok {
			continue
		}
		r.byName[t.Name] = t
		r.names = append(r.names, t.Name)
	}
	sort.Strings(r.names)
	return r
}

// LoadRegistry reads a YAML theater list from path.  An empty path returns
// the built-in defaults.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(Defaults()), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theaters file: %w", err)
	}
	var theaters []Theater
	if err := yaml.Unmarshal(data, &theaters); err != nil {
		return nil, fmt.Errorf("parse theaters file: %w", err)
	}
	if len(theaters) == 0 {
		return nil, fmt.Errorf("theaters file %s lists no theaters", path)
	}
	for _, t := range theaters {
		if t.Name == "" || t.Code == "" || t.TZ == "" {
			return nil, fmt.Errorf("theaters file %s: every entry needs name, code and tz", path)
		}
	}
	return NewRegistry(theaters), nil
}

// Get returns the theater registered under name.
func (r *Registry) Get(name string) (Theater, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the registered display names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
