package services

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"factbook-dashboard/backend/system"

	"github.com/oschwald/geoip2-golang"
)

// GeoIPService resolves a client address to a country name using a MaxMind
// country database. Without a database every lookup misses.
type GeoIPService struct {
	mu     sync.RWMutex
	reader *geoip2.Reader
	dbPath string
}

// GeoLite English names that the Factbook spells differently.
var factbookNames = map[string]string{
	"south korea":                      "Korea, South",
	"north korea":                      "Korea, North",
	"czechia":                          "Czech Republic",
	"myanmar":                          "Burma",
	"ivory coast":                      "Cote d'Ivoire",
	"congo republic":                   "Congo, Republic of the",
	"dr congo":                         "Congo, Democratic Republic of the",
	"bahamas":                          "Bahamas, The",
	"gambia":                           "Gambia, The",
	"cabo verde":                       "Cape Verde",
	"eswatini":                         "Swaziland",
	"north macedonia":                  "Macedonia",
	"micronesia":                       "Micronesia, Federated States of",
	"st kitts and nevis":               "Saint Kitts and Nevis",
	"st vincent and grenadines":        "Saint Vincent and the Grenadines",
	"hashemite kingdom of jordan":      "Jordan",
	"republic of lithuania":            "Lithuania",
	"republic of moldova":              "Moldova",
	"islamic republic of iran":         "Iran",
	"syrian arab republic":             "Syria",
	"lao people's democratic republic": "Laos",
}

// NewGeoIPService opens the database at dbPath. An empty path disables lookups.
func NewGeoIPService(dbPath string) (*GeoIPService, error) {
	g := &GeoIPService{dbPath: dbPath}
	if dbPath == "" {
		system.Info("GeoIP disabled (no database configured)")
		return g, nil
	}
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return g, fmt.Errorf("failed to open GeoIP database %s: %w", dbPath, err)
	}
	g.reader = reader
	system.Info("GeoIP database loaded: %s", dbPath)
	return g, nil
}

func (g *GeoIPService) Enabled() bool {
	if g == nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reader != nil
}

// CountryName returns the Factbook spelling of the country ip is located in.
// Private, loopback and unparseable addresses never resolve.
func (g *GeoIPService) CountryName(ipStr string) (string, bool) {
	if !g.Enabled() {
		return "", false
	}
	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return "", false
	}

	g.mu.RLock()
	record, err := g.reader.Country(ip)
	g.mu.RUnlock()
	if err != nil {
		system.Debug("GeoIP lookup failed for %s: %v", ipStr, err)
		return "", false
	}
	name := record.Country.Names["en"]
	if name == "" {
		return "", false
	}
	return FactbookName(name), true
}

// FactbookName maps a GeoLite English country name to the Factbook spelling.
func FactbookName(name string) string {
	if alias, ok := factbookNames[strings.ToLower(name)]; ok {
		return alias
	}
	return name
}

func (g *GeoIPService) Close() error {
	if g == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reader == nil {
		return nil
	}
	err := g.reader.Close()
	g.reader = nil
	return err
}
