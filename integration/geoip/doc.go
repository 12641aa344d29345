// Package geoip provides a MaxMind-backed country resolver for the failban
// country gate.
//
// Open loads a GeoLite2 or GeoIP2 country database from disk and returns a
// Resolver whose Country method satisfies failban.Resolver. Lookups that find
// no match return an empty country code with no error, so the gate's
// unknown-country policy applies.
//
// Usage:
//
//	resolver, err := geoip.Open(cfg.Geo.DatabasePath)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer resolver.Close()
//
//	mgr, err := failban.New(cfg, failban.WithResolver(resolver))
package geoip
