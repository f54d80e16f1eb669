package geo

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// MMDBResolver answers lookups from local MaxMind databases instead of the remote batch
// service. The ASN database is optional.
type MMDBResolver struct {
	countryDB *geoip2.Reader
	asnDB     *geoip2.Reader
}

// OpenMMDB opens a GeoIP2/GeoLite2 country (or city) database and, if asnPath is set, an ASN
// database.
func OpenMMDB(countryPath, asnPath string) (*MMDBResolver, error) {
	countryDB, err := readerFromDisk(countryPath)
	if err != nil {
		return nil, fmt.Errorf("open country database: %w", err)
	}
	r := &MMDBResolver{countryDB: countryDB}
	if asnPath != "" {
		asnDB, err := readerFromDisk(asnPath)
		if err != nil {
			countryDB.Close()
			return nil, fmt.Errorf("open asn database: %w", err)
		}
		r.asnDB = asnDB
	}
	return r, nil
}

func readerFromDisk(filename string) (*geoip2.Reader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return geoip2.FromBytes(data)
}

// Resolve looks up each address in order. Unparseable or unknown addresses get a failure
// result.
func (r *MMDBResolver) Resolve(ctx context.Context, addrs []string) ([]Result, error) {
	out := make([]Result, 0, len(addrs))
	for _, addr := range addrs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, r.lookup(addr))
	}
	return out, nil
}

func (r *MMDBResolver) lookup(addr string) Result {
	ip := net.ParseIP(addr)
	if ip == nil {
		return failure(addr, "invalid query")
	}
	record, err := r.countryDB.Country(ip)
	if err != nil {
		return failure(addr, err.Error())
	}
	if record.Country.IsoCode == "" {
		return failure(addr, "reserved range")
	}
	res := Result{
		Status:      StatusSuccess,
		Query:       addr,
		Country:     record.Country.Names["en"],
		CountryCode: record.Country.IsoCode,
	}
	if r.asnDB != nil {
		if asn, err := r.asnDB.ASN(ip); err == nil && asn.AutonomousSystemNumber != 0 {
			res.AS = fmt.Sprintf("AS%d %s", asn.AutonomousSystemNumber, asn.AutonomousSystemOrganization)
			res.Org = asn.AutonomousSystemOrganization
			res.ISP = asn.AutonomousSystemOrganization
		}
	}
	return res
}

// Close releases the database readers.
func (r *MMDBResolver) Close() error {
	var err error
	if r.asnDB != nil {
		err = r.asnDB.Close()
	}
	if cerr := r.countryDB.Close(); cerr != nil {
		err = cerr
	}
	return err
}
