// Package opengraph computes Open Graph metadata for a rendered page and
// writes it as <meta> tags into the document head.
//
// A Resolver runs a priority-ordered chain of providers for every property
// and returns an ordered Metadata map. Emit (or the MetaTags component)
// serializes that map, declaring the og: namespace once per page through a
// RenderState.
package opengraph

import "strings"

// NamespaceURI is the URI bound to the og: prefix.
const NamespaceURI = "http://ogp.me/ns#"

// Property is an Open Graph property name without its og: prefix.
type Property string

const (
	Title         Property = "title"
	Type          Property = "type"
	Image         Property = "image"
	URL           Property = "url"
	SiteName      Property = "site_name"
	Description   Property = "description"
	Longitude     Property = "longitude"
	Latitude      Property = "latitude"
	StreetAddress Property = "street-address"
	Locality      Property = "locality"
	Region        Property = "region"
	PostalCode    Property = "postal-code"
	CountryName   Property = "country-name"
	Email         Property = "email"
	PhoneNumber   Property = "phone_number"
	FaxNumber     Property = "fax_number"
)

var properties = []Property{
	// required
	Title, Type, Image, URL,

	// optional
	SiteName, Description,

	// location
	Longitude, Latitude, StreetAddress, Locality, Region, PostalCode, CountryName,

	// contact
	Email, PhoneNumber, FaxNumber,
}

// Properties returns every known property in declaration order.
func Properties() []Property {
	out := make([]Property, len(properties))
	copy(out, properties)
	return out
}

// Key returns the namespaced metadata key, e.g. "og:title".
func (p Property) Key() string {
	return "og:" + string(p)
}

// Valid reports whether p is one of the known properties.
func (p Property) Valid() bool {
	for _, known := range properties {
		if p == known {
			return true
		}
	}
	return false
}

// ParseProperty maps "title" or "og:title" to its Property.
func ParseProperty(s string) (Property, bool) {
	p := Property(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "og:"))
	if !p.Valid() {
		return "", false
	}
	return p, true
}
