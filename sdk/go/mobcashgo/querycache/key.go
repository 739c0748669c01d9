package querycache

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Filters is anything that can describe itself as query parameters.
// The models package filter types implement it.
type Filters interface {
	Values() url.Values
}

// Key identifies one cache entry: a resource tag plus a normalized parameter set.
// Two filter values that differ only in unset fields produce equal keys.
type Key struct {
	Resource string
	Params   string
}

// NewKey normalizes params and builds the key for resource. Empty values are
// dropped; url.Values.Encode sorts by parameter name so order never matters.
func NewKey(resource string, params url.Values) Key {
	return Key{Resource: resource, Params: Normalize(params).Encode()}
}

// KeyFor builds the key for a filter value. A nil filter is the empty set.
func KeyFor(resource string, f Filters) Key {
	if f == nil {
		return NewKey(resource, nil)
	}
	return NewKey(resource, f.Values())
}

// Normalize returns a copy of params without empty keys or empty values.
func Normalize(params url.Values) url.Values {
	out := url.Values{}
	for name, values := range params {
		if strings.TrimSpace(name) == "" {
			continue
		}
		for _, v := range values {
			if v == "" {
				continue
			}
			out.Add(name, v)
		}
	}
	return out
}

// Values parses the normalized parameters back.
func (k Key) Values() url.Values {
	v, err := url.ParseQuery(k.Params)
	if err != nil {
		return url.Values{}
	}
	return v
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "?" + k.Params
}

// Fingerprint is a stable 64-bit hash of the key.
func (k Key) Fingerprint() uint64 {
	return xxhash.Sum64String(k.String())
}

// ID is the fingerprint rendered as 16 hex digits, used in logs.
func (k Key) ID() string {
	return fmt.Sprintf("%016x", k.Fingerprint())
}
