package hello

import (
	"net/url"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// DefaultName is greeted when the name parameter is absent.
const DefaultName = "World"

// GetInput carries the optional name to greet.
type GetInput struct {
	Name string `query:"name" doc:"Name to greet, echoed verbatim" example:"Ada" default:"World"`
}

// Resolve applies DefaultName only when the parameter is missing. huma treats
// an empty value as missing, but ?name= must greet the empty string. When the
// parameter repeats, the last value wins.
func (i *GetInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	if name, ok := lastQueryValue(u.RawQuery, "name"); ok {
		i.Name = name
		return nil
	}
	i.Name = DefaultName
	return nil
}

// lastQueryValue returns the last value of key in rawQuery. Pairs are split
// on & only, so a literal ; stays part of the value. A value that fails to
// unescape is kept as sent.
func lastQueryValue(rawQuery, key string) (string, bool) {
	var (
		value string
		found bool
	)
	for pair := range strings.SplitSeq(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if uk, err := url.QueryUnescape(k); err == nil {
			k = uk
		}
		if k != key {
			continue
		}
		if uv, err := url.QueryUnescape(v); err == nil {
			v = uv
		}
		value, found = v, true
	}
	return value, found
}
