package dataset

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tags a column with the scaling it is eligible for.
type Kind int

const (
	KindRaw         Kind = iota // kept as-is
	KindZScore                  // rolling z-score only
	KindRatio                   // ratio-of-shift only
	KindZScoreRatio             // rolling z-score, then ratio-of-shift of the result
	KindCategorical             // discretized buckets, never scaled
)

var kindNames = map[Kind]string{
	KindRaw:         "raw",
	KindZScore:      "zscore",
	KindRatio:       "ratio",
	KindZScoreRatio: "zscore_ratio",
	KindCategorical: "categorical",
}

// String returns the schema name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a schema name back to a Kind.
func ParseKind(s string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == needle {
			return k, nil
		}
	}
	return KindRaw, fmt.Errorf("unknown column kind %q", s)
}

// ZScore reports whether the rolling z-score applies.
func (k Kind) ZScore() bool {
	return k == KindZScore || k == KindZScoreRatio
}

// Ratio reports whether the ratio-of-shift transform applies.
func (k Kind) Ratio() bool {
	return k == KindRatio || k == KindZScoreRatio
}

// KindFromName decodes the legacy naming convention used by feature files
// written without a schema: a trailing '0' opts out of the z-score and a '0'
// in the second-to-last position opts out of the ratio transform.
func KindFromName(name string) Kind {
	zscore := !(len(name) >= 1 && name[len(name)-1] == '0')
	ratio := !(len(name) >= 2 && name[len(name)-2] == '0')
	switch {
	case zscore && ratio:
		return KindZScoreRatio
	case zscore:
		return KindZScore
	case ratio:
		return KindRatio
	default:
		return KindRaw
	}
}

// MarshalYAML writes the kind by name.
func (k Kind) MarshalYAML() (interface{}, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("cannot marshal %s", k)
	}
	return k.String(), nil
}

// UnmarshalYAML reads a kind written by MarshalYAML.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseKind(value.Value)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
