package group

import (
	"strings"

	"github.com/trustify-project/catalogd/internal/apierr"
)

// MaxPathDepth bounds the number of `/`-separated segments GetByPath will
// walk before rejecting the request (spec.md §6, configurable via
// config.Config.MaxPathDepth; this package-level default matches it).
const MaxPathDepth = 20

// DecodePath splits a URL-decoded group path into its segments. `\/` is a
// literal `/` within a segment, `\\` is a literal `\`; any other escape,
// an empty segment, or a trailing `/` is rejected (spec.md §6, §8
// scenario 13: depth checked before any DB query).
func DecodePath(raw string, maxDepth int) ([]string, error) {
	if raw == "" {
		return nil, apierr.New(apierr.BadRequest, "empty path")
	}
	if strings.HasSuffix(raw, "/") {
		return nil, apierr.New(apierr.BadRequest, "trailing slash in path")
	}

	var segments []string
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			if i+1 >= len(raw) || (raw[i+1] != '/' && raw[i+1] != '\\') {
				return nil, apierr.New(apierr.BadRequest, "invalid escape in path")
			}
			b.WriteByte(raw[i+1])
			i++
		case '/':
			segments = append(segments, b.String())
			b.Reset()
		default:
			b.WriteByte(raw[i])
		}
	}
	segments = append(segments, b.String())

	if len(segments) > maxDepth {
		return nil, apierr.New(apierr.BadRequest, "path depth %d exceeds maximum %d", len(segments), maxDepth)
	}
	for _, s := range segments {
		if s == "" {
			return nil, apierr.New(apierr.BadRequest, "empty path segment")
		}
	}
	return segments, nil
}

// EncodePath renders segments back into the escaped path form DecodePath
// accepts, round-tripping modulo URL-encoding normalization (spec.md §8).
func EncodePath(segments []string) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, "/", `\/`)
		parts[i] = s
	}
	return strings.Join(parts, "/")
}
