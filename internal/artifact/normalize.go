package artifact

import (
	"github.com/tidwall/gjson"
)

// Field paths of the Sonatype Central component record. The schema is owned by
// the registry; the first path that yields a value of the right type wins.
var (
	pathID              = []string{"id"}
	pathGroupID         = []string{"namespace"}
	pathArtifactID      = []string{"name"}
	pathVersion         = []string{"latestVersionInfo.version", "version"}
	pathTimestamp       = []string{"latestVersionInfo.timestampUnixWithMS", "publishedEpochMillis"}
	pathDescription     = []string{"description"}
	pathLicenses        = []string{"latestVersionInfo.licenses", "licenses"}
	pathDependencyCount = []string{"dependentOnCount"}
	pathRefCount        = []string{"dependencyOfCount"}
	pathCategories      = []string{"categories"}
)

// IsRecord reports whether the raw component is a JSON object. Anything else
// (null, a scalar, an array) carries no fields at all.
func (r RawComponent) IsRecord() bool {
	return gjson.ValidBytes(r) && gjson.ParseBytes(r).IsObject()
}

// Normalize maps a raw registry record into Metadata. It never fails: absent,
// null or wrongly typed fields take their default (empty string, 0, empty
// slice, or UnknownVersion for the version).
func Normalize(raw RawComponent) Metadata {
	var rec gjson.Result
	if raw.IsRecord() {
		rec = gjson.ParseBytes(raw)
	}

	version := str(rec, pathVersion...)
	if version == "" {
		version = UnknownVersion
	}

	return Metadata{
		ID:              str(rec, pathID...),
		GroupID:         str(rec, pathGroupID...),
		ArtifactID:      str(rec, pathArtifactID...),
		LatestVersion:   version,
		Timestamp:       nonNegative(rec, pathTimestamp...),
		Description:     str(rec, pathDescription...),
		Licenses:        strs(rec, pathLicenses...),
		DependencyCount: nonNegative(rec, pathDependencyCount...),
		RefCount:        nonNegative(rec, pathRefCount...),
		Categories:      strs(rec, pathCategories...),
	}
}

func str(rec gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := rec.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func nonNegative(rec gjson.Result, paths ...string) int64 {
	for _, p := range paths {
		if v := rec.Get(p); v.Type == gjson.Number {
			if n := v.Int(); n > 0 {
				return n
			}
			return 0
		}
	}
	return 0
}

// strs always returns a non-nil slice so snapshots encode [] rather than null.
func strs(rec gjson.Result, paths ...string) []string {
	out := []string{}
	for _, p := range paths {
		v := rec.Get(p)
		if !v.IsArray() {
			continue
		}
		for _, item := range v.Array() {
			if item.Type == gjson.String && item.Str != "" {
				out = append(out, item.Str)
			}
		}
		return out
	}
	return out
}
