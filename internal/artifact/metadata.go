package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// UnknownVersion is the version reported when a record carries none
const UnknownVersion = "unknown"

var (
	// ErrBlankCoordinate is returned when the group id or artifact id is empty
	ErrBlankCoordinate = errors.New("group id and artifact id must not be empty")

	// ErrUnsafeCoordinate is returned when a coordinate cannot be mapped to a path below the output root
	ErrUnsafeCoordinate = errors.New("coordinate cannot be mapped to a safe path")
)

// RawComponent is a single undecoded component record as returned by the registry
type RawComponent []byte

// Coordinate uniquely identifies a package in the registry
type Coordinate struct {
	GroupID    string
	ArtifactID string
}

// String returns the coordinate in the usual groupId:artifactId form
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID
}

// Validate checks that the coordinate is non-blank and maps to a path that stays
// below the directory it is joined to.
func (c Coordinate) Validate() error {
	if c.GroupID == "" || c.ArtifactID == "" {
		return ErrBlankCoordinate
	}
	for _, segment := range strings.Split(c.GroupID, ".") {
		if !safeSegment(segment) {
			return fmt.Errorf("%w: group id %q", ErrUnsafeCoordinate, c.GroupID)
		}
	}
	if !safeSegment(c.ArtifactID) || c.ArtifactID == "." {
		return fmt.Errorf("%w: artifact id %q", ErrUnsafeCoordinate, c.ArtifactID)
	}
	return nil
}

// Dir returns the relative directory for the coordinate: the group id with
// every '.' turned into a path separator. "org.mybatis" becomes "org/mybatis".
func (c Coordinate) Dir() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(strings.Split(c.GroupID, ".")...), nil
}

// RelPath returns Dir joined with the artifact id and the given extension.
func (c Coordinate) RelPath(ext string) (string, error) {
	dir, err := c.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.ArtifactID+ext), nil
}

func safeSegment(s string) bool {
	if s == "" || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`+"\x00")
}

// Metadata is the normalized description of one artifact. Values are
// produced fresh per registry page and never mutated afterwards.
type Metadata struct {
	ID              string   `json:"id"`
	GroupID         string   `json:"group_id"`
	ArtifactID      string   `json:"artifact_id"`
	LatestVersion   string   `json:"latest_version"`
	Timestamp       int64    `json:"timestamp"`
	Description     string   `json:"description"`
	Licenses        []string `json:"licenses"`
	DependencyCount int64    `json:"dependency_count"`
	RefCount        int64    `json:"ref_count"`
	Categories      []string `json:"categories"`
}

// Coordinate returns the coordinate of the artifact
func (m Metadata) Coordinate() Coordinate {
	return Coordinate{GroupID: m.GroupID, ArtifactID: m.ArtifactID}
}
