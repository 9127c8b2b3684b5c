package domain

import (
	"fmt"
	"strings"
)

// ZoneKey is the compound identity of a drop zone: "areaId:zoneName", or
// RootZone for the top-level container.
type ZoneKey string

const RootZone ZoneKey = "root"

func NewZoneKey(areaID, zoneName string) ZoneKey {
	return ZoneKey(areaID + ":" + zoneName)
}

// ParseZoneKey splits a compound key. The root zone has no area or name.
func ParseZoneKey(s string) (ZoneKey, string, string, error) {
	if s == "" || s == string(RootZone) {
		return RootZone, "", "", nil
	}
	area, name, ok := strings.Cut(s, ":")
	if !ok || area == "" || name == "" {
		return "", "", "", fmt.Errorf("invalid zone key %q: want areaId:zoneName", s)
	}
	return ZoneKey(s), area, name, nil
}

func (k ZoneKey) IsRoot() bool {
	return k == RootZone || k == ""
}

// ZoneFilter restricts which component types a zone accepts. An empty Allow
// list accepts everything not disallowed.
type ZoneFilter struct {
	Allow    []ComponentType `json:"allow,omitempty"`
	Disallow []ComponentType `json:"disallow,omitempty"`
}
