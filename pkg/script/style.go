package script

import "maps"

// StyleSheet resolves presentation rules for a selector. The selector is the
// exact tag string the backend was registered under.
type StyleSheet interface {
	Rules(selector string) map[string]string
}

// MapStyleSheet is a StyleSheet backed by a map from selector to attributes.
type MapStyleSheet map[string]map[string]string

// Rules implements StyleSheet.
func (s MapStyleSheet) Rules(selector string) map[string]string {
	return maps.Clone(s[selector])
}

type noStyles struct{}

func (noStyles) Rules(string) map[string]string { return nil }
