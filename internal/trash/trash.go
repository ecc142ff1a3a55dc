// Package trash carries the subset of TRaSH-Guides data easiarr applies
// during provisioning: unwanted-release custom formats with their scores,
// and the recommended naming schemes. The tables are compiled in; IDs and
// scores follow the published guides so an app configured by easiarr matches
// one configured by hand.
package trash

// Format is one custom format plus the score easiarr assigns to it in the
// default quality profile.
type Format struct {
	// TrashID is the stable identifier from the guides, used to recognize
	// a format that already exists regardless of local renames.
	TrashID string
	Name    string
	Score   int64

	Specifications []Specification
}

// Specification mirrors the *arr custom-format condition shape.
type Specification struct {
	Name           string
	Implementation string
	Negate         bool
	Required       bool
	// Fields carries implementation-specific values, almost always a
	// single "value" entry holding a regex.
	Fields map[string]any
}

func releaseTitleSpec(name, pattern string) Specification {
	return Specification{
		Name:           name,
		Implementation: "ReleaseTitleSpecification",
		Required:       true,
		Fields:         map[string]any{"value": pattern},
	}
}

// ScoreSet returns trashID -> score for a format table.
func ScoreSet(formats []Format) map[string]int64 {
	out := make(map[string]int64, len(formats))
	for _, f := range formats {
		out[f.TrashID] = f.Score
	}
	return out
}
