package extract

import "fmt"

// Transform maps the position of a selector match to the index of the record
// it belongs to.
type Transform func(j int) int

// Identity assigns match j to record j.
func Identity(j int) int {
	return j
}

// Pair collapses two consecutive matches onto one record: matches 2k and
// 2k+1 both target record k, so the second of a pair wins.
func Pair(j int) int {
	return j / 2
}

// TransformByName resolves the names used in selector files.
func TransformByName(name string) (Transform, error) {
	switch name {
	case "", "identity":
		return Identity, nil
	case "pair":
		return Pair, nil
	default:
		return nil, fmt.Errorf("unknown index transform %q", name)
	}
}
