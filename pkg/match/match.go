// Package match pairs an opening directive with its else and close directives.
package match

import "github.com/mpyw/ifcollapse/pkg/directive"

// Record is a directive tagged with its nesting level relative to the start.
type Record struct {
	Node  *directive.Node
	Level int
}

// Block walks nodes in order and collects every directive from start through
// its matching close. The start is recorded at level 1 and the matching close
// at level 0. Else directives are recorded at the current level.
//
// If start is not in nodes the result is nil. If the block never closes the
// result has no level-0 record.
func Block(nodes []*directive.Node, start *directive.Node) []Record {
	var records []Record
	level := 0
	started := false

	for _, n := range nodes {
		if !started {
			if n == start && n.Kind == directive.Open {
				level = 1
				records = append(records, Record{Node: n, Level: level})
				started = true
			}
			continue
		}

		switch n.Kind {
		case directive.Open:
			level++
			records = append(records, Record{Node: n, Level: level})
		case directive.Else:
			if level > 0 {
				records = append(records, Record{Node: n, Level: level})
			}
		case directive.Close:
			level--
			records = append(records, Record{Node: n, Level: level})
			if level == 0 {
				return records
			}
		}
	}

	return records
}

// Close returns the matching close of a block, which is only ever the final
// record.
func Close(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	last := records[len(records)-1]
	if last.Level != 0 || last.Node.Kind != directive.Close {
		return Record{}, false
	}
	return last, true
}

// Elses returns the else records at the given level.
func Elses(records []Record, level int) []Record {
	var elses []Record
	for _, r := range records {
		if r.Node.Kind == directive.Else && r.Level == level {
			elses = append(elses, r)
		}
	}
	return elses
}
