package signals

import (
	"fmt"

	"github.com/rivo/uniseg"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Change counts characters (grapheme clusters) inserted and deleted between two texts.
type Change struct {
	Inserted int
	Deleted  int
}

// IsZero reports whether the texts were identical.
func (c Change) IsZero() bool {
	return c.Inserted == 0 && c.Deleted == 0
}

func (c Change) String() string {
	if c.IsZero() {
		return "no changes"
	}
	return fmt.Sprintf("+%d -%d", c.Inserted, c.Deleted)
}

// Summary diffs prev against cur.
func Summary(prev, cur string) Change {
	if prev == cur {
		return Change{}
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(prev, cur, false))

	var c Change
	for _, d := range diffs {
		n := uniseg.GraphemeClusterCount(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			c.Inserted += n
		case diffmatchpatch.DiffDelete:
			c.Deleted += n
		}
	}
	return c
}
