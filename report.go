package wallscene

import (
	"errors"
	"fmt"
)

// Dropped records an object left out of a frame.
type Dropped struct {
	ID     int64
	Name   string
	Reason error
}

func (d Dropped) String() string {
	return fmt.Sprintf("object %d (%q): %v", d.ID, d.Name, d.Reason)
}

// Report summarises how a scene turned into draws.
type Report struct {
	// Objects is the number of objects in the document.
	Objects int
	// Queued is the number of objects that resolved.
	Queued int
	// Drawn is the number of quads written to the buffers. It is less than
	// Queued only when the frame ran out of capacity.
	Drawn   int
	Dropped []Dropped
}

// DroppedBy counts dropped objects whose reason matches target.
func (r Report) DroppedBy(target error) int {
	n := 0
	for _, d := range r.Dropped {
		if errors.Is(d.Reason, target) {
			n++
		}
	}
	return n
}
