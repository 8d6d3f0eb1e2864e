package scene

import (
	"errors"
	"fmt"
)

// ErrSceneNotFound is returned when data.bin cannot be located on any
// search path (§6/§7). Callers map it to exit code 666.
var ErrSceneNotFound = errors.New("scene: data.bin not found on any search path")

// MalformedScene reports an unrecoverable structural problem discovered
// while decoding a scene file: an attribute record whose discriminator is
// neither 0 (color) nor 1 (texture). §7 calls for this to be surfaced as a
// named initialization error rather than a bare process abort; callers map
// it to exit code 999 after logging the fields below.
type MalformedScene struct {
	Reason        string
	Discriminator uint32
	AttributeIdx  int
	ByteOffset    int64
}

func (e *MalformedScene) Error() string {
	return fmt.Sprintf("scene: malformed scene (%s): attribute %d at byte offset %d has discriminator %d",
		e.Reason, e.AttributeIdx, e.ByteOffset, e.Discriminator)
}
