package grouping

import "github.com/flemzord/chatlist/pkg/message"

// Cache holds the per-position millis and sender names of a conversation.
// Both slices always have the same length; every method keeps them aligned.
//
// Cache is not safe for concurrent use. The owning list serializes access.
type Cache struct {
	Engine Engine

	millis []int64
	names  []string
}

// NewCache returns an empty cache that evaluates with engine.
func NewCache(engine Engine) *Cache {
	return &Cache{Engine: engine}
}

// Len returns the number of cached positions.
func (c *Cache) Len() int {
	return len(c.millis)
}

// At returns the cached millis and sender name at position i.
func (c *Cache) At(i int) (int64, string) {
	return c.millis[i], c.names[i]
}

// Stamp evaluates rec against the last cached entry, writes the resulting
// flags into rec and appends rec's millis and name to the cache. Records must
// be stamped in sequence order.
func (c *Cache) Stamp(rec *message.Record, millis int64) Flags {
	in := Input{
		Position: len(c.millis),
		Millis:   millis,
		IsSender: rec.IsSender,
		Name:     rec.SenderName,
	}
	if n := len(c.millis); n > 0 {
		in.PrevMillis = c.millis[n-1]
		in.PrevName = c.names[n-1]
	}

	f := c.Engine.Evaluate(in)
	rec.TimeVisible = f.TimeVisible
	rec.NameVisible = f.NameVisible

	c.millis = append(c.millis, millis)
	c.names = append(c.names, rec.SenderName)
	return f
}

// RemoveAt drops the entry at position i.
func (c *Cache) RemoveAt(i int) {
	c.millis = append(c.millis[:i], c.millis[i+1:]...)
	c.names = append(c.names[:i], c.names[i+1:]...)
}

// Repair recomputes the flags of rec, the record that moved into position i
// after a removal. removedTimeVisible is the TimeVisible flag of the record
// that was removed: a header it carried is inherited by its successor. The
// name is re-compared against the new neighbour at i-1. Repair reports
// whether either flag changed.
func (c *Cache) Repair(rec *message.Record, i int, removedTimeVisible bool) bool {
	millis, name := c.At(i)

	timeVisible := i == 0 || removedTimeVisible
	prevName := ""
	if i > 0 {
		prevMillis, n := c.At(i - 1)
		prevName = n
		if !timeVisible {
			timeVisible = c.Engine.TimeVisible(i, millis, prevMillis)
		}
	}
	nameVisible := NameVisible(i, rec.IsSender, name, prevName)

	changed := rec.TimeVisible != timeVisible || rec.NameVisible != nameVisible
	rec.TimeVisible = timeVisible
	rec.NameVisible = nameVisible
	return changed
}

// Reset empties the cache, keeping the allocated capacity.
func (c *Cache) Reset() {
	c.millis = c.millis[:0]
	c.names = c.names[:0]
}
