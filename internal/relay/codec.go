package relay

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/tonsky/tonsky.me/internal/cursor"
	"github.com/tonsky/tonsky.me/internal/domain"
)

// DecodeSnapshot parses [[id,x,y,platform],...]. Tuples that do not carry three
// numbers, or whose id is not an integer within int64, are skipped and counted.
// Coordinates are clamped to [0, CoordScale]; the platform is optional.
func DecodeSnapshot(data []byte) (entries []cursor.Entry, skipped int, err error) {
	var tuples []json.RawMessage
	if err := json.Unmarshal(data, &tuples); err != nil {
		return nil, 0, fmt.Errorf("relay snapshot: %w: %v", domain.ErrMalformedMessage, err)
	}

	entries = make([]cursor.Entry, 0, len(tuples))
	for _, raw := range tuples {
		e, ok := decodeTuple(raw)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}

func decodeTuple(raw json.RawMessage) (cursor.Entry, bool) {
	var fields []any
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) < 3 {
		return cursor.Entry{}, false
	}

	var nums [3]float64
	for i := range nums {
		n, ok := fields[i].(float64)
		if !ok {
			return cursor.Entry{}, false
		}
		nums[i] = n
	}

	id := nums[0]
	if id != math.Trunc(id) || id < math.MinInt64 || id >= math.MaxInt64 {
		return cursor.Entry{}, false
	}

	e := cursor.Entry{ID: int64(id), X: clampCoord(nums[1]), Y: clampCoord(nums[2])}
	if len(fields) > 3 {
		if p, ok := fields[3].(string); ok {
			e.Platform = domain.Platform(p)
		}
	}
	return e, true
}

// clampCoord bounds v before the integer conversion, which is undefined for
// values outside the int range.
func clampCoord(v float64) int {
	return int(min(max(v, 0), domain.CoordScale))
}

func EncodeSample(x, y int) ([]byte, error) {
	return json.Marshal([2]int{x, y})
}
