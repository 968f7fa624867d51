package memory

import (
	"strings"
	"sync/atomic"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tag classifies tracked allocations for the usage report.
type Tag int

const (
	TagUnknown Tag = iota
	TagLinearAllocator
	TagApplication
	TagGame
	TagRenderer
	TagEvent

	tagCount
)

var tagNames = [tagCount]string{
	"UNKNOWN",
	"LINEAR_ALLC",
	"APPLICATION",
	"GAME",
	"RENDERER",
	"EVENT",
}

func (t Tag) String() string {
	if t < 0 || t >= tagCount {
		return tagNames[TagUnknown]
	}
	return tagNames[t]
}

var (
	totalBytes  atomic.Int64
	taggedBytes [tagCount]atomic.Int64
)

// Track records size bytes as in use under tag.
func Track(tag Tag, size uint64) {
	if tag < 0 || tag >= tagCount {
		tag = TagUnknown
	}
	taggedBytes[tag].Add(int64(size))
	totalBytes.Add(int64(size))
}

// Untrack releases bytes recorded with Track.
func Untrack(tag Tag, size uint64) {
	if tag < 0 || tag >= tagCount {
		tag = TagUnknown
	}
	taggedBytes[tag].Add(-int64(size))
	totalBytes.Add(-int64(size))
}

// Usage returns the bytes currently tracked under tag.
func Usage(tag Tag) int64 {
	if tag < 0 || tag >= tagCount {
		return 0
	}
	return taggedBytes[tag].Load()
}

// UsageString formats the per tag usage in the largest fitting unit.
func UsageString() string {
	p := message.NewPrinter(language.English)

	var sb strings.Builder
	sb.WriteString("System memory use (tagged):\n")
	for tag := Tag(0); tag < tagCount; tag++ {
		amount, unit := humanBytes(taggedBytes[tag].Load())
		sb.WriteString(p.Sprintf("  %-12s: %.2f %s\n", tag.String(), amount, unit))
	}
	amount, unit := humanBytes(totalBytes.Load())
	sb.WriteString(p.Sprintf("  %-12s: %.2f %s\n", "TOTAL", amount, unit))
	return sb.String()
}

func humanBytes(n int64) (float64, string) {
	const (
		kib = 1024
		mib = kib * 1024
		gib = mib * 1024
	)
	switch {
	case n >= gib:
		return float64(n) / gib, "GiB"
	case n >= mib:
		return float64(n) / mib, "MiB"
	case n >= kib:
		return float64(n) / kib, "KiB"
	}
	return float64(n), "B"
}
