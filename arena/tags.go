package arena

import "fmt"

// Tag categorizes an allocation for diagnostic accounting. The set is
// closed: callers pick from the constants below rather than inventing new
// categories.
type Tag uint8

const (
	TagUnknown Tag = iota
	TagArray
	TagString
	TagStruct
	TagBuffer
	TagVector
	TagQueue
	TagHashTable
	TagEntity
	TagComponent
	TagArchetype
	TagChunk
	TagQuery
	TagScratch

	tagCount
)

const maxTags = 16

func init() {
	if tagCount > maxTags {
		panic("arena: tag enum exceeds maxTags")
	}
}

var tagNames = [tagCount]string{
	TagUnknown:   "unknown",
	TagArray:     "array",
	TagString:    "string",
	TagStruct:    "struct",
	TagBuffer:    "buffer",
	TagVector:    "vector",
	TagQueue:     "queue",
	TagHashTable: "hash_table",
	TagEntity:    "entity",
	TagComponent: "component",
	TagArchetype: "archetype",
	TagChunk:     "chunk",
	TagQuery:     "query",
	TagScratch:   "scratch",
}

// String returns the tag's diagnostic name.
func (t Tag) String() string {
	if int(t) < len(tagNames) && tagNames[t] != "" {
		return tagNames[t]
	}
	return "unknown"
}

// tagStats tracks live bytes per tag. Zero value is ready to use.
type tagStats struct {
	sizes [tagCount]uint64
}

// add increments the live-byte counter for tag by n.
func (s *tagStats) add(tag Tag, n uint64) {
	s.sizes[tag] += n
}

// sub decrements the live-byte counter for tag by n, saturating at 0.
func (s *tagStats) sub(tag Tag, n uint64) {
	if s.sizes[tag] < n {
		s.sizes[tag] = 0
		return
	}
	s.sizes[tag] -= n
}

// reset zeroes every tag counter.
func (s *tagStats) reset() {
	s.sizes = [tagCount]uint64{}
}

// Bytes returns the live-byte count currently attributed to tag.
func (s *tagStats) Bytes(tag Tag) uint64 {
	return s.sizes[tag]
}

// FormatStatistics renders one line per non-zero tag in the form
// "<name>: <value> <unit>\n", choosing Bytes/KB/MB/GB by magnitude.
func FormatStatistics(s *tagStats) string {
	out := ""
	for t := Tag(0); t < tagCount; t++ {
		n := s.sizes[t]
		if n == 0 {
			continue
		}
		out += fmt.Sprintf("%s: %s\n", t.String(), formatBytes(n))
	}
	return out
}

func formatBytes(n uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case n < kb:
		return fmt.Sprintf("%d Bytes", n)
	case n < mb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	case n < gb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	}
}
