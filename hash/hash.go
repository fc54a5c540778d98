// Package hash implements the string and word n-gram hashes used to map
// subwords and word sequences into the hashing buckets of the input matrix.
package hash

const (
	offset32 = 2166136261
	prime32  = 16777619

	// ngramMultiplier mixes consecutive word ids into a word n-gram hash.
	ngramMultiplier = 116049371
)

// String hashes s with 32-bit FNV-1a.
//
// Each byte is sign extended before mixing, so bytes >= 0x80 (any
// non-ASCII UTF-8 byte) hash the way a signed char would. Models trained
// elsewhere with the same convention map n-grams to the same buckets.
func String(s string) uint32 {
	var h uint32 = offset32
	for i := 0; i < len(s); i++ {
		h ^= uint32(int8(s[i]))
		h *= prime32
	}
	return h
}

// Bucket reduces the string hash of s into [0, buckets).
func Bucket(s string, buckets int32) int32 {
	if buckets <= 0 {
		return 0
	}
	return int32(String(s) % uint32(buckets))
}

// Start begins a word n-gram hash with the first word id.
func Start(id int32) uint64 {
	return uint64(int64(id))
}

// Mix extends a word n-gram hash h by the next word id.
func Mix(h uint64, id int32) uint64 {
	return h*ngramMultiplier + uint64(int64(id))
}
