package backend

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/hyp3rd/hyperstats/pkg/stats"
)

const fingerprintPrefix = "report:"

// Fingerprint derives the cache key of a sample set computed with variant.
// It hashes the IEEE-754 bits of every sample in order, so -0 and +0 or differently ordered
// inputs map to different keys; the reports they produce echo different ReceivedNumbers.
func Fingerprint(values []float64, variant stats.Variant) string {
	digest := xxhash.New()

	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(len(values)))
	_, _ = digest.Write(buf[:])

	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = digest.Write(buf[:])
	}

	return fingerprintPrefix + variant.String() + ":" + strconv.FormatUint(digest.Sum64(), 16)
}
