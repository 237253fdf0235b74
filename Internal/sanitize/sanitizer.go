package sanitize

import (
	"fmt"
	"math"
	"sort"

	"github.com/tidemark/signalforge/Internal/types"
	"github.com/tidemark/signalforge/Internal/utils/formatting"
)

// Anomaly buckets reported by Clean.
const (
	BucketInvalid      = "invalid"
	BucketZeroVolume   = "zero-volume"
	BucketBadTimestamp = "bad-timestamp"
	BucketDuplicate    = "duplicate-timestamp"
)

// Anomaly records one rejected or suspicious input bar.
type Anomaly struct {
	Bucket string
	Index  int
	Detail string
}

// Result of sanitizing one raw bar sequence. When Insufficient is
// true callers must not evaluate; the clean bars are still returned
// for diagnostics.
type Result struct {
	Bars         []types.Bar
	Anomalies    []Anomaly
	Insufficient bool
}

// Clean validates a raw bar sequence for a trading style. Bars with
// non-finite or non-positive prices, broken OHLC ordering, negative
// volume, or unparsable timestamps are dropped; zero-volume bars are
// kept but counted. Survivors are sorted ascending by time and
// duplicate timestamps collapse to the first occurrence.
func Clean(raw []types.RawBar, style types.Style) Result {
	res := Result{}

	for i, rb := range raw {
		if !validPrices(rb) {
			res.Anomalies = append(res.Anomalies, Anomaly{
				Bucket: BucketInvalid,
				Index:  i,
				Detail: fmt.Sprintf("ohlc o=%v h=%v l=%v c=%v", rb.Open, rb.High, rb.Low, rb.Close),
			})
			continue
		}
		if rb.Volume < 0 || math.IsNaN(rb.Volume) || math.IsInf(rb.Volume, 0) {
			res.Anomalies = append(res.Anomalies, Anomaly{
				Bucket: BucketInvalid,
				Index:  i,
				Detail: fmt.Sprintf("volume %v", rb.Volume),
			})
			continue
		}

		ts := formatting.ParseTimestamp(rb.Timestamp)
		if ts.IsZero() {
			res.Anomalies = append(res.Anomalies, Anomaly{
				Bucket: BucketBadTimestamp,
				Index:  i,
				Detail: rb.Timestamp,
			})
			continue
		}

		if rb.Volume == 0 {
			res.Anomalies = append(res.Anomalies, Anomaly{
				Bucket: BucketZeroVolume,
				Index:  i,
			})
		}

		res.Bars = append(res.Bars, types.Bar{
			Time:   ts,
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		})
	}

	sort.Slice(res.Bars, func(i, j int) bool {
		return res.Bars[i].Time.Before(res.Bars[j].Time)
	})

	// Collapse duplicate timestamps, keeping the first occurrence so
	// the survivor sequence is strictly increasing.
	deduped := res.Bars[:0]
	for i, bar := range res.Bars {
		if i > 0 && bar.Time.Equal(deduped[len(deduped)-1].Time) {
			res.Anomalies = append(res.Anomalies, Anomaly{
				Bucket: BucketDuplicate,
				Index:  i,
				Detail: bar.Time.Format("2006-01-02T15:04:05Z07:00"),
			})
			continue
		}
		deduped = append(deduped, bar)
	}
	res.Bars = deduped

	res.Insufficient = len(res.Bars) < style.MinBars()
	return res
}

// Count returns how many anomalies fell into a bucket.
func (r Result) Count(bucket string) int {
	n := 0
	for _, a := range r.Anomalies {
		if a.Bucket == bucket {
			n++
		}
	}
	return n
}

func validPrices(rb types.RawBar) bool {
	for _, v := range []float64{rb.Open, rb.High, rb.Low, rb.Close} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if rb.High < rb.Open || rb.High < rb.Close {
		return false
	}
	if rb.Low > rb.Open || rb.Low > rb.Close {
		return false
	}
	return true
}
