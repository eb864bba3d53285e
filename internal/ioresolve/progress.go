package ioresolve

import (
	"fmt"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/gnames/gntaxon/pkg/gntaxon"
)

// RateMsg is the progress line of a run. Only resolved records count
// towards the rate.
func RateMsg(st gntaxon.Stats) string {
	return ProgressMsg(st.Resolved, st.Elapsed)
}

// ProgressMsg formats the resolution rate as
// "[rate] taxon/s over [elapsed] s". Both numbers are rounded half up to
// two decimals.
func ProgressMsg(count int, elapsed time.Duration) string {
	ms := elapsed.Milliseconds()
	var rate int64
	if ms > 0 {
		// hundredths of taxa per second
		rate = (int64(count)*200_000 + ms) / (2 * ms)
	}
	secs := (ms + 5) / 10
	return fmt.Sprintf("[%s] taxon/s over [%s] s", hundredths(rate), hundredths(secs))
}

func hundredths(n int64) string {
	return fmt.Sprintf("%d.%02d", n/100, n%100)
}

func newProgressBar(total int) *pb.ProgressBar {
	bar := pb.Full.Start(total)
	bar.Set("prefix", "resolving ")
	bar.Set(pb.CleanOnFinish, true)
	return bar
}
