package agent

import "context"

// TextRepetitionCheckInterval and TextRepetitionWindow are the defaults
// from spec §6 ("Streaming chunk size... Text-repetition check interval:
// 50 characters; window: 4000 characters").
const (
	TextRepetitionCheckInterval = 50
	TextRepetitionWindow        = 4000
)

// probeLengths are the three rolling-hash probe lengths the detector tries
// per check (spec §4.5).
var probeLengths = [3]int{1, 4, 20}

const rollingHashBase = 1000003

// TextRepetitionDetector wraps a streaming text sink, watching for short-
// horizon token loops via a rolling-hash probe over the trailing window,
// and aborts the in-flight request when it finds one (spec §4.5).
//
// It must be cheap per call: the spec requires the streamed text sink to
// be non-blocking "small bounded work". The detector only re-scans every
// TextRepetitionCheckInterval appended characters.
type TextRepetitionDetector struct {
	buf            []byte
	sinceLastCheck int
	cancel         context.CancelFunc
}

// NewTextRepetitionDetector returns a detector whose abort calls cancel
// when a repetition is found. cancel should belong to a local cancellation
// source chained to (but distinct from) the parent's, per spec §5: "The
// text-repetition governor uses a local cancellation source chained to the
// parent so its abort does not pollute the parent state."
func NewTextRepetitionDetector(cancel context.CancelFunc) *TextRepetitionDetector {
	return &TextRepetitionDetector{cancel: cancel}
}

// Append feeds newly streamed text into the detector. It returns a non-nil
// *LoopError (unwrapping to ErrTextRepetition) the moment a repetition
// crosses the period-dependent threshold, having already invoked cancel.
func (d *TextRepetitionDetector) Append(chunk string) *LoopError {
	d.buf = append(d.buf, chunk...)
	if len(d.buf) > TextRepetitionWindow {
		d.buf = d.buf[len(d.buf)-TextRepetitionWindow:]
	}
	d.sinceLastCheck += len(chunk)
	if d.sinceLastCheck < TextRepetitionCheckInterval {
		return nil
	}
	d.sinceLastCheck = 0

	if period, ok := findRepeatingPeriod(d.buf); ok {
		count := consecutiveBlocks(d.buf, period)
		if count >= repeatThreshold(period) {
			if d.cancel != nil {
				d.cancel()
			}
			return &LoopError{
				Phase: PhaseStream,
				Cause: ErrTextRepetition,
				Partial: string(d.buf),
			}
		}
	}
	return nil
}

// repeatThreshold returns the period-dependent consecutive-block count
// required to treat a repeat as pathological rather than coincidental
// (spec §4.5: ">=10 for p<5, >=5 for p<20, >=3 for p<50, >=2 otherwise").
func repeatThreshold(period int) int {
	switch {
	case period < 5:
		return 10
	case period < 20:
		return 5
	case period < 50:
		return 3
	default:
		return 2
	}
}

// findRepeatingPeriod looks, at each of the three probe lengths, for the
// most recent pair of equal substrings within buf; the distance between
// their start positions is a candidate period, verified bit-for-bit over
// the two trailing windows of that length (spec §4.5).
func findRepeatingPeriod(buf []byte) (period int, ok bool) {
	for _, probeLen := range probeLengths {
		if p, found := probeForPeriod(buf, probeLen); found {
			if verifyPeriod(buf, p) {
				return p, true
			}
		}
	}
	return 0, false
}

// probeForPeriod hashes every probeLen-length substring of buf with a
// rolling hash and, scanning start positions from the end of the buffer,
// returns the distance of the first pair of equal-hashed (and byte-equal, to
// rule out collisions) substrings it meets, so the repeat nearest the end is
// found first. That distance is not necessarily the smallest in the buffer.
func probeForPeriod(buf []byte, probeLen int) (int, bool) {
	n := len(buf)
	if probeLen <= 0 || n < probeLen*2 {
		return 0, false
	}

	hashes := rollingHashes(buf, probeLen)

	seen := make(map[uint64][]int, len(hashes))
	for pos := len(hashes) - 1; pos >= 0; pos-- {
		h := hashes[pos]
		for _, prevPos := range seen[h] {
			if bytesEqual(buf, pos, prevPos, probeLen) {
				return prevPos - pos, true
			}
		}
		seen[h] = append(seen[h], pos)
	}
	return 0, false
}

// rollingHashes returns the polynomial rolling hash of every length-width
// substring of buf, computed incrementally in O(len(buf)).
func rollingHashes(buf []byte, width int) []uint64 {
	n := len(buf)
	if n < width {
		return nil
	}
	out := make([]uint64, n-width+1)

	var pow uint64 = 1
	for i := 0; i < width-1; i++ {
		pow *= rollingHashBase
	}

	var h uint64
	for i := 0; i < width; i++ {
		h = h*rollingHashBase + uint64(buf[i])
	}
	out[0] = h

	for i := width; i < n; i++ {
		h -= uint64(buf[i-width]) * pow
		h = h*rollingHashBase + uint64(buf[i])
		out[i-width+1] = h
	}
	return out
}

func bytesEqual(buf []byte, a, b, length int) bool {
	for i := 0; i < length; i++ {
		if buf[a+i] != buf[b+i] {
			return false
		}
	}
	return true
}

// verifyPeriod checks bit-for-bit that the two trailing windows of length
// period are equal (spec §4.5: "Verify bit-for-bit that the two trailing
// windows of length p are equal").
func verifyPeriod(buf []byte, period int) bool {
	n := len(buf)
	if period <= 0 || n < period*2 {
		return false
	}
	a := buf[n-period:]
	b := buf[n-2*period : n-period]
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// consecutiveBlocks walks backward from the end of buf in blocks of length
// period, counting how many consecutive blocks are identical.
func consecutiveBlocks(buf []byte, period int) int {
	n := len(buf)
	count := 1
	for start := n - 2*period; start >= 0; start -= period {
		if !bytesEqual(buf, start, start+period, period) {
			break
		}
		count++
	}
	return count
}
