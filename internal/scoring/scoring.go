package scoring

import (
	"math"
	"strings"

	"tubeget/internal/catalog"
)

// CodecClass is the tagged classification of a video codec string. Every
// consumer dispatches on this enum; raw codec strings never leave Classify.
type CodecClass int

const (
	CodecOther CodecClass = iota
	CodecH264
	CodecVP9
	CodecAV1
)

func (c CodecClass) String() string {
	switch c {
	case CodecAV1:
		return "AV1"
	case CodecVP9:
		return "VP9"
	case CodecH264:
		return "H.264"
	default:
		return "Other"
	}
}

// Multiplier models compression efficiency: a lower raw bitrate on a more
// efficient codec can outrank a higher raw bitrate on a less efficient one.
func (c CodecClass) Multiplier() float64 {
	switch c {
	case CodecAV1:
		return 1.30
	case CodecVP9:
		return 1.00
	case CodecH264:
		return 0.80
	default:
		return 0.60
	}
}

// Bonus is the fixed codec award added on top of the bitrate points.
func (c CodecClass) Bonus() float64 {
	switch c {
	case CodecAV1:
		return 100
	case CodecVP9:
		return 75
	case CodecH264:
		return 50
	default:
		return 25
	}
}

// Classify maps a raw video codec identifier to its class. Both legacy ("vp9",
// "h264") and RFC 6381 ("vp09.*", "avc1.*", "av01.*") spellings are handled.
func Classify(videoCodec string) CodecClass {
	codec := strings.ToLower(strings.TrimSpace(videoCodec))
	switch {
	case strings.Contains(codec, "av01"):
		return CodecAV1
	case strings.Contains(codec, "vp9"), strings.Contains(codec, "vp09"):
		return CodecVP9
	case strings.Contains(codec, "avc1"), strings.Contains(codec, "h264"):
		return CodecH264
	default:
		return CodecOther
	}
}

// Breakdown is the derived score of one stream descriptor. Never persisted;
// recomputed per run.
type Breakdown struct {
	PremiumPoints    float64
	ResolutionPoints float64
	BitratePoints    float64
	CodecPoints      float64
	FPSPoints        float64
	CodecName        string
	CodecMultiplier  float64
	Total            int
}

// Score assigns a deterministic total in [0, 1450] to one descriptor. It is
// pure: the listing display and the automatic selection both call it and must
// never disagree on the winner. Audio-only descriptors always score 0.
func Score(d catalog.StreamDescriptor) Breakdown {
	if d.IsAudioOnly() {
		return Breakdown{}
	}

	class := Classify(d.VideoCodec)
	b := Breakdown{
		ResolutionPoints: resolutionPoints(d.Height),
		CodecPoints:      class.Bonus(),
		FPSPoints:        fpsPoints(d.FPS),
		CodecName:        class.String(),
		CodecMultiplier:  class.Multiplier(),
	}
	if strings.Contains(d.Note, "Premium") {
		b.PremiumPoints = 300
	}
	if d.VideoBitrateKbps > 0 {
		// Floored, so 1656 kbps at 1.00 yields exactly 331 points.
		b.BitratePoints = math.Floor(math.Min(600, d.VideoBitrateKbps*class.Multiplier()/5))
	}
	sum := b.PremiumPoints + b.ResolutionPoints + b.BitratePoints + b.CodecPoints + b.FPSPoints
	b.Total = int(math.Round(sum))
	if b.Total > maxTotal {
		b.Total = maxTotal
	}
	return b
}

// maxTotal caps the score so totals stay comparable across releases of the
// heuristic. Only a premium 4K AV1 stream at full bitrate points gets near it.
const maxTotal = 1450

// resolutionPoints is piecewise-linear and monotonic non-decreasing in height.
func resolutionPoints(height int) float64 {
	h := float64(height)
	switch {
	case height >= 2160:
		return 600
	case height >= 1440:
		return 550
	case height >= 1080:
		// Capped so the linear ramp never overtakes the 1440 bracket.
		return math.Min(500+(h-1080)/4, 550)
	case height >= 720:
		return 400 + (h-720)/4
	case height >= 480:
		return 250 + (h-480)/3
	default:
		return h / 2
	}
}

func fpsPoints(fps float64) float64 {
	switch {
	case fps >= 60:
		return 50
	case fps >= 50:
		return 40
	case fps >= 30:
		return 30
	case fps > 0:
		return fps
	default:
		return 0
	}
}

// ScoredStream pairs a descriptor with its breakdown, preserving catalog
// order so selection tie-breaks stay stable.
type ScoredStream struct {
	Stream    catalog.StreamDescriptor
	Breakdown Breakdown
}

// ScoreAll scores every descriptor in catalog order.
func ScoreAll(streams []catalog.StreamDescriptor) []ScoredStream {
	scored := make([]ScoredStream, 0, len(streams))
	for _, s := range streams {
		scored = append(scored, ScoredStream{Stream: s, Breakdown: Score(s)})
	}
	return scored
}
