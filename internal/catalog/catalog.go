package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StreamDescriptor is one selectable stream row from the metadata dump.
// Descriptors are immutable once read from the catalog.
type StreamDescriptor struct {
	ID               string
	Note             string
	VideoCodec       string
	AudioCodec       string
	Height           int
	Width            int
	VideoBitrateKbps float64
	AudioBitrateKbps float64
	FPS              float64
	FilesizeApprox   int64
}

// IsAudioOnly reports whether the descriptor carries audio but no video.
func (d StreamDescriptor) IsAudioOnly() bool {
	return isNone(d.VideoCodec) && !isNone(d.AudioCodec)
}

// Catalog is the validated result of one metadata fetch.
type Catalog struct {
	Title       string
	ReleaseYear string
	Streams     []StreamDescriptor
}

// rawDump mirrors the subset of the yt-dlp single-JSON dump we consume. All
// "might be missing" handling lives here; downstream code sees validated
// descriptors only.
type rawDump struct {
	Title       string      `json:"title"`
	ReleaseDate string      `json:"release_date"`
	UploadDate  string      `json:"upload_date"`
	Formats     []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID       string  `json:"format_id"`
	FormatNote     string  `json:"format_note"`
	Ext            string  `json:"ext"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	VBR            float64 `json:"vbr"`
	ABR            float64 `json:"abr"`
	FPS            float64 `json:"fps"`
	FilesizeApprox int64   `json:"filesize_approx"`
	Filesize       int64   `json:"filesize"`
}

// Parse decodes a yt-dlp single-JSON metadata dump. Non-stream rows such as
// thumbnail/storyboard sheets are dropped; everything else becomes a
// StreamDescriptor in catalog order.
func Parse(data []byte) (*Catalog, error) {
	var dump rawDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("decode metadata dump: %w", err)
	}

	cat := &Catalog{
		Title:       strings.TrimSpace(dump.Title),
		ReleaseYear: extractYear(dump.ReleaseDate, dump.UploadDate),
	}
	for _, f := range dump.Formats {
		if !isStream(f) {
			continue
		}
		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}
		height := f.Height
		if height < 0 {
			height = 0
		}
		cat.Streams = append(cat.Streams, StreamDescriptor{
			ID:               strings.TrimSpace(f.FormatID),
			Note:             strings.TrimSpace(f.FormatNote),
			VideoCodec:       normalizeCodec(f.VCodec),
			AudioCodec:       normalizeCodec(f.ACodec),
			Height:           height,
			Width:            f.Width,
			VideoBitrateKbps: f.VBR,
			AudioBitrateKbps: f.ABR,
			FPS:              f.FPS,
			FilesizeApprox:   size,
		})
	}
	return cat, nil
}

// isStream filters out rows that cannot be downloaded as audio or video:
// storyboard thumbnail sheets and rows with neither codec populated.
func isStream(f rawFormat) bool {
	if strings.EqualFold(f.Ext, "mhtml") {
		return false
	}
	if strings.Contains(strings.ToLower(f.FormatNote), "storyboard") {
		return false
	}
	if isNone(f.VCodec) && isNone(f.ACodec) {
		return false
	}
	return strings.TrimSpace(f.FormatID) != ""
}

func normalizeCodec(codec string) string {
	codec = strings.TrimSpace(codec)
	if codec == "" {
		return "none"
	}
	return codec
}

func isNone(codec string) bool {
	return codec == "" || strings.EqualFold(codec, "none")
}

// extractYear returns the 4-digit year prefix of the release date, falling
// back to the upload date. Dates arrive as YYYYMMDD strings.
func extractYear(releaseDate, uploadDate string) string {
	for _, date := range []string{releaseDate, uploadDate} {
		date = strings.TrimSpace(date)
		if len(date) < 4 {
			continue
		}
		year := date[:4]
		if isDigits(year) {
			return year
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
