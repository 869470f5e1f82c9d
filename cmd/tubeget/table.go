package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tubeget/internal/scoring"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// catalogTable renders the scored stream listing. Audio-only rows show no
// score; the bitrate column shows whichever of the video or audio bitrate is
// populated.
func catalogTable(scored []scoring.ScoredStream) string {
	headers := []string{"ID", "Resolution", "FPS", "Codec", "Bitrate", "Size", "Note", "Score"}
	rows := make([][]string, 0, len(scored))
	for _, candidate := range scored {
		stream := candidate.Stream
		resolution := "audio only"
		codec := stream.AudioCodec
		if !stream.IsAudioOnly() {
			resolution = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
			codec = scoring.Classify(stream.VideoCodec).String()
		}
		fps := ""
		if stream.FPS > 0 {
			fps = strconv.Itoa(int(stream.FPS))
		}
		bitrate := stream.VideoBitrateKbps
		if bitrate == 0 {
			bitrate = stream.AudioBitrateKbps
		}
		bitrateText := ""
		if bitrate > 0 {
			bitrateText = fmt.Sprintf("%.0fk", bitrate)
		}
		size := ""
		if stream.FilesizeApprox > 0 {
			size = humanize.IBytes(uint64(stream.FilesizeApprox))
		}
		score := ""
		if candidate.Breakdown.Total > 0 {
			score = strconv.Itoa(candidate.Breakdown.Total)
		}
		rows = append(rows, []string{
			stream.ID, resolution, fps, codec, bitrateText, size, stream.Note, score,
		})
	}
	aligns := []columnAlignment{
		alignLeft, alignRight, alignRight, alignLeft, alignRight, alignRight, alignLeft, alignRight,
	}
	return renderTable(headers, rows, aligns)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
