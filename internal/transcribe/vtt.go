package transcribe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sameepv21/guide-ai/internal/model"
)

// ParseVTT parses WebVTT cues into segments measured in seconds. Cue
// identifiers, NOTE blocks and cue settings are ignored.
func ParseVTT(content string) ([]model.TranscriptSegment, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(strings.TrimSpace(content), "WEBVTT") {
		return nil, fmt.Errorf("invalid VTT format: missing WEBVTT header")
	}

	var segments []model.TranscriptSegment
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		timing := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timing = i
				break
			}
		}
		if timing < 0 {
			continue
		}
		bounds := strings.SplitN(lines[timing], "-->", 2)
		start, err := parseVTTTimestamp(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start timestamp: %w", err)
		}
		endField := strings.Fields(bounds[1])
		if len(endField) == 0 {
			return nil, fmt.Errorf("invalid end timestamp: empty")
		}
		end, err := parseVTTTimestamp(endField[0])
		if err != nil {
			return nil, fmt.Errorf("invalid end timestamp: %w", err)
		}
		segments = append(segments, model.TranscriptSegment{
			Start: start,
			End:   end,
			Text:  strings.Join(lines[timing+1:], " "),
		})
	}
	return segments, nil
}

// parseVTTTimestamp accepts HH:MM:SS.mmm and MM:SS.mmm.
func parseVTTTimestamp(ts string) (float64, error) {
	ts = strings.TrimSpace(ts)
	parts := strings.Split(ts, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp format: %q", ts)
	}
	secPart := parts[len(parts)-1]
	if !strings.Contains(secPart, ".") {
		return 0, fmt.Errorf("invalid timestamp format: missing milliseconds in %q", ts)
	}
	seconds, err := strconv.ParseFloat(secPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds: %w", err)
	}
	minutes, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes: %w", err)
	}
	hours := 0
	if len(parts) == 3 {
		hours, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("invalid hours: %w", err)
		}
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}
