package service

import (
	"context"
	"fmt"

	"github.com/sameepv21/guide-ai/internal/model"
)

// Responder produces the assistant answer for one query about a video.
type Responder interface {
	Respond(ctx context.Context, video *model.Video, query string) (*model.ChatResponse, error)
}

// TemplateResponder answers every query with the same canned analysis.
type TemplateResponder struct{}

func NewTemplateResponder() *TemplateResponder {
	return &TemplateResponder{}
}

const (
	frameOne   = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMTAwIiBoZWlnaHQ9IjEwMCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMTAwIiBoZWlnaHQ9IjEwMCIgZmlsbD0iIzMzMyIvPjx0ZXh0IHg9IjUwIiB5PSI1MCIgdGV4dC1hbmNob3I9Im1pZGRsZSIgZmlsbD0iI2ZmZiI+RnJhbWUgMTwvdGV4dD48L3N2Zz4="
	frameTwo   = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMTAwIiBoZWlnaHQ9IjEwMCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMTAwIiBoZWlnaHQ9IjEwMCIgZmlsbD0iIzQ0NCIvPjx0ZXh0IHg9IjUwIiB5PSI1MCIgdGV4dC1hbmNob3I9Im1pZGRsZSIgZmlsbD0iI2ZmZiI+RnJhbWUgMjwvdGV4dD48L3N2Zz4="
	frameThree = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMTAwIiBoZWlnaHQ9IjEwMCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMTAwIiBoZWlnaHQ9IjEwMCIgZmlsbD0iIzU1NSIvPjx0ZXh0IHg9IjUwIiB5PSI1MCIgdGV4dC1hbmNob3I9Im1pZGRsZSIgZmlsbD0iI2ZmZiI+RnJhbWUgMzwvdGV4dD48L3N2Zz4="
)

func (r *TemplateResponder) Respond(ctx context.Context, video *model.Video, query string) (*model.ChatResponse, error) {
	return &model.ChatResponse{
		Response: fmt.Sprintf("Based on the video analysis, here's what I found regarding your query: '%s'. "+
			"The video shows relevant content that addresses your question. "+
			"Key insights include understanding of the main topic, visual elements, and contextual information.", query),
		Reasoning: "I analyzed the video frame by frame, extracting visual features and understanding the context. " +
			"The analysis involved scene detection, object recognition, and temporal understanding to provide a comprehensive answer to your query.",
		KeyFrames: []model.KeyFrame{
			{Timestamp: "00:15", Frame: frameOne, Description: "Opening scene showing the main subject"},
			{Timestamp: "00:45", Frame: frameTwo, Description: "Key moment demonstrating the concept"},
			{Timestamp: "01:20", Frame: frameThree, Description: "Conclusion and summary"},
		},
		Timestamps: []model.TimestampNote{
			{Time: "00:00 - 00:30", Description: "Introduction and context setting"},
			{Time: "00:30 - 01:00", Description: "Main content and explanation"},
			{Time: "01:00 - 01:30", Description: "Examples and demonstrations"},
			{Time: "01:30 - 02:00", Description: "Summary and key takeaways"},
		},
	}, nil
}
