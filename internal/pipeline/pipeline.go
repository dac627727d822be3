// Package pipeline runs probe, segment, audio extraction and transcription
// for one video and assembles the ordered metadata payload.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sameepv21/guide-ai/internal/media"
	"github.com/sameepv21/guide-ai/internal/model"
	"github.com/sameepv21/guide-ai/internal/transcribe"
)

type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

type Segmenter interface {
	Materialize(ctx context.Context, sourcePath, workDir string, duration float64) (*media.Segmentation, error)
}

type AudioExtractor interface {
	Extract(ctx context.Context, sourcePath string, chunk media.Chunk) (string, error)
}

type Pipeline struct {
	prober      Prober
	segmenter   Segmenter
	extractor   AudioExtractor
	transcriber transcribe.Transcriber
	workers     int
	now         func() time.Time
}

type Option func(*Pipeline)

func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func New(prober Prober, segmenter Segmenter, extractor AudioExtractor, transcriber transcribe.Transcriber, opts ...Option) *Pipeline {
	p := &Pipeline{
		prober:      prober,
		segmenter:   segmenter,
		extractor:   extractor,
		transcriber: transcriber,
		workers:     runtime.NumCPU(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type Result struct {
	Duration     float64
	Chunked      bool
	Chunks       []media.Chunk
	ChunkSeconds []float64
	Metadata     *model.VideoMetadata
}

// Run processes sourcePath end to end. Chunks are extracted and transcribed
// concurrently; their results are appended in ordinal order. Any chunk
// failure cancels the remaining work and fails the whole run.
func (p *Pipeline) Run(ctx context.Context, videoID, sourcePath, workDir string) (*Result, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("video_id", videoID))
	start := p.now()

	duration, err := p.prober.Probe(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	seg, err := p.segmenter.Materialize(ctx, sourcePath, workDir, duration)
	if err != nil {
		return nil, err
	}
	logger.Info("video planned",
		zap.Float64("duration", duration),
		zap.Bool("chunked", seg.Chunked),
		zap.Int("chunks", len(seg.Chunks)),
	)

	assembler := NewAssembler(videoID, p.transcriber.Model(), len(seg.Chunks))
	chunkSeconds := make([]float64, len(seg.Chunks))
	seq := NewSequencer(func(ordinal int, tr model.ChunkTranscript) error {
		chunkSeconds[ordinal] = tr.ProcessingSeconds
		return assembler.Append(seg.Chunks[ordinal], tr)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, chunk := range seg.Chunks {
		chunk := chunk
		g.Go(func() error {
			tr, err := p.processChunk(gctx, sourcePath, chunk)
			if err != nil {
				logger.Error("process chunk failed", zap.Int("ordinal", chunk.Ordinal), zap.Error(err))
				return err
			}
			return seq.Submit(chunk.Ordinal, *tr)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	meta, err := assembler.Metadata()
	if err != nil {
		return nil, fmt.Errorf("assemble metadata: %w", err)
	}
	logger.Info("video transcribed",
		zap.Float64("processing_duration", meta.ProcessingDuration),
		zap.Duration("elapsed", p.now().Sub(start)),
	)
	return &Result{
		Duration:     duration,
		Chunked:      seg.Chunked,
		Chunks:       seg.Chunks,
		ChunkSeconds: chunkSeconds,
		Metadata:     meta,
	}, nil
}

func (p *Pipeline) processChunk(ctx context.Context, sourcePath string, chunk media.Chunk) (*model.ChunkTranscript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := p.now()
	audioPath, err := p.extractor.Extract(ctx, sourcePath, chunk)
	if err != nil {
		return nil, err
	}
	res, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", chunk.Ordinal, err)
	}
	elapsed := p.now().Sub(start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return &model.ChunkTranscript{
		ChunkOrdinal:      chunk.Ordinal,
		AudioPath:         audioPath,
		FullText:          res.Text,
		Segments:          globalize(res.Segments, chunk.Start),
		ProcessingSeconds: elapsed,
	}, nil
}
