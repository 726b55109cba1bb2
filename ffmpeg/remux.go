package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
)

// RemuxJoin merges a video elementary stream and an optional audio
// elementary stream into a single MP4 container without re-encoding.
// A nil audio stream produces a video-only copy.
func (e *Engine) RemuxJoin(ctx context.Context, video, audio []byte) ([]byte, error) {
	cleanup := []string{"video.ts", "output.mp4"}
	defer func() {
		for _, name := range cleanup {
			e.DeleteFile(name)
		}
	}()

	if err := e.WriteFile("video.ts", video); err != nil {
		return nil, err
	}

	argv := []string{"-i", "video.ts"}
	if audio != nil {
		cleanup = append(cleanup, "audio.ts")
		if err := e.WriteFile("audio.ts", audio); err != nil {
			return nil, err
		}
		argv = append(argv, "-i", "audio.ts")
	}
	argv = append(argv, "-c", "copy", "output.mp4")

	if err := e.Run(ctx, argv...); err != nil {
		return nil, fmt.Errorf("remux join: %w", err)
	}

	return e.ReadFile("output.mp4")
}

// ByteRangeRemux reassembles already-downloaded container fragments into a
// standard playable MP4. The fragments (init segment first, when present)
// are concatenated as raw bytes since they are container fragments of one
// source file, not independently playable streams, then repackaged in two
// stream-copy stages: fragmented MP4 to MKV, MKV to MP4.
func (e *Engine) ByteRangeRemux(ctx context.Context, segments [][]byte) ([]byte, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("byte-range remux: no segments")
	}

	cleanup := []string{"concatenated.m4s", "live.mkv", "live.mp4"}
	defer func() {
		for _, name := range cleanup {
			e.DeleteFile(name)
		}
	}()

	var joined bytes.Buffer
	for _, segment := range segments {
		joined.Write(segment)
	}

	if err := e.WriteFile("concatenated.m4s", joined.Bytes()); err != nil {
		return nil, err
	}

	if err := e.Run(ctx, "-i", "concatenated.m4s", "-c", "copy", "live.mkv"); err != nil {
		return nil, fmt.Errorf("byte-range remux: %w", err)
	}
	if err := e.Run(ctx, "-i", "live.mkv", "-codec", "copy", "live.mp4"); err != nil {
		return nil, fmt.Errorf("byte-range remux: %w", err)
	}

	return e.ReadFile("live.mp4")
}
