package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/floostack/transcoder"
	"github.com/floostack/transcoder/ffmpeg"
)

// StreamInfo is what a transform needs to know about the input video.
type StreamInfo struct {
	Width        int
	Height       int
	FrameRateNum int
	FrameRateDen int
}

// Prober inspects a media file.
type Prober func(ctx context.Context, path string) (*StreamInfo, error)

// FfprobeProber returns a Prober backed by the ffprobe binary at bin.
func FfprobeProber(bin string) Prober {
	return func(_ context.Context, path string) (*StreamInfo, error) {
		metadata, err := ffmpeg.New(&ffmpeg.Config{FfprobeBinPath: bin}).Input(path).GetMetadata()
		if err != nil {
			return nil, fmt.Errorf("failed to extract file metadata information using ffprobe: %s", err.Error())
		}
		return videoStreamInfo(metadata)
	}
}

// videoStreamInfo picks the first video stream of the probe result.
func videoStreamInfo(metadata transcoder.Metadata) (*StreamInfo, error) {
	for _, stream := range metadata.GetStreams() {
		if stream.GetCodecType() != "video" {
			continue
		}
		// r_frame_rate is only exposed on the concrete ffprobe stream.
		s, ok := stream.(ffmpeg.Streams)
		if !ok {
			return nil, fmt.Errorf("unexpected stream type %T", stream)
		}
		num, den, err := ParseFrameRate(s.RFrameRrate)
		if err != nil {
			return nil, err
		}
		return &StreamInfo{
			Width:        stream.GetWidth(),
			Height:       stream.GetHeight(),
			FrameRateNum: num,
			FrameRateDen: den,
		}, nil
	}
	return nil, fmt.Errorf("no video stream found")
}

// ParseFrameRate splits an ffprobe rational such as "30000/1001".
func ParseFrameRate(rate string) (num, den int, err error) {
	n, d, ok := strings.Cut(strings.TrimSpace(rate), "/")
	if !ok {
		d = "1"
	}
	num, err = strconv.Atoi(n)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid frame rate %q: %w", rate, err)
	}
	den, err = strconv.Atoi(d)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid frame rate %q: %w", rate, err)
	}
	if num <= 0 || den <= 0 {
		return 0, 0, fmt.Errorf("invalid frame rate %q", rate)
	}
	return num, den, nil
}
