package camera

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"crossline-worker-go/internal/models"
)

// ErrEndOfStream is returned by a FrameSource when a finite source (file
// replay) has no more frames. It is a clean stop, not a failure.
var ErrEndOfStream = errors.New("end of stream")

// SourceKind discriminates how a camera's source string is interpreted.
type SourceKind int

const (
	SourceLocalDevice SourceKind = iota
	SourceNetworkStream
	SourceFileReplay
)

// Source is a camera source resolved once at worker start, so the frame
// loop never branches on source-type strings.
type Source struct {
	Kind        SourceKind
	DeviceIndex int
	URL         string
	Path        string
}

// ResolveSource classifies a raw source string: a bare integer is a local
// device index, a URL with a streaming scheme is a network stream, and
// anything else is treated as a video file path.
func ResolveSource(raw string) Source {
	raw = strings.TrimSpace(raw)

	if idx, err := strconv.Atoi(raw); err == nil {
		return Source{Kind: SourceLocalDevice, DeviceIndex: idx}
	}

	lower := strings.ToLower(raw)
	for _, scheme := range []string{"rtsp://", "rtmp://", "http://", "https://", "tcp://", "udp://"} {
		if strings.HasPrefix(lower, scheme) {
			return Source{Kind: SourceNetworkStream, URL: raw}
		}
	}

	return Source{Kind: SourceFileReplay, Path: raw}
}

func (s Source) String() string {
	switch s.Kind {
	case SourceLocalDevice:
		return fmt.Sprintf("device:%d", s.DeviceIndex)
	case SourceNetworkStream:
		return s.URL
	default:
		return s.Path
	}
}

// FrameSource yields frames in acquisition order. Next blocks until a
// frame is available, the context is cancelled, or the source fails.
type FrameSource interface {
	Next(ctx context.Context) (*models.Frame, error)
	Close() error
}

// SourceOpener opens a FrameSource for a resolved source. The registry
// injects OpenCapture in production; tests inject fakes.
type SourceOpener func(cameraID string, src Source) (FrameSource, error)

// OpenCapture opens an OpenCV VideoCapture for the source.
func OpenCapture(cameraID string, src Source) (FrameSource, error) {
	var (
		cap *gocv.VideoCapture
		err error
	)

	switch src.Kind {
	case SourceLocalDevice:
		cap, err = gocv.OpenVideoCapture(src.DeviceIndex)
	case SourceNetworkStream:
		cap, err = gocv.OpenVideoCapture(src.URL)
	default:
		cap, err = gocv.VideoCaptureFile(src.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", src, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("video capture is not opened for source %s", src)
	}

	// Minimal buffer for live sources keeps latency low
	if src.Kind != SourceFileReplay {
		cap.Set(gocv.VideoCaptureBufferSize, 1)
	}

	log.Info().
		Str("camera_id", cameraID).
		Str("source", src.String()).
		Float64("fps", cap.Get(gocv.VideoCaptureFPS)).
		Float64("width", cap.Get(gocv.VideoCaptureFrameWidth)).
		Float64("height", cap.Get(gocv.VideoCaptureFrameHeight)).
		Msg("VideoCapture opened")

	return &captureSource{
		cameraID: cameraID,
		src:      src,
		cap:      cap,
		img:      gocv.NewMat(),
	}, nil
}

type captureSource struct {
	cameraID string
	src      Source
	cap      *gocv.VideoCapture
	img      gocv.Mat
	frameID  int64
	misses   int
}

// maxConsecutiveMisses bounds how many empty reads a live source may
// produce before the worker treats it as failed.
const maxConsecutiveMisses = 10

func (c *captureSource) Next(ctx context.Context) (*models.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if ok := c.cap.Read(&c.img); !ok || c.img.Empty() {
			if c.src.Kind == SourceFileReplay {
				return nil, ErrEndOfStream
			}
			c.misses++
			if c.misses >= maxConsecutiveMisses {
				return nil, fmt.Errorf("too many consecutive read failures (%d) from %s", c.misses, c.src)
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		c.misses = 0
		c.frameID++

		return &models.Frame{
			CameraID:  c.cameraID,
			Data:      c.img.ToBytes(),
			Width:     c.img.Cols(),
			Height:    c.img.Rows(),
			FrameID:   c.frameID,
			Timestamp: time.Now(),
		}, nil
	}
}

func (c *captureSource) Close() error {
	c.img.Close()
	return c.cap.Close()
}
