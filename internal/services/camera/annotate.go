package camera

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"crossline-worker-go/internal/models"
)

var (
	boxColor   = color.RGBA{R: 0, G: 220, B: 60, A: 0}
	lineColor  = color.RGBA{R: 230, G: 40, B: 40, A: 0}
	textColor  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	panelColor = color.RGBA{R: 0, G: 0, B: 0, A: 0}
)

// EncodeJPEG converts a raw BGR frame to JPEG.
func EncodeJPEG(frame *models.Frame, quality int) ([]byte, error) {
	mat, err := matFromFrame(frame)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	return encodeMat(mat, quality)
}

// AnnotateJPEG renders track boxes, the counting line and the current
// counters onto a copy of the snapshot's frame and encodes it as JPEG.
func AnnotateJPEG(snap *frameSnapshot, quality int) ([]byte, error) {
	mat, err := matFromFrame(snap.frame)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	for _, track := range snap.tracks {
		rect := image.Rect(
			int(track.Box.X), int(track.Box.Y),
			int(track.Box.X+track.Box.W), int(track.Box.Y+track.Box.H),
		)
		gocv.Rectangle(&mat, rect, boxColor, 2)
		gocv.PutText(&mat, fmt.Sprintf("#%d", track.ID),
			image.Pt(rect.Min.X, rect.Min.Y-6),
			gocv.FontHersheySimplex, 0.5, boxColor, 1)
	}

	if snap.line != nil {
		a := image.Pt(
			int(snap.line.A.X*float64(snap.frame.Width)),
			int(snap.line.A.Y*float64(snap.frame.Height)),
		)
		b := image.Pt(
			int(snap.line.B.X*float64(snap.frame.Width)),
			int(snap.line.B.Y*float64(snap.frame.Height)),
		)
		gocv.Line(&mat, a, b, lineColor, 2)
	}

	// Counter panel in the top-left corner
	label := fmt.Sprintf("in: %d  out: %d", snap.peopleIn, snap.peopleOut)
	gocv.Rectangle(&mat, image.Rect(4, 4, 170, 28), panelColor, -1)
	gocv.PutText(&mat, label, image.Pt(10, 22), gocv.FontHersheySimplex, 0.55, textColor, 1)

	return encodeMat(mat, quality)
}

func matFromFrame(frame *models.Frame) (gocv.Mat, error) {
	if frame == nil || len(frame.Data) != frame.Width*frame.Height*3 {
		return gocv.Mat{}, fmt.Errorf("frame buffer does not match dimensions")
	}
	return gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
}

func encodeMat(mat gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	defer buf.Close()

	// GetBytes returns a view over the native buffer freed by Close.
	encoded := buf.GetBytes()
	out := make([]byte, len(encoded))
	copy(out, encoded)
	return out, nil
}
