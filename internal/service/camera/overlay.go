package camera

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"cinemaguard/internal/model"
)

var (
	overlayGreen  = color.RGBA{G: 255}
	overlayYellow = color.RGBA{R: 255, G: 255}
	overlayRed    = color.RGBA{R: 255}
)

// DrawDetections renders enriched detections on a JPEG frame: the box color
// tracks the risk score (green below 0.5, yellow below the high-risk
// threshold, red at or above it), labelled with zone, dwell and risk.
func DrawDetections(frame []byte, detections []model.EnrichedDetection, highRiskThreshold float64) ([]byte, error) {
	if len(detections) == 0 {
		return frame, nil
	}

	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	defer mat.Close()

	for _, det := range detections {
		boxColor := overlayGreen
		if det.RiskScore >= highRiskThreshold {
			boxColor = overlayRed
		} else if det.RiskScore >= 0.5 {
			boxColor = overlayYellow
		}

		rect := image.Rect(det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2)
		if err := gocv.Rectangle(&mat, rect, boxColor, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %w", err)
		}

		label := fmt.Sprintf("Zone %s | %.1fs | Risk %.2f", det.Zone, det.Duration, det.RiskScore)
		pt := image.Pt(det.Box.X1, det.Box.Y1-5)
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.5, boxColor, 2); err != nil {
			return nil, fmt.Errorf("failed to draw label: %w", err)
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
