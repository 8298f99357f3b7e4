package ai

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"cinemaguard/internal/logger"
	"cinemaguard/internal/model"
)

// DetectorService runs an SSD MobileNet COCO network over JPEG frames and
// returns raw detections. Class filtering and confidence thresholds are the
// tracking engine's concern; the detector reports everything the net found
// above a small floor to keep the output size sane.
type DetectorService struct {
	net        gocv.Net
	modelPath  string
	configPath string
	logger     *logger.Logger
}

// reportFloor drops near-zero network outputs before they reach the engine.
const reportFloor = 0.1

// NewDetectorService creates a detector with model/config paths and a logger.
// It attempts to initialize the underlying DNN network.
func NewDetectorService(modelPath, configPath string, logger *logger.Logger) *DetectorService {
	service := &DetectorService{
		modelPath:  modelPath,
		configPath: configPath,
		logger:     logger,
	}

	if err := service.initializeNet(); err != nil {
		service.logger.Warning("Could not initialize detection network: %v", err)
		return service
	}

	return service
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.configPath)
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)

	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)

	if errBackend != nil || errTarget != nil {
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.logger.Info("Detection network initialized successfully")
	return nil
}

// Ready reports whether the network is loaded.
func (s *DetectorService) Ready() bool {
	return !s.net.Empty()
}

// Detect runs the DNN on a JPEG frame and returns raw detections in pixel
// coordinates.
func (s *DetectorService) Detect(frame []byte) ([]model.Detection, error) {
	if s.net.Empty() {
		return nil, fmt.Errorf("detection network not initialized")
	}

	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("decoded image is empty")
	}

	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	var results []model.Detection

	// Output rows: [ batch_id, class_id, confidence, x1, y1, x2, y2 ]
	outputReshaped := output.Reshape(1, output.Total()/7)
	for i := 0; i < outputReshaped.Rows(); i++ {
		confidence := float64(outputReshaped.GetFloatAt(i, 2))
		if confidence < reportFloor {
			continue
		}

		classID := int(outputReshaped.GetFloatAt(i, 1))
		x1 := int(outputReshaped.GetFloatAt(i, 3) * float32(mat.Cols()))
		y1 := int(outputReshaped.GetFloatAt(i, 4) * float32(mat.Rows()))
		x2 := int(outputReshaped.GetFloatAt(i, 5) * float32(mat.Cols()))
		y2 := int(outputReshaped.GetFloatAt(i, 6) * float32(mat.Rows()))

		results = append(results, model.Detection{
			Box:        model.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2},
			Confidence: confidence,
			ClassID:    classID,
		})
	}

	return results, nil
}

// Close releases the network.
func (s *DetectorService) Close() {
	if !s.net.Empty() {
		s.net.Close()
	}
}
