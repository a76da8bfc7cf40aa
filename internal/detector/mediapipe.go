package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// ErrNoScript is returned when the MediaPipe service script cannot be located.
var ErrNoScript = errors.New("mediapipe_service.py not found")

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
// Frames go out as length-prefixed JPEG, results come back as one JSON line.
type MediaPipeDetector struct {
	config    Config
	script    string
	log       *zap.Logger
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config, log *zap.Logger) (*MediaPipeDetector, error) {
	script := findMediaPipeScript()
	if script == "" {
		return nil, ErrNoScript
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		log:    log.Named("mediapipe"),
	}, nil
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return Frame{Timestamp: time.Now().UnixMilli()}, nil
	}

	if err := d.ensureStarted(); err != nil {
		return Frame{}, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return Frame{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return Frame{}, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return Frame{}, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		return Frame{}, fmt.Errorf("read response: %w", err)
	}

	result, err := parseResponse(line)
	if err != nil {
		return Frame{}, err
	}
	result.Timestamp = time.Now().UnixMilli()

	d.resetIdleTimer()

	return result, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.log.Info("mediapipe service started",
		zap.String("python", pythonPath),
		zap.String("script", d.script),
		zap.Int("max_hands", d.config.MaxHands))

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	d.log.Info("mediapipe service stopped")

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.config.IdleTimeoutSec <= 0 {
		return
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(time.Duration(d.config.IdleTimeoutSec)*time.Second, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.shutdown(); err != nil {
			d.log.Warn("idle shutdown", zap.Error(err))
		}
	})
}

// parseResponse decodes one JSON line from the service. Points beyond the
// 21 landmarks are ignored; missing points stay at the origin.
func parseResponse(line []byte) (Frame, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return Frame{}, fmt.Errorf("parse response: %w", err)
	}

	frame := Frame{Hands: make([]HandLandmarks, 0, len(response.Hands))}
	for _, h := range response.Hands {
		frame.Hands = append(frame.Hands, h.toHandLandmarks())
	}
	return frame, nil
}

func findMediaPipeScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/mediapipe_service.py"),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment
// next to the working directory, the executable or ~/.mudra.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	copy(lm.Points[:], h.Points)
	return lm
}
