// Package onnx scores feature vectors with the bundled ONNX models.
package onnx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"

	"sms_classifier/core/port/out"
	"sms_classifier/pkg/apperr"
	"sms_classifier/pkg/logger"
)

// ModelSpec locates one model and names its tensors. Empty names fall back
// to the first input and output the model declares.
type ModelSpec struct {
	File       string
	InputName  string
	OutputName string
	OutputSize int
}

// Config configures the scorer.
type Config struct {
	ModelDir          string
	SharedLibraryPath string // ONNXRUNTIME_SHARED_LIBRARY_PATH
	Models            map[out.ModelKind]ModelSpec
}

// DefaultConfig uses the standard bundle file names under dir.
func DefaultConfig(dir string) Config {
	return Config{
		ModelDir: dir,
		Models: map[out.ModelKind]ModelSpec{
			out.ModelPhishing: {File: "model_phishing.onnx", OutputSize: 2},
			out.ModelIsOTP:    {File: "model_isotp.onnx", OutputSize: 2},
			out.ModelIntent:   {File: "model_intent.onnx", OutputSize: 9},
		},
	}
}

// session is a loaded model. Run is serialised per session.
type session struct {
	mu         sync.Mutex
	s          *ort.DynamicAdvancedSession
	outputSize int
}

// Scorer lazily loads each model on first use and caches the session.
// A model that failed to load stays unavailable until restart.
type Scorer struct {
	cfg Config

	envOnce sync.Once
	envErr  error

	mu       sync.RWMutex
	sessions map[out.ModelKind]*session
	failed   map[out.ModelKind]error

	log zerolog.Logger
}

var _ out.ModelScorer = (*Scorer)(nil)

func NewScorer(cfg Config) *Scorer {
	return &Scorer{
		cfg:      cfg,
		sessions: make(map[out.ModelKind]*session),
		failed:   make(map[out.ModelKind]error),
		log:      logger.Component("onnx"),
	}
}

// Score runs model over input and returns its output vector.
func (s *Scorer) Score(ctx context.Context, model out.ModelKind, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess, err := s.session(model)
	if err != nil {
		return nil, err
	}
	if len(input) == 0 {
		return nil, apperr.ScoringFailed(string(model), fmt.Errorf("empty input vector"))
	}

	in, err := ort.NewTensor(ort.NewShape(1, int64(len(input))), append([]float32(nil), input...))
	if err != nil {
		return nil, apperr.ScoringFailed(string(model), err)
	}
	defer in.Destroy()

	outTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(sess.outputSize)))
	if err != nil {
		return nil, apperr.ScoringFailed(string(model), err)
	}
	defer outTensor.Destroy()

	sess.mu.Lock()
	err = sess.s.Run([]ort.Value{in}, []ort.Value{outTensor})
	sess.mu.Unlock()
	if err != nil {
		return nil, apperr.ScoringFailed(string(model), err)
	}

	return append([]float32(nil), outTensor.GetData()...), nil
}

// Available loads the model if needed and reports whether it can score.
func (s *Scorer) Available(model out.ModelKind) bool {
	_, err := s.session(model)
	return err == nil
}

// Close releases every loaded session.
func (s *Scorer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []string
	for kind, sess := range s.sessions {
		if err := sess.s.Destroy(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", kind, err))
		}
		delete(s.sessions, kind)
	}
	if len(errs) > 0 {
		return fmt.Errorf("destroy onnx sessions: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *Scorer) session(model out.ModelKind) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[model]
	failErr := s.failed[model]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}
	if failErr != nil {
		return nil, failErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[model]; ok {
		return sess, nil
	}
	if err := s.failed[model]; err != nil {
		return nil, err
	}

	sess, err := s.load(model)
	if err != nil {
		wrapped := apperr.ModelUnavailable(string(model), err)
		s.failed[model] = wrapped
		s.log.Warn().Err(err).Str("model", string(model)).Msg("model unavailable")
		return nil, wrapped
	}
	s.sessions[model] = sess
	s.log.Info().Str("model", string(model)).Int("outputs", sess.outputSize).Msg("model loaded")
	return sess, nil
}

// load opens one model. Caller holds s.mu.
func (s *Scorer) load(model out.ModelKind) (*session, error) {
	spec, ok := s.cfg.Models[model]
	if !ok || spec.File == "" {
		return nil, fmt.Errorf("no model file configured")
	}
	path := spec.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.cfg.ModelDir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", path, err)
	}

	if err := s.initEnvironment(); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%s declares no inputs or outputs", path)
	}

	inputName := spec.InputName
	if inputName == "" {
		inputName = inputs[0].Name
	}
	outputName := spec.OutputName
	outputSize := spec.OutputSize
	if outputName == "" {
		outputName = outputs[0].Name
	}
	for _, o := range outputs {
		if o.Name == outputName {
			if dims := o.Dimensions; len(dims) > 0 && dims[len(dims)-1] > 0 {
				outputSize = int(dims[len(dims)-1])
			}
		}
	}
	if outputSize <= 0 {
		return nil, fmt.Errorf("cannot determine output size of %s", outputName)
	}

	sess, err := ort.NewDynamicAdvancedSession(path, []string{inputName}, []string{outputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &session{s: sess, outputSize: outputSize}, nil
}

func (s *Scorer) initEnvironment() error {
	s.envOnce.Do(func() {
		libPath := strings.TrimSpace(s.cfg.SharedLibraryPath)
		if libPath == "" {
			libPath = strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"))
		}
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if !ort.IsInitialized() {
			if err := ort.InitializeEnvironment(); err != nil {
				s.envErr = fmt.Errorf("initialize onnxruntime: %w", err)
			}
		}
	})
	return s.envErr
}
