// Package predictor turns a validated feature record into a clamped AQI
// estimate using a schema and a loaded model.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"aqiserve/db"
	"aqiserve/ml"
	"aqiserve/schema"
)

// ErrNonFinite is returned when the model produces NaN or an infinity.
var ErrNonFinite = errors.New("model returned a non-finite prediction")

// Recorder persists served predictions. *db.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, rec db.PredictionRecord) error
}

// Observer receives prediction outcomes. *monitoring.Metrics satisfies it.
type Observer interface {
	ObservePrediction(clamped, cached bool)
	ObserveModelError()
}

type requestIDKey struct{}

// WithRequestID tags ctx so audit records can be traced to a request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Result is one prediction before and after the zero floor.
type Result struct {
	Raw     float64
	Value   float64
	Clamped bool
	Cached  bool
}

// Option configures a Predictor.
type Option func(*Predictor) error

// WithCache memoises up to size predictions; size <= 0 disables it.
func WithCache(size int) Option {
	return func(p *Predictor) error {
		if size <= 0 {
			return nil
		}
		c, err := lru.New[string, float64](size)
		if err != nil {
			return err
		}
		p.cache = c
		return nil
	}
}

// WithRecorder writes every served prediction to r.
func WithRecorder(r Recorder) Option {
	return func(p *Predictor) error {
		p.recorder = r
		return nil
	}
}

// WithObserver reports prediction outcomes to o.
func WithObserver(o Observer) Option {
	return func(p *Predictor) error {
		p.observer = o
		return nil
	}
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(p *Predictor) error {
		p.logger = l
		return nil
	}
}

// Predictor is immutable after New and safe for concurrent use.
type Predictor struct {
	schema   *schema.Schema
	model    ml.Model
	cache    *lru.Cache[string, float64]
	recorder Recorder
	observer Observer
	logger   *zap.Logger
}

// New checks that the schema's columns match the model's recorded feature
// names and fails if they drift.
func New(s *schema.Schema, m ml.Model, opts ...Option) (*Predictor, error) {
	if s == nil || m == nil {
		return nil, errors.New("predictor needs a schema and a model")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := ml.CheckColumns(m, s.Columns()); err != nil {
		return nil, fmt.Errorf("schema %s: %w", s, err)
	}
	p := &Predictor{schema: s, model: m, logger: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Predictor) Schema() *schema.Schema {
	return p.schema
}

// Predict runs the model on one record and floors the result at zero.
// Model failures are returned as is.
func (p *Predictor) Predict(ctx context.Context, rec schema.Record) (Result, error) {
	vec, err := p.schema.Vector(rec)
	if err != nil {
		return Result{}, err
	}

	var res Result
	key := cacheKey(vec)
	if raw, ok := p.lookup(key); ok {
		res.Raw, res.Cached = raw, true
	} else {
		out, err := p.model.Predict([][]float64{vec})
		if err != nil {
			p.modelError()
			return Result{}, fmt.Errorf("model predict: %w", err)
		}
		if len(out) != 1 {
			p.modelError()
			return Result{}, fmt.Errorf("model predict: %w: got %d outputs for 1 row", ml.ErrShapeMismatch, len(out))
		}
		if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
			p.modelError()
			return Result{}, ErrNonFinite
		}
		res.Raw = out[0]
		if p.cache != nil {
			p.cache.Add(key, res.Raw)
		}
	}

	res.Value = math.Max(res.Raw, 0)
	res.Clamped = res.Raw < 0
	if p.observer != nil {
		p.observer.ObservePrediction(res.Clamped, res.Cached)
	}
	p.record(ctx, rec, res)
	return res, nil
}

func (p *Predictor) lookup(key string) (float64, bool) {
	if p.cache == nil {
		return 0, false
	}
	return p.cache.Get(key)
}

func (p *Predictor) modelError() {
	if p.observer != nil {
		p.observer.ObserveModelError()
	}
}

// record failures are logged and never fail the request.
func (p *Predictor) record(ctx context.Context, rec schema.Record, res Result) {
	if p.recorder == nil {
		return
	}
	err := p.recorder.Record(ctx, db.PredictionRecord{
		RequestID: requestID(ctx),
		Schema:    p.schema.String(),
		Features:  rec,
		Raw:       res.Raw,
		Predicted: res.Value,
	})
	if err != nil {
		p.logger.Warn("audit record failed", zap.String("request_id", requestID(ctx)), zap.Error(err))
	}
}

func cacheKey(vec []float64) string {
	var b strings.Builder
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
	}
	return b.String()
}
