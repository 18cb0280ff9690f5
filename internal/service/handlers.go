package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"servecore/internal/cache"
	"servecore/internal/manager"
	"servecore/internal/scheduler"
)

// Prediction is the model-inference result.
type Prediction struct {
	Model  string    `json:"model"`
	Output []float32 `json:"output"`
	Top    int       `json:"top"`
	Score  float32   `json:"score"`
	Cached bool      `json:"cached"`
}

// Summary is the data-analysis result.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
}

// Features is the feature-extraction result.
type Features struct {
	Mean     float64   `json:"mean"`
	StdDev   float64   `json:"stddev"`
	L2Norm   float64   `json:"l2_norm"`
	ZScores  []float64 `json:"z_scores"`
	Energy   float64   `json:"energy"`
	Crossing int       `json:"zero_crossings"`
}

// ImageStats is the image-processing result.
type ImageStats struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Brightness float64   `json:"brightness"`
	Contrast   float64   `json:"contrast"`
	Histogram  [16]int   `json:"histogram"`
	Normalized []float64 `json:"normalized"`
}

var errEmptySeries = errors.New("values must not be empty")

func (s *Service) registerHandlers(mux *scheduler.Mux) {
	mux.HandleFunc(scheduler.CategoryModelInference, s.runInference)
	mux.HandleFunc(scheduler.CategoryDataAnalysis, s.runAnalysis)
	mux.HandleFunc(scheduler.CategoryFeatureExtraction, s.runFeatures)
	mux.HandleFunc(scheduler.CategoryImageProcessing, s.runImage)
}

func (s *Service) runInference(ctx context.Context, _ scheduler.TaskInfo, payload any) (any, error) {
	var p inferencePayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if p.Model == "" || len(p.Input) == 0 {
		return nil, PayloadError{Err: errors.New("model and input are required")}
	}
	if !p.NoCache {
		var cached Prediction
		key := predictionKey(p.Model, p.Input, s.models.Degraded(p.Model))
		if ok, _ := s.cache.GetJSON(ctx, cache.NamespacePredictions, key, &cached); ok {
			cached.Cached = true
			return cached, nil
		}
	}
	out, err := s.models.Infer(ctx, p.Model, p.Input)
	if manager.IsInputSize(err) {
		return nil, PayloadError{Err: err}
	}
	if err != nil {
		return nil, err
	}
	pred := Prediction{Model: p.Model, Output: out}
	for i, v := range out {
		if i == 0 || v > pred.Score {
			pred.Top, pred.Score = i, v
		}
	}
	if !p.NoCache {
		// Key by what actually served the request; a later load may swap it.
		key := predictionKey(p.Model, p.Input, s.models.Degraded(p.Model))
		if err := s.cache.SetJSON(ctx, cache.NamespacePredictions, key, pred, 0); err != nil {
			s.log.Debug().Str("event", "prediction_cache_skip").Err(err).Msg("")
		}
	}
	return pred, nil
}

func (s *Service) runAnalysis(ctx context.Context, _ scheduler.TaskInfo, payload any) (any, error) {
	var p seriesPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if len(p.Values) == 0 {
		return nil, PayloadError{Err: errEmptySeries}
	}
	key := fingerprint("analysis", p.Values)
	var sum Summary
	if ok, _ := s.cache.GetJSON(ctx, cache.NamespaceAnalysis, key, &sum); ok {
		return sum, nil
	}
	sum = summarize(p.Values)
	_ = s.cache.SetJSON(ctx, cache.NamespaceAnalysis, key, sum, 0)
	return sum, nil
}

func (s *Service) runFeatures(ctx context.Context, _ scheduler.TaskInfo, payload any) (any, error) {
	var p seriesPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if len(p.Values) == 0 {
		return nil, PayloadError{Err: errEmptySeries}
	}
	key := fingerprint("features", p.Values)
	var f Features
	if ok, _ := s.cache.GetJSON(ctx, cache.NamespaceFeatures, key, &f); ok {
		return f, nil
	}
	f = extract(p.Values)
	_ = s.cache.SetJSON(ctx, cache.NamespaceFeatures, key, f, 0)
	return f, nil
}

func (s *Service) runImage(ctx context.Context, _ scheduler.TaskInfo, payload any) (any, error) {
	var p imagePayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return processImage(ctx, p)
}

func meanStd(v []float64) (mean, std float64) {
	// Work on values scaled into [-1, 1] so wide ranges do not overflow.
	scale := 0.0
	for _, x := range v {
		scale = math.Max(scale, math.Abs(x))
	}
	if scale == 0 {
		return 0, 0
	}
	for _, x := range v {
		mean += x / scale
	}
	mean /= float64(len(v))
	for _, x := range v {
		d := x/scale - mean
		std += d * d
	}
	return mean * scale, math.Sqrt(std/float64(len(v))) * scale
}

// percentile reads the q-quantile of sorted by linear interpolation.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func summarize(v []float64) Summary {
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	mean, std := meanStd(v)
	return Summary{
		Count:  len(v),
		Mean:   mean,
		StdDev: std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: percentile(sorted, 0.5),
		P95:    percentile(sorted, 0.95),
	}
}

func extract(v []float64) Features {
	mean, std := meanStd(v)
	f := Features{Mean: mean, StdDev: std, ZScores: make([]float64, len(v))}
	for i, x := range v {
		f.Energy += x * x
		if std > 0 {
			f.ZScores[i] = (x - mean) / std
		}
		if i > 0 && (v[i-1] < 0) != (x < 0) {
			f.Crossing++
		}
	}
	f.L2Norm = math.Sqrt(f.Energy)
	return f
}

func processImage(ctx context.Context, p imagePayload) (ImageStats, error) {
	st := ImageStats{Width: p.Width, Height: p.Height, Normalized: make([]float64, len(p.Pixels))}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, px := range p.Pixels {
		lo = math.Min(lo, px)
		hi = math.Max(hi, px)
	}
	// Halve both ends when the range itself overflows.
	div := 1.0
	span := hi - lo
	if math.IsInf(span, 0) {
		div = 2
		span = hi/div - lo/div
	}
	for i, px := range p.Pixels {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return ImageStats{}, err
			}
		}
		n := 0.0
		if span > 0 {
			n = (px/div - lo/div) / span
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			n = 0
		}
		st.Normalized[i] = n
		bin := min(max(int(n*16), 0), 15)
		st.Histogram[bin]++
	}
	st.Brightness, st.Contrast = meanStd(p.Pixels)
	return st, nil
}
