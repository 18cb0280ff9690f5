package service

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

// PayloadError reports a task payload that does not match its category.
type PayloadError struct{ Err error }

func (e PayloadError) Error() string   { return "invalid task payload: " + e.Err.Error() }
func (e PayloadError) Unwrap() error   { return e.Err }
func (e PayloadError) StatusCode() int { return http.StatusBadRequest }

// decode accepts raw JSON or any JSON-encodable value.
func decode(payload any, dst any) error {
	var raw []byte
	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return PayloadError{Err: err}
		}
		raw = b
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return PayloadError{Err: err}
	}
	return nil
}

// inferencePayload is the model-inference body.
type inferencePayload struct {
	Model string    `json:"model"`
	Input []float32 `json:"input"`
	// NoCache skips the predictions cache.
	NoCache bool `json:"no_cache,omitempty"`
}

// seriesPayload is the body of data-analysis and feature-extraction.
type seriesPayload struct {
	Values []float64 `json:"values"`
}

// imagePayload is a grayscale image, row-major.
type imagePayload struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Pixels []float64 `json:"pixels"`
}

func (p imagePayload) validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return PayloadError{Err: fmt.Errorf("invalid size %dx%d", p.Width, p.Height)}
	}
	if len(p.Pixels) != p.Width*p.Height {
		return PayloadError{Err: fmt.Errorf("expected %d pixels, got %d", p.Width*p.Height, len(p.Pixels))}
	}
	return nil
}

// fingerprint hashes a numeric vector into a cache key.
func fingerprint(prefix string, vals []float64) string {
	h := sha256.New()
	h.Write([]byte(prefix))
	var b [8]byte
	for _, v := range vals {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		h.Write(b[:])
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// predictionKey separates stand-in outputs from those of the real artifact.
func predictionKey(model string, input []float32, degraded bool) string {
	if degraded {
		model += "#standin"
	}
	return fingerprint32(model, input)
}

func fingerprint32(prefix string, vals []float32) string {
	wide := make([]float64, len(vals))
	for i, v := range vals {
		wide[i] = float64(v)
	}
	return fingerprint(prefix, wide)
}
