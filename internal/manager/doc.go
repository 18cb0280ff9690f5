// Package manager provides lifecycle, admission, and eviction for resident
// inference models. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters, Close.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (entry) and the Model handle interface.
//   - errors.go: error types and helpers (IsUnknownModel, IsModelLoadError).
//   - helpers.go: small utilities (catalog lookup, memory estimation).
//   - ensure.go: LoadModel, single-flight loading, stand-in fallback, commit.
//   - evict.go: victim selection under the resident-model cap.
//   - unload.go, sweep.go: explicit unload and the idle sweeper.
//   - warmup.go, infer.go: bulk warm-up and the Infer convenience path.
//   - source*.go: artifact sources (file, http, gguf behind the llama tag).
//   - dense.go, standin.go, optimize.go: the built-in dense model, its
//     deterministic stand-in synthesis and int8 quantization.
//   - status_report.go, lru_persist.go, sanity.go: reporting and persistence.
//
// Build tags:
//
//   - llama: GGUF artifacts are loaded in-process through go-llama.cpp
//     (source_llama.go, llama_cgo.go). Without the tag GGUF artifacts are
//     reported unavailable and a stand-in is synthesized.
//
// External packages should use the public methods only (NewWithConfig,
// LoadModel, UnloadModel, WarmUpModels, Stats, Infer).
package manager
