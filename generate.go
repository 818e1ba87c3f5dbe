// This file implements deterministic sample-data generators used by tests,
// benchmarks, and the CLI's generate command. They produce embeddings, they
// do not learn them; no training logic lives here.
package vectro

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// newSeededRand builds a deterministic generator from a 64-bit seed.
// ChaCha8 gives the same stream on every platform and Go release.
func newSeededRand(seed uint64) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return rand.New(rand.NewChaCha8(key))
}

// GenerateRandomEmbeddings produces count unit-normalized vectors of
// dimension dim with components drawn from N(0, 1). IDs are emb_000000,
// emb_000001, and so on. The same seed always yields the same dataset.
//
// Returns ErrInvalidArgument (wrapped) for non-positive count or dim.
func GenerateRandomEmbeddings(count, dim int, seed uint64) (*Dataset, error) {
	if count <= 0 || dim <= 0 {
		return nil, fmt.Errorf("count and dim must be positive, got %d and %d: %w", count, dim, ErrInvalidArgument)
	}

	rng := newSeededRand(seed)
	dataset := NewDataset()
	for i := 0; i < count; i++ {
		vec := randomUnitVector(rng, dim)
		if err := dataset.Add(fmt.Sprintf("emb_%06d", i), vec); err != nil {
			return nil, err
		}
	}
	return dataset, nil
}

// GenerateClusteredEmbeddings produces clusters groups of perCluster vectors
// each. Every cluster gets a random unit center; members are the center plus
// per-component N(0, noise) jitter, clamped to [-1, 1] and normalized. IDs
// are cluster_<c>__<i>.
//
// With noise small relative to inter-center distances this yields the
// well-separated datasets on which exact and quantized search agree.
//
// Returns ErrInvalidArgument (wrapped) for non-positive clusters, perCluster,
// or dim, or negative noise.
func GenerateClusteredEmbeddings(clusters, perCluster, dim int, noise float64, seed uint64) (*Dataset, error) {
	if clusters <= 0 || perCluster <= 0 || dim <= 0 || noise < 0 {
		return nil, fmt.Errorf("invalid cluster parameters: %w", ErrInvalidArgument)
	}

	rng := newSeededRand(seed)
	dataset := NewDataset()
	for c := 0; c < clusters; c++ {
		center := randomUnitVector(rng, dim)
		for i := 0; i < perCluster; i++ {
			vec := jitterAround(rng, center, noise)
			if err := dataset.Add(fmt.Sprintf("cluster_%d__%04d", c, i), vec); err != nil {
				return nil, err
			}
		}
	}
	return dataset, nil
}

// Category vocabularies for the themed generators.
var (
	productCategories = []string{"electronics", "clothing", "home", "sports", "books", "toys"}
	movieGenres       = []string{"action", "comedy", "drama", "horror", "scifi", "romance"}
	documentTopics    = []string{"technology", "science", "business", "health", "politics", "arts"}
)

// GenerateThemedEmbeddings produces a themed sample dataset. Each theme is a
// set of category centers with theme-specific jitter, so embeddings cluster
// by category the way real embedding models cluster by subject:
//
//   - "products":  6 product categories, noise 0.15, IDs product_<cat>__<i>
//   - "movies":    6 genres, noise 0.20, IDs movie_<genre>__<i>
//   - "documents": 6 topics, noise 0.18, IDs doc_<topic>__<i>
//   - "mixed":     count/3 of each of the above
//   - "random":    unthemed unit vectors (GenerateRandomEmbeddings)
//
// Returns ErrUnknownTheme (wrapped) for any other theme and
// ErrInvalidArgument (wrapped) for non-positive count or dim.
func GenerateThemedEmbeddings(theme string, count, dim int, seed uint64) (*Dataset, error) {
	if count <= 0 || dim <= 0 {
		return nil, fmt.Errorf("count and dim must be positive, got %d and %d: %w", count, dim, ErrInvalidArgument)
	}

	switch theme {
	case "products", "movies", "documents":
		rng := newSeededRand(seed)
		dataset := NewDataset()
		if err := generateThemed(rng, dataset, theme, count, dim); err != nil {
			return nil, err
		}
		return dataset, nil
	case "mixed":
		rng := newSeededRand(seed)
		dataset := NewDataset()
		third := count / 3
		for _, t := range []string{"products", "movies"} {
			if err := generateThemed(rng, dataset, t, third, dim); err != nil {
				return nil, err
			}
		}
		// Remainder goes to documents so the total always equals count.
		if err := generateThemed(rng, dataset, "documents", count-2*third, dim); err != nil {
			return nil, err
		}
		return dataset, nil
	case "random":
		return GenerateRandomEmbeddings(count, dim, seed)
	default:
		return nil, fmt.Errorf("%q: %w", theme, ErrUnknownTheme)
	}
}

func generateThemed(rng *rand.Rand, dataset *Dataset, theme string, count, dim int) error {
	var categories []string
	var prefix string
	var noise float64
	switch theme {
	case "products":
		categories, prefix, noise = productCategories, "product", 0.15
	case "movies":
		categories, prefix, noise = movieGenres, "movie", 0.20
	case "documents":
		categories, prefix, noise = documentTopics, "doc", 0.18
	}

	centers := make([][]float32, len(categories))
	for i := range centers {
		centers[i] = randomUnitVector(rng, dim)
	}
	for i := 0; i < count; i++ {
		c := i % len(categories)
		vec := jitterAround(rng, centers[c], noise)
		id := fmt.Sprintf("%s_%s__%04d", prefix, categories[c], i)
		if err := dataset.Add(id, vec); err != nil {
			return err
		}
	}
	return nil
}

func randomUnitVector(rng *rand.Rand, dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(rng.NormFloat64())
	}
	NormalizeInPlace(vec)
	return vec
}

// jitterAround returns center plus N(0, noise) per component, clamped to
// [-1, 1] and normalized.
func jitterAround(rng *rand.Rand, center []float32, noise float64) []float32 {
	vec := make([]float32, len(center))
	for i, c := range center {
		v := c + float32(rng.NormFloat64()*noise)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		vec[i] = v
	}
	NormalizeInPlace(vec)
	return vec
}
