package index

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"chainsight/internal/util"
	"chainsight/pkg/catalog"

	"github.com/philippgille/chromem-go"
)

// Embedder turns text into a vector. Satisfied by the ai adapter clients and
// by HashEmbedder for offline use.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
}

const embedRetries = 3

var collectionNames = map[catalog.Kind]string{
	catalog.KindLocation: "locations",
	catalog.KindSupplier: "suppliers",
	catalog.KindProduct:  "products",
}

// Index is an embedding-backed nearest-neighbor search structure over the
// entities of a single kind. Writes happen during the build phase only;
// Search is a pure read and safe for concurrent use after that.
type Index struct {
	kind       catalog.Kind
	collection *chromem.Collection

	// keys dedupes inserts across Add calls; seq assigns a stable insertion
	// sequence used to break similarity ties.
	keys map[string]struct{}
	seq  int
}

// New creates the semantic index for one entity kind, backed by a chromem
// collection in the given DB. Embedding calls are retried a few times since
// the embedder may sit on a network.
func New(db *chromem.DB, kind catalog.Kind, embedder Embedder) (*Index, error) {
	name, ok := collectionNames[kind]
	if !ok {
		return nil, fmt.Errorf("no collection for kind %q", kind)
	}

	embed := func(ctx context.Context, text string) ([]float32, error) {
		return util.RetryWithContext(ctx, embedRetries, func(ctx context.Context) ([]float32, error) {
			return embedder.GenerateEmbedding(ctx, []byte(text))
		})
	}

	collection, err := db.GetOrCreateCollection(name, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	return &Index{
		kind:       kind,
		collection: collection,
		keys:       map[string]struct{}{},
	}, nil
}

// Kind reports the entity kind this index covers.
func (idx *Index) Kind() catalog.Kind { return idx.kind }

// Count reports the number of indexed entries.
func (idx *Index) Count() int { return idx.collection.Count() }

// Add indexes the given entities and returns how many were written.
// Entities are deduplicated by identity key before embedding; re-adding a
// known key is skipped. An empty input writes nothing and returns 0, which
// is a success state.
func (idx *Index) Add(ctx context.Context, entities []catalog.Entity) (int, error) {
	docs := make([]chromem.Document, 0, len(entities))
	for _, e := range entities {
		if e == nil {
			continue
		}
		if e.Kind() != idx.kind {
			return 0, fmt.Errorf("cannot index %s entity in the %s index", e.Kind(), idx.kind)
		}
		if _, dup := idx.keys[e.Key()]; dup {
			continue
		}
		idx.keys[e.Key()] = struct{}{}

		meta, err := entityMetadata(e)
		if err != nil {
			return 0, err
		}
		meta["seq"] = strconv.Itoa(idx.seq)
		idx.seq++

		docs = append(docs, chromem.Document{
			ID:       e.Key(),
			Content:  embeddingText(e),
			Metadata: meta,
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if err := idx.collection.AddDocuments(ctx, docs, 1); err != nil {
		return 0, fmt.Errorf("failed to index %s entities: %w", idx.kind, err)
	}
	return len(docs), nil
}

// Scored is one search hit together with its cosine similarity.
type Scored struct {
	Entity     catalog.Entity
	Similarity float32
}

// Search returns up to k entities ranked by descending similarity of the
// query against each entry's embedding text. Ties are broken by insertion
// sequence, so results are stable across calls. Searching an empty index
// returns an empty slice, never an error.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]catalog.Entity, error) {
	scored, err := idx.SearchScored(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Entity, len(scored))
	for i, s := range scored {
		out[i] = s.Entity
	}
	return out, nil
}

// SearchScored is Search with the similarity of each hit exposed, for
// callers that need to judge how trustworthy a nearest neighbor is.
func (idx *Index) SearchScored(ctx context.Context, query string, k int) ([]Scored, error) {
	count := idx.collection.Count()
	if k > count {
		k = count
	}
	if k <= 0 {
		return []Scored{}, nil
	}

	results, err := idx.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s index: %w", idx.kind, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return metaInt(results[i].Metadata, "seq") < metaInt(results[j].Metadata, "seq")
	})

	out := make([]Scored, 0, len(results))
	for _, r := range results {
		e, err := entityFromMetadata(idx.kind, r.Metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, Scored{Entity: e, Similarity: r.Similarity})
	}
	return out, nil
}

// embeddingText is the string actually embedded. Only human-meaningful name
// tokens go in; identifiers with no semantic content (SKU, composite keys)
// stay in metadata so they cannot skew similarity scoring.
func embeddingText(e catalog.Entity) string {
	if loc, ok := e.(catalog.Location); ok {
		return loc.Name + ", " + loc.Country
	}
	return e.DisplayName()
}

func entityMetadata(e catalog.Entity) (map[string]string, error) {
	switch v := e.(type) {
	case catalog.Location:
		return map[string]string{
			"name":    v.Name,
			"country": v.Country,
		}, nil
	case catalog.Supplier:
		return map[string]string{
			"name":       v.Name,
			"risk_score": strconv.FormatFloat(v.RiskScore, 'f', -1, 64),
			"revenue":    strconv.FormatFloat(v.Revenue, 'f', -1, 64),
		}, nil
	case catalog.Product:
		return map[string]string{
			"name":  v.Name,
			"sku":   v.SKU,
			"price": strconv.FormatFloat(v.Price, 'f', -1, 64),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported entity type %T", e)
	}
}

func entityFromMetadata(kind catalog.Kind, meta map[string]string) (catalog.Entity, error) {
	switch kind {
	case catalog.KindLocation:
		return catalog.Location{
			Name:    meta["name"],
			Country: meta["country"],
		}, nil
	case catalog.KindSupplier:
		return catalog.Supplier{
			Name:      meta["name"],
			RiskScore: metaFloat(meta, "risk_score"),
			Revenue:   metaFloat(meta, "revenue"),
		}, nil
	case catalog.KindProduct:
		return catalog.Product{
			Name:  meta["name"],
			SKU:   meta["sku"],
			Price: metaFloat(meta, "price"),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}
}

func metaFloat(meta map[string]string, key string) float64 {
	v, _ := strconv.ParseFloat(meta[key], 64)
	return v
}

func metaInt(meta map[string]string, key string) int {
	v, _ := strconv.Atoi(meta[key])
	return v
}
