package generator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/goccy/go-json"

	"github.com/TFMV/vectorgen/pkg/schema"
)

// Pools backing the structured-document generator.
var (
	docCategories = []string{"electronics", "books", "clothing", "food", "toys", "sports", "health", "home"}
	docStatuses   = []string{"active", "pending", "completed", "cancelled", "processing"}
	docTags       = []string{"new", "featured", "sale", "limited", "exclusive", "popular", "trending", "clearance"}
	docEvents     = []string{"click", "view", "purchase", "share", "like"}
	docDevices    = []string{"mobile", "desktop", "tablet"}
	docRegions    = []string{"north", "south", "east", "west"}
	docLanguages  = []string{"en", "es", "fr", "de", "zh"}
)

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }

// genJSONDocs fills a string column with serialized documents. Five
// patterns rotate per row; random inputs are pre-drawn as whole arrays and
// the per-row pass only assembles, keeping the branchy part cheap.
func genJSONDocs(rng *rand.Rand, b *array.StringBuilder, f schema.FieldSpec, rows, rowOffset int64) error {
	patterns := make([]int, rows)
	ints := make([]int64, rows)
	floats := make([]float64, rows)
	bools := make([]bool, rows)
	for i := int64(0); i < rows; i++ {
		patterns[i] = rng.Intn(5)
	}
	for i := int64(0); i < rows; i++ {
		ints[i] = 1 + rng.Int63n(999)
	}
	for i := int64(0); i < rows; i++ {
		floats[i] = rng.Float64()
	}
	for i := int64(0); i < rows; i++ {
		bools[i] = rng.Intn(2) == 1
	}

	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		doc := assembleDoc(patterns[i], rowOffset+i, i, ints[i], floats[i], bools[i])
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding document for row %d: %w", rowOffset+i, err)
		}
		b.Append(string(data))
	}
	return nil
}

func assembleDoc(pattern int, id, row, ri int64, rf float64, rb bool) map[string]any {
	switch pattern {
	case 0: // product metadata
		return map[string]any{
			"product_id": id,
			"category":   docCategories[row%int64(len(docCategories))],
			"price":      round2(rf * 999.99),
			"in_stock":   rb,
			"attributes": map[string]any{
				"brand":  fmt.Sprintf("Brand_%d", ri%50),
				"weight": round2(rf * 10),
				"dimensions": map[string]any{
					"length": ri % 100,
					"width":  (ri + 10) % 100,
					"height": (ri + 20) % 100,
				},
			},
			"tags": docTags[:ri%4+1],
		}
	case 1: // user activity event
		return map[string]any{
			"event_id":   id,
			"event_type": docEvents[row%int64(len(docEvents))],
			"timestamp":  1600000000 + ri*1000,
			"user": map[string]any{
				"id":      fmt.Sprintf("user_%d", ri%1000),
				"session": fmt.Sprintf("session_%d", ri%100),
				"device":  docDevices[row%int64(len(docDevices))],
			},
			"metrics": map[string]any{
				"duration_ms": ri * 10,
				"clicks":      ri % 10,
				"score":       round2(rf * 5),
			},
		}
	case 2: // configuration
		return map[string]any{
			"config_id": id,
			"name":      fmt.Sprintf("config_%d", row),
			"settings": map[string]any{
				"enabled":         rb,
				"threshold":       rf,
				"max_retries":     ri % 10,
				"timeout_seconds": ri % 300,
				"features": map[string]any{
					"feature_a": rb,
					"feature_b": !rb,
					"feature_c": row%3 == 0,
				},
			},
			"metadata": map[string]any{
				"version":      fmt.Sprintf("%d.%d.%d", ri%3, ri%10, ri%20),
				"last_updated": 1600000000 + ri*1000,
			},
		}
	case 3: // analytics rollup
		return map[string]any{
			"metric_id": id,
			"type":      "analytics",
			"values": map[string]any{
				"count": ri,
				"sum":   round2(rf * 10000),
				"avg":   round2(rf * 100),
				"min":   round2(rf * 10),
				"max":   round2(rf * 1000),
			},
			"dimensions": map[string]any{
				"region":   docRegions[row%int64(len(docRegions))],
				"category": docCategories[row%int64(len(docCategories))],
				"segment":  fmt.Sprintf("segment_%d", ri%10),
			},
			"percentiles": map[string]any{
				"p50": round2(rf * 50),
				"p90": round2(rf * 90),
				"p99": round2(rf * 99),
			},
		}
	default: // document metadata
		return map[string]any{
			"doc_id": id,
			"title":  fmt.Sprintf("Document_%d", row),
			"status": docStatuses[row%int64(len(docStatuses))],
			"metadata": map[string]any{
				"author":     fmt.Sprintf("author_%d", ri%100),
				"created_at": 1600000000 + ri*1000,
				"word_count": ri * 10,
				"language":   docLanguages[row%int64(len(docLanguages))],
				"sentiment": map[string]any{
					"positive": round3(rf),
					"negative": round3(1 - rf),
					"neutral":  round3(rf * 0.5),
				},
			},
			"tags": docTags[:ri%3+1],
			"properties": map[string]any{
				"public":   rb,
				"archived": !rb,
				"priority": ri % 5,
			},
		}
	}
}
