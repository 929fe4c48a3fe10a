package generator

import (
	"math/rand"
	"strings"
)

// wordPool feeds the text generator. Plain ASCII keeps byte length equal
// to rune length, so the max_length cap can be enforced in bytes directly.
var wordPool = []string{
	"time", "year", "people", "way", "day", "man", "thing", "woman", "life",
	"child", "world", "school", "state", "family", "student", "group",
	"country", "problem", "hand", "part", "place", "case", "week", "company",
	"system", "program", "question", "work", "government", "number", "night",
	"point", "home", "water", "room", "mother", "area", "money", "story",
	"fact", "month", "lot", "right", "study", "book", "eye", "job", "word",
	"business", "issue", "side", "kind", "head", "house", "service", "friend",
	"father", "power", "hour", "game", "line", "end", "member", "law", "car",
	"city", "community", "name", "president", "team", "minute", "idea",
	"body", "information", "back", "parent", "face", "others", "level",
	"office", "door", "health", "person", "art", "war", "history", "party",
	"result", "change", "morning", "reason", "research", "girl", "guy",
	"moment", "air", "teacher", "force", "education",
}

// defaultTextHeadroom keeps generated text at roughly 80% of the declared
// maximum, leaving room for serializer encoding overhead.
const defaultTextHeadroom = 0.8

// genText builds word-based prose whose byte length never exceeds
// maxLength, targeting the headroom fraction of it.
func genText(rng *rand.Rand, maxLength int) string {
	target := int(float64(maxLength) * defaultTextHeadroom)
	if target < 1 {
		target = 1
	}

	var sb strings.Builder
	for {
		w := wordPool[rng.Intn(len(wordPool))]
		need := len(w)
		if sb.Len() > 0 {
			need++
		}
		if sb.Len()+need > target {
			break
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w)
	}

	if sb.Len() == 0 {
		// Even one word does not fit; cut one down to the cap.
		w := wordPool[rng.Intn(len(wordPool))]
		if len(w) > target {
			w = w[:target]
		}
		return w
	}
	return sb.String()
}
