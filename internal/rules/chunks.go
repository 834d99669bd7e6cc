// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// Bucket classifies a chunk match.
type Bucket string

const (
	BucketA     Bucket = "A"
	BucketB     Bucket = "B"
	BucketNovel Bucket = "NOVEL"
)

// ComplianceTarget is the minimum share of answers, in percent, that must
// come from the locked chunks.
const ComplianceTarget = 80

// BucketAChunks are universal conversational chunks.
var BucketAChunks = []string{
	"nice to meet you", "it's a pleasure", "how is it going?", "how are you doing?",
	"what have you been up to?", "by the way", "let's change the subject",
	"go straight to the point", "am i making sense?", "let's keep in touch",
	"i see your point", "fair enough", "that makes sense", "i beg to differ",
	"i'm not sure i agree with that", "i'd rather not", "sounds good",
	"sounds like a plan", "from my perspective", "could you do me a favour?",
	"give us a hand", "do you mind if i", "go ahead", "i appreciate your help",
	"i appreciate your time", "don't mention it", "something has come up",
	"i'm in a hurry", "it's a shame", "these things happen", "lesson learned",
	"to be honest", "play it by ear", "on the spur of the moment",
	"get off on the wrong foot", "a breath of fresh air", "spill the beans",
	"between you and me",
}

// BucketBChunks are topic-specific chunks and connectors.
var BucketBChunks = []string{
	"where are you flying to?", "do you have any bags to check in?", "window or aisle seat?",
	"here is your boarding pass", "is the flight on time?", "i have a suitcase to check",
	"i'd like to return this item", "do you have the receipt?", "proof of purchase",
	"it stopped working", "i'd prefer a full refund", "store credit", "that's pretty steep",
	"i'd like to book a room", "is breakfast included?", "what time is check-out?",
	"my room is noisy", "are the utilities included?", "can i see the menu, please?",
	"let's split it", "it's on me", "walk through a few points", "take this offline",
	"hand in my notice", "run everything by you", "flag this concern",
	"i'd like to make an appointment", "what seems to be the trouble?",
	"first of all", "let's face it", "the point is this", "what i mean is",
	"believe it or not", "as a general rule", "on the other hand", "in any case",
	"sooner or later", "bear in mind", "figure out", "iron out", "check out",
	"turn out", "run out of", "come up with", "get rid of", "put off", "carry on",
	"give up", "look for", "pick up", "look forward to", "fed up", "calm down",
	"settle down", "crack up", "put up with", "look down on", "look up to",
	"stand up for", "get along with", "bump into", "run into", "catch up",
	"ask out", "show up", "let down", "make up", "on the same page",
	"kill two birds with one stone", "cost an arm and a leg", "stand out from the crowd",
	"from time to time", "renewable energy", "fossil fuels", "carbon footprint",
	"climate change", "raise awareness", "when it comes to", "by and large",
	"generally speaking", "at the end of the day", "last but not least",
	"once in a while", "every now and then", "make an effort to", "sort it out",
	"make sure it's done", "bear with me", "a drop in the ocean", "tip of the iceberg",
	"get out of hand", "sit on the fence", "weather the storm", "it's not rocket science",
	"start the ball rolling", "pave the way",
}

// ChunkMatch classifies one answer against the locked chunks.
type ChunkMatch struct {
	Answer string
	Bucket Bucket
	Chunk  string
	Exact  bool
}

// MatchChunk finds the chunk an answer uses: exact matches first, then
// either text containing the other, bucket A before bucket B.
func MatchChunk(answer string) ChunkMatch {
	a := normalizeChunk(answer)
	if a == "" {
		return ChunkMatch{Answer: answer, Bucket: BucketNovel}
	}
	for _, b := range []struct {
		bucket Bucket
		chunks []string
	}{{BucketA, BucketAChunks}, {BucketB, BucketBChunks}} {
		for _, c := range b.chunks {
			if normalizeChunk(c) == a {
				return ChunkMatch{Answer: answer, Bucket: b.bucket, Chunk: c, Exact: true}
			}
		}
	}
	for _, b := range []struct {
		bucket Bucket
		chunks []string
	}{{BucketA, BucketAChunks}, {BucketB, BucketBChunks}} {
		for _, c := range b.chunks {
			n := normalizeChunk(c)
			if strings.Contains(a, n) || (len(a) > 3 && strings.Contains(n, a)) {
				return ChunkMatch{Answer: answer, Bucket: b.bucket, Chunk: c}
			}
		}
	}
	return ChunkMatch{Answer: answer, Bucket: BucketNovel}
}

// Compliance summarises how many answers use locked chunks.
type Compliance struct {
	Total   int
	Matched int
	Novel   []string
	// Score is the matched share in whole percent.
	Score int
}

// Compliant reports whether Score reaches ComplianceTarget.
func (c Compliance) Compliant() bool {
	return c.Score >= ComplianceTarget
}

// CheckCompliance classifies every answer.
func CheckCompliance(answers []string) Compliance {
	c := Compliance{Total: len(answers)}
	if len(answers) == 0 {
		c.Score = 100
		return c
	}
	for _, a := range answers {
		if MatchChunk(a).Bucket == BucketNovel {
			c.Novel = append(c.Novel, a)
			continue
		}
		c.Matched++
	}
	c.Score = (c.Matched*100 + len(answers)/2) / len(answers)
	return c
}

// SuggestChunks returns up to n chunks sharing a content word with answer,
// most similar first.
func SuggestChunks(answer string, n int) []string {
	a := strings.ToLower(strings.TrimSpace(answer))
	var content []string
	for _, w := range Words(a) {
		if !Stopwords[w] && len(w) > 2 {
			content = append(content, w)
		}
	}
	if len(content) == 0 {
		return nil
	}

	type scored struct {
		chunk string
		score float64
	}
	var candidates []scored
	for _, c := range append(append([]string{}, BucketAChunks...), BucketBChunks...) {
		if normalizeChunk(c) == normalizeChunk(a) {
			continue
		}
		cw := Words(c)
		shared := false
		for _, w := range content {
			for _, x := range cw {
				if w == x {
					shared = true
				}
			}
		}
		if shared {
			candidates = append(candidates, scored{c, matchr.JaroWinkler(a, c, false)})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.chunk
	}
	return out
}

func normalizeChunk(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "’", "'")
	return strings.TrimRight(s, ".?!… ")
}
