// Package blender implements PredictorBlender (component C10): the final
// inline-suggestion composer that merges static completion providers with
// GenericPredictor's learned candidates under a hard latency budget (spec
// section 4.10).
package blender

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pscue/pscue/internal/predictor"
)

// DefaultLatencyBudget is spec section 4.10's hard ≤20ms ceiling.
const DefaultLatencyBudget = 20 * time.Millisecond

// CompletionProvider is the static, command-specific candidate source a
// host registers for known commands (spec section 4.10 step 2), grounded
// on the shape of `posener/complete`-style predictors: given the command
// already typed, return plausible next words.
type CompletionProvider interface {
	Complete(command string, args []string) []string
}

// CompletionProviderFunc adapts a function to CompletionProvider.
type CompletionProviderFunc func(command string, args []string) []string

func (f CompletionProviderFunc) Complete(command string, args []string) []string {
	return f(command, args)
}

// Blender is PredictorBlender.
type Blender struct {
	log       *zap.Logger
	pred      *predictor.Predictor
	providers map[string]CompletionProvider
	budget    time.Duration
}

// New builds a Blender with an empty static-provider registry.
func New(log *zap.Logger, pred *predictor.Predictor, budget time.Duration) *Blender {
	if log == nil {
		log = zap.NewNop()
	}
	if budget <= 0 {
		budget = DefaultLatencyBudget
	}
	return &Blender{log: log, pred: pred, providers: make(map[string]CompletionProvider), budget: budget}
}

// Register adds a static CompletionProvider for a command (spec section
// 4.10 step 2's "static CompletionProvider registry").
func (b *Blender) Register(command string, provider CompletionProvider) {
	b.providers[strings.ToLower(command)] = provider
}

// GetSuggestion runs spec section 4.10's get_suggestion: it composes one
// inline completion string for input, or returns ("", false) if nothing
// qualifies. Known (static) candidates always outrank learned candidates;
// learned-side generation is bounded by the configured latency budget and
// falls back to static-only on timeout, per spec section 4.10's hard
// latency requirement.
func (b *Blender) GetSuggestion(input string) (string, bool) {
	command, args := splitCommand(input)
	if command == "" {
		return "", false
	}

	var known []string
	if provider, ok := b.providers[strings.ToLower(command)]; ok && provider != nil {
		known = provider.Complete(command, args)
	}

	learned := b.learnedCandidatesWithBudget(input, command, args)

	candidate, ok := chooseCandidate(known, learned)
	if !ok {
		return "", false
	}
	return combine(input, candidate), true
}

// learnedCandidatesWithBudget queries GenericPredictor on a background
// goroutine and races it against the configured latency budget, so a slow
// predictor call can never blow spec section 4.10's hard ≤20ms ceiling —
// a single call racing a deadline has no need for errgroup's multi-task
// fan-in, so this is a plain goroutine plus a buffered result channel.
func (b *Blender) learnedCandidatesWithBudget(input, command string, args []string) []string {
	if b.pred == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.budget)
	defer cancel()

	result := make(chan []predictor.Suggestion, 1)
	go func() {
		req := predictor.Request{
			Command:         command,
			FullLine:        input,
			WordToComplete:  predictor.WordToComplete(input),
			CurrentArgument: args,
		}
		result <- b.pred.Predict(req)
	}()

	select {
	case sugg := <-result:
		texts := make([]string, 0, len(sugg))
		for _, s := range sugg {
			texts = append(texts, s.Text)
		}
		return texts
	case <-ctx.Done():
		b.log.Warn("learned candidate generation exceeded latency budget, falling back to static-only")
		return nil
	}
}

// chooseCandidate implements spec section 4.10 step 4: known candidates
// outrank learned ones; within a class, preserve caller ordering (both
// providers already return their own best-first order).
func chooseCandidate(known, learned []string) (string, bool) {
	if len(known) > 0 {
		return known[0], true
	}
	if len(learned) > 0 {
		return learned[0], true
	}
	return "", false
}

// splitCommand extracts the first whitespace-delimited token as the
// command and the remainder as args, matching spec section 4.10 step 1's
// first_token(input).
func splitCommand(input string) (string, []string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// combine implements spec section 4.10 step 5's "combine" contract
// exactly, including the never-character-level-merge guarantee.
func combine(input, candidate string) string {
	if candidate == "" {
		return input
	}
	trimmedTrailingSpace := strings.HasSuffix(input, " ")
	lastWord := lastToken(input)

	switch {
	case lastWord != "" && strings.HasPrefix(strings.ToLower(candidate), strings.ToLower(lastWord)):
		return replaceLastWord(input, candidate)
	case looksAbsolutePath(candidate):
		return replaceLastWord(input, candidate)
	case strings.Contains(candidate, " ") && firstWordStartsWith(candidate, lastWord):
		return replaceLastWord(input, candidate)
	case trimmedTrailingSpace || lastWord == "":
		return input + candidate
	default:
		return input + " " + candidate
	}
}

func lastToken(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 || strings.HasSuffix(input, " ") {
		return ""
	}
	return fields[len(fields)-1]
}

func firstWordStartsWith(candidate, lastWord string) bool {
	if lastWord == "" {
		return false
	}
	first := strings.Fields(candidate)
	if len(first) == 0 {
		return false
	}
	return strings.HasPrefix(strings.ToLower(first[0]), strings.ToLower(lastWord))
}

func looksAbsolutePath(s string) bool {
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, `\\`) {
		return true
	}
	if len(s) >= 2 && isASCIILetter(s[0]) && s[1] == ':' {
		return true
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// replaceLastWord drops the trailing partial word from input (if any) and
// appends candidate in its place, never splicing mid-word.
func replaceLastWord(input, candidate string) string {
	if strings.HasSuffix(input, " ") || input == "" {
		return input + candidate
	}
	idx := strings.LastIndexByte(input, ' ')
	if idx < 0 {
		return candidate
	}
	return input[:idx+1] + candidate
}
