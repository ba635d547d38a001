package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sourcegraph/conc"
)

// InvalidVideoIDError is returned when the caller-supplied ID fails
// canonical validation before any probe is launched.
type InvalidVideoIDError struct {
	Input string
}

func (e *InvalidVideoIDError) Error() string {
	return fmt.Sprintf("invalid video id: %q", e.Input)
}

// SessionTimeout bounds the whole fan-out per SPEC_FULL.md §5
// ("A 20-second session-wide deadline bounds every probe").
const SessionTimeout = 20 * time.Second

// Orchestrator fans a video ID out across every enabled probe, isolates
// per-probe failures, and synthesizes a Verdict from whatever succeeded.
type Orchestrator struct {
	registry  *Registry
	cache     *ResultCache
	cooldown  *CooldownRegistry
	roster    func() []Probe
	userAgent string
}

// NewOrchestrator builds an Orchestrator over registry, using isEnabled to
// compute the roster at construction time (the enabled set is a pure
// function of config, fixed for the process lifetime per SPEC_FULL.md §4.2).
func NewOrchestrator(registry *Registry, cache *ResultCache, cooldown *CooldownRegistry, userAgent string, isEnabled func(string) bool) *Orchestrator {
	roster := registry.Enabled(isEnabled)
	return &Orchestrator{
		registry:  registry,
		cache:     cache,
		cooldown:  cooldown,
		userAgent: userAgent,
		roster:    func() []Probe { return roster },
	}
}

// runWorker consumes one probe's Run output: it tags and buffers Links,
// then on the terminal ProbeResult attaches the buffered links, clears
// RawRaw when includeRaw is false, and returns. A panicking probe is
// converted into an error ProbeResult rather than crashing the batch.
func (o *Orchestrator) runWorker(ctx context.Context, p Probe, videoID string, session *Session, includeRaw bool) (result ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(p.Classname(), p.Name(), fmt.Errorf("panic: %v", r), nil, nowSeconds(), false)
		}
	}()

	compute := func() ProbeResult {
		if o.cooldown != nil {
			if err := o.cooldown.Wait(ctx, p.Classname()); err != nil {
				return errorResult(p.Classname(), p.Name(), err, nil, nowSeconds(), false)
			}
		}

		ch := make(chan Item, 8)
		go runProbeSafely(ctx, p, videoID, session, includeRaw, ch)

		var links []Link
		var terminal *ProbeResult
		for item := range ch {
			if item.Link != nil {
				l := *item.Link
				l.Classname = p.Classname()
				links = append(links, l)
				continue
			}
			if item.Result != nil {
				r := *item.Result
				terminal = &r
			}
		}

		if terminal == nil {
			return errorResult(p.Classname(), p.Name(), fmt.Errorf("probe closed without a terminal result"), links, nowSeconds(), anyComments(links))
		}
		terminal.Classname = p.Classname()
		terminal.Available = links
		if !includeRaw {
			terminal.RawRaw = nil
		}
		return *terminal
	}

	if o.cache == nil {
		return compute()
	}
	return o.cache.GetOrCompute(p.Classname(), videoID, includeRaw, compute)
}

// runProbeSafely calls p.Run, recovering any panic so it cannot crash the
// process. The panic happens in its own goroutine (spawned by the caller),
// so it must be recovered here rather than by the caller's own
// defer/recover, which runs in a different goroutine and would never
// observe it. Every concrete probe defers close(ch) as its first statement,
// so by the time a panic reaches this recover the channel is already
// closed; the consuming loop then sees a channel close with no terminal
// Result and the caller's own "probe closed without a terminal result"
// fallback takes over.
func runProbeSafely(ctx context.Context, p Probe, videoID string, session *Session, includeRaw bool, ch chan<- Item) {
	defer func() {
		recover()
	}()
	p.Run(ctx, videoID, session, includeRaw, ch)
}

func anyComments(links []Link) bool {
	for _, l := range links {
		if l.Contains.Comments {
			return true
		}
	}
	return false
}

// Run executes the batch entry point: generate(id, includeRaw).
func (o *Orchestrator) Run(ctx context.Context, videoID string, includeRaw bool) (*ResponseBatch, error) {
	roster := o.roster()
	ctx, cancel := context.WithTimeout(ctx, SessionTimeout)
	defer cancel()

	session := &Session{Client: &http.Client{Timeout: SessionTimeout}, UserAgent: o.userAgent}

	var wg conc.WaitGroup
	results := make([]ProbeResult, len(roster))
	for i, p := range roster {
		i, p := i, p
		wg.Go(func() {
			results[i] = o.runWorker(ctx, p, videoID, session, includeRaw)
		})
	}
	wg.Wait()

	verdict := SynthesizeVerdict(results)
	return &ResponseBatch{Keys: results, Verdict: verdict}, nil
}

// ResponseBatch is the engine-internal batch result; the api package wraps
// it with ID/Status/APIVersion to form the wire ResponseEnvelope.
type ResponseBatch struct {
	Keys    []ProbeResult
	Verdict Verdict
}

// RunStream executes the streaming entry point: generateStream(id,
// includeRaw). It sends the four-phase framing described in SPEC_FULL.md
// §3.7 onto out, then closes out: one names map, interleaved Link/ProbeResult
// items in arrival order, one nil sentinel, one Verdict.
func (o *Orchestrator) RunStream(ctx context.Context, videoID string, includeRaw bool, out chan<- Item) {
	defer close(out)

	roster := o.roster()
	ctx, cancel := context.WithTimeout(ctx, SessionTimeout)
	defer cancel()

	names := make(map[string]string, len(roster))
	for _, p := range roster {
		names[p.Classname()] = p.Name()
	}
	out <- Item{NamesMap: names}

	session := &Session{Client: &http.Client{Timeout: SessionTimeout}, UserAgent: o.userAgent}

	merged := make(chan Item, 32)
	var wg conc.WaitGroup
	for _, p := range roster {
		p := p
		wg.Go(func() {
			result := o.runStreamWorker(ctx, p, videoID, session, includeRaw, merged)
			merged <- Item{Result: &result}
		})
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	var all []ProbeResult
	for item := range merged {
		out <- item
		if item.Result != nil {
			all = append(all, *item.Result)
		}
	}

	out <- Item{Sentinel: true}
	verdict := SynthesizeVerdict(all)
	out <- Item{Verdict: &verdict}
}

// runStreamWorker mirrors runWorker but forwards each Link onto merged as it
// arrives instead of buffering, per the streaming ordering guarantee in
// SPEC_FULL.md §4.7 ("links appear before the terminal ProbeResult and in
// the order yielded").
func (o *Orchestrator) runStreamWorker(ctx context.Context, p Probe, videoID string, session *Session, includeRaw bool, merged chan<- Item) (result ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(p.Classname(), p.Name(), fmt.Errorf("panic: %v", r), nil, nowSeconds(), false)
		}
	}()

	if o.cooldown != nil {
		if err := o.cooldown.Wait(ctx, p.Classname()); err != nil {
			return errorResult(p.Classname(), p.Name(), err, nil, nowSeconds(), false)
		}
	}

	ch := make(chan Item, 8)
	go runProbeSafely(ctx, p, videoID, session, includeRaw, ch)

	var links []Link
	var terminal *ProbeResult
	for item := range ch {
		if item.Link != nil {
			l := *item.Link
			l.Classname = p.Classname()
			links = append(links, l)
			merged <- Item{Link: &l}
			continue
		}
		if item.Result != nil {
			r := *item.Result
			terminal = &r
		}
	}
	if terminal == nil {
		return errorResult(p.Classname(), p.Name(), fmt.Errorf("probe closed without a terminal result"), links, nowSeconds(), anyComments(links))
	}
	terminal.Classname = p.Classname()
	terminal.Available = links
	if !includeRaw {
		terminal.RawRaw = nil
	}
	return *terminal
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
