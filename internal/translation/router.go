package translation

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// RouterProviderName identifies the router itself in results and errors that
// no single provider produced.
const RouterProviderName = "router"

// ExhaustedError reports that every configured provider and key failed for
// one request. Attempted lists provider names in the order they were tried.
type ExhaustedError struct {
	Attempted []string
	Errs      []error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf(
		"all translation providers failed (attempted: %s)",
		strings.Join(e.Attempted, ", "),
	)
}

func (e *ExhaustedError) Unwrap() []error {
	return e.Errs
}

// Router executes one translation request against an ordered list of provider
// groups, alternating the starting provider across top-level calls and falling
// back across providers and keys on failure.
//
// Safe for concurrent use; the group cursor and each group's key cursor are
// the only mutable state and both are atomic counters.
type Router struct {
	groups []*Group
	byName map[string]*Group
	cursor atomic.Uint64
	logger zerolog.Logger
}

// NewRouter wraps the ordered groups. An empty group list is a configuration
// error and fails construction rather than the first request.
func NewRouter(groups []*Group, logger zerolog.Logger) (*Router, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("translation router requires at least one provider group")
	}

	byName := make(map[string]*Group, len(groups))
	for i, group := range groups {
		if group == nil || group.Size() == 0 {
			return nil, fmt.Errorf("provider group %d is empty", i)
		}
		if _, exists := byName[group.Name()]; exists {
			return nil, fmt.Errorf("duplicate provider group %q", group.Name())
		}
		byName[group.Name()] = group
	}

	return &Router{
		groups: groups,
		byName: byName,
		logger: logger,
	}, nil
}

// ProviderNames returns the configured provider order.
func (r *Router) ProviderNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.groups))
	for _, group := range r.groups {
		names = append(names, group.Name())
	}
	return names
}

// Group resolves one provider group by name.
func (r *Router) Group(name string) (*Group, bool) {
	if r == nil {
		return nil, false
	}
	group, ok := r.byName[normalizeProviderName(name)]
	return group, ok
}

// Translate routes one request. The starting group advances round-robin per
// top-level call. Each visited group advances its own key rotation once and
// then gets every one of its keys, in rotation order, before the next group
// is tried. The first non-blank success wins.
//
// Provider-side failures never escape as panics or errors per attempt; total
// exhaustion returns an *ExhaustedError. Cancelling ctx aborts the whole
// fallback loop, not just the in-flight attempt.
func (r *Router) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if r == nil || len(r.groups) == 0 {
		return nil, fmt.Errorf("translation router is not initialized")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	if normalizeLangCode(req.TargetLang) == "" {
		return nil, fmt.Errorf("target language is required")
	}

	start := int((r.cursor.Add(1) - 1) % uint64(len(r.groups)))

	attempted := make([]string, 0, len(r.groups))
	var errs []error

	for providerOffset := 0; providerOffset < len(r.groups); providerOffset++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("translation cancelled: %w", err)
		}

		group := r.groups[(start+providerOffset)%len(r.groups)]
		attempted = append(attempted, group.Name())
		base := group.NextIndex()

		for keyOffset := 0; keyOffset < group.Size(); keyOffset++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("translation cancelled: %w", err)
			}

			keyIndex := (base + keyOffset) % group.Size()
			resp, err := r.attempt(ctx, group.TranslatorAt(base, keyOffset), req)
			if err == nil {
				resp.ProviderName = group.Name()
				resp.KeyIndex = keyIndex
				return resp, nil
			}

			errs = append(errs, fmt.Errorf("%s key %d: %w", group.Name(), keyIndex, err))
			r.logger.Warn().
				Str("provider", group.Name()).
				Int("key_index", keyIndex).
				Err(err).
				Msg("translation attempt failed")
		}
	}

	return nil, &ExhaustedError{Attempted: attempted, Errs: errs}
}

// attempt runs one translator call, converting panics and blank translations
// into ordinary errors so that the fallback loop keeps going.
func (r *Router) attempt(ctx context.Context, t Translator, req TranslateRequest) (resp *TranslateResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = fmt.Errorf("provider panic: %v", rec)
		}
	}()

	resp, err = t.Translate(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("blank translation")
	}
	return resp, nil
}
