package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// stubTranslator is a scriptable Translator for router tests. Each call is
// recorded so tests can assert attempt order.
type stubTranslator struct {
	provider string
	keyIndex int
	fail     bool
	panics   bool
	blank    bool
	onCall   func()
	calls    int
}

func (s *stubTranslator) Translate(_ context.Context, req TranslateRequest) (*TranslateResponse, error) {
	s.calls++
	if s.onCall != nil {
		s.onCall()
	}
	if s.panics {
		panic("stub translator exploded")
	}
	if s.fail {
		return nil, fmt.Errorf("stub failure %s/%d", s.provider, s.keyIndex)
	}
	text := req.Text
	if s.blank {
		text = "   "
	}
	return &TranslateResponse{
		Text:       "[" + s.provider + "] " + text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	}, nil
}

func (s *stubTranslator) Provider() string {
	return s.provider
}

func newStubGroup(t *testing.T, name string, stubs ...*stubTranslator) *Group {
	t.Helper()
	translators := make([]Translator, 0, len(stubs))
	for _, stub := range stubs {
		translators = append(translators, stub)
	}
	group, err := NewGroup(name, translators)
	if err != nil {
		t.Fatalf("new group %s: %v", name, err)
	}
	return group
}

func newTestRouter(t *testing.T, groups ...*Group) *Router {
	t.Helper()
	router, err := NewRouter(groups, zerolog.Nop())
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router
}

func testRequest() TranslateRequest {
	return TranslateRequest{Text: "hello world", SourceLang: "en", TargetLang: "zh"}
}

func TestNewRouterRejectsEmptyGroupList(t *testing.T) {
	t.Parallel()

	if _, err := NewRouter(nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for empty group list")
	}
	if _, err := NewRouter([]*Group{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for zero groups")
	}
}

func TestNewRouterRejectsDuplicateGroups(t *testing.T) {
	t.Parallel()

	a := newStubGroup(t, "alpha", &stubTranslator{provider: "alpha"})
	b := newStubGroup(t, "alpha", &stubTranslator{provider: "alpha"})
	if _, err := NewRouter([]*Group{a, b}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for duplicate group name")
	}
}

func TestTranslateAlternatesStartingProvider(t *testing.T) {
	t.Parallel()

	alpha := &stubTranslator{provider: "alpha"}
	beta := &stubTranslator{provider: "beta"}
	router := newTestRouter(t,
		newStubGroup(t, "alpha", alpha),
		newStubGroup(t, "beta", beta),
	)

	var got []string
	for i := 0; i < 4; i++ {
		resp, err := router.Translate(context.Background(), testRequest())
		if err != nil {
			t.Fatalf("translate %d: %v", i, err)
		}
		got = append(got, resp.ProviderName)
	}

	want := []string{"alpha", "beta", "alpha", "beta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d used provider %s, want %s (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestTranslateRotatesKeysAcrossCalls(t *testing.T) {
	t.Parallel()

	keys := []*stubTranslator{
		{provider: "alpha", keyIndex: 0},
		{provider: "alpha", keyIndex: 1},
		{provider: "alpha", keyIndex: 2},
	}
	router := newTestRouter(t, newStubGroup(t, "alpha", keys...))

	var got []int
	for i := 0; i < 4; i++ {
		resp, err := router.Translate(context.Background(), testRequest())
		if err != nil {
			t.Fatalf("translate %d: %v", i, err)
		}
		got = append(got, resp.KeyIndex)
	}

	want := []int{0, 1, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d used key %d, want %d (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestTranslateShortCircuitsOnSuccess(t *testing.T) {
	t.Parallel()

	alpha := &stubTranslator{provider: "alpha"}
	alphaSpare := &stubTranslator{provider: "alpha", keyIndex: 1}
	beta := &stubTranslator{provider: "beta"}
	router := newTestRouter(t,
		newStubGroup(t, "alpha", alpha, alphaSpare),
		newStubGroup(t, "beta", beta),
	)

	resp, err := router.Translate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.ProviderName != "alpha" || resp.KeyIndex != 0 {
		t.Fatalf("got provider=%s key=%d, want alpha key 0", resp.ProviderName, resp.KeyIndex)
	}
	if alphaSpare.calls != 0 {
		t.Fatalf("spare key was called %d times", alphaSpare.calls)
	}
	if beta.calls != 0 {
		t.Fatalf("fallback provider was called %d times", beta.calls)
	}
}

func TestTranslateExhaustsKeysBeforeNextProvider(t *testing.T) {
	t.Parallel()

	alphaKeys := []*stubTranslator{
		{provider: "alpha", keyIndex: 0, fail: true},
		{provider: "alpha", keyIndex: 1, fail: true},
		{provider: "alpha", keyIndex: 2, fail: true},
	}
	beta := &stubTranslator{provider: "beta"}
	router := newTestRouter(t,
		newStubGroup(t, "alpha", alphaKeys...),
		newStubGroup(t, "beta", beta),
	)

	resp, err := router.Translate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.ProviderName != "beta" {
		t.Fatalf("got provider %s, want beta", resp.ProviderName)
	}
	for i, key := range alphaKeys {
		if key.calls != 1 {
			t.Fatalf("alpha key %d called %d times, want exactly 1", i, key.calls)
		}
	}
}

func TestTranslateFallsBackAcrossAllProviders(t *testing.T) {
	t.Parallel()

	deeplKeys := []*stubTranslator{
		{provider: "deepl", keyIndex: 0, fail: true},
		{provider: "deepl", keyIndex: 1, fail: true},
	}
	azure := &stubTranslator{provider: "azure", fail: true}
	google := &stubTranslator{provider: "google", fail: true}
	bing := &stubTranslator{provider: "bing"}
	router := newTestRouter(t,
		newStubGroup(t, "deepl", deeplKeys...),
		newStubGroup(t, "azure", azure),
		newStubGroup(t, "google", google),
		newStubGroup(t, "bing", bing),
	)

	resp, err := router.Translate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.ProviderName != "bing" {
		t.Fatalf("got provider %s, want bing", resp.ProviderName)
	}
	for i, key := range deeplKeys {
		if key.calls != 1 {
			t.Fatalf("deepl key %d called %d times, want 1", i, key.calls)
		}
	}
	if azure.calls != 1 || google.calls != 1 || bing.calls != 1 {
		t.Fatalf("unexpected call counts: azure=%d google=%d bing=%d", azure.calls, google.calls, bing.calls)
	}
}

func TestTranslateExhaustionNamesEveryAttemptedProvider(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t,
		newStubGroup(t, "alpha",
			&stubTranslator{provider: "alpha", keyIndex: 0, fail: true},
			&stubTranslator{provider: "alpha", keyIndex: 1, fail: true},
		),
		newStubGroup(t, "beta", &stubTranslator{provider: "beta", fail: true}),
		newStubGroup(t, "gamma", &stubTranslator{provider: "gamma", fail: true}),
	)

	_, err := router.Translate(context.Background(), testRequest())
	if err == nil {
		t.Fatalf("expected exhaustion error")
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T: %v", err, err)
	}

	want := []string{"alpha", "beta", "gamma"}
	if len(exhausted.Attempted) != len(want) {
		t.Fatalf("attempted %v, want %v", exhausted.Attempted, want)
	}
	for i := range want {
		if exhausted.Attempted[i] != want[i] {
			t.Fatalf("attempted %v, want %v", exhausted.Attempted, want)
		}
	}
	// Four keys failed in total, so four causes.
	if len(exhausted.Errs) != 4 {
		t.Fatalf("got %d underlying errors, want 4", len(exhausted.Errs))
	}
	if !strings.Contains(exhausted.Error(), "alpha, beta, gamma") {
		t.Fatalf("error message missing provider list: %s", exhausted.Error())
	}
}

func TestTranslateCancellationAbortsFallback(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	alpha := &stubTranslator{provider: "alpha", fail: true, onCall: cancel}
	beta := &stubTranslator{provider: "beta"}
	router := newTestRouter(t,
		newStubGroup(t, "alpha", alpha),
		newStubGroup(t, "beta", beta),
	)

	_, err := router.Translate(ctx, testRequest())
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		t.Fatalf("cancellation must not be reported as exhaustion")
	}
	if beta.calls != 0 {
		t.Fatalf("fallback provider was called %d times after cancellation", beta.calls)
	}
}

func TestTranslateRecoversProviderPanic(t *testing.T) {
	t.Parallel()

	alpha := &stubTranslator{provider: "alpha", panics: true}
	beta := &stubTranslator{provider: "beta"}
	router := newTestRouter(t,
		newStubGroup(t, "alpha", alpha),
		newStubGroup(t, "beta", beta),
	)

	resp, err := router.Translate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.ProviderName != "beta" {
		t.Fatalf("got provider %s, want beta after panic fallback", resp.ProviderName)
	}
}

func TestTranslateRejectsBlankTranslation(t *testing.T) {
	t.Parallel()

	alpha := &stubTranslator{provider: "alpha", blank: true}
	beta := &stubTranslator{provider: "beta"}
	router := newTestRouter(t,
		newStubGroup(t, "alpha", alpha),
		newStubGroup(t, "beta", beta),
	)

	resp, err := router.Translate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if resp.ProviderName != "beta" {
		t.Fatalf("got provider %s, want beta after blank result", resp.ProviderName)
	}
}

func TestTranslateValidatesRequest(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, newStubGroup(t, "alpha", &stubTranslator{provider: "alpha"}))

	if _, err := router.Translate(context.Background(), TranslateRequest{Text: "  ", TargetLang: "zh"}); err == nil {
		t.Fatalf("expected error for blank text")
	}
	if _, err := router.Translate(context.Background(), TranslateRequest{Text: "hello"}); err == nil {
		t.Fatalf("expected error for missing target language")
	}
}
