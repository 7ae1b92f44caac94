package translation

import "testing"

func TestNewGroupValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewGroup("  ", []Translator{&stubTranslator{provider: "x"}}); err == nil {
		t.Fatalf("expected error for blank group name")
	}
	if _, err := NewGroup("alpha", nil); err == nil {
		t.Fatalf("expected error for empty translator list")
	}
	if _, err := NewGroup("alpha", []Translator{nil}); err == nil {
		t.Fatalf("expected error for nil translator")
	}

	group, err := NewGroup("  Alpha ", []Translator{&stubTranslator{provider: "alpha"}})
	if err != nil {
		t.Fatalf("new group: %v", err)
	}
	if group.Name() != "alpha" {
		t.Fatalf("got name %q, want normalized %q", group.Name(), "alpha")
	}
	if group.Size() != 1 {
		t.Fatalf("got size %d, want 1", group.Size())
	}
}

func TestGroupNextIndexRotates(t *testing.T) {
	t.Parallel()

	group := newStubGroup(t, "alpha",
		&stubTranslator{provider: "alpha", keyIndex: 0},
		&stubTranslator{provider: "alpha", keyIndex: 1},
		&stubTranslator{provider: "alpha", keyIndex: 2},
	)

	want := []int{0, 1, 2, 0, 1, 2, 0}
	for i, expected := range want {
		if got := group.NextIndex(); got != expected {
			t.Fatalf("call %d returned index %d, want %d", i, got, expected)
		}
	}
}

func TestGroupTranslatorAtWrapsAround(t *testing.T) {
	t.Parallel()

	keys := []*stubTranslator{
		{provider: "alpha", keyIndex: 0},
		{provider: "alpha", keyIndex: 1},
		{provider: "alpha", keyIndex: 2},
	}
	group := newStubGroup(t, "alpha", keys...)

	cases := []struct {
		base, offset, want int
	}{
		{0, 0, 0},
		{0, 2, 2},
		{1, 2, 0},
		{2, 2, 1},
		{2, 4, 0},
	}
	for _, tc := range cases {
		got := group.TranslatorAt(tc.base, tc.offset).(*stubTranslator)
		if got.keyIndex != tc.want {
			t.Fatalf("TranslatorAt(%d, %d) returned key %d, want %d", tc.base, tc.offset, got.keyIndex, tc.want)
		}
	}
}
