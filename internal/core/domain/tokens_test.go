package domain

import "testing"

func TestTokenSetJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    TokenSet
		b    TokenSet
		want float64
	}{
		{
			name: "identical",
			a:    NewTokenSet("vitamin", "c"),
			b:    NewTokenSet("vitamin", "c"),
			want: 1.0,
		},
		{
			name: "partial_overlap",
			a:    NewTokenSet("vitamin", "c"),
			b:    NewTokenSet("vitamin", "c", "ingredients"),
			want: 2.0 / 3.0,
		},
		{
			name: "disjoint",
			a:    NewTokenSet("shampoo"),
			b:    NewTokenSet("conditioner"),
			want: 0,
		},
		{
			name: "both_empty",
			a:    TokenSet{},
			b:    TokenSet{},
			want: 0,
		},
		{
			name: "one_empty",
			a:    NewTokenSet("shampoo"),
			b:    TokenSet{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Jaccard(tt.b); got != tt.want {
				t.Errorf("Jaccard() = %v, want %v", got, tt.want)
			}

			if got := tt.b.Jaccard(tt.a); got != tt.want {
				t.Errorf("Jaccard() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenSetSorted(t *testing.T) {
	s := NewTokenSet("zinc", "aloe", "mint")

	got := s.Sorted()
	want := []string{"aloe", "mint", "zinc"}

	if len(got) != len(want) {
		t.Fatalf("Sorted() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
