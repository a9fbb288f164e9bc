package util

import (
	"context"
	"reflect"
	"testing"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/store/memory"
)

func TestExtractCitationIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no citations",
			text: "hello world",
			want: []string{},
		},
		{
			name: "single citation",
			text: "Ada Sorel [[emp_123]] is the strongest match.",
			want: []string{"emp_123"},
		},
		{
			name: "multiple citations keep order",
			text: "[[emp_b]] and [[emp_a]] and [[emp_c]]",
			want: []string{"emp_b", "emp_a", "emp_c"},
		},
		{
			name: "duplicate citations deduplicated",
			text: "[[emp_a]] again [[emp_a]]",
			want: []string{"emp_a"},
		},
		{
			name: "invalid nested brackets ignored",
			text: "[[emp_a[b]] and [[emp_x]]",
			want: []string{"emp_x"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractCitationIDs(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractCitationIDs(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestResolveEmployeeCitations(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	if err := st.SaveEmployees(ctx, []common.Employee{
		{ID: "emp_1", Name: "Ada Sorel", Department: "Engineering", Role: "Senior Engineer"},
		{ID: "emp_2", Name: "Ben Ito", Department: "Design", Role: "Designer"},
	}); err != nil {
		t.Fatalf("SaveEmployees failed: %v", err)
	}

	text := "Best fits: [[emp_2]], then [[emp_1]]. Ignore [[emp_invented]]."
	resolved, err := ResolveEmployeeCitations(ctx, st, text)
	if err != nil {
		t.Fatalf("ResolveEmployeeCitations failed: %v", err)
	}

	want := []CitationData{
		{ID: "emp_2", Name: "Ben Ito", Department: "Design", Role: "Designer"},
		{ID: "emp_1", Name: "Ada Sorel", Department: "Engineering", Role: "Senior Engineer"},
	}
	if !reflect.DeepEqual(resolved, want) {
		t.Errorf("ResolveEmployeeCitations = %+v, want %+v", resolved, want)
	}
}

func TestResolveEmployeeCitationsEmpty(t *testing.T) {
	resolved, err := ResolveEmployeeCitations(context.Background(), memory.NewStore(), "no citations here")
	if err != nil {
		t.Fatalf("ResolveEmployeeCitations failed: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("ResolveEmployeeCitations = %v, want empty", resolved)
	}
}
