package coords

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func decode(t *testing.T, s string) Node {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	n, err := FromJSON(v)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	return n
}

func encode(t *testing.T, n Node) string {
	t.Helper()
	b, err := json.Marshal(n.JSON())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func double(p Position) (Position, error) {
	out := make(Position, len(p))
	for i, v := range p {
		out[i] = v * 2
	}
	return out, nil
}

func TestTraverse_PreservesShape(t *testing.T) {
	cases := []struct{ in, want string }{
		{`[1,2]`, `[2,4]`},
		{`[[1,2],[3,4]]`, `[[2,4],[6,8]]`},
		{`[[[1,2,3],[3,4,5],[1,2,3]]]`, `[[[2,4,6],[6,8,10],[2,4,6]]]`},
		{`[[[[0,0],[1,0],[1,1],[0,0]]],[[[5,5],[6,5],[6,6],[5,5]]]]`,
			`[[[[0,0],[2,0],[2,2],[0,0]]],[[[10,10],[12,10],[12,12],[10,10]]]]`},
		{`[]`, `[]`},
	}
	for _, c := range cases {
		n := decode(t, c.in)
		out, err := Traverse(n, double)
		if err != nil {
			t.Fatalf("Traverse(%s): %v", c.in, err)
		}
		if got := encode(t, out); got != c.want {
			t.Fatalf("Traverse(%s) = %s want %s", c.in, got, c.want)
		}
		if got := encode(t, n); got != c.in {
			t.Fatalf("input mutated: %s -> %s", c.in, got)
		}
	}
}

func TestTraverse_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Traverse(decode(t, `[[1,2],[3,4],[5,6]]`), func(p Position) (Position, error) {
		calls++
		if p[0] == 3 {
			return nil, boom
		}
		return p, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}
}

func TestFromJSON_Malformed(t *testing.T) {
	for _, v := range []any{"x", 1.0, []any{[]any{1.0, "a"}}, map[string]any{}} {
		if _, err := FromJSON(v); !errors.Is(err, ErrMalformed) {
			t.Fatalf("FromJSON(%v) err=%v want ErrMalformed", v, err)
		}
	}
}

func TestExplode(t *testing.T) {
	got := Explode(decode(t, `[[[1,2],[3,4]],[[5,6]]]`))
	want := []Position{{1, 2}, {3, 4}, {5, 6}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Explode = %v want %v", got, want)
	}
}

func TestBBox(t *testing.T) {
	b, err := BBox([]Position{{1, 5}, {-2, 3}, {4, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b, []float64{-2, 0, 4, 5}) {
		t.Fatalf("2D bbox = %v", b)
	}

	b, err = BBox([]Position{{1, 5, 10}, {-2, 3, -1}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b, []float64{-2, 3, -1, 1, 5, 10}) {
		t.Fatalf("3D bbox = %v", b)
	}

	if _, err := BBox([]Position{{1, 2}, {1, 2, 3}}); !errors.Is(err, ErrMixedDimensions) {
		t.Fatalf("mixed dims err=%v", err)
	}
	if _, err := BBox([]Position{{1, 2, 3, 4}}); !errors.Is(err, ErrMixedDimensions) {
		t.Fatalf("4D err=%v", err)
	}
}
