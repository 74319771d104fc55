package pagination

import "testing"

func TestNormalizePageSize(t *testing.T) {
	cases := map[int]int{0: DefaultPageSize, -5: DefaultPageSize, 10: 10, 500: MaxPageSize}
	for in, want := range cases {
		if got := NormalizePageSize(in); got != want {
			t.Fatalf("NormalizePageSize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestWindowZeroTotalReturnsSinglePage(t *testing.T) {
	page, size, totalPages, offset := Params{Page: 3, PageSize: 10}.Window(0)
	if page != 1 || size != 10 || totalPages != 1 || offset != 0 {
		t.Fatalf("unexpected window page=%d size=%d pages=%d offset=%d", page, size, totalPages, offset)
	}
}

func TestWindowClampsOvershootToLastPage(t *testing.T) {
	page, _, totalPages, offset := Params{Page: 9, PageSize: 10}.Window(25)
	if totalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", totalPages)
	}
	if page != 3 {
		t.Fatalf("expected clamp to page 3, got %d", page)
	}
	if offset != 20 {
		t.Fatalf("expected offset 20, got %d", offset)
	}
}

func TestWindowNegativePage(t *testing.T) {
	page, _, _, offset := Params{Page: -1, PageSize: 5}.Window(12)
	if page != 1 || offset != 0 {
		t.Fatalf("expected first page, got page=%d offset=%d", page, offset)
	}
}

func TestEmptyAndMap(t *testing.T) {
	empty := Empty[int](Params{PageSize: 7})
	if empty.TotalPages != 1 || empty.Items == nil || len(empty.Items) != 0 || empty.PageSize != 7 {
		t.Fatalf("unexpected empty page %+v", empty)
	}

	mapped := Map(Page[int]{Page: 2, PageSize: 2, Total: 4, TotalPages: 2, Items: []int{3, 4}}, func(v int) string {
		return string(rune('a' + v))
	})
	if mapped.Page != 2 || mapped.Total != 4 || len(mapped.Items) != 2 || mapped.Items[0] != "d" {
		t.Fatalf("unexpected mapped page %+v", mapped)
	}
}
