package toolbar

import "testing"

func TestPaletteSearch(t *testing.T) {
	items := append(twoDropdowns(&counter{}, &counter{}), Button("Delete table", "deleteTable", nil))
	p := NewPalette(items)

	if p.Len() != 4 {
		t.Fatalf("Len = %d", p.Len())
	}
	all := p.Search("", testView(t))
	if len(all) != 4 || all[0].Label != "Row operations › Add row before" {
		t.Errorf("empty query = %+v", all)
	}

	got := p.Search("deltab", testView(t))
	if len(got) == 0 || got[0].Leaf.Item.Title != "Delete table" {
		t.Fatalf("search = %+v", got)
	}
	if len(got[0].Matched) != len("deltab") {
		t.Errorf("matched = %v", got[0].Matched)
	}
	if len(p.Search("zzz", testView(t))) != 0 {
		t.Error("nonsense query should match nothing")
	}
}
