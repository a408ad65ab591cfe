package crawler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()

	f, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}

	t.Cleanup(func() { f.Close() })

	return f
}

func TestIndex_Ports(t *testing.T) {
	idx, err := ParseIndex(openFixture(t, "index.html"))
	if err != nil {
		t.Fatalf("ParseIndex failed: %v", err)
	}

	got, err := idx.Ports("CN")
	if err != nil {
		t.Fatalf("Ports(CN) failed: %v", err)
	}

	want := []PortLink{
		{Name: "Shanghai", Href: "/en-IN/knowledge-center/resources/port-info/shanghai"},
		{Name: "Ningbo Zhoushan", Href: "/en-IN/knowledge-center/resources/port-info/ningbo"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Ports(CN) mismatch (-want +got):\n%s", diff)
	}

	mx, err := idx.Ports("MX")
	if err != nil || len(mx) != 1 || mx[0].Name != "Veracruz" {
		t.Errorf("Ports(MX) = (%+v, %v), want Veracruz only", mx, err)
	}
}

func TestIndex_Ports_NotListed(t *testing.T) {
	idx, err := ParseIndex(openFixture(t, "index.html"))
	if err != nil {
		t.Fatalf("ParseIndex failed: %v", err)
	}

	for _, code := range []string{"CL", "Country not found!", "C"} {
		if _, err := idx.Ports(code); !errors.Is(err, ErrCountryNotListed) {
			t.Errorf("Ports(%q) error = %v, want ErrCountryNotListed", code, err)
		}
	}
}

func TestIndex_Ports_ShallowLabel(t *testing.T) {
	idx, err := ParseIndex(strings.NewReader("(CN)"))
	if err != nil {
		t.Fatalf("ParseIndex failed: %v", err)
	}

	// The label sits three levels below the document root.
	if _, err := idx.Ports("CN"); !errors.Is(err, ErrMalformedIndex) {
		t.Errorf("Ports(CN) error = %v, want ErrMalformedIndex", err)
	}
}

func TestIndex_Ports_UnevenBlock(t *testing.T) {
	page := `<div><div><h3><span>(US)</span></h3></div>
<p>New York</p><a href="/ny">ny</a><p>Savannah</p></div>`

	idx, err := ParseIndex(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseIndex failed: %v", err)
	}

	got, err := idx.Ports("US")
	if err != nil {
		t.Fatalf("Ports(US) failed: %v", err)
	}

	want := []PortLink{{Name: "New York", Href: "/ny"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Ports(US) mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePortPage(t *testing.T) {
	page, err := ParsePortPage(openFixture(t, "port.html"), PageOptions{
		ImportClass: "styles_info__gszri",
		ExportClass: "styles_info__SMa4k",
		LinesStride: 5,
	})
	if err != nil {
		t.Fatalf("ParsePortPage failed: %v", err)
	}

	want := &PortPage{
		Lines:              []string{"COSCO", "MAERSK"},
		ImportRestrictions: "No import of used tyres.",
		ExportRestrictions: "Export licence required for scrap metal.",
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("ParsePortPage mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePortPage_MissingBlocks(t *testing.T) {
	page, err := ParsePortPage(strings.NewReader("<html><body><p>Nothing here</p></body></html>"), PageOptions{
		ImportClass: "styles_info__gszri",
		ExportClass: "styles_info__SMa4k",
		LinesStride: 5,
	})
	if err != nil {
		t.Fatalf("ParsePortPage failed: %v", err)
	}

	if len(page.Lines) != 0 || page.ImportRestrictions != "" || page.ExportRestrictions != "" {
		t.Errorf("expected empty page, got %+v", page)
	}
}

func TestParsePortPage_Stride(t *testing.T) {
	table := "<table><tr><td>A</td><td>B</td><td>C</td><td>D</td><td></td><td>A</td></tr></table>"

	tests := []struct {
		stride int
		want   []string
	}{
		{1, []string{"A", "B", "C", "D"}},
		{2, []string{"A", "C"}},
		{5, []string{"A"}},
		{0, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		page, err := ParsePortPage(strings.NewReader(table), PageOptions{LinesStride: tt.stride})
		if err != nil {
			t.Fatalf("ParsePortPage failed: %v", err)
		}

		if diff := cmp.Diff(tt.want, page.Lines); diff != "" {
			t.Errorf("stride %d mismatch (-want +got):\n%s", tt.stride, diff)
		}
	}
}
