package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"shipscan/internal/models"
)

const portInfoPath = "/en-IN/knowledge-center/resources/port-info"

func fakeSite(t *testing.T) *httptest.Server {
	t.Helper()

	index, err := os.ReadFile(filepath.Join("testdata", "index.html"))
	if err != nil {
		t.Fatalf("failed to read index fixture: %v", err)
	}

	port, err := os.ReadFile(filepath.Join("testdata", "port.html"))
	if err != nil {
		t.Fatalf("failed to read port fixture: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(portInfoPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(index)
	})
	mux.HandleFunc(portInfoPath+"/shanghai", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(port)
	})
	mux.HandleFunc(portInfoPath+"/veracruz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body><table><tr><td>HAPAG</td></tr></table></body></html>"))
	})
	mux.HandleFunc(portInfoPath+"/ningbo", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_Enrich(t *testing.T) {
	srv := fakeSite(t)
	client := NewClient(*testScraperConfig(srv.URL), nil, nil)

	ports, stats, err := client.Enrich(context.Background(), []string{"MX", "CN", models.CountryNotFound, "CL", "CN"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}

	want := []models.PortInfo{
		{
			ISO:                "CN",
			Seaport:            "Shanghai",
			Lines:              "COSCO, MAERSK",
			ImportRestrictions: "No import of used tyres.",
			ExportRestrictions: "Export licence required for scrap metal.",
			Website:            srv.URL + portInfoPath + "/shanghai",
		},
		{
			ISO:     "MX",
			Seaport: "Veracruz",
			Lines:   "HAPAG",
			Website: srv.URL + portInfoPath + "/veracruz",
		},
	}
	if diff := cmp.Diff(want, ports); diff != "" {
		t.Errorf("Enrich ports mismatch (-want +got):\n%s", diff)
	}

	wantStats := EnrichStats{
		Countries: 2,
		Skipped:   2,
		Ports:     2,
		Failures: []Failure{
			{ISO: "CN", Port: "Ningbo Zhoushan", URL: srv.URL + portInfoPath + "/ningbo"},
		},
	}
	if diff := cmp.Diff(wantStats, stats, cmpopts.IgnoreFields(Failure{}, "Err")); diff != "" {
		t.Errorf("Enrich stats mismatch (-want +got):\n%s", diff)
	}

	if !errors.Is(stats.Failures[0].Err, ErrUnexpectedStatusCode) {
		t.Errorf("failure error = %v, want ErrUnexpectedStatusCode", stats.Failures[0].Err)
	}
}

func TestClient_Enrich_IndexFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := NewClient(*testScraperConfig(srv.URL), nil, nil)

	ports, _, err := client.Enrich(context.Background(), []string{"CN"})
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Errorf("Enrich error = %v, want index fetch failure", err)
	}

	if ports != nil {
		t.Errorf("expected no ports, got %d", len(ports))
	}
}

type staticFetcher map[string]string

func (f staticFetcher) Fetch(_ context.Context, url string) (string, error) {
	body, ok := f[url]
	if !ok {
		return "", errors.New("not found: " + url)
	}

	return body, nil
}

func TestClient_Enrich_WithFetcher(t *testing.T) {
	cfg := *testScraperConfig("https://ports.example.com")

	fetcher := staticFetcher{
		cfg.IndexURL(): `<div><div><h3><span>(CL)</span></h3></div><p>Valparaiso</p><a href="/p/valparaiso">go</a></div>`,
		"https://ports.example.com/p/valparaiso": `<table><tr><td>MSC</td></tr></table>`,
	}

	ports, stats, err := NewClient(cfg, fetcher, nil).Enrich(context.Background(), []string{"CL"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}

	if len(ports) != 1 || ports[0].Lines != "MSC" || ports[0].Website != "https://ports.example.com/p/valparaiso" {
		t.Errorf("unexpected ports: %+v", ports)
	}

	if stats.Countries != 1 || len(stats.Failures) != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestClient_Enrich_Cancelled(t *testing.T) {
	cfg := *testScraperConfig("https://ports.example.com")
	fetcher := staticFetcher{cfg.IndexURL(): "<html></html>"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := NewClient(cfg, fetcher, nil).Enrich(ctx, []string{"CL"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Enrich error = %v, want context.Canceled", err)
	}
}

func TestClient_Enrich_InvalidLink(t *testing.T) {
	cfg := *testScraperConfig("https://ports.example.com")
	fetcher := staticFetcher{
		cfg.IndexURL(): `<div><div><h3><span>(CL)</span></h3></div><p>Valparaiso</p><a href="mailto:port@example.com">mail</a></div>`,
	}

	ports, stats, err := NewClient(cfg, fetcher, nil).Enrich(context.Background(), []string{"CL"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}

	if len(ports) != 0 || len(stats.Failures) != 1 || !errors.Is(stats.Failures[0].Err, ErrInvalidPortLink) {
		t.Errorf("expected one ErrInvalidPortLink failure, got ports %+v stats %+v", ports, stats)
	}
}
