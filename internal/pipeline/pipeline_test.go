package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shipscan/internal/config"
	"shipscan/internal/country"
)

const trades = `date;hs_code;shipper_name;std_unit;std_quantity;value_fob_usd;items_number;source_country;destination_country,;source_port;destination_port
2023-01-05;87042310;ACME MOTORS;UNITS;1;45000,50;;Estados Unidos;Mexico;USNYC;MXVER
`

type pageFetcher map[string]string

func (f pageFetcher) Fetch(_ context.Context, url string) (string, error) {
	return f[url], nil
}

func TestReaderOptions(t *testing.T) {
	opts := ReaderOptions(config.Default().Input)

	if opts.Delimiter != ';' {
		t.Errorf("Delimiter = %q, want ';'", opts.Delimiter)
	}

	if opts.HeaderAliases["destination_country,"] != "destination_country" {
		t.Errorf("HeaderAliases = %v", opts.HeaderAliases)
	}
}

func TestPipeline_Run_WithFakes(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "trades.csv")

	if err := os.WriteFile(input, []byte(trades), 0o600); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	cfg := config.Default()
	cfg.Input.Path = input
	cfg.Output.PortsCSV = filepath.Join(dir, "ports_info.csv")

	fetcher := pageFetcher{
		cfg.Scraper.IndexURL(): `<div><div><h3><span>(MX)</span></h3></div><p>Veracruz</p><a href="/p/veracruz">go</a></div>`,
		"https://www.cogoport.com/p/veracruz": `<table><tr><td>HAPAG</td></tr></table>`,
	}

	resolver := country.NewStaticResolver(map[string]string{"Estados Unidos": "US", "Mexico": "MX"})

	p, err := New(cfg, nil, WithResolver(resolver), WithFetcher(fetcher))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var out bytes.Buffer

	summary, err := p.Run(context.Background(), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(summary.Ports) != 1 || summary.Ports[0].Lines != "HAPAG" {
		t.Errorf("unexpected ports: %+v", summary.Ports)
	}

	if summary.Run.Kept != 1 || summary.Run.InputPath != input {
		t.Errorf("unexpected run: %+v", summary.Run)
	}

	data, err := os.ReadFile(cfg.Output.PortsCSV)
	if err != nil {
		t.Fatalf("ports CSV not written: %v", err)
	}

	if !strings.Contains(string(data), "MX,Veracruz,HAPAG,,,https://www.cogoport.com/p/veracruz") {
		t.Errorf("unexpected ports CSV:\n%s", data)
	}

	if !strings.Contains(out.String(), "Most popular shipping countries:") {
		t.Errorf("report not written:\n%s", out.String())
	}
}
