package reconcile

import (
	"errors"
	"strings"
	"testing"
)

// entry builds a minimal DBLP-style block for tests.
func entry(identity, year string, extra ...string) string {
	var b strings.Builder
	b.WriteString("@inproceedings{DBLP:" + identity + ",\n")
	b.WriteString("  author       = {Ada Lovelace},\n")
	b.WriteString("  title        = {On Engines},\n")
	for _, line := range extra {
		b.WriteString(line + "\n")
	}
	b.WriteString("  year         = {" + year + "}\n")
	b.WriteString("}")
	return b.String()
}

func TestAddOrigin_YearWindow(t *testing.T) {
	text := strings.Join([]string{
		entry("conf/foo/A18", "2018"),
		entry("conf/foo/B19", "2019"),
		entry("conf/foo/C20", "2020"),
	}, "\n\n")

	rc := New(2019, 2020)
	rc.AddOrigin("66/4120", text)

	recs := rc.Records()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	for _, r := range recs {
		if r.Year < 2019 || r.Year > 2020 {
			t.Errorf("record %s year %d outside window", r.Identity, r.Year)
		}
	}
	rep := rc.Report()
	if rep.Total != 3 || rep.Selected != 2 || rep.Retained != 2 || rep.Duplicates != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestAddOrigin_EmptyWindow(t *testing.T) {
	text := entry("conf/foo/A18", "2018") + "\n\n" + entry("conf/foo/C20", "2020")

	rc := New(2019, 2019)
	rc.AddOrigin("66/4120", text)

	if got := len(rc.Records()); got != 0 {
		t.Errorf("got %d records, want 0", got)
	}
	rep := rc.Report()
	if rep.Selected != 0 || rep.Duplicates != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestAddOrigin_InvertedWindow(t *testing.T) {
	rc := New(2020, 2019)
	rc.AddOrigin("66/4120", entry("conf/foo/A19", "2019")+"\n\n"+entry("conf/foo/B20", "2020"))
	if got := len(rc.Records()); got != 0 {
		t.Errorf("inverted window selected %d records, want 0", got)
	}
}

func TestAddOrigin_Malformed(t *testing.T) {
	text := strings.Join([]string{
		entry("conf/foo/A20", "2020"),
		"@inproceedings{NotDBLP:conf/x/Y20,\n  year         = {2020}\n}",
		"@article{DBLP:conf/foo/B20,\n  title        = {No Year}\n}",
		"@article{DBLP:conf/foo/C20,\n  year         = {20xx}\n}",
		"certainly not a record",
	}, "\n\n")

	rc := New(2000, 2030)
	rc.AddOrigin("66/4120", text)

	rep := rc.Report()
	if rep.Total != 5 {
		t.Errorf("Total = %d, want 5", rep.Total)
	}
	if rep.Malformed != 4 {
		t.Errorf("Malformed = %d, want 4: %v", rep.Malformed, rep.Errors)
	}
	if rep.Retained != 1 {
		t.Errorf("Retained = %d, want 1", rep.Retained)
	}
	if len(rep.Errors) != 4 {
		t.Errorf("got %d error messages, want 4", len(rep.Errors))
	}
}

func TestSyntheticLink_Injection(t *testing.T) {
	tests := []struct {
		name     string
		block    string
		wantURL  string
		wantHave bool
	}{
		{
			"no url no doi gets synthetic",
			entry("conf/foo/X20", "2020"),
			"https://localhost/conf/foo/X20", true,
		},
		{
			"doi only stays bare",
			entry("conf/foo/Y20", "2020", "  doi          = {10.1007/XYZ},"),
			"", false,
		},
		{
			"real url kept and repaired",
			entry("conf/foo/Z20", "2020", `  url          = {http://example.org/a\_b\&c},`),
			"http://example.org/a_b&c", true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := New(2020, 2020)
			rc.AddOrigin("66/4120", tt.block)
			recs := rc.Records()
			if len(recs) != 1 {
				t.Fatalf("got %d records, want 1", len(recs))
			}
			url, have := recs[0].Entry.Get("url")
			if have != tt.wantHave || url != tt.wantURL {
				t.Errorf("url = %q (present=%v), want %q (present=%v)", url, have, tt.wantURL, tt.wantHave)
			}
		})
	}
}

func TestSyntheticLink_InsertedBeforeYear(t *testing.T) {
	rc := New(2020, 2020)
	rc.AddOrigin("66/4120", entry("conf/foo/X20", "2020"))
	fields := rc.Records()[0].Entry.Fields
	for i, f := range fields {
		if f.Name == "url" {
			if i+1 >= len(fields) || fields[i+1].Name != "year" {
				t.Errorf("url not immediately before year: %v", fields)
			}
			return
		}
	}
	t.Fatal("no url field injected")
}

func TestDedup_FirstOccurrenceWins(t *testing.T) {
	bare := entry("conf/foo/X20", "2020")
	withURL := entry("conf/foo/X20", "2020", "  url          = {http://example.org/x},")

	tests := []struct {
		name     string
		first    string
		second   string
		wantLink string
	}{
		// First occurrence keeps its block verbatim regardless of which
		// copy has a real link. Both directions pinned on purpose.
		{"real link first", withURL, bare, "http://example.org/x"},
		{"synthetic first", bare, withURL, "https://localhost/conf/foo/X20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := New(2020, 2020)
			rc.AddOrigin("66/4120", tt.first)
			rc.AddOrigin("f/BFernandez", tt.second)

			recs := rc.Records()
			if len(recs) != 1 {
				t.Fatalf("got %d records, want 1", len(recs))
			}
			if got := recs[0].Link(); got != tt.wantLink {
				t.Errorf("Link() = %q, want %q", got, tt.wantLink)
			}
			wantContribs := []string{"66/4120", "f/BFernandez"}
			if len(recs[0].Contributors) != 2 {
				t.Fatalf("Contributors = %v, want %v", recs[0].Contributors, wantContribs)
			}
			for i, c := range wantContribs {
				if recs[0].Contributors[i] != c {
					t.Errorf("Contributors = %v, want %v", recs[0].Contributors, wantContribs)
				}
			}
			rep := rc.Report()
			if rep.Duplicates != 1 || rep.Retained != 1 || rep.Selected != 2 {
				t.Errorf("report = %+v", rep)
			}
		})
	}
}

func TestAddOrigin_PerOriginStats(t *testing.T) {
	shared := entry("conf/foo/S20", "2020")
	rc := New(2019, 2020)
	rc.AddOrigin("66/4120", shared+"\n\n"+entry("conf/foo/A19", "2019"))
	rc.AddOrigin("f/BFernandez", shared)

	rep := rc.Report()
	if len(rep.Origins) != 2 {
		t.Fatalf("got %d origin stats, want 2", len(rep.Origins))
	}
	first, second := rep.Origins[0], rep.Origins[1]
	if first.Retained != 2 || first.Duplicates != 0 {
		t.Errorf("first origin = %+v", first)
	}
	if second.Selected != 1 || second.Retained != 0 || second.Duplicates != 1 {
		t.Errorf("second origin = %+v", second)
	}
	if rep.Retained != 2 || rep.Duplicates != 1 {
		t.Errorf("aggregate = %+v", rep)
	}
}

func TestDedup_NoDuplicateContributors(t *testing.T) {
	block := entry("conf/foo/X20", "2020")
	rc := New(2020, 2020)
	rc.AddOrigin("66/4120", block)
	rc.AddOrigin("66/4120", block)
	rc.AddOrigin("66/4120", block)

	recs := rc.Records()
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if len(recs[0].Contributors) != 1 {
		t.Errorf("Contributors = %v, want exactly one entry", recs[0].Contributors)
	}
	if rep := rc.Report(); rep.Duplicates != 2 {
		t.Errorf("Duplicates = %d, want 2", rep.Duplicates)
	}
}

func TestRecords_FirstSeenOrder(t *testing.T) {
	rc := New(2018, 2020)
	rc.AddOrigin("66/4120", entry("conf/foo/B19", "2019")+"\n\n"+entry("conf/foo/A18", "2018"))
	rc.AddOrigin("f/BFernandez", entry("conf/foo/C20", "2020"))

	var got []string
	for _, r := range rc.Records() {
		got = append(got, r.Identity)
	}
	want := []string{"conf/foo/B19", "conf/foo/A18", "conf/foo/C20"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestWriteTo_RoundTrip(t *testing.T) {
	rc := New(2018, 2020)
	rc.AddOrigin("66/4120", strings.Join([]string{
		entry("conf/foo/A18", "2018"),
		entry("conf/foo/C20", "2020", "  doi          = {10.1007/XYZ},"),
	}, "\n\n"))
	rc.AddOrigin("f/BFernandez", entry("conf/foo/A18", "2018"))

	var b strings.Builder
	if _, err := rc.WriteTo(&b); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	got, err := ReadUnified(b.String())
	if err != nil {
		t.Fatalf("ReadUnified() error = %v\noutput:\n%s", err, b.String())
	}
	want := rc.Records()
	if len(got) != len(want) {
		t.Fatalf("round trip: %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Identity != want[i].Identity {
			t.Errorf("record %d identity = %q, want %q", i, got[i].Identity, want[i].Identity)
		}
		if got[i].Year != want[i].Year {
			t.Errorf("record %d year = %d, want %d", i, got[i].Year, want[i].Year)
		}
		if strings.Join(got[i].Contributors, ",") != strings.Join(want[i].Contributors, ",") {
			t.Errorf("record %d contributors = %v, want %v", i, got[i].Contributors, want[i].Contributors)
		}
	}
}

func TestReadUnified_IntegrityErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing year", "@article{DBLP:conf/x/A20,\n  dblpid       = {66/4120}\n}"},
		{"missing contributors", "@article{DBLP:conf/x/A20,\n  year         = {2020}\n}"},
		{"bad key", "@article{other:conf/x/A20,\n  year         = {2020},\n  dblpid       = {66/4120}\n}"},
		{"unparseable block", "@article{DBLP:conf/x/A20,\n  year = {2020}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadUnified(tt.text)
			if err == nil {
				t.Fatal("ReadUnified() expected error")
			}
			if !errors.Is(err, ErrIntegrity) {
				t.Errorf("error %v does not wrap ErrIntegrity", err)
			}
		})
	}
}

func TestRepairURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"backslash escapes", `http://e.org/a\_b\#c\%20d`, "http://e.org/a_b#c%20d"},
		{"entity ampersand", "http://e.org/?a=1&#38;b=2", "http://e.org/?a=1&b=2"},
		{
			"stacked escapes",
			`http://ixdea.uniroma2.it/index.php?s=10\&\#38;a=10\&\#38;link=ToC\_45\_P`,
			"http://ixdea.uniroma2.it/index.php?s=10&a=10&link=ToC_45_P",
		},
		{"clean url untouched", "https://doi.org/10.1007/3-540-45108-0_19", "https://doi.org/10.1007/3-540-45108-0_19"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairURL(tt.in); got != tt.want {
				t.Errorf("RepairURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsSyntheticLink(t *testing.T) {
	if !IsSyntheticLink(SyntheticLink("conf/foo/X20")) {
		t.Error("SyntheticLink output not recognized")
	}
	if IsSyntheticLink("https://doi.org/10.1007/XYZ") {
		t.Error("real link reported synthetic")
	}
}
