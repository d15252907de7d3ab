package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	src := filepath.Join(dir, "style.css")
	if err := os.WriteFile(src, []byte(".a { color: red; }"), 0644); err != nil {
		t.Fatal(err)
	}

	rpt.StoreData("config/config.yaml", []byte("version: 1\n"))
	if err := rpt.StoreCopy("source/style.css", src); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	// file changes after the copy was made, copy must keep original content
	if err := os.WriteFile(src, []byte(".a { color: blue; }"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := rpt.StoreCopy("source/style.css", src); err != nil {
		t.Fatalf("second StoreCopy() error = %v", err)
	}
	rpt.Store("absent.log", filepath.Join(dir, "absent.log"))

	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, conf.Destination)
	if files["config/config.yaml"] != "version: 1\n" {
		t.Errorf("config data = %q", files["config/config.yaml"])
	}
	if files["source/style.css"] != ".a { color: red; }" {
		t.Errorf("first copy = %q", files["source/style.css"])
	}

	versioned := 0
	for name, content := range files {
		if strings.HasPrefix(name, "source/style.css-") {
			versioned++
			if content != ".a { color: blue; }" {
				t.Errorf("second copy = %q", content)
			}
		}
	}
	if versioned != 1 {
		t.Errorf("expected single versioned copy, got %d", versioned)
	}
	if _, ok := files["absent.log"]; ok {
		t.Error("absent file must not be archived")
	}
	if !strings.Contains(files["MANIFEST"], "absent.log") {
		t.Error("manifest must list all entries")
	}
}

func TestReport_Nil(t *testing.T) {
	var rpt *Report
	rpt.Store("a", "b")
	rpt.StoreData("c", []byte("d"))
	if err := rpt.StoreCopy("e", "f"); err != nil {
		t.Errorf("StoreCopy() on nil report error = %v", err)
	}
	if rpt.Name() != "" {
		t.Error("Name() on nil report must be empty")
	}
	if err := rpt.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
}

func TestReport_StoreCopyMissing(t *testing.T) {
	rpt := &Report{entries: make(map[string]entry)}
	if err := rpt.StoreCopy("x", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
