package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arc-backend/internal/questionnaire"
)

func writeAnswers(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAnswers(t *testing.T) {
	for name, body := range map[string]string{
		"bare":    `{"S1":"Often","Q0_1":52}`,
		"wrapped": `{"answers":{"S1":"Often","Q0_1":52}}`,
	} {
		answers, err := loadAnswers(writeAnswers(t, body))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if answers["S1"].Label != "Often" {
			t.Errorf("%s: S1 = %+v", name, answers["S1"])
		}
		if n, ok := answers["Q0_1"].Float(); !ok || n != 52 {
			t.Errorf("%s: Q0_1 = %v %v", name, n, ok)
		}
	}
	if _, err := loadAnswers(writeAnswers(t, `[1,2]`)); err == nil {
		t.Error("expected a decode error")
	}
}

func TestRunScore(t *testing.T) {
	path := writeAnswers(t, `{"S1":"Often","S2":"Never","LEGACY":"x"}`)
	var buf bytes.Buffer
	if err := runScore(&buf, path, scoreFlags{persona: questionnaire.PersonaExplorer, pretty: true}); err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if out["persona"] != questionnaire.PersonaExplorer {
		t.Errorf("persona = %v", out["persona"])
	}
	if unknown, _ := out["unknownFields"].([]any); len(unknown) != 1 || unknown[0] != "LEGACY" {
		t.Errorf("unknownFields = %v", out["unknownFields"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("pretty output is not indented")
	}
}

func TestRunScore_Errors(t *testing.T) {
	var buf bytes.Buffer
	path := writeAnswers(t, `{"S1":"Sometimes?"}`)

	err := runScore(&buf, path, scoreFlags{persona: questionnaire.PersonaAchiever, strict: true})
	var ee *exitErr
	if !errors.As(err, &ee) || ee.code != 2 {
		t.Errorf("strict: err = %v, want exit code 2", err)
	}

	err = runScore(&buf, path, scoreFlags{persona: "pirate"})
	if !errors.As(err, &ee) || ee.code != 3 {
		t.Errorf("unknown persona: err = %v, want exit code 3", err)
	}
}

func TestRunPDF(t *testing.T) {
	path := writeAnswers(t, `{"S1":"Often","ST1":"Almost always"}`)
	out := filepath.Join(t.TempDir(), "report.pdf")
	flags := pdfFlags{persona: questionnaire.PersonaWomen, name: "Jane Doe", out: out}
	if err := runPDF(context.Background(), path, flags); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestRunPersonas(t *testing.T) {
	var buf bytes.Buffer
	if err := runPersonas(&buf); err != nil {
		t.Fatal(err)
	}
	for _, p := range questionnaire.Personas() {
		if !strings.Contains(buf.String(), p) {
			t.Errorf("output missing %s:\n%s", p, buf.String())
		}
	}
}

func TestRunSeed_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	err := runSeed(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "absent.xml"))
	var ee *exitErr
	if !errors.As(err, &ee) || ee.code != 3 {
		t.Errorf("err = %v, want exit code 3", err)
	}
}
