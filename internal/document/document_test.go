package document

import (
	"encoding/json"
	"testing"
)

func sampleResult() *Result {
	return &Result{
		Source:    "scan.pdf",
		Engine:    "tesseract",
		Languages: []string{"pol", "eng"},
		Pages: []PageResult{
			{
				Page:       0,
				Text:       "first page",
				Confidence: 92.5,
				Boxes: []WordBox{
					{Text: "first", BBox: Rect{X: 10, Y: 20, Width: 40, Height: 12}, Confidence: 95},
					{Text: "page", BBox: Rect{X: 55, Y: 20, Width: 38, Height: 12}, Confidence: 90},
				},
			},
			{Page: 1, Text: "second page", Confidence: 88, Boxes: []WordBox{}},
		},
	}
}

// The serialized form is the API response shape; parsing it back must keep
// page count, text and box counts intact.
func TestResultJSONRoundTrip(t *testing.T) {
	original := sampleResult()

	payload, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var parsed Result
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(parsed.Pages) != len(original.Pages) {
		t.Fatalf("page count: got %d, want %d", len(parsed.Pages), len(original.Pages))
	}
	for i := range original.Pages {
		if parsed.Pages[i].Text != original.Pages[i].Text {
			t.Errorf("page %d text: got %q, want %q", i, parsed.Pages[i].Text, original.Pages[i].Text)
		}
		if len(parsed.Pages[i].Boxes) != len(original.Pages[i].Boxes) {
			t.Errorf("page %d box count: got %d, want %d", i, len(parsed.Pages[i].Boxes), len(original.Pages[i].Boxes))
		}
	}
	if parsed.Source != "scan.pdf" || parsed.Engine != "tesseract" {
		t.Errorf("metadata lost: source=%q engine=%q", parsed.Source, parsed.Engine)
	}
}

func TestResultJSONShape(t *testing.T) {
	payload, err := json.Marshal(sampleResult())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var shape map[string]any
	if err := json.Unmarshal(payload, &shape); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"source", "engine", "languages", "pages"} {
		if _, ok := shape[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	pages := shape["pages"].([]any)
	page := pages[0].(map[string]any)
	for _, key := range []string{"page", "text", "confidence", "boxes"} {
		if _, ok := page[key]; !ok {
			t.Errorf("missing page key %q", key)
		}
	}
	box := page["boxes"].([]any)[0].(map[string]any)
	bbox := box["bbox"].(map[string]any)
	for _, key := range []string{"x", "y", "width", "height"} {
		if _, ok := bbox[key]; !ok {
			t.Errorf("missing bbox key %q", key)
		}
	}
}

func TestNewRectNormalizesCorners(t *testing.T) {
	r := NewRect(50, 60, 10, 20)
	if r.X != 10 || r.Y != 20 || r.Width != 40 || r.Height != 40 {
		t.Errorf("unexpected rect: %+v", r)
	}
}

func TestResultFailed(t *testing.T) {
	r := sampleResult()
	if r.Failed() {
		t.Error("clean result reported as failed")
	}
	r.Pages[1].Error = "ENGINE_FAILED: boom"
	if !r.Failed() {
		t.Error("degraded result not reported as failed")
	}
}
