package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/strataviz/stratum/pkg/cache"
	"github.com/strataviz/stratum/pkg/errors"
)

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{
			name:     "no source",
			opts:     Options{},
			wantCode: errors.ErrCodeInvalidSpec,
		},
		{
			name:     "two sources",
			opts:     Options{SpecPath: "net.toml", Layers: []int{3, 2}},
			wantCode: errors.ErrCodeInvalidSpec,
		},
		{
			name:     "bad format",
			opts:     Options{Layers: []int{3, 2}, Formats: []string{"png"}},
			wantCode: errors.ErrCodeInvalidFormat,
		},
		{
			name: "layers only",
			opts: Options{Layers: []int{3, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("got error %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tt.opts.Formats) != 1 || tt.opts.Formats[0] != FormatJSON {
				t.Errorf("default formats = %v, want [json]", tt.opts.Formats)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatJSON, FormatDOT, FormatSVG, FormatHTML} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", f, err)
		}
	}
	if err := ValidateFormat("png"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(png) = %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteFromLayers(t *testing.T) {
	runner := NewRunner(nil, discardLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Layers:  []int{3, 2},
		Formats: []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.NeuronCount != 5 {
		t.Errorf("NeuronCount = %d, want 5", result.Stats.NeuronCount)
	}
	if result.Stats.EdgeCount != 6 {
		t.Errorf("EdgeCount = %d, want 6", result.Stats.EdgeCount)
	}
	if len(result.Scene.Neurons) != 5 {
		t.Errorf("scene neurons = %d, want 5", len(result.Scene.Neurons))
	}
	if result.Scene.BuildID == "" {
		t.Error("scene is missing a build ID")
	}

	if _, ok := result.Artifacts[FormatJSON]; !ok {
		t.Error("missing json artifact")
	}
	dot, ok := result.Artifacts[FormatDOT]
	if !ok {
		t.Fatal("missing dot artifact")
	}
	if !strings.Contains(string(dot), "digraph stratum") {
		t.Errorf("dot artifact does not look like DOT output:\n%s", dot)
	}
}

func TestExecuteFromSpecFile(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "net.toml")
	spec := `
[network]
layers = [4, 6, 2]
alignment = "justified"
neuron_spacing = 6.0
layer_spacing = 45.0
`
	if err := os.WriteFile(specPath, []byte(spec), 0644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, discardLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{SpecPath: specPath})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.NeuronCount != 12 {
		t.Errorf("NeuronCount = %d, want 12", result.Stats.NeuronCount)
	}
	if result.Stats.EdgeCount != 4*6+6*2 {
		t.Errorf("EdgeCount = %d, want 36", result.Stats.EdgeCount)
	}
}

func TestExecuteArtifactCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, discardLogger())
	defer runner.Close()

	opts := Options{
		Layers:  []int{2, 2},
		Formats: []string{FormatDOT},
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.ArtifactHits[FormatDOT] {
		t.Error("first run should not hit the cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.ArtifactHits[FormatDOT] {
		t.Error("second run should hit the cache")
	}
	if string(first.Artifacts[FormatDOT]) != string(second.Artifacts[FormatDOT]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// Refresh bypasses the cache even when an entry exists.
	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.ArtifactHits[FormatDOT] {
		t.Error("refresh run should not hit the cache")
	}
}

func TestArtifactCacheDistinguishesConnectivity(t *testing.T) {
	// A model source and a manual source can share layer counts while
	// wiring different edge sets: the model adapter never targets the next
	// layer's bias neuron. The cache must keep their artifacts apart.
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	modelJSON := `{
  "layers": [
    {"type": "dense", "weights_shape": [3, 2], "use_bias": true},
    {"type": "dense", "weights_shape": [2, 1], "use_bias": true}
  ]
}`
	if err := os.WriteFile(modelPath, []byte(modelJSON), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, discardLogger())
	defer runner.Close()

	// Counts [4, 3, 1] with 11 edges (bias neurons receive none).
	fromModel, err := runner.Execute(context.Background(), Options{
		ModelPath: modelPath,
		Formats:   []string{FormatDOT},
	})
	if err != nil {
		t.Fatalf("model Execute: %v", err)
	}
	if fromModel.Stats.EdgeCount != 11 {
		t.Fatalf("model EdgeCount = %d, want 11", fromModel.Stats.EdgeCount)
	}

	// Same counts, fully connected: 15 edges.
	fromLayers, err := runner.Execute(context.Background(), Options{
		Layers:  []int{4, 3, 1},
		Formats: []string{FormatDOT},
	})
	if err != nil {
		t.Fatalf("layers Execute: %v", err)
	}
	if fromLayers.Stats.EdgeCount != 15 {
		t.Fatalf("layers EdgeCount = %d, want 15", fromLayers.Stats.EdgeCount)
	}

	if fromLayers.CacheInfo.ArtifactHits[FormatDOT] {
		t.Error("manual source must not hit the model source's cache entry")
	}
	if string(fromModel.Artifacts[FormatDOT]) == string(fromLayers.Artifacts[FormatDOT]) {
		t.Error("sources with different edge sets produced the same artifact")
	}
	if got := strings.Count(string(fromLayers.Artifacts[FormatDOT]), "->"); got != 15 {
		t.Errorf("manual artifact has %d edges, want 15", got)
	}
}

func TestLoadSourceOverrides(t *testing.T) {
	runner := NewRunner(nil, discardLogger())
	defer runner.Close()

	src, err := runner.LoadSource(Options{
		Layers:        []int{3, 3},
		Alignment:     "justified",
		NeuronSpacing: 10,
		LayerSpacing:  20,
	})
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if got := src.LayerAlignment().String(); got != "justified" {
		t.Errorf("alignment = %q, want justified", got)
	}
	if src.NeuronSpacing() != 10 {
		t.Errorf("neuron spacing = %v, want 10", src.NeuronSpacing())
	}
	if src.LayerSpacing() != 20 {
		t.Errorf("layer spacing = %v, want 20", src.LayerSpacing())
	}
}

func TestLoadSourceBadAlignment(t *testing.T) {
	runner := NewRunner(nil, discardLogger())
	defer runner.Close()

	_, err := runner.LoadSource(Options{Layers: []int{2}, Alignment: "left"})
	if !errors.Is(err, errors.ErrCodeInvalidAlignment) {
		t.Fatalf("got %v, want INVALID_ALIGNMENT", err)
	}
}

func TestComputeLayoutOnly(t *testing.T) {
	runner := NewRunner(nil, discardLogger())
	defer runner.Close()

	src, err := runner.LoadSource(Options{Layers: []int{3, 1}})
	if err != nil {
		t.Fatal(err)
	}
	res, err := runner.ComputeLayout(context.Background(), src)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if res.NeuronCount() != 4 {
		t.Errorf("NeuronCount = %d, want 4", res.NeuronCount())
	}
	if res.LayerCount() != 2 {
		t.Errorf("LayerCount = %d, want 2", res.LayerCount())
	}
}
