package config

import (
	"context"
	"reflect"
	"slices"
	"testing"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/dataset"
	"github.com/rushteam/recprep/pipeline"
)

func testReviews() ([]core.Review, []core.ItemMeta) {
	reviews := []core.Review{
		{UserID: "u1", ItemID: "a", Timestamp: 0, Rating: 5, Conformity: 0.1, Quality: 0.9},
		{UserID: "u1", ItemID: "b", Timestamp: 10, Rating: 4, Conformity: 0.2, Quality: 0.8},
		{UserID: "u1", ItemID: "c", Timestamp: 20, Rating: 2, Conformity: 0.3, Quality: 0.7},
		{UserID: "u1", ItemID: "d", Timestamp: 30, Rating: 5, Conformity: 0.4, Quality: 0.6},
		{UserID: "u1", ItemID: "e", Timestamp: 40, Rating: 5, Conformity: 0.5, Quality: 0.5},
		{UserID: "u2", ItemID: "f", Timestamp: 5, Rating: 3, Conformity: 0.6, Quality: 0.4},
		{UserID: "u2", ItemID: "g", Timestamp: 15, Rating: 4, Conformity: 0.7, Quality: 0.3},
		{UserID: "u2", ItemID: "a", Timestamp: 25, Rating: 5, Conformity: 0.8, Quality: 0.2},
		{UserID: "u3", ItemID: "h", Timestamp: 50, Rating: 1, Conformity: 0.9, Quality: 0.1},
		{UserID: "u3", ItemID: "i", Timestamp: 60, Rating: 2, Conformity: 1.0, Quality: 0.0},
	}
	metas := []core.ItemMeta{
		{ItemID: "a", Categories: []string{"Books", "Fiction"}},
		{ItemID: "b", Categories: []string{"Books"}},
		{ItemID: "c", Categories: []string{"Books", "Poetry"}},
	}
	return reviews, metas
}

func testConfig() *Config {
	cfg := &Config{
		TimeRange:       10,
		KM:              20,
		KS:              10,
		HistoryLen:      4,
		TrainNumSamples: 2,
		ValidNumSamples: 2,
		TestNumSamples:  3,
		Seed:            7,
		Workers:         2,
	}
	cfg.ApplyDefaults()
	return cfg
}

func run(t *testing.T, cfg *Config) *core.Frame {
	t.Helper()
	p, err := BuildPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	frame, err := p.Run(context.Background(), core.NewFrame(testReviews()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return frame
}

func TestBuildPipeline_DefaultNodes(t *testing.T) {
	p, err := BuildPipeline(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		names = append(names, n.Name())
	}
	want := []string{"ingest.load", "ingest.normalize", "filter.node", "encode",
		"feature.window", "feature.ranges", "split", "sample.negative"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("nodes = %v, want %v", names, want)
	}
}

func TestBuildPipeline_UnknownNode(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "recall.hot"}}
	if _, err := BuildPipeline(cfg, nil); !core.IsInvalidConfig(err) {
		t.Errorf("BuildPipeline() error = %v, want INVALID_CONFIG", err)
	}
}

func TestBuildPipeline_BadFilterExpr(t *testing.T) {
	cfg := testConfig()
	cfg.Filter.Expr = "event.rating >="
	if _, err := BuildPipeline(cfg, nil); err == nil {
		t.Error("BuildPipeline() with invalid expression should fail")
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	cfg := testConfig()
	frame := run(t, cfg)

	if got := frame.Vocab.NumUsers(); got != 3 {
		t.Errorf("num users = %d, want 3", got)
	}
	if got := frame.Vocab.NumItems(); got != 9 {
		t.Errorf("num items = %d, want 9", got)
	}
	// u1: 5 条 → train 3；u2: 3 条 → train 1；u3: 2 条 → 无 train
	if n := len(frame.Sets[core.SplitTrain]); n != 4 {
		t.Errorf("train rows = %d, want 4", n)
	}
	if n := len(frame.Sets[core.SplitValid]); n != 3 {
		t.Errorf("valid rows = %d, want 3", n)
	}
	if n := len(frame.Sets[core.SplitTest]); n != 3 {
		t.Errorf("test rows = %d, want 3", n)
	}

	for _, kind := range core.Splits {
		for _, r := range frame.Sets[kind] {
			if len(r.ItemHis) != cfg.HistoryLen {
				t.Fatalf("%s: history len = %d, want %d", kind, len(r.ItemHis), cfg.HistoryLen)
			}
			if r.ShortLen > r.MidLen {
				t.Errorf("%s: short_len %d > mid_len %d", kind, r.ShortLen, r.MidLen)
			}
			negs := r.NegItems
			if kind == core.SplitTest {
				if len(negs) != cfg.TestNumSamples+1 || negs[len(negs)-1] != r.Item {
					t.Fatalf("test candidates %v must end with positive %d", negs, r.Item)
				}
				negs = negs[:len(negs)-1]
			}
			for _, n := range negs {
				if n == 0 {
					continue
				}
				if n == r.Item || slices.Contains(r.ItemHis, n) {
					t.Errorf("%s: negative %d collides with positive/history (%d, %v)", kind, n, r.Item, r.ItemHis)
				}
				if n < 1 || n > frame.Vocab.MaxItem {
					t.Errorf("%s: negative %d outside universe", kind, n)
				}
			}
		}
	}

	sets, err := dataset.Build(frame.Sets, cfg.HistoryLen, cfg.NumSamples())
	if err != nil {
		t.Fatalf("dataset.Build() error = %v", err)
	}
	if sets[core.SplitTest].Shape().NegWidth != cfg.TestNumSamples+1 {
		t.Errorf("test width = %d", sets[core.SplitTest].Shape().NegWidth)
	}
}

func TestPipeline_DeterministicAcrossWorkers(t *testing.T) {
	negatives := func(workers, cacheSize int) map[core.SplitKind][][]int32 {
		cfg := testConfig()
		cfg.Workers = workers
		cfg.SampleCacheSize = cacheSize
		frame := run(t, cfg)
		out := make(map[core.SplitKind][][]int32)
		for _, kind := range core.Splits {
			for _, r := range frame.Sets[kind] {
				out[kind] = append(out[kind], r.NegItems)
			}
		}
		return out
	}
	for _, cacheSize := range []int{0, 16} {
		a, b := negatives(1, cacheSize), negatives(8, cacheSize)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("cache=%d: negatives differ between 1 and 8 workers", cacheSize)
		}
	}
}

func TestPipeline_Filter(t *testing.T) {
	cfg := testConfig()
	cfg.Filter.Expr = "event.rating >= 3.0"
	frame := run(t, cfg)
	for _, ev := range frame.Events {
		if ev.Rating < 3 {
			t.Errorf("event %+v should be filtered", ev)
		}
	}
	// u3 的两条评分都低于 3，整个用户被移除
	if _, ok := frame.Vocab.Users["u3"]; ok {
		t.Error("u3 should have no events after filtering")
	}
}

func TestResolveShape_NodeOverrides(t *testing.T) {
	cfg := testConfig()
	for _, typ := range DefaultNodes {
		nc := pipeline.NodeConfig{Type: typ}
		switch typ {
		case "feature.window":
			nc.Config = map[string]interface{}{"history_len": 2}
		case "sample.negative":
			nc.Config = map[string]interface{}{"test_num_samples": float64(5)}
		}
		cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, nc)
	}

	p, err := BuildPipeline(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	shape := ResolveShape(p, cfg)
	if shape.HistoryLen != 2 {
		t.Errorf("HistoryLen = %d, want 2", shape.HistoryLen)
	}
	if shape.NumSamples[core.SplitTest] != 5 || shape.NumSamples[core.SplitTrain] != cfg.TrainNumSamples {
		t.Errorf("NumSamples = %v", shape.NumSamples)
	}

	frame, err := p.Run(context.Background(), core.NewFrame(testReviews()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := dataset.Build(frame.Sets, shape.HistoryLen, shape.NumSamples); err != nil {
		t.Errorf("dataset.Build() with resolved shape error = %v", err)
	}
	if _, err := dataset.Build(frame.Sets, cfg.HistoryLen, cfg.NumSamples()); !core.IsShapeMismatch(err) {
		t.Errorf("dataset.Build() with global shape error = %v, want SHAPE_MISMATCH", err)
	}
}

func TestResolveShape_Defaults(t *testing.T) {
	cfg := testConfig()
	p, err := BuildPipeline(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	shape := ResolveShape(p, cfg)
	if shape.HistoryLen != cfg.HistoryLen || !reflect.DeepEqual(shape.NumSamples, cfg.NumSamples()) {
		t.Errorf("shape = %+v, want global config values", shape)
	}
}
