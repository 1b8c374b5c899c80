package feature

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/recprep/core"
)

func buildFrame(t *testing.T) *core.Frame {
	t.Helper()
	events := []core.Event{
		// 用户 u2 先出现在日志中，但分组按用户 id 升序
		{UserID: "u2", ItemID: "i9", Category: "c1", Timestamp: 5, Conformity: 0.5, Quality: 0.1},
		{UserID: "u1", ItemID: "i3", Category: "c1", Timestamp: 20, Conformity: 0.3, Quality: 0.3},
		{UserID: "u1", ItemID: "i7", Category: "c2", Timestamp: 10, Conformity: 0.2, Quality: 0.2},
		{UserID: "u1", ItemID: "i3", Category: "c1", Timestamp: 0, Conformity: 0.1, Quality: 0.1},
		{UserID: "u1", ItemID: "i9", Category: "", Timestamp: 30, Conformity: 0.4, Quality: 0.4},
		{UserID: "u1", ItemID: "i2", Category: "c2", Timestamp: 40, Conformity: 0.5, Quality: 0.5},
	}
	for i := range events {
		events[i].Seq = i
	}
	frame := core.NewFrame(nil, nil)
	frame.Events = events

	ctx := context.Background()
	var err error
	for _, node := range []interface {
		Process(context.Context, *core.Frame) (*core.Frame, error)
	}{
		&EncodeNode{TimeRange: 10},
		&WindowNode{Size: 3, Workers: 2},
		&RangeNode{Mid: 25, Short: 15, Workers: 2},
	} {
		frame, err = node.Process(ctx, frame)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	}
	return frame
}

func TestFeatureNodes_EndToEnd(t *testing.T) {
	frame := buildFrame(t)

	if len(frame.Groups) != 2 || frame.Groups[0].UserID != "u1" || frame.Groups[1].UserID != "u2" {
		t.Fatalf("unexpected groups %+v", frame.Groups)
	}
	u1 := frame.Records[frame.Groups[0].Start:frame.Groups[0].End]

	// i9 与 i3 都出现两次，i9 首次出现更早排第一；其余按首次出现顺序
	i3, i7, i9, i2 := frame.Vocab.Items["i3"], frame.Vocab.Items["i7"], frame.Vocab.Items["i9"], frame.Vocab.Items["i2"]
	if i9 != 1 || i3 != 2 || i7 != 3 || i2 != 4 {
		t.Fatalf("item codes i9=%d i3=%d i7=%d i2=%d, want 1..4", i9, i3, i7, i2)
	}

	wantItems := []int32{i3, i7, i3, i9, i2}
	wantHis := [][]int32{
		{0, 0, i3},
		{0, i3, i7},
		{i3, i7, i3},
		{i7, i3, i9},
		{i3, i9, i2},
	}
	wantMid := []int32{0, 1, 2, 2, 2}
	wantShort := []int32{0, 1, 1, 1, 1}
	for i, r := range u1 {
		if r.Item != wantItems[i] {
			t.Errorf("row %d item = %d, want %d", i, r.Item, wantItems[i])
		}
		if !reflect.DeepEqual(r.ItemHis, wantHis[i]) {
			t.Errorf("row %d item_his = %v, want %v", i, r.ItemHis, wantHis[i])
		}
		if r.MidLen != wantMid[i] || r.ShortLen != wantShort[i] {
			t.Errorf("row %d (mid, short) = (%d, %d), want (%d, %d)", i, r.MidLen, r.ShortLen, wantMid[i], wantShort[i])
		}
		if r.UnitTime != r.Timestamp/10 {
			t.Errorf("row %d unit_time = %d", i, r.UnitTime)
		}
		if r.ConHis[2] != r.Con || r.QltHis[2] != r.Qlt || r.CatHis[2] != r.Cat {
			t.Errorf("row %d side histories do not end with current value", i)
		}
	}

	// 空类目编码为 0
	if u1[3].Cat != 0 {
		t.Errorf("null category encoded as %d, want 0", u1[3].Cat)
	}

	// u2 的历史不包含 u1 的任何物品
	u2 := frame.Records[frame.Groups[1].Start:frame.Groups[1].End]
	if !reflect.DeepEqual(u2[0].ItemHis, []int32{0, 0, i9}) {
		t.Errorf("u2 item_his = %v", u2[0].ItemHis)
	}
}

func TestEncodeNode_ItemTables(t *testing.T) {
	frame := buildFrame(t)
	i9 := frame.Vocab.Items["i9"]
	// i9 最后一次出现（原始顺序）是 u1 的事件，类目为空
	if got := frame.Items.Cat[i9]; got != 0 {
		t.Errorf("item_to_cat[i9] = %d, want 0", got)
	}
	if got := frame.Items.Con[i9]; got != float32(0.4) {
		t.Errorf("item_to_con[i9] = %v, want 0.4", got)
	}
	if frame.Vocab.MaxItem != 4 {
		t.Errorf("MaxItem = %d, want 4", frame.Vocab.MaxItem)
	}
}

func TestRangeNode_RejectsInvertedWindows(t *testing.T) {
	_, err := (&RangeNode{Mid: 10, Short: 20}).Process(context.Background(), core.NewFrame(nil, nil))
	if !core.IsInvalidConfig(err) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestEncodeNode_RejectsEmptyIDs(t *testing.T) {
	tests := []struct {
		name string
		ev   core.Event
	}{
		{"empty item", core.Event{UserID: "u1", ItemID: "", Timestamp: 1}},
		{"empty user", core.Event{UserID: "", ItemID: "i1", Timestamp: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := core.NewFrame(nil, nil)
			frame.Events = []core.Event{
				{UserID: "u1", ItemID: "i1", Timestamp: 0},
				tt.ev,
			}
			_, err := (&EncodeNode{TimeRange: 1}).Process(context.Background(), frame)
			if !core.IsInvalidInput(err) {
				t.Errorf("Process() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}
