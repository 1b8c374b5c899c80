// Package artifact 把预处理结果（三个划分、物品侧表、manifest）持久化到 core.Store，
// 并在配置未变化时复用。
package artifact

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/rushteam/recprep/core"
)

const (
	keyItems    = "items"
	keyManifest = "manifest"
)

// Manifest 描述一次预处理产出。它最后写入，存在即表示产物完整。
type Manifest struct {
	RunID             string         `json:"run_id"`
	CreatedAt         time.Time      `json:"created_at"`
	ConfigFingerprint string         `json:"config_fingerprint"`
	NumUsers          int            `json:"num_users"`
	NumItems          int            `json:"num_items"`
	NumCats           int            `json:"num_cats"`
	MaxItem           int32          `json:"max_item"`
	Rows              map[string]int `json:"rows"`
}

// Result 是从存储中读回的完整产物
type Result struct {
	Manifest *Manifest
	Sets     map[core.SplitKind][]core.Record
	Items    *core.ItemTables
}

// Repository 以 Dataset 为 key 前缀读写产物。
type Repository struct {
	Store   core.Store
	Dataset string
}

func NewRepository(store core.Store, dataset string) *Repository {
	return &Repository{Store: store, Dataset: dataset}
}

func (r *Repository) key(name string) string {
	return r.Dataset + "/" + name
}

func wrap(code, message string, err error) error {
	return core.WrapDomainError(core.ModuleArtifact, code, message, err)
}

// Save 删除旧 manifest，写入三个划分与物品侧表，最后写 manifest。
func (r *Repository) Save(ctx context.Context, frame *core.Frame, fingerprint string) (*Manifest, error) {
	if frame.Vocab == nil {
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput, "vocab not built")
	}
	m := &Manifest{
		RunID:             uuid.NewString(),
		CreatedAt:         time.Now().UTC(),
		ConfigFingerprint: fingerprint,
		NumUsers:          frame.Vocab.NumUsers(),
		NumItems:          frame.Vocab.NumItems(),
		NumCats:           frame.Vocab.NumCats(),
		MaxItem:           frame.Vocab.MaxItem,
		Rows:              make(map[string]int, len(core.Splits)),
	}

	kvs := make(map[string][]byte, len(core.Splits)+1)
	for _, kind := range core.Splits {
		rows := frame.Sets[kind]
		if rows == nil {
			rows = []core.Record{}
		}
		data, err := json.Marshal(rows)
		if err != nil {
			return nil, wrap(core.ErrorCodeInternalError, fmt.Sprintf("encode %s", kind), err)
		}
		kvs[r.key(string(kind))] = data
		m.Rows[string(kind)] = len(rows)
	}
	if frame.Items != nil {
		data, err := json.Marshal(frame.Items)
		if err != nil {
			return nil, wrap(core.ErrorCodeInternalError, "encode item tables", err)
		}
		kvs[r.key(keyItems)] = data
	}
	// 先删除旧 manifest：覆盖写入中断时不会留下描述新旧混合产物的 manifest
	if err := r.Store.Delete(ctx, r.key(keyManifest)); err != nil {
		return nil, wrap(core.ErrorCodeInternalError, "invalidate manifest", err)
	}
	if err := r.Store.BatchSet(ctx, kvs); err != nil {
		return nil, wrap(core.ErrorCodeInternalError, "write splits", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, wrap(core.ErrorCodeInternalError, "encode manifest", err)
	}
	if err := r.Store.Set(ctx, r.key(keyManifest), data); err != nil {
		return nil, wrap(core.ErrorCodeInternalError, "write manifest", err)
	}
	return m, nil
}

// Manifest 读取 manifest，不存在时返回 NOT_FOUND。
func (r *Repository) Manifest(ctx context.Context) (*Manifest, error) {
	data, err := r.Store.Get(ctx, r.key(keyManifest))
	if core.IsStoreNotFound(err) {
		return nil, wrap(core.ErrorCodeNotFound, "manifest not found", err)
	}
	if err != nil {
		return nil, wrap(core.ErrorCodeInternalError, "read manifest", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, wrap(core.ErrorCodeInvalidInput, "decode manifest", err)
	}
	return &m, nil
}

// Reusable 判断已有产物是否由相同配置生成。
// manifest 不存在时返回 (nil, false, nil)。
func (r *Repository) Reusable(ctx context.Context, fingerprint string) (*Manifest, bool, error) {
	m, err := r.Manifest(ctx)
	if core.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m, m.ConfigFingerprint == fingerprint, nil
}

// Load 读取完整产物，并校验各划分行数与 manifest 一致。
func (r *Repository) Load(ctx context.Context) (*Result, error) {
	m, err := r.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(core.Splits)+1)
	for _, kind := range core.Splits {
		keys = append(keys, r.key(string(kind)))
	}
	keys = append(keys, r.key(keyItems))
	values, err := r.Store.BatchGet(ctx, keys)
	if err != nil {
		return nil, wrap(core.ErrorCodeInternalError, "read splits", err)
	}

	res := &Result{Manifest: m, Sets: make(map[core.SplitKind][]core.Record, len(core.Splits))}
	for _, kind := range core.Splits {
		data, ok := values[r.key(string(kind))]
		if !ok {
			return nil, wrap(core.ErrorCodeNotFound, fmt.Sprintf("split %s missing", kind), nil)
		}
		var rows []core.Record
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, wrap(core.ErrorCodeInvalidInput, fmt.Sprintf("decode %s", kind), err)
		}
		if len(rows) != m.Rows[string(kind)] {
			return nil, wrap(core.ErrorCodeShapeMismatch,
				fmt.Sprintf("split %s has %d rows, manifest says %d", kind, len(rows), m.Rows[string(kind)]), nil)
		}
		res.Sets[kind] = rows
	}
	if data, ok := values[r.key(keyItems)]; ok {
		var items core.ItemTables
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, wrap(core.ErrorCodeInvalidInput, "decode item tables", err)
		}
		res.Items = &items
	}
	return res, nil
}
