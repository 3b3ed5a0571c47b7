package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

type rpcCall struct {
	Model  string
	Method string
	Domain odoo.Domain
	Opts   odoo.SearchOptions
	IDs    []int64
	Values odoo.Values
	Args   []interface{}
}

// fakeOdoo answers with canned JSON keyed by "model.method" and records every call.
type fakeOdoo struct {
	calls   []rpcCall
	results map[string]string
	counts  map[string]int
	nextID  int64
	err     error
}

func newFakeOdoo() *fakeOdoo {
	return &fakeOdoo{results: map[string]string{}, counts: map[string]int{}, nextID: 100}
}

func (f *fakeOdoo) decode(key string, out interface{}) error {
	raw, ok := f.results[key]
	if !ok || out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("fake decode %s: %w", key, err)
	}
	return nil
}

func (f *fakeOdoo) SearchRead(_ context.Context, model string, domain odoo.Domain, opts odoo.SearchOptions, out interface{}) error {
	f.calls = append(f.calls, rpcCall{Model: model, Method: "search_read", Domain: domain, Opts: opts})
	if f.err != nil {
		return f.err
	}
	return f.decode(model+".search_read", out)
}

func (f *fakeOdoo) SearchCount(_ context.Context, model string, domain odoo.Domain) (int, error) {
	f.calls = append(f.calls, rpcCall{Model: model, Method: "search_count", Domain: domain})
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[countKey(model, domain)], nil
}

func (f *fakeOdoo) Read(_ context.Context, model string, ids []int64, fields []string, out interface{}) error {
	f.calls = append(f.calls, rpcCall{Model: model, Method: "read", IDs: ids})
	if f.err != nil {
		return f.err
	}
	return f.decode(model+".read", out)
}

func (f *fakeOdoo) Create(_ context.Context, model string, values odoo.Values) (int64, error) {
	f.calls = append(f.calls, rpcCall{Model: model, Method: "create", Values: values})
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeOdoo) Write(_ context.Context, model string, ids []int64, values odoo.Values) error {
	f.calls = append(f.calls, rpcCall{Model: model, Method: "write", IDs: ids, Values: values})
	return f.err
}

func (f *fakeOdoo) Unlink(_ context.Context, model string, ids []int64) error {
	f.calls = append(f.calls, rpcCall{Model: model, Method: "unlink", IDs: ids})
	return f.err
}

func (f *fakeOdoo) CallMethod(_ context.Context, model, method string, args []interface{}, _ map[string]interface{}, out interface{}) error {
	f.calls = append(f.calls, rpcCall{Model: model, Method: method, Args: args})
	if f.err != nil {
		return f.err
	}
	return f.decode(model+"."+method, out)
}

func (f *fakeOdoo) callsTo(model, method string) []rpcCall {
	var out []rpcCall
	for _, c := range f.calls {
		if c.Model == model && c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func countKey(model string, domain odoo.Domain) string {
	return fmt.Sprintf("%s %v", model, domain)
}
