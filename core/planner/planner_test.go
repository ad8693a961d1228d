package planner

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zclconf/go-cty/cty"

	"import-planner/core/fetch"
	"import-planner/core/ledger"
	"import-planner/core/schema"
	"import-planner/core/types"
	"import-planner/internal/errors"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	r.MustRegister(&schema.Schema{
		ResourceType: "netbird_group",
		Attributes: []schema.Attribute{
			{Name: "name", Type: cty.String, Required: true},
			{Name: "description", Type: cty.String},
			{Name: "id", Type: cty.String, Computed: true},
		},
	})
	return r
}

func testClient(objects map[string]types.RawObject) fetch.RemoteClient {
	return fetch.RemoteClientFunc(func(ctx context.Context, resourceType string, id types.ExternalID) (types.RawObject, error) {
		raw, ok := objects[resourceType+"/"+id.String()]
		if !ok {
			return nil, errors.NotFound(resourceType, id.String())
		}
		return raw, nil
	})
}

func testPlanner(t *testing.T, client fetch.RemoteClient) (*Planner, *ledger.Ledger) {
	t.Helper()
	l := ledger.New(ledger.NewMemoryStore())
	fetcher := fetch.NewFetcher(client, fetch.Options{
		MaxRetries:   1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
	})
	return New(testRegistry(t), fetcher, l, DefaultOptions()), l
}

func TestPlanEndToEnd(t *testing.T) {
	ctx := context.Background()
	p, l := testPlanner(t, testClient(map[string]types.RawObject{
		"netbird_group/grp-1": {"name": "engineering", "id": "grp-1"},
	}))

	res := p.Plan(ctx, types.ImportRequest{To: "netbird_group.eng", ID: "grp-1"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	artifact := string(res.Artifact())
	if !strings.Contains(artifact, "import {") {
		t.Errorf("artifact missing import block:\n%s", artifact)
	}
	if !strings.Contains(artifact, `resource "netbird_group" "eng"`) {
		t.Errorf("artifact missing resource block:\n%s", artifact)
	}
	if !strings.Contains(artifact, `id = "grp-1"`) {
		t.Errorf("artifact missing external id:\n%s", artifact)
	}

	current, err := l.Current(ctx, "netbird_group.eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current == nil || current.ExternalID != "grp-1" {
		t.Errorf("binding not recorded: %+v", current)
	}
	if res.Binding == nil || res.Binding.ID != current.ID {
		t.Errorf("result binding = %+v, ledger binding = %+v", res.Binding, current)
	}
}

func TestPlanUnknownTypeFails(t *testing.T) {
	p, _ := testPlanner(t, testClient(nil))
	res := p.Plan(context.Background(), types.ImportRequest{To: "mystery_type.x", ID: "1"})
	if !errors.IsType(res.Err, errors.TypeUnknownType) {
		t.Errorf("error = %v, want UNKNOWN_TYPE", res.Err)
	}
}

func TestPlanFailureDoesNotBind(t *testing.T) {
	ctx := context.Background()
	p, l := testPlanner(t, testClient(map[string]types.RawObject{
		// missing required "name" attribute
		"netbird_group/grp-1": {"id": "grp-1"},
	}))

	res := p.Plan(ctx, types.ImportRequest{To: "netbird_group.eng", ID: "grp-1"})
	if !errors.IsType(res.Err, errors.TypeMissingRequired) {
		t.Fatalf("error = %v, want MISSING_REQUIRED", res.Err)
	}

	// the commit point is after validation: no partial binding
	current, err := l.Current(ctx, "netbird_group.eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current != nil {
		t.Errorf("failed plan left a binding: %+v", current)
	}
}

func TestPlanAllIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	p, _ := testPlanner(t, testClient(map[string]types.RawObject{
		"netbird_group/grp-1": {"name": "engineering", "id": "grp-1"},
	}))

	results := p.PlanAll(ctx, []types.ImportRequest{
		{To: "netbird_group.eng", ID: "grp-1"},
		{To: "netbird_group.ghost", ID: "grp-404"},
	})

	if results[0].Err != nil {
		t.Errorf("healthy request failed: %v", results[0].Err)
	}
	if !errors.IsType(results[1].Err, errors.TypeNotFound) {
		t.Errorf("results[1].Err = %v, want NOT_FOUND", results[1].Err)
	}
	// failures keep their request so reporting can name the address
	if results[1].Request.To != "netbird_group.ghost" {
		t.Errorf("failure lost its address: %+v", results[1].Request)
	}
}

func TestPlanAllSameAddressSerialized(t *testing.T) {
	ctx := context.Background()

	var inflight, maxInflight int32
	client := fetch.RemoteClientFunc(func(ctx context.Context, resourceType string, id types.ExternalID) (types.RawObject, error) {
		cur := atomic.AddInt32(&inflight, 1)
		for {
			max := atomic.LoadInt32(&maxInflight)
			if cur <= max || atomic.CompareAndSwapInt32(&maxInflight, max, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inflight, -1)
		return types.RawObject{"name": "engineering", "id": "grp-1"}, nil
	})

	p, l := testPlanner(t, client)

	const n = 8
	reqs := make([]types.ImportRequest, n)
	for i := range reqs {
		reqs[i] = types.ImportRequest{To: "netbird_group.eng", ID: "grp-1"}
	}
	results := p.PlanAll(ctx, reqs)

	for i, res := range results {
		if res.Err != nil {
			t.Errorf("request %d failed: %v", i, res.Err)
		}
	}

	if got := atomic.LoadInt32(&maxInflight); got != 1 {
		t.Errorf("max in-flight fetches for one address = %d, want 1", got)
	}

	history, err := l.History(ctx, "netbird_group.eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history length = %d, want exactly 1", len(history))
	}
}

func TestPlanAllPreservesInputOrder(t *testing.T) {
	ctx := context.Background()
	p, _ := testPlanner(t, testClient(map[string]types.RawObject{
		"netbird_group/a": {"name": "a"},
		"netbird_group/b": {"name": "b"},
		"netbird_group/c": {"name": "c"},
	}))

	reqs := []types.ImportRequest{
		{To: "netbird_group.a", ID: "a"},
		{To: "netbird_group.b", ID: "b"},
		{To: "netbird_group.c", ID: "c"},
	}
	results := p.PlanAll(ctx, reqs)

	for i, res := range results {
		if res.Request.To != reqs[i].To {
			t.Errorf("results[%d] = %s, want %s", i, res.Request.To, reqs[i].To)
		}
	}
}
