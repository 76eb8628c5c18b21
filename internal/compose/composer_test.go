package compose

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gutp/discux/internal/domain/content"
)

type call struct {
	method string
	path   string
	params url.Values
}

// fakeClient answers from a path-keyed handler table and records calls.
type fakeClient struct {
	mu       sync.Mutex
	calls    []call
	handlers map[string]func(ctx context.Context, params url.Values) ([]json.RawMessage, error)
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: map[string]func(context.Context, url.Values) ([]json.RawMessage, error){}}
}

func (f *fakeClient) on(path string, h func(ctx context.Context, params url.Values) ([]json.RawMessage, error)) {
	f.handlers[path] = h
}

func (f *fakeClient) respond(path string, body string) {
	f.on(path, func(context.Context, url.Values) ([]json.RawMessage, error) {
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(body), &raw); err != nil {
			panic(err)
		}
		return raw, nil
	})
}

func (f *fakeClient) fail(path string, err error) {
	f.on(path, func(context.Context, url.Values) ([]json.RawMessage, error) { return nil, err })
}

func (f *fakeClient) Get(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{method: "GET", path: path, params: params})
	h := f.handlers[path]
	f.mu.Unlock()
	if h == nil {
		return nil, nil
	}
	return h(ctx, params)
}

func (f *fakeClient) Post(ctx context.Context, path string, _ any) ([]json.RawMessage, error) {
	return f.Get(ctx, path, nil)
}

func (f *fakeClient) called(path string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.path == path {
			out = append(out, c)
		}
	}
	return out
}

func articlePage(id string) Page {
	return Page{
		Name: "article",
		Specs: []FetchSpec{
			One[content.Post]("post", "/v1/post", url.Values{"id": {id}}).
				Require("Query article: "+id, "Article doesn't exist!"),
			Many[content.Comment]("comments", "/v1/comment/list_by_post", nil).
				After("post", map[string]string{"post_id": "id"}),
			One[content.Subspace]("subspace", "/v1/subspace", nil).
				After("post", map[string]string{"id": "subspace_id"}),
			One[content.User]("author", "/v1/user", nil).
				After("post", map[string]string{"id": "author_id"}),
		},
	}
}

func TestCompose_RequiredOKOptionalFailuresDefault(t *testing.T) {
	client := newFakeClient()
	client.respond("/v1/post", `[{"id":"p1","title":"T","subspace_id":"s1","author_id":"u1"}]`)
	client.fail("/v1/comment/list_by_post", errors.New("connection reset"))
	client.respond("/v1/subspace", `[]`)
	client.fail("/v1/user", errors.New("timeout"))

	res, err := New(Options{Client: client}).Compose(context.Background(), articlePage("p1"))
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)

	assert.Equal(t, "T", Get[content.Post](res, "post").Title)
	assert.Equal(t, []content.Comment{}, Get[[]content.Comment](res, "comments"))
	assert.Equal(t, content.Subspace{}, Get[content.Subspace](res, "subspace"))
	assert.Equal(t, content.User{}, Get[content.User](res, "author"))

	assert.Equal(t, OutcomeResolved, res.Outcome("post"))
	assert.Equal(t, OutcomeDefaulted, res.Outcome("comments"))
	assert.Equal(t, OutcomeDefaulted, res.Outcome("subspace"))
}

func TestCompose_DependentsUseDerivedParams(t *testing.T) {
	client := newFakeClient()
	client.respond("/v1/post", `[{"id":"p1","subspace_id":"s9","author_id":"u7"}]`)
	client.respond("/v1/comment/list_by_post", `[{"id":"c1","post_id":"p1"},{"id":"c2","post_id":"p1"}]`)
	client.respond("/v1/subspace", `[{"id":"s9","title":"Go"}]`)
	client.respond("/v1/user", `[{"id":"u7","nickname":"gopher"}]`)

	res, err := New(Options{Client: client}).Compose(context.Background(), articlePage("p1"))
	require.NoError(t, err)

	assert.Len(t, Get[[]content.Comment](res, "comments"), 2)
	assert.Equal(t, "Go", Get[content.Subspace](res, "subspace").Title)
	assert.Equal(t, "gopher", Get[content.User](res, "author").Nickname)

	require.Len(t, client.called("/v1/comment/list_by_post"), 1)
	assert.Equal(t, "p1", client.called("/v1/comment/list_by_post")[0].params.Get("post_id"))
	assert.Equal(t, "s9", client.called("/v1/subspace")[0].params.Get("id"))
	assert.Equal(t, "u7", client.called("/v1/user")[0].params.Get("id"))
}

func TestCompose_RequiredEmptyFailsAndSkipsDependents(t *testing.T) {
	client := newFakeClient()
	client.respond("/v1/post", `[]`)

	res, err := New(Options{Client: client}).Compose(context.Background(), articlePage("abc"))
	require.Error(t, err)

	var se *SlotError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "post", se.Slot)
	assert.True(t, se.Empty)
	action, reason := se.ErrorSignal()
	assert.Equal(t, "Query article: abc", action)
	assert.Equal(t, "Article doesn't exist!", reason)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Same(t, se, res.Failure)
	assert.Equal(t, OutcomeSkipped, res.Outcome("comments"))
	assert.Empty(t, client.called("/v1/comment/list_by_post"))
	assert.Empty(t, client.called("/v1/user"))
}

func TestCompose_RequiredFailureIndependentOfOptionalOutcomes(t *testing.T) {
	for _, optionalOK := range []bool{true, false} {
		client := newFakeClient()
		client.respond("/v1/subspace", `[]`)
		if optionalOK {
			client.respond("/v1/subspace/list", `[{"id":"s1"}]`)
		} else {
			client.fail("/v1/subspace/list", errors.New("down"))
		}
		page := Page{Name: "subspace", Specs: []FetchSpec{
			Many[content.Subspace]("all", "/v1/subspace/list", nil),
			One[content.Subspace]("subspace", "/v1/subspace", url.Values{"id": {"s1"}}).
				Require("Query subspace: s1", "No this subspace."),
		}}

		_, err := New(Options{Client: client}).Compose(context.Background(), page)
		var se *SlotError
		require.True(t, errors.As(err, &se), "optionalOK=%v", optionalOK)
		assert.Equal(t, "subspace", se.Slot)
	}
}

func TestCompose_RequiredTransportErrorUsesUpstreamReason(t *testing.T) {
	client := newFakeClient()
	client.fail("/v1/post", errors.New("dial tcp: connection refused"))

	_, err := New(Options{Client: client}).Compose(context.Background(), articlePage("p1"))
	var se *SlotError
	require.True(t, errors.As(err, &se))
	assert.False(t, se.Empty)
	action, reason := se.ErrorSignal()
	assert.Equal(t, "Query article: p1", action)
	assert.Equal(t, ReasonUpstream, reason)
}

func TestCompose_SlotTimeouts(t *testing.T) {
	block := func(ctx context.Context, _ url.Values) ([]json.RawMessage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	t.Run("optional times out to default", func(t *testing.T) {
		client := newFakeClient()
		client.on("/v1/subspace/list", block)
		page := Page{Name: "index", Specs: []FetchSpec{
			Many[content.Subspace]("subspaces", "/v1/subspace/list", nil),
		}}
		res, err := New(Options{Client: client, SlotTimeout: 20 * time.Millisecond}).Compose(context.Background(), page)
		require.NoError(t, err)
		assert.Equal(t, []content.Subspace{}, Get[[]content.Subspace](res, "subspaces"))
	})

	t.Run("required times out to failure", func(t *testing.T) {
		client := newFakeClient()
		client.on("/v1/post", block)
		_, err := New(Options{Client: client, SlotTimeout: 20 * time.Millisecond}).Compose(context.Background(), articlePage("p1"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestCompose_IndependentSlotsRunConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	rendezvous := func(ctx context.Context, _ url.Values) ([]json.RawMessage, error) {
		wg.Done()
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return []json.RawMessage{json.RawMessage(`{"id":"x"}`)}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	client := newFakeClient()
	client.on("/v1/a", rendezvous)
	client.on("/v1/b", rendezvous)

	page := Page{Name: "pair", Specs: []FetchSpec{
		One[content.Post]("a", "/v1/a", nil).Require("a", "a"),
		One[content.Post]("b", "/v1/b", nil).Require("b", "b"),
	}}
	_, err := New(Options{Client: client, SlotTimeout: time.Second}).Compose(context.Background(), page)
	require.NoError(t, err)
}

func TestCompose_DefaultedDependency(t *testing.T) {
	client := newFakeClient()
	client.respond("/v1/post", `[]`)

	page := Page{Name: "p", Specs: []FetchSpec{
		One[content.Post]("post", "/v1/post", nil),
		Many[content.Comment]("comments", "/v1/comment/list_by_post", nil).
			After("post", map[string]string{"post_id": "id"}),
	}}
	res, err := New(Options{Client: client}).Compose(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDefaulted, res.Outcome("comments"))
	assert.Empty(t, client.called("/v1/comment/list_by_post"))

	page.Specs[1] = page.Specs[1].Require("Load comments", "No post.")
	_, err = New(Options{Client: client}).Compose(context.Background(), page)
	var se *SlotError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "comments", se.Slot)
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
	_, reason := se.ErrorSignal()
	assert.Equal(t, "No post.", reason)
}

func TestCompose_RequiredFailureReasons(t *testing.T) {
	tests := []struct {
		name   string
		answer func(context.Context, url.Values) ([]json.RawMessage, error)
		reason string
	}{
		{
			name: "unreadable answer",
			answer: func(context.Context, url.Values) ([]json.RawMessage, error) {
				return []json.RawMessage{json.RawMessage(`"not an object"`)}, nil
			},
			reason: ReasonMalformed,
		},
		{
			name: "deadline",
			answer: func(context.Context, url.Values) ([]json.RawMessage, error) {
				return nil, context.DeadlineExceeded
			},
			reason: ReasonTimeout,
		},
		{
			name: "unreachable",
			answer: func(context.Context, url.Values) ([]json.RawMessage, error) {
				return nil, errors.New("dial tcp: connection refused")
			},
			reason: ReasonUpstream,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			client.on("/v1/post", tt.answer)
			_, err := New(Options{Client: client}).Compose(context.Background(), articlePage("p1"))
			var se *SlotError
			require.True(t, errors.As(err, &se))
			_, reason := se.ErrorSignal()
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestCompose_CanceledContextFailsRequired(t *testing.T) {
	client := newFakeClient()
	client.respond("/v1/post", `[{"id":"p1","title":"T"}]`)
	page := Page{Name: "article", Specs: []FetchSpec{
		One[content.Post]("post", "/v1/post", url.Values{"id": {"p1"}}).
			Require("Query article: p1", "Article doesn't exist!"),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(Options{Client: client}).Compose(ctx, page)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var se *SlotError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "post", se.Slot)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, OutcomeSkipped, res.Outcome("post"))
	assert.Empty(t, client.called("/v1/post"))
}

func TestCompose_RequiredFailureCancelsSiblings(t *testing.T) {
	started := make(chan struct{}, 2)
	block := func(ctx context.Context, _ url.Values) ([]json.RawMessage, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	client := newFakeClient()
	client.on("/v1/subspace/list", block)
	client.on("/v1/user", block)
	client.on("/v1/post", func(ctx context.Context, _ url.Values) ([]json.RawMessage, error) {
		for range 2 {
			select {
			case <-started:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return []json.RawMessage{}, nil
	})

	page := Page{Name: "article", Specs: []FetchSpec{
		One[content.Post]("post", "/v1/post", nil).Require("Query article: p1", "Article doesn't exist!"),
		Many[content.Subspace]("subspaces", "/v1/subspace/list", nil),
		One[content.User]("user", "/v1/user", nil).Require("Query user", "No user."),
	}}

	res, err := New(Options{Client: client, SlotTimeout: 5 * time.Second}).Compose(context.Background(), page)
	require.Error(t, err)

	var se *SlotError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "post", se.Slot)
	assert.True(t, se.Empty)
	assert.Same(t, se, res.Failure)

	assert.Equal(t, OutcomeFailed, res.Outcome("post"))
	assert.Equal(t, OutcomeSkipped, res.Outcome("subspaces"))
	assert.Equal(t, OutcomeSkipped, res.Outcome("user"))
	assert.Equal(t, []content.Subspace{}, Get[[]content.Subspace](res, "subspaces"))
	assert.Equal(t, content.User{}, Get[content.User](res, "user"))
}

func TestCompose_InvalidPages(t *testing.T) {
	wrongDefault := One[content.Post]("x", "/v1/post", nil)
	wrongDefault.Default = "nope"

	tests := []struct {
		name  string
		specs []FetchSpec
	}{
		{
			name: "duplicate slot",
			specs: []FetchSpec{
				One[content.Post]("x", "/v1/post", nil),
				One[content.Post]("x", "/v1/post", nil),
			},
		},
		{
			name:  "unknown dependency",
			specs: []FetchSpec{One[content.Post]("x", "/v1/post", nil).After("missing", nil)},
		},
		{
			name: "cycle",
			specs: []FetchSpec{
				One[content.Post]("a", "/v1/a", nil).After("b", nil),
				One[content.Post]("b", "/v1/b", nil).After("a", nil),
			},
		},
		{
			name:  "wrong default type",
			specs: []FetchSpec{wrongDefault},
		},
		{
			name:  "hand-built spec",
			specs: []FetchSpec{{Slot: "x", Path: "/v1/post", Criticality: Optional}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(Options{Client: newFakeClient()}).Compose(context.Background(), Page{Name: "bad", Specs: tt.specs})
			require.Error(t, err)
			assert.Nil(t, res)
			var se *SlotError
			assert.False(t, errors.As(err, &se))
		})
	}
}

func TestDeriveParams(t *testing.T) {
	doc := map[string]any{"id": "p1", "weight": float64(3), "meta": map[string]any{"tag": "go"}}
	got, err := deriveParams(url.Values{"limit": {"10"}}, map[string]string{
		"post_id": "id",
		"weight":  "weight",
		"tag":     "meta.tag",
	}, doc)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.Get("post_id"))
	assert.Equal(t, "3", got.Get("weight"))
	assert.Equal(t, "go", got.Get("tag"))
	assert.Equal(t, "10", got.Get("limit"))

	_, err = deriveParams(nil, map[string]string{"x": "missing"}, doc)
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}
