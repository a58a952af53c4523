package httpstatus

import (
	"encoding/json"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/fluxorio/iotfsm/fsm"
)

func TestHandleStatusReportsCurrentState(t *testing.T) {
	engine := fsm.New(fsm.DefaultPolicy())
	a := fsm.NewState(fsm.WithHandler(func(args ...interface{}) bool { return true }))
	engine.AddState(a)
	engine.SetStartState(a.ID())
	engine.SetErrorState(a.ID())
	engine.AddStopState(a.ID())
	engine.Start(true)

	s := New(":0", engine, nil, nil)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/status")
	s.route(ctx)

	var resp statusResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "Running" {
		t.Fatalf("Status = %q, want Running", resp.Status)
	}
	if resp.Current != a.ID() {
		t.Fatalf("Current = %d, want %d", resp.Current, a.ID())
	}
}

func TestRouteUnknownPathIs404(t *testing.T) {
	engine := fsm.New(fsm.DefaultPolicy())
	s := New(":0", engine, nil, nil)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/nope")
	s.route(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", ctx.Response.StatusCode())
	}
}
