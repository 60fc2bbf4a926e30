package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/calcdeck/internal/calculator"
	"github.com/louisbranch/calcdeck/internal/services/calc/storage"
	"github.com/louisbranch/calcdeck/internal/services/calc/storage/sqlite"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var fixedNow = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "calc.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var n int
	var mu sync.Mutex
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() (string, error) {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("session-%d", n), nil
		}),
	}
	svc, err := NewService(store, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func actions(t *testing.T, inputs ...string) []calculator.Action {
	t.Helper()
	out := make([]calculator.Action, 0, len(inputs))
	for _, input := range inputs {
		action, err := calculator.ParseInput(input)
		if err != nil {
			t.Fatalf("parse input %q: %v", input, err)
		}
		out = append(out, action)
	}
	return out
}

func TestNewServiceRequiresStore(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "session-1" {
		t.Fatalf("id = %q, want session-1", created.ID)
	}
	got, err := svc.Get(ctx, " session-1 ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != calculator.NewState() || !got.CreatedAt.Equal(fixedNow) {
		t.Fatalf("session = %+v", got)
	}
}

func TestCreatePropagatesIDFailure(t *testing.T) {
	svc := newTestService(t, WithIDGenerator(func() (string, error) { return "", errors.New("no entropy") }))
	if _, err := svc.Create(context.Background()); err == nil {
		t.Fatal("expected id generation error")
	}
}

func TestPressAppliesActionsAndRecordsTape(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := svc.Press(ctx, session.ID, actions(t, "5", "+", "3", "=")...)
	if err != nil {
		t.Fatalf("press: %v", err)
	}
	if result.State.Current != "8" || result.State.Previous != "" || !result.State.AwaitingNext {
		t.Fatalf("state = %+v", result.State)
	}
	if len(result.Steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(result.Steps))
	}
	if len(result.Tape) != 1 {
		t.Fatalf("tape = %+v, want one entry", result.Tape)
	}
	entry := result.Tape[0]
	if entry.First != "5" || entry.Operator != calculator.OperatorAdd || entry.Second != "3" || entry.Result != "8" || entry.Seq == 0 {
		t.Fatalf("tape entry = %+v", entry)
	}

	stored, err := svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.State != result.State {
		t.Fatalf("stored state = %+v, want %+v", stored.State, result.State)
	}
}

func TestPressContinuesAcrossCalls(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session, _ := svc.Create(ctx)

	for _, input := range []string{"9", "/", "0", "="} {
		if _, err := svc.Press(ctx, session.ID, actions(t, input)...); err != nil {
			t.Fatalf("press %q: %v", input, err)
		}
	}
	result, err := svc.Press(ctx, session.ID, actions(t, "+")...)
	if err != nil {
		t.Fatalf("press +: %v", err)
	}
	if result.State.Previous != "Error +" {
		t.Fatalf("previous = %q, want %q", result.State.Previous, "Error +")
	}

	page, err := svc.Tape(ctx, session.ID, 10, "", `result = "Error"`)
	if err != nil {
		t.Fatalf("tape: %v", err)
	}
	if len(page.Entries) != 1 || page.Entries[0].Second != "0" {
		t.Fatalf("error entries = %+v", page.Entries)
	}
}

func TestPressValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session, _ := svc.Create(ctx)

	if _, err := svc.Press(ctx, "  ", calculator.Clear); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("blank id error = %v, want ErrInvalidSession", err)
	}
	if _, err := svc.Press(ctx, session.ID); !errors.Is(err, ErrNoActions) {
		t.Fatalf("empty actions error = %v, want ErrNoActions", err)
	}
	tooMany := make([]calculator.Action, MaxActionsPerPress+1)
	for i := range tooMany {
		tooMany[i] = calculator.Digit('1')
	}
	if _, err := svc.Press(ctx, session.ID, tooMany...); !errors.Is(err, ErrTooManyActions) {
		t.Fatalf("too many actions error = %v, want ErrTooManyActions", err)
	}
	if _, err := svc.Press(ctx, "missing", calculator.Clear); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing session error = %v, want ErrNotFound", err)
	}
}

func TestPressSerializesConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session, _ := svc.Create(ctx)

	const presses = 20
	var wg sync.WaitGroup
	errs := make(chan error, presses)
	for i := 0; i < presses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Press(ctx, session.ID, calculator.Digit('1')); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent press: %v", err)
	}

	got, err := svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.State.Current) != presses {
		t.Fatalf("current = %q, want %d ones", got.State.Current, presses)
	}
	if n := svc.locks.size(); n != 0 {
		t.Fatalf("lock table size = %d, want 0", n)
	}
}

func TestClearAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session, _ := svc.Create(ctx)

	if _, err := svc.Press(ctx, session.ID, actions(t, "4", "*")...); err != nil {
		t.Fatalf("press: %v", err)
	}
	result, err := svc.Press(ctx, session.ID, calculator.Clear)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if result.State != calculator.NewState() {
		t.Fatalf("state after clear = %+v", result.State)
	}

	if err := svc.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, session.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("blank delete = %v, want ErrInvalidSession", err)
	}
}

func TestTapeValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session, _ := svc.Create(ctx)

	if _, err := svc.Tape(ctx, session.ID, 10, "", `nope = "x"`); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("bad filter error = %v, want ErrInvalidFilter", err)
	}
	if _, err := svc.Tape(ctx, session.ID, 10, "%%%", ""); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("bad token error = %v, want ErrInvalidPageToken", err)
	}
	if _, err := svc.Tape(ctx, "missing", 10, "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing session error = %v, want ErrNotFound", err)
	}
}

func TestPressRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx := context.Background()
	svc := newTestService(t, WithTracerProvider(tp))
	session, _ := svc.Create(ctx)

	if _, err := svc.Press(ctx, session.ID, actions(t, "6", "/", "3", "=")...); err != nil {
		t.Fatalf("press: %v", err)
	}
	if _, err := svc.Press(ctx, "missing", calculator.Clear); err == nil {
		t.Fatal("expected missing session error")
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	ok := spans[0]
	if ok.Name() != "session.Press" {
		t.Fatalf("span name = %q", ok.Name())
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ok.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs["calcdeck.actions"].AsInt64() != 4 {
		t.Fatalf("actions attribute = %v", attrs["calcdeck.actions"])
	}
	if attrs["calcdeck.display.current"].AsString() != "2" {
		t.Fatalf("current attribute = %v", attrs["calcdeck.display.current"])
	}
	if spans[1].Status().Code != codes.Error {
		t.Fatalf("failed press status = %v, want error", spans[1].Status())
	}
}
