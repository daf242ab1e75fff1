package devices

import (
	"context"
	"errors"
	"testing"

	"voc-dashboard/internal/monitorapi"
)

type stubAPI struct {
	selectErr  error
	selected   []monitorapi.Device
	current    monitorapi.Device
	currentErr error
}

func (s *stubAPI) SelectDevice(_ context.Context, device monitorapi.Device) error {
	if s.selectErr != nil {
		return s.selectErr
	}
	s.selected = append(s.selected, device)
	return nil
}

func (s *stubAPI) CurrentDevice(context.Context) (monitorapi.Device, error) {
	return s.current, s.currentErr
}

func TestSelectCommitsOnConfirmation(t *testing.T) {
	api := &stubAPI{}
	ctx := NewContext(api)

	device := monitorapi.Device{ID: "2", Name: "bedroom", Topic: "sensors/bedroom"}
	if err := ctx.Select(context.Background(), device); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := ctx.Current(); got != device {
		t.Fatalf("current = %+v, want %+v", got, device)
	}
	if len(api.selected) != 1 {
		t.Fatalf("expected 1 server call, got %d", len(api.selected))
	}
}

func TestSelectFailureLeavesSelectionUnchanged(t *testing.T) {
	api := &stubAPI{}
	ctx := NewContext(api)

	first := monitorapi.Device{ID: "1", Name: "living-room"}
	if err := ctx.Select(context.Background(), first); err != nil {
		t.Fatalf("select: %v", err)
	}

	api.selectErr = errors.New("boom")
	err := ctx.Select(context.Background(), monitorapi.Device{ID: "2", Name: "bedroom"})
	if err == nil {
		t.Fatal("expected selection error")
	}
	var selErr *SelectionError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected *SelectionError, got %T", err)
	}
	if got := ctx.Current(); got != first {
		t.Fatalf("selection changed on failure: %+v", got)
	}
}

func TestRefreshPullsServerSelection(t *testing.T) {
	api := &stubAPI{current: monitorapi.Device{Name: "kitchen"}}
	ctx := NewContext(api)

	if err := ctx.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := ctx.Current(); got.Name != "kitchen" {
		t.Fatalf("current = %+v", got)
	}

	api.currentErr = errors.New("down")
	if err := ctx.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := ctx.Current(); got.Name != "kitchen" {
		t.Fatalf("selection changed on failed refresh: %+v", got)
	}
}
