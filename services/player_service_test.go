package services

import (
	"context"
	"errors"
	"testing"

	"github.com/johnlemossilva-pixel/mini-royale-backend/models"
)

func TestAdjustPlayerScenarioC(t *testing.T) {
	store := newMemStore(models.Player{ID: "p1", Vida: 10, Gems: 10})
	svc := NewPlayerService(store, nil)

	if err := svc.AdjustPlayer(context.Background(), "p1", intp(-20), nil); err != nil {
		t.Fatalf("AdjustPlayer: %v", err)
	}
	p, _ := store.get("p1")
	// direct adjustments are not floor-clamped, unlike match resolution
	if p.Vida != -10 {
		t.Fatalf("expected vida -10, got %d", p.Vida)
	}
	if p.Gems != 10 {
		t.Fatalf("gems changed: %d", p.Gems)
	}
}

func TestAdjustPlayerScenarioDNoFields(t *testing.T) {
	store := newMemStore()
	svc := NewPlayerService(store, nil)

	err := svc.AdjustPlayer(context.Background(), "ghost", nil, nil)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("store called %d times", store.calls)
	}
}

func TestAdjustPlayerRejectsZeroDeltas(t *testing.T) {
	store := newMemStore(models.Player{ID: "p1", Vida: 50, Gems: 5})
	svc := NewPlayerService(store, nil)

	for _, tc := range []struct{ vida, gems *int }{
		{intp(0), intp(0)},
		{intp(0), nil},
		{nil, intp(0)},
	} {
		if err := svc.AdjustPlayer(context.Background(), "p1", tc.vida, tc.gems); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("expected invalid request for zero deltas, got %v", err)
		}
	}
	if p, _ := store.get("p1"); p.Vida != 50 || p.Gems != 5 {
		t.Fatalf("store changed: %+v", p)
	}
	if store.calls != 0 {
		t.Fatalf("store called %d times", store.calls)
	}
}

func TestAdjustPlayerKeepsGemsNonNegative(t *testing.T) {
	store := newMemStore(models.Player{ID: "p1", Vida: 50, Gems: 10})
	svc := NewPlayerService(store, nil)
	ctx := context.Background()

	if err := svc.AdjustPlayer(ctx, "p1", intp(-5), intp(-1000)); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if p, _ := store.get("p1"); p.Vida != 50 || p.Gems != 10 {
		t.Fatalf("partial write on rejected adjust: %+v", p)
	}

	if err := svc.AdjustPlayer(ctx, "p1", nil, intp(-10)); err != nil {
		t.Fatalf("spending the whole balance: %v", err)
	}
	if p, _ := store.get("p1"); p.Gems != 0 {
		t.Fatalf("expected gems 0, got %d", p.Gems)
	}
}

func TestAdjustPlayerNotFoundAndStorageErrors(t *testing.T) {
	store := newMemStore()
	svc := NewPlayerService(store, nil)
	ctx := context.Background()

	if err := svc.AdjustPlayer(ctx, "ghost", intp(1), nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	store.failIncrement = errBoom
	if err := svc.AdjustPlayer(ctx, "ghost", nil, intp(3)); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestCreatePlayer(t *testing.T) {
	store := newMemStore()
	svc := NewPlayerService(store, nil)
	ctx := context.Background()

	p, err := svc.CreatePlayer(ctx, PlayerInput{ID: strp("p1"), Nome: strp("  João   Ninja ")})
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	if p.Nome != "João Ninja" || p.Handle != "joao-ninja" {
		t.Fatalf("name not normalized: %+v", p)
	}
	if p.Vida != models.DefaultHealth || p.Gems != 0 {
		t.Fatalf("defaults not applied: %+v", p)
	}

	if _, err := svc.CreatePlayer(ctx, PlayerInput{ID: strp("p1"), Nome: strp("Again")}); !errors.Is(err, ErrStorage) {
		t.Fatalf("duplicate id: expected storage error, got %v", err)
	}
}

func TestCreatePlayerValidation(t *testing.T) {
	svc := NewPlayerService(newMemStore(), nil)
	cases := map[string]PlayerInput{
		"missing id":    {Nome: strp("x")},
		"blank id":      {ID: strp(" "), Nome: strp("x")},
		"missing nome":  {ID: strp("p1")},
		"blank nome":    {ID: strp("p1"), Nome: strp("   ")},
		"vida too high": {ID: strp("p1"), Nome: strp("x"), Vida: intp(101)},
		"vida negative": {ID: strp("p1"), Nome: strp("x"), Vida: intp(-1)},
		"gems negative": {ID: strp("p1"), Nome: strp("x"), Gems: intp(-5)},
	}
	for name, in := range cases {
		if _, err := svc.CreatePlayer(context.Background(), in); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("%s: expected invalid request, got %v", name, err)
		}
	}
}

func TestUpsertPlayer(t *testing.T) {
	store := newMemStore(models.Player{ID: "p1", Nome: "Old", Vida: 3, Gems: 99})
	svc := NewPlayerService(store, nil)
	ctx := context.Background()

	if _, err := svc.UpsertPlayer(ctx, "p1", PlayerInput{Nome: strp("New"), Vida: intp(70)}); err != nil {
		t.Fatalf("UpsertPlayer: %v", err)
	}
	p, _ := store.get("p1")
	if p.Nome != "New" || p.Vida != 70 || p.Gems != 0 {
		t.Fatalf("record not replaced: %+v", p)
	}

	if _, err := svc.UpsertPlayer(ctx, "p1", PlayerInput{ID: strp("p2"), Nome: strp("x")}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("mismatched id: expected invalid request, got %v", err)
	}
}

func TestGetProfile(t *testing.T) {
	store := newMemStore(models.Player{ID: "p1", Nome: "Ana", Vida: 100})
	svc := NewPlayerService(store, nil)
	ctx := context.Background()

	p, err := svc.GetProfile(ctx, "p1")
	if err != nil || p.Nome != "Ana" {
		t.Fatalf("GetProfile: %+v %v", p, err)
	}
	if _, err := svc.GetProfile(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	store.failFind = errBoom
	if _, err := svc.GetProfile(ctx, "p1"); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestErrorKinds(t *testing.T) {
	err := notFound("op", "gone", "a", "b")
	if KindOf(err) != KindNotFound {
		t.Fatalf("KindOf = %s", KindOf(err))
	}
	if errors.Is(err, ErrStorage) || errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("kind leaked across sentinels")
	}
	if got := err.Error(); got != "op: gone [a, b]" {
		t.Fatalf("Error() = %q", got)
	}
	if KindOf(errBoom) != KindStorage {
		t.Fatalf("foreign errors should map to storage")
	}
}
