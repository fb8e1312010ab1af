package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dockcall-backend/eventbus"
	"dockcall-backend/model"
	"dockcall-backend/store"

	"github.com/rs/zerolog"
)

// testEnv wires the services against the memory store, the way the
// storage-free development mode runs them.
type testEnv struct {
	store     store.Store
	bus       *eventbus.Bus
	actionLog *ActionLogService
	drivers   *DriverService
	calls     *CallService
	dashboard *DashboardService
}

func newTestEnv() *testEnv {
	logger := zerolog.Nop()
	st := store.NewMemoryStore()
	bus := eventbus.NewBus(logger)
	actionLog := NewActionLogService(logger, st, nil, bus)

	return &testEnv{
		store:     st,
		bus:       bus,
		actionLog: actionLog,
		drivers:   NewDriverService(logger, st, bus, actionLog),
		calls:     NewCallService(logger, st, bus, actionLog),
		dashboard: NewDashboardService(logger, st),
	}
}

// seedDriver inserts a driver directly, bypassing registration, with
// sensible defaults for the fields the test does not care about.
func seedDriver(t *testing.T, st store.Store, driver model.Driver) model.Driver {
	t.Helper()

	if driver.ID == "" {
		driver.ID = "driver_" + strings.ToLower(strings.ReplaceAll(driver.FullName, " ", "_"))
	}
	if driver.FullName == "" {
		driver.FullName = "Motorista Teste"
	}
	if driver.Phone == "" {
		driver.Phone = "11987654321"
	}
	if driver.VehiclePlate == "" {
		driver.VehiclePlate = "ABC-1234"
	}
	if driver.AvailabilityStatus == "" {
		driver.AvailabilityStatus = model.AvailabilityOnline
	}
	if driver.ServiceStatus == "" {
		driver.ServiceStatus = model.ServiceStatusDisponivel
	}
	if driver.CreatedAt.IsZero() {
		driver.CreatedAt = time.Now()
		driver.UpdatedAt = driver.CreatedAt
	}

	if err := st.UpsertDriver(context.Background(), &driver); err != nil {
		t.Fatalf("seed driver %s: %v", driver.ID, err)
	}
	return driver
}

func TestPlaceCall(t *testing.T) {
	ctx := context.Background()

	t.Run("cria chamada ativa com snapshot do motorista", func(t *testing.T) {
		env := newTestEnv()
		driver := seedDriver(t, env.store, model.Driver{
			ID:           "driver_1",
			FullName:     "João Silva",
			VehiclePlate: "XYZ-9876",
			Transporter:  "LogSul",
		})

		call, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{
			DriverID: driver.ID,
			Message:  "Dirija-se à doca 3",
			Dock:     "Doca 3",
		})
		if err != nil {
			t.Fatalf("PlaceCall: %v", err)
		}

		if !strings.HasPrefix(call.CallID, "call_") || !strings.Contains(call.CallID, driver.ID) {
			t.Errorf("call id %q does not follow call_<ts>_<driver>_<rand>", call.CallID)
		}
		if call.Kind != model.CallKindDock {
			t.Errorf("kind = %q, want %q", call.Kind, model.CallKindDock)
		}
		if call.DriverName != "João Silva" || call.VehiclePlate != "XYZ-9876" || call.Transporter != "LogSul" {
			t.Errorf("driver snapshot not captured: %+v", call)
		}
		if call.FinalizedAt != nil {
			t.Error("new call must not carry a finalization timestamp")
		}

		active, err := env.store.ListActiveCalls(ctx)
		if err != nil {
			t.Fatalf("ListActiveCalls: %v", err)
		}
		if len(active) != 1 {
			t.Fatalf("active calls = %d, want 1", len(active))
		}
	})

	t.Run("usa destino e doca do cadastro quando omitidos", func(t *testing.T) {
		env := newTestEnv()
		driver := seedDriver(t, env.store, model.Driver{
			ID:          "driver_2",
			Destination: "CD Campinas",
			Dock:        "Doca 7",
		})

		call, err := env.calls.PlaceCall(ctx, model.RoleAdm, CallInput{
			DriverID: driver.ID,
			Message:  "Chegou sua vez",
		})
		if err != nil {
			t.Fatalf("PlaceCall: %v", err)
		}
		if call.Destination != "CD Campinas" || call.Dock != "Doca 7" {
			t.Errorf("destination/dock = %q/%q, want registry defaults", call.Destination, call.Dock)
		}
	})

	t.Run("motorista inexistente", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: "driver_missing", Message: "oi"})
		if !errors.Is(err, ErrDriverNotFound) {
			t.Errorf("err = %v, want ErrDriverNotFound", err)
		}
	})

	t.Run("motorista offline", func(t *testing.T) {
		env := newTestEnv()
		driver := seedDriver(t, env.store, model.Driver{
			ID:                 "driver_off",
			AvailabilityStatus: model.AvailabilityOffline,
		})

		_, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Message: "oi"})
		if !errors.Is(err, ErrDriverOffline) {
			t.Errorf("err = %v, want ErrDriverOffline", err)
		}
		if !IsStatePreconditionError(err) {
			t.Error("offline rejection must be a state precondition error")
		}
	})

	t.Run("mensagem em branco", func(t *testing.T) {
		env := newTestEnv()
		driver := seedDriver(t, env.store, model.Driver{ID: "driver_msg"})

		_, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Message: "   "})
		if !IsValidationError(err) {
			t.Errorf("err = %v, want validation error", err)
		}

		active, _ := env.store.ListActiveCalls(ctx)
		if len(active) != 0 {
			t.Errorf("validation failure must not insert a call, got %d", len(active))
		}
	})

	t.Run("chamada ativa duplicada", func(t *testing.T) {
		env := newTestEnv()
		driver := seedDriver(t, env.store, model.Driver{ID: "driver_dup"})

		if _, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Message: "primeira"}); err != nil {
			t.Fatalf("first PlaceCall: %v", err)
		}
		_, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Message: "segunda"})
		if !errors.Is(err, ErrDriverAlreadyCalled) {
			t.Errorf("err = %v, want ErrDriverAlreadyCalled", err)
		}
	})

	t.Run("chamada finalizada pendente bloqueia nova chamada", func(t *testing.T) {
		env := newTestEnv()
		driver := seedDriver(t, env.store, model.Driver{ID: "driver_fin"})

		call, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Message: "primeira"})
		if err != nil {
			t.Fatalf("PlaceCall: %v", err)
		}
		if _, err := env.calls.Finalize(ctx, model.RoleMaster, call.CallID); err != nil {
			t.Fatalf("Finalize: %v", err)
		}

		_, err = env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Message: "segunda"})
		if !errors.Is(err, ErrDriverHasFinalizedCall) {
			t.Errorf("err = %v, want ErrDriverHasFinalizedCall", err)
		}
	})
}

func TestAssignRun(t *testing.T) {
	ctx := context.Background()

	t.Run("atribui corrida e permite várias por motorista", func(t *testing.T) {
		env := newTestEnv()
		driver := seedDriver(t, env.store, model.Driver{ID: "driver_run"})

		first, err := env.calls.AssignRun(ctx, model.RoleMaster, CallInput{
			DriverID:    driver.ID,
			Destination: "CD Sorocaba",
		})
		if err != nil {
			t.Fatalf("first AssignRun: %v", err)
		}
		if first.Kind != model.CallKindRun {
			t.Errorf("kind = %q, want %q", first.Kind, model.CallKindRun)
		}

		// A run never checks prior call state.
		if _, err := env.calls.AssignRun(ctx, model.RoleMaster, CallInput{
			DriverID:    driver.ID,
			Destination: "CD Campinas",
		}); err != nil {
			t.Fatalf("second AssignRun: %v", err)
		}

		runs, err := env.calls.FindActiveByDriver(ctx, driver.ID)
		if err != nil {
			t.Fatalf("FindActiveByDriver: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("active runs = %d, want 2", len(runs))
		}
	})

	t.Run("destino é obrigatório", func(t *testing.T) {
		env := newTestEnv()
		// Registry destination must not satisfy the run's own requirement.
		driver := seedDriver(t, env.store, model.Driver{ID: "driver_nodest", Destination: "CD Padrão"})

		_, err := env.calls.AssignRun(ctx, model.RoleMaster, CallInput{DriverID: driver.ID})
		if !IsValidationError(err) {
			t.Errorf("err = %v, want validation error", err)
		}
	})

	t.Run("motorista offline não recebe corrida", func(t *testing.T) {
		env := newTestEnv()
		driver := seedDriver(t, env.store, model.Driver{
			ID:                 "driver_run_off",
			AvailabilityStatus: model.AvailabilityOffline,
		})

		_, err := env.calls.AssignRun(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Destination: "CD Sul"})
		if !errors.Is(err, ErrDriverOffline) {
			t.Errorf("err = %v, want ErrDriverOffline", err)
		}
	})
}

func TestFinalizeAndReopen(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	driver := seedDriver(t, env.store, model.Driver{ID: "driver_cycle", FullName: "Maria Oliveira"})

	placed, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Message: "Doca 2"})
	if err != nil {
		t.Fatalf("PlaceCall: %v", err)
	}

	finalized, err := env.calls.Finalize(ctx, model.RoleMaster, placed.CallID)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if finalized.FinalizedAt == nil {
		t.Fatal("finalized call must carry a finalization timestamp")
	}

	// Exactly one collection holds the record after finalize.
	if _, err := env.store.GetActiveCall(ctx, placed.CallID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("active lookup after finalize: err = %v, want ErrNotFound", err)
	}
	if _, err := env.store.GetFinalizedCall(ctx, placed.CallID); err != nil {
		t.Errorf("finalized lookup after finalize: %v", err)
	}

	reopened, err := env.calls.Reopen(ctx, model.RoleMaster, placed.CallID)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if reopened.FinalizedAt != nil {
		t.Error("reopened call must have its finalization timestamp cleared")
	}
	if reopened.CallID != placed.CallID || reopened.Message != placed.Message || !reopened.CalledAt.Equal(placed.CalledAt) {
		t.Errorf("round trip changed the call: got %+v, want %+v", reopened, placed)
	}

	if _, err := env.store.GetFinalizedCall(ctx, placed.CallID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("finalized lookup after reopen: err = %v, want ErrNotFound", err)
	}
	if _, err := env.store.GetActiveCall(ctx, placed.CallID); err != nil {
		t.Errorf("active lookup after reopen: %v", err)
	}
}

func TestFinalizeUnknownCall(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	if _, err := env.calls.Finalize(ctx, model.RoleMaster, "call_missing"); !errors.Is(err, ErrCallNotFound) {
		t.Errorf("Finalize err = %v, want ErrCallNotFound", err)
	}
	if _, err := env.calls.Reopen(ctx, model.RoleMaster, "call_missing"); !errors.Is(err, ErrCallNotFound) {
		t.Errorf("Reopen err = %v, want ErrCallNotFound", err)
	}
}

func TestRemoveFromPanel(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	driver := seedDriver(t, env.store, model.Driver{ID: "driver_rm"})

	call, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Message: "Doca 1"})
	if err != nil {
		t.Fatalf("PlaceCall: %v", err)
	}

	if err := env.calls.RemoveFromPanel(ctx, model.RoleMaster, call.CallID); err != nil {
		t.Fatalf("RemoveFromPanel: %v", err)
	}

	// Removal deletes outright; no finalized record may appear.
	if _, err := env.store.GetActiveCall(ctx, call.CallID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("active lookup after removal: err = %v, want ErrNotFound", err)
	}
	count, err := env.store.CountFinalizedCalls(ctx)
	if err != nil {
		t.Fatalf("CountFinalizedCalls: %v", err)
	}
	if count != 0 {
		t.Errorf("finalized calls after removal = %d, want 0", count)
	}

	if err := env.calls.RemoveFromPanel(ctx, model.RoleMaster, call.CallID); !errors.Is(err, ErrCallNotFound) {
		t.Errorf("second removal err = %v, want ErrCallNotFound", err)
	}
}
