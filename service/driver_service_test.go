package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dockcall-backend/model"
	"dockcall-backend/store"
)

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		input      RegisterInput
		wantFields []string
	}{
		{
			name:       "nome completo obrigatório",
			input:      RegisterInput{Phone: "11987654321", VehiclePlate: "ABC-1234"},
			wantFields: []string{"fullName"},
		},
		{
			name:       "telefone com poucos dígitos",
			input:      RegisterInput{FullName: "João Silva", Phone: "1198765", VehiclePlate: "ABC-1234"},
			wantFields: []string{"phone"},
		},
		{
			name:       "senha fora do formato de 3 dígitos",
			input:      RegisterInput{FullName: "João Silva", Phone: "11987654321", VehiclePlate: "ABC-1234", Password: "12ab"},
			wantFields: []string{"password"},
		},
		{
			name:       "falhas reportadas juntas",
			input:      RegisterInput{Phone: "abc"},
			wantFields: []string{"fullName", "phone", "vehiclePlate"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			_, err := env.drivers.Register(ctx, model.RoleMaster, tc.input)

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want validation error", err)
			}
			for _, field := range tc.wantFields {
				if _, ok := ve.Fields[field]; !ok {
					t.Errorf("missing validation failure for field %q: %v", field, ve.Fields)
				}
			}
			if len(ve.Fields) != len(tc.wantFields) {
				t.Errorf("fields = %v, want exactly %v", ve.Fields, tc.wantFields)
			}

			count, _ := env.store.CountDrivers(ctx)
			if count != 0 {
				t.Errorf("validation failure must not store a driver, got %d", count)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("normaliza telefone e aplica status iniciais", func(t *testing.T) {
		env := newTestEnv()
		driver, err := env.drivers.Register(ctx, model.RoleMaster, RegisterInput{
			FullName:     "  João Silva  ",
			Phone:        "(11) 98765-4321",
			VehiclePlate: "ABC-1234",
		})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}

		if driver.FullName != "João Silva" {
			t.Errorf("fullName = %q, want trimmed", driver.FullName)
		}
		if driver.Phone != "11987654321" {
			t.Errorf("phone = %q, want digits only", driver.Phone)
		}
		if driver.ID == "" || driver.ID[:7] != "driver_" {
			t.Errorf("id = %q, want driver_<millis>", driver.ID)
		}
		if driver.AvailabilityStatus != model.AvailabilityOnline || driver.ServiceStatus != model.ServiceStatusDisponivel {
			t.Errorf("initial statuses = %s/%s, want online/disponivel", driver.AvailabilityStatus, driver.ServiceStatus)
		}
	})

	t.Run("reenvio com mesmo id substitui sem duplicar", func(t *testing.T) {
		env := newTestEnv()
		createdAt := time.Now().Add(-time.Hour)
		seedDriver(t, env.store, model.Driver{
			ID:                 "driver_keep",
			FullName:           "Maria Oliveira",
			AvailabilityStatus: model.AvailabilityBusy,
			ServiceStatus:      model.ServiceStatusEmServico,
			CreatedAt:          createdAt,
		})

		updated, err := env.drivers.Register(ctx, model.RoleMaster, RegisterInput{
			ID:           "driver_keep",
			FullName:     "Maria Oliveira Santos",
			Phone:        "11912345678",
			VehiclePlate: "XYZ-9876",
		})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}

		count, _ := env.store.CountDrivers(ctx)
		if count != 1 {
			t.Fatalf("drivers = %d, want 1", count)
		}
		if !updated.CreatedAt.Equal(createdAt) {
			t.Errorf("createdAt = %v, want original %v", updated.CreatedAt, createdAt)
		}
		if updated.AvailabilityStatus != model.AvailabilityBusy || updated.ServiceStatus != model.ServiceStatusEmServico {
			t.Errorf("panel statuses were reset: %s/%s", updated.AvailabilityStatus, updated.ServiceStatus)
		}
		if updated.FullName != "Maria Oliveira Santos" {
			t.Errorf("fullName = %q, want replaced", updated.FullName)
		}
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	validInput := UpdateInput{
		FullName:          "Pedro Santos",
		Phone:             "11955554444",
		VehiclePlate:      "DEF-5678",
		Transporter:       "Trans Rápido",
		ResponsibleSeller: "Carlos Mendes",
	}

	t.Run("motorista inexistente", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.drivers.Update(ctx, model.RoleMaster, "driver_missing", validInput)
		if !errors.Is(err, ErrDriverNotFound) {
			t.Errorf("err = %v, want ErrDriverNotFound", err)
		}
	})

	t.Run("campos obrigatórios ausentes não alteram o registro", func(t *testing.T) {
		env := newTestEnv()
		original := seedDriver(t, env.store, model.Driver{ID: "driver_upd", FullName: "Pedro Santos"})

		_, err := env.drivers.Update(ctx, model.RoleMaster, original.ID, UpdateInput{FullName: "Novo Nome"})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("err = %v, want validation error", err)
		}
		for _, field := range []string{"phone", "vehiclePlate", "transporter", "responsibleSeller"} {
			if _, ok := ve.Fields[field]; !ok {
				t.Errorf("missing validation failure for field %q: %v", field, ve.Fields)
			}
		}

		stored, err := env.store.GetDriver(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetDriver: %v", err)
		}
		if stored.FullName != "Pedro Santos" {
			t.Errorf("record was mutated by a failed update: %q", stored.FullName)
		}
	})

	t.Run("atualiza dados e status do painel", func(t *testing.T) {
		env := newTestEnv()
		original := seedDriver(t, env.store, model.Driver{ID: "driver_upd2"})

		input := validInput
		input.AvailabilityStatus = model.AvailabilityBusy
		input.ServiceStatus = model.ServiceStatusAguardando

		updated, err := env.drivers.Update(ctx, model.RoleMaster, original.ID, input)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.FullName != "Pedro Santos" || updated.Phone != "11955554444" {
			t.Errorf("fields not replaced: %+v", updated)
		}
		if updated.AvailabilityStatus != model.AvailabilityBusy || updated.ServiceStatus != model.ServiceStatusAguardando {
			t.Errorf("statuses = %s/%s, want busy/aguardando", updated.AvailabilityStatus, updated.ServiceStatus)
		}
	})

	t.Run("status inválido é ignorado", func(t *testing.T) {
		env := newTestEnv()
		original := seedDriver(t, env.store, model.Driver{ID: "driver_upd3"})

		input := validInput
		input.AvailabilityStatus = model.AvailabilityStatus("dormindo")

		updated, err := env.drivers.Update(ctx, model.RoleMaster, original.ID, input)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.AvailabilityStatus != model.AvailabilityOnline {
			t.Errorf("availability = %s, want unchanged online", updated.AvailabilityStatus)
		}
	})
}

func TestDeleteCascadesCalls(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	driver := seedDriver(t, env.store, model.Driver{ID: "driver_del"})
	other := seedDriver(t, env.store, model.Driver{ID: "driver_other"})

	// One active run, one finalized call for the target; one active call
	// for the bystander.
	run, err := env.calls.AssignRun(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Destination: "CD Sul"})
	if err != nil {
		t.Fatalf("AssignRun: %v", err)
	}
	placed, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: driver.ID, Message: "Doca 4"})
	if err != nil {
		t.Fatalf("PlaceCall: %v", err)
	}
	if _, err := env.calls.Finalize(ctx, model.RoleMaster, placed.CallID); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	otherCall, err := env.calls.PlaceCall(ctx, model.RoleMaster, CallInput{DriverID: other.ID, Message: "Doca 5"})
	if err != nil {
		t.Fatalf("PlaceCall other: %v", err)
	}

	if err := env.drivers.Delete(ctx, model.RoleMaster, driver.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := env.store.GetDriver(ctx, driver.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("driver lookup after delete: err = %v, want ErrNotFound", err)
	}
	if _, err := env.store.GetActiveCall(ctx, run.CallID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("active call survived the cascade")
	}
	if _, err := env.store.GetFinalizedCall(ctx, placed.CallID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("finalized call survived the cascade")
	}
	if _, err := env.store.GetActiveCall(ctx, otherCall.CallID); err != nil {
		t.Errorf("cascade removed another driver's call: %v", err)
	}

	if err := env.drivers.Delete(ctx, model.RoleMaster, driver.ID); !errors.Is(err, ErrDriverNotFound) {
		t.Errorf("second delete err = %v, want ErrDriverNotFound", err)
	}
}

func TestListDrivers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	base := time.Now()
	seedDriver(t, env.store, model.Driver{ID: "driver_a", FullName: "João Silva", VehiclePlate: "ABC-1234", Transporter: "Trans Rápido", Phone: "11911110000", CreatedAt: base})
	seedDriver(t, env.store, model.Driver{ID: "driver_b", FullName: "Maria Oliveira", VehiclePlate: "XYZ-9876", Transporter: "LogSul", Phone: "11922220000", CreatedAt: base.Add(time.Second)})
	seedDriver(t, env.store, model.Driver{ID: "driver_c", FullName: "Pedro Santos", VehiclePlate: "DEF-5678", Transporter: "LogSul", Phone: "11933330000", CreatedAt: base.Add(2 * time.Second)})

	t.Run("sem filtro retorna todos, mais recentes primeiro", func(t *testing.T) {
		drivers, pagination, err := env.drivers.List(ctx, "", 1, 10)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(drivers) != 3 || pagination.TotalItems != 3 {
			t.Fatalf("got %d drivers (total %d), want 3", len(drivers), pagination.TotalItems)
		}
		if drivers[0].ID != "driver_c" || drivers[2].ID != "driver_a" {
			t.Errorf("order = %s..%s, want newest first", drivers[0].ID, drivers[2].ID)
		}
	})

	t.Run("filtro por transportadora", func(t *testing.T) {
		drivers, _, err := env.drivers.List(ctx, "logsul", 1, 10)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(drivers) != 2 {
			t.Errorf("got %d drivers, want 2", len(drivers))
		}
	})

	t.Run("filtro por placa", func(t *testing.T) {
		drivers, _, err := env.drivers.List(ctx, "abc-1234", 1, 10)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(drivers) != 1 || drivers[0].ID != "driver_a" {
			t.Errorf("got %+v, want only driver_a", drivers)
		}
	})

	t.Run("paginação", func(t *testing.T) {
		page1, pagination, err := env.drivers.List(ctx, "", 1, 2)
		if err != nil {
			t.Fatalf("List page 1: %v", err)
		}
		if len(page1) != 2 || pagination.TotalPages != 2 {
			t.Fatalf("page 1 = %d items, %d pages; want 2 and 2", len(page1), pagination.TotalPages)
		}

		page2, _, err := env.drivers.List(ctx, "", 2, 2)
		if err != nil {
			t.Fatalf("List page 2: %v", err)
		}
		if len(page2) != 1 {
			t.Errorf("page 2 = %d items, want 1", len(page2))
		}

		empty, _, err := env.drivers.List(ctx, "", 5, 2)
		if err != nil {
			t.Fatalf("List page 5: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("page past the end = %d items, want 0", len(empty))
		}
	})
}
