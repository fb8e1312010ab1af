package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"dockcall-backend/model"
)

func TestMemoryStoreDrivers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now()
	for i, id := range []string{"driver_a", "driver_b", "driver_c"} {
		driver := model.Driver{
			ID:        id,
			FullName:  "Motorista " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.UpsertDriver(ctx, &driver); err != nil {
			t.Fatalf("UpsertDriver %s: %v", id, err)
		}
	}

	t.Run("listagem mais recentes primeiro", func(t *testing.T) {
		drivers, err := s.ListDrivers(ctx)
		if err != nil {
			t.Fatalf("ListDrivers: %v", err)
		}
		if len(drivers) != 3 {
			t.Fatalf("drivers = %d, want 3", len(drivers))
		}
		if drivers[0].ID != "driver_c" || drivers[2].ID != "driver_a" {
			t.Errorf("order = %s..%s, want newest first", drivers[0].ID, drivers[2].ID)
		}
	})

	t.Run("cópia por valor isola o registro armazenado", func(t *testing.T) {
		got, err := s.GetDriver(ctx, "driver_a")
		if err != nil {
			t.Fatalf("GetDriver: %v", err)
		}
		got.FullName = "Mutado"

		again, err := s.GetDriver(ctx, "driver_a")
		if err != nil {
			t.Fatalf("GetDriver: %v", err)
		}
		if again.FullName != "Motorista driver_a" {
			t.Errorf("stored record was mutated through a returned pointer: %q", again.FullName)
		}
	})

	t.Run("inexistente retorna ErrNotFound", func(t *testing.T) {
		if _, err := s.GetDriver(ctx, "driver_missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetDriver err = %v, want ErrNotFound", err)
		}
		if err := s.DeleteDriver(ctx, "driver_missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("DeleteDriver err = %v, want ErrNotFound", err)
		}
	})
}

func TestMemoryStoreCallCollections(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now()
	for i := 0; i < 3; i++ {
		call := model.Call{
			CallID:   fmt.Sprintf("call_%d", i),
			DriverID: "driver_x",
			CalledAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.InsertActiveCall(ctx, &call); err != nil {
			t.Fatalf("InsertActiveCall: %v", err)
		}
	}

	t.Run("ativas ordenadas por chamada mais recente", func(t *testing.T) {
		calls, err := s.ListActiveCalls(ctx)
		if err != nil {
			t.Fatalf("ListActiveCalls: %v", err)
		}
		if len(calls) != 3 || calls[0].CallID != "call_2" {
			t.Errorf("got %d calls, first %s; want 3 with call_2 first", len(calls), calls[0].CallID)
		}
	})

	t.Run("finalizadas ordenadas por finalização mais recente", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			finalizedAt := base.Add(time.Duration(10+i) * time.Second)
			call := model.Call{
				CallID:      fmt.Sprintf("fin_%d", i),
				DriverID:    "driver_x",
				CalledAt:    base,
				FinalizedAt: &finalizedAt,
			}
			if err := s.InsertFinalizedCall(ctx, &call); err != nil {
				t.Fatalf("InsertFinalizedCall: %v", err)
			}
		}

		calls, err := s.ListFinalizedCalls(ctx)
		if err != nil {
			t.Fatalf("ListFinalizedCalls: %v", err)
		}
		if len(calls) != 2 || calls[0].CallID != "fin_1" {
			t.Errorf("got %d calls, first %s; want 2 with fin_1 first", len(calls), calls[0].CallID)
		}
	})

	t.Run("registros sem finalização ordenam por último", func(t *testing.T) {
		// A reopened call can sit in the collection briefly before its
		// delete lands; listing must not panic on the nil timestamp.
		for _, id := range []string{"nil_a", "nil_b"} {
			call := model.Call{CallID: id, DriverID: "driver_x", CalledAt: base}
			if err := s.InsertFinalizedCall(ctx, &call); err != nil {
				t.Fatalf("InsertFinalizedCall %s: %v", id, err)
			}
		}

		calls, err := s.ListFinalizedCalls(ctx)
		if err != nil {
			t.Fatalf("ListFinalizedCalls: %v", err)
		}
		if len(calls) != 4 {
			t.Fatalf("calls = %d, want 4", len(calls))
		}
		if calls[0].CallID != "fin_1" || calls[1].CallID != "fin_0" {
			t.Errorf("stamped calls = %s, %s; want fin_1 then fin_0 first", calls[0].CallID, calls[1].CallID)
		}
		for _, c := range calls[2:] {
			if c.FinalizedAt != nil {
				t.Errorf("call %s with timestamp sorted after an unstamped one", c.CallID)
			}
		}

		for _, id := range []string{"nil_a", "nil_b"} {
			if err := s.DeleteFinalizedCall(ctx, id); err != nil {
				t.Fatalf("DeleteFinalizedCall %s: %v", id, err)
			}
		}
	})

	t.Run("remoção por motorista limpa as duas coleções", func(t *testing.T) {
		if err := s.DeleteActiveCallsByDriver(ctx, "driver_x"); err != nil {
			t.Fatalf("DeleteActiveCallsByDriver: %v", err)
		}
		if err := s.DeleteFinalizedCallsByDriver(ctx, "driver_x"); err != nil {
			t.Fatalf("DeleteFinalizedCallsByDriver: %v", err)
		}

		active, _ := s.ListActiveCalls(ctx)
		count, _ := s.CountFinalizedCalls(ctx)
		if len(active) != 0 || count != 0 {
			t.Errorf("active = %d, finalized = %d; want both empty", len(active), count)
		}
	})
}

func TestMemoryStoreActionLogs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now()
	for i := 0; i < 10; i++ {
		entry := model.ActionLogEntry{
			ID:        fmt.Sprintf("e%d", i),
			Action:    "Chamar Motorista",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.InsertActionLog(ctx, &entry); err != nil {
			t.Fatalf("InsertActionLog: %v", err)
		}
	}

	t.Run("listagem limitada, mais recentes primeiro", func(t *testing.T) {
		logs, err := s.ListActionLogs(ctx, 4)
		if err != nil {
			t.Fatalf("ListActionLogs: %v", err)
		}
		if len(logs) != 4 || logs[0].ID != "e9" || logs[3].ID != "e6" {
			t.Errorf("got %d logs (%s..%s), want e9..e6", len(logs), logs[0].ID, logs[len(logs)-1].ID)
		}
	})

	t.Run("trim descarta os mais antigos", func(t *testing.T) {
		if err := s.TrimActionLogs(ctx, 6); err != nil {
			t.Fatalf("TrimActionLogs: %v", err)
		}
		logs, err := s.ListActionLogs(ctx, 0)
		if err != nil {
			t.Fatalf("ListActionLogs: %v", err)
		}
		if len(logs) != 6 || logs[len(logs)-1].ID != "e4" {
			t.Errorf("after trim got %d logs ending at %s, want 6 ending at e4", len(logs), logs[len(logs)-1].ID)
		}
	})

	t.Run("trim respeita o limite mesmo com timestamps empatados", func(t *testing.T) {
		tied := NewMemoryStore()
		instant := time.Now()
		for i := 0; i < 8; i++ {
			entry := model.ActionLogEntry{
				ID:        fmt.Sprintf("t%d", i),
				Action:    "Chamar Motorista",
				Timestamp: instant,
			}
			if err := tied.InsertActionLog(ctx, &entry); err != nil {
				t.Fatalf("InsertActionLog: %v", err)
			}
		}

		if err := tied.TrimActionLogs(ctx, 5); err != nil {
			t.Fatalf("TrimActionLogs: %v", err)
		}
		logs, err := tied.ListActionLogs(ctx, 0)
		if err != nil {
			t.Fatalf("ListActionLogs: %v", err)
		}
		if len(logs) != 5 {
			t.Errorf("after trim got %d logs, want exactly 5", len(logs))
		}
	})
}
