package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dockcall-backend/model"
)

func TestRecordWithoutQueuePersistsDirectly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	env.actionLog.Record(ctx, model.ActionCallDriver, model.RoleMaster, "Motorista: João Silva, Mensagem: Doca 3")

	entries, err := env.actionLog.List(ctx, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	entry := entries[0]
	if entry.ID == "" {
		t.Error("entry must get an id")
	}
	if entry.Action != model.ActionCallDriver || entry.UserRole != model.RoleMaster {
		t.Errorf("entry = %+v, want recorded action and role", entry)
	}
	if entry.Timestamp.IsZero() {
		t.Error("entry must be timestamped")
	}
}

func TestActionHistoryCap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	base := time.Now().Add(-time.Hour)
	total := model.ActionHistoryLimit + 5
	for i := 0; i < total; i++ {
		entry := &model.ActionLogEntry{
			ID:        fmt.Sprintf("entry_%03d", i),
			Action:    model.ActionCallDriver,
			UserRole:  model.RoleMaster,
			Details:   fmt.Sprintf("Chamada %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := env.actionLog.Persist(ctx, entry); err != nil {
			t.Fatalf("Persist %d: %v", i, err)
		}
	}

	entries, err := env.actionLog.List(ctx, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != model.ActionHistoryLimit {
		t.Fatalf("entries = %d, want cap of %d", len(entries), model.ActionHistoryLimit)
	}

	// Newest first; the five oldest entries fell off.
	if entries[0].ID != fmt.Sprintf("entry_%03d", total-1) {
		t.Errorf("first entry = %s, want the newest", entries[0].ID)
	}
	if entries[len(entries)-1].ID != "entry_005" {
		t.Errorf("last entry = %s, want entry_005 (older ones trimmed)", entries[len(entries)-1].ID)
	}
}

func TestListActionHistoryFilters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	base := time.Now()
	seed := []model.ActionLogEntry{
		{ID: "e1", Action: model.ActionCallDriver, UserRole: model.RoleMaster, Details: "Motorista: João Silva", Timestamp: base},
		{ID: "e2", Action: model.ActionRegisterDriver, UserRole: model.RoleAdm, Details: "Motorista: Maria Oliveira", Timestamp: base.Add(time.Second)},
		{ID: "e3", Action: model.ActionFinalizeCall, UserRole: model.RoleAdm, Details: "Motorista: João Silva", Timestamp: base.Add(2 * time.Second)},
	}
	for i := range seed {
		if err := env.actionLog.Persist(ctx, &seed[i]); err != nil {
			t.Fatalf("Persist: %v", err)
		}
	}

	t.Run("filtro por papel", func(t *testing.T) {
		entries, err := env.actionLog.List(ctx, model.RoleAdm, "")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
		for _, e := range entries {
			if e.UserRole != model.RoleAdm {
				t.Errorf("entry %s role = %s, want adm", e.ID, e.UserRole)
			}
		}
	})

	t.Run("busca ignora maiúsculas e cobre ação e detalhes", func(t *testing.T) {
		byDetails, err := env.actionLog.List(ctx, "", "joão")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(byDetails) != 2 {
			t.Errorf("search by details = %d entries, want 2", len(byDetails))
		}

		byAction, err := env.actionLog.List(ctx, "", "CADASTRAR")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(byAction) != 1 || byAction[0].ID != "e2" {
			t.Errorf("search by action = %+v, want only e2", byAction)
		}
	})

	t.Run("papel e busca combinados", func(t *testing.T) {
		entries, err := env.actionLog.List(ctx, model.RoleAdm, "joão")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != "e3" {
			t.Errorf("entries = %+v, want only e3", entries)
		}
	})
}
