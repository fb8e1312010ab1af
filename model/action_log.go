package model

import "time"

// Action tags recorded in the action history. Kept in Portuguese to match
// the panel UI labels.
const (
	ActionRegisterDriver = "Cadastrar Motorista"
	ActionEditDriver     = "Editar Motorista"
	ActionDeleteDriver   = "Excluir Motorista"
	ActionCallDriver     = "Chamar Motorista"
	ActionAssignRun      = "Atribuir Corrida"
	ActionRemoveCall     = "Remover Chamada"
	ActionFinalizeCall   = "Finalizar Chamada"
	ActionReopenCall     = "Reabrir Chamada"
	ActionLogin          = "Login"
	ActionLogout         = "Logout"
)

// ActionHistoryLimit caps the retained action history to the newest entries.
const ActionHistoryLimit = 100

// ActionLogEntry is one audit record of a mutating panel operation.
type ActionLogEntry struct {
	ID        string    `bson:"_id" json:"id"`
	Action    string    `bson:"action" json:"action"`
	UserRole  UserRole  `bson:"user_role" json:"userRole"`
	Details   string    `bson:"details" json:"details"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
