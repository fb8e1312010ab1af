package model

// AvailabilityStatus motorista availability on the panel
type AvailabilityStatus string

const (
	AvailabilityOnline  AvailabilityStatus = "online"
	AvailabilityOffline AvailabilityStatus = "offline"
	AvailabilityBusy    AvailabilityStatus = "busy"
)

// IsValid reports whether the value is one of the known availability statuses.
func (s AvailabilityStatus) IsValid() bool {
	switch s {
	case AvailabilityOnline, AvailabilityOffline, AvailabilityBusy:
		return true
	}
	return false
}

// ServiceStatus operational service status of a driver
type ServiceStatus string

const (
	ServiceStatusDisponivel  ServiceStatus = "disponivel"
	ServiceStatusEmServico   ServiceStatus = "em_servico"
	ServiceStatusEmProgresso ServiceStatus = "em_progresso"
	ServiceStatusAguardando  ServiceStatus = "aguardando"
)

// IsValid reports whether the value is one of the known service statuses.
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusDisponivel, ServiceStatusEmServico, ServiceStatusEmProgresso, ServiceStatusAguardando:
		return true
	}
	return false
}

// UserRole panel user role
type UserRole string

const (
	RoleMaster    UserRole = "master"
	RoleAdm       UserRole = "adm"
	RoleMotorista UserRole = "motorista"
)

// TokenType JWT token type
type TokenType string

const (
	TokenTypeSession TokenType = "session"
)

// CallKind distinguishes a dock call from an assigned run
type CallKind string

const (
	CallKindDock CallKind = "chamada"
	CallKindRun  CallKind = "corrida"
)
