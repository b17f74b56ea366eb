package entity

// Roles válidos en el token (los emite el servicio de autenticación externo).
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleCashier    = "cajero"
)
