package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity contexto del llamador que viaja en el token: quién emite, para qué tenant y desde qué sucursal.
// Los tokens los emite el servicio de autenticación externo; este servicio solo los valida.
type Identity struct {
	UserID   string
	TenantID string
	BranchID string // sucursal por defecto del usuario; vacío = todas
	Role     string // "admin" | "supervisor" | "cajero"
}

// Claims incluye los claims estándar JWT más la identidad fiscal del usuario.
// Role va en el token para que el middleware RBAC decida sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	BranchID string `json:"branch_id,omitempty"`
	Role     string `json:"role"`
}

// Identity devuelve los campos de aplicación del token.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, TenantID: c.TenantID, BranchID: c.BranchID, Role: c.Role}
}

// Generate genera un token JWT firmado (HS256) con la identidad indicada.
// Se usa en tests y en herramientas de operación; en producción los tokens vienen de afuera.
func Generate(secret string, id Identity, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:   id.UserID,
		TenantID: id.TenantID,
		BranchID: id.BranchID,
		Role:     id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve la identidad del token.
// Si issuer no está vacío también se exige que coincida.
func Parse(secret, issuer, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	if claims.TenantID == "" {
		return Identity{}, fmt.Errorf("jwt: tenant_id ausente")
	}
	return claims.Identity(), nil
}
