package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más los datos del solicitante.
// Role, UnitID y WarehouseID permiten autorizar sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Role        string `json:"role"` // "user" | "supervisor" | "admin" | "super_admin"
	UnitID      *int64 `json:"unit_id,omitempty"`
	WarehouseID *int64 `json:"warehouse_id,omitempty"`
}

// Subject datos del usuario que viajan en el token.
type Subject struct {
	UserID      int64
	Name        string
	Role        string
	UnitID      *int64
	WarehouseID *int64
}

// Generate genera un token JWT HS256 firmado para el sujeto.
func Generate(secret, issuer string, sub Subject, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprintf("%d", sub.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:      sub.UserID,
		Name:        sub.Name,
		Role:        sub.Role,
		UnitID:      sub.UnitID,
		WarehouseID: sub.WarehouseID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve el sujeto.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (Subject, error) {
	if secret == "" {
		return Subject{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Subject{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Subject{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID <= 0 {
		return Subject{}, fmt.Errorf("claims inválidos: user_id ausente")
	}
	return Subject{
		UserID:      claims.UserID,
		Name:        claims.Name,
		Role:        claims.Role,
		UnitID:      claims.UnitID,
		WarehouseID: claims.WarehouseID,
	}, nil
}
