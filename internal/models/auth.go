package models

import "github.com/golang-jwt/jwt/v5"

// ConfirmationClaims bind a delete confirmation to one user, view and row.
// The subject is the user id, the token id is single use.
type ConfirmationClaims struct {
	View  string `json:"view"`
	RowID string `json:"row_id"`
	jwt.RegisteredClaims
}
