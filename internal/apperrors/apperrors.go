// Package apperrors fournit les erreurs typées du service Director Assist.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind définit les catégories d'erreurs du service
type Kind string

const (
	// KindNotFound indique qu'un enregistrement demandé n'existe pas
	KindNotFound Kind = "not_found"
	// KindValidation indique une entrée invalide
	KindValidation Kind = "validation"
	// KindConflict indique une opération incompatible avec l'état courant
	KindConflict Kind = "conflict"
	// KindPersistence indique un échec de la couche de persistance
	KindPersistence Kind = "persistence"
	// KindUnavailable indique qu'un service externe est indisponible
	KindUnavailable Kind = "unavailable"
)

// Error représente une erreur typée avec sa catégorie et sa cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error retourne le message de l'erreur
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap retourne la cause de l'erreur
func (e *Error) Unwrap() error {
	return e.Err
}

// New crée une nouvelle erreur typée
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf crée une nouvelle erreur typée avec un message formaté
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap enveloppe une cause dans une erreur typée
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf retourne la catégorie d'une erreur (KindPersistence par défaut)
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

// IsNotFound vérifie si l'erreur est une erreur not found
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsValidation vérifie si l'erreur est une erreur de validation
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsConflict vérifie si l'erreur est une erreur de conflit d'état
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// HTTPStatus retourne le code HTTP correspondant à la catégorie d'erreur
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
