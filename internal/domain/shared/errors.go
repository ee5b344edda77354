package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Memory-related errors

// MemoryError is raised by agent memory stores
type MemoryError struct {
	*DomainError
	AgentName string
	Field     string
}

func NewMemoryError(message, agentName, field string) *MemoryError {
	return &MemoryError{
		DomainError: &DomainError{Message: message},
		AgentName:   agentName,
		Field:       field,
	}
}

// MemoryDecodeError means a persisted value exists but cannot be read as the requested type
type MemoryDecodeError struct {
	*MemoryError
	Raw string
}

func NewMemoryDecodeError(agentName, field, raw, want string) *MemoryDecodeError {
	return &MemoryDecodeError{
		MemoryError: NewMemoryError(
			fmt.Sprintf("memory field %s of %s: cannot decode %q as %s", field, agentName, raw, want),
			agentName,
			field,
		),
		Raw: raw,
	}
}

// World visibility errors

// RoomNotVisibleError means the agent's room could not be observed this tick
type RoomNotVisibleError struct {
	*DomainError
	AgentName string
	RoomName  string
}

func NewRoomNotVisibleError(agentName, roomName string) *RoomNotVisibleError {
	return &RoomNotVisibleError{
		DomainError: &DomainError{Message: fmt.Sprintf("room %q of agent %s is not visible", roomName, agentName)},
		AgentName:   agentName,
		RoomName:    roomName,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
