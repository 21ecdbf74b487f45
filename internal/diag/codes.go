package diag

// Code identifies a class of emission failure. Codes are grouped in blocks
// per layer so a bare number in a log line is enough to locate the layer.
type Code uint16

const (
	UnknownCode Code = 0

	// Usage-order errors: the caller broke the declare/define protocol.
	UseNoPrototype        Code = 1001
	UsePrototypeRedefined Code = 1002
	UseNotDeclared        Code = 1003
	UseNoBody             Code = 1004
	UseBodyRedefined      Code = 1005
	UseNoInsertionPoint   Code = 1006
	UseGlobalRedefined    Code = 1007

	// Name-lookup errors.
	NameUnknownGlobal    Code = 2001
	NameUnknownAggregate Code = 2002
	NameUnknownFunction  Code = 2003

	// Type errors caught at the emission layer.
	TypeNotAddress      Code = 3001
	TypeNotAggregate    Code = 3002
	TypeStoreMismatch   Code = 3003
	TypeReturnMismatch  Code = 3004
	TypeBadScalarWidth  Code = 3005
	TypeFieldOutOfRange Code = 3006

	// Structural verification failures.
	VerifyNoEntry       Code = 4001
	VerifyNoTerminator  Code = 4002
	VerifyUnreachable   Code = 4003
	VerifyBadOperand    Code = 4004
	VerifyBadCall       Code = 4005
	VerifyBadReturn     Code = 4006
	VerifyNoInitializer Code = 4007
)
